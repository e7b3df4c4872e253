// Package coefficients reads the plain-text coefficient tables used by the
// Earth rotation and tide models: ocean pole tide coefficients, short-period
// EOP models, the IERS precession-nutation series and Love numbers.
package coefficients

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/harmonics"
	"go.ngs.io/geotides/internal/iers"
	"go.ngs.io/geotides/internal/tides"
)

// scanNumeric calls fn with the fields of every line whose first field parses
// as a number. Blank lines, '#' comments and headers are skipped.
func scanNumeric(r io.Reader, fn func(line int, fields []string) error) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if _, err := strconv.ParseFloat(fields[0], 64); err != nil {
			continue
		}
		if err := fn(line, fields); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func parseFloats(line int, fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, domain.WrapMalformed(err, "line %d column %d", line, i+1)
		}
		out[i] = v
	}
	return out, nil
}

func parseInts(line int, fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, domain.WrapMalformed(err, "line %d column %d", line, i+1)
		}
		out[i] = v
	}
	return out, nil
}

func openFile(path string) (*os.File, error) {
	//nolint:gosec // G304: path comes from configuration.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return file, nil
}

// ReadOceanPole parses self-consistent equilibrium ocean pole tide
// coefficients, one "n m A_R B_R A_I B_I" row per line.
func ReadOceanPole(r io.Reader) (*tides.OceanPoleModel, error) {
	type row struct {
		n, m int
		v    []float64
	}
	var rows []row
	maxDegree := -1
	err := scanNumeric(r, func(line int, fields []string) error {
		if len(fields) < 6 {
			return domain.MalformedInput("line %d: expected 6 columns, got %d", line, len(fields))
		}
		nm, err := parseInts(line, fields[:2])
		if err != nil {
			return err
		}
		if nm[0] < 0 || nm[1] < 0 || nm[1] > nm[0] {
			return domain.MalformedInput("line %d: invalid degree/order %d/%d", line, nm[0], nm[1])
		}
		v, err := parseFloats(line, fields[2:6])
		if err != nil {
			return err
		}
		rows = append(rows, row{n: nm[0], m: nm[1], v: v})
		maxDegree = max(maxDegree, nm[0])
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.MalformedInput("no ocean pole tide coefficients found")
	}

	model := &tides.OceanPoleModel{
		Real: harmonics.NewField(maxDegree, domain.DefaultGM, domain.DefaultR),
		Imag: harmonics.NewField(maxDegree, domain.DefaultGM, domain.DefaultR),
	}
	for _, c := range rows {
		model.Real.C[c.n][c.m] = c.v[0]
		model.Real.S[c.n][c.m] = c.v[1]
		model.Imag.C[c.n][c.m] = c.v[2]
		model.Imag.S[c.n][c.m] = c.v[3]
	}
	return model, nil
}

// LoadOceanPole reads an ocean pole tide coefficient file.
func LoadOceanPole(path string) (*tides.OceanPoleModel, error) {
	file, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	model, err := ReadOceanPole(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read ocean pole tide coefficients %s: %w", path, err)
	}
	return model, nil
}

// ShortPeriodLayout names the amplitude columns following the six argument
// multipliers of a short-period EOP table.
type ShortPeriodLayout int

const (
	// LayoutFull has x, y, UT1 and LOD sine/cosine pairs (ocean tide EOP).
	LayoutFull ShortPeriodLayout = iota
	// LayoutPolarMotion has x and y pairs (libration in polar motion).
	LayoutPolarMotion
	// LayoutUT1 has UT1 and LOD pairs (libration in UT1).
	LayoutUT1
)

func (l ShortPeriodLayout) columns() int {
	if l == LayoutFull {
		return 8
	}
	return 4
}

// ReadShortPeriod parses a short-period EOP model. Amplitudes are in µas for
// polar motion and µs for UT1 and LOD.
func ReadShortPeriod(r io.Reader, name string, layout ShortPeriodLayout) (*iers.ShortPeriodModel, error) {
	model := &iers.ShortPeriodModel{Name: name}
	want := 6 + layout.columns()
	err := scanNumeric(r, func(line int, fields []string) error {
		if len(fields) < want {
			return domain.MalformedInput("line %d: expected %d columns, got %d", line, want, len(fields))
		}
		n, err := parseInts(line, fields[:6])
		if err != nil {
			return err
		}
		a, err := parseFloats(line, fields[6:want])
		if err != nil {
			return err
		}
		var term iers.HarmonicTerm
		copy(term.N[:], n)
		switch layout {
		case LayoutFull:
			term.XSin, term.XCos, term.YSin, term.YCos = a[0], a[1], a[2], a[3]
			term.UT1Sin, term.UT1Cos, term.LODSin, term.LODCos = a[4], a[5], a[6], a[7]
		case LayoutPolarMotion:
			term.XSin, term.XCos, term.YSin, term.YCos = a[0], a[1], a[2], a[3]
		case LayoutUT1:
			term.UT1Sin, term.UT1Cos, term.LODSin, term.LODCos = a[0], a[1], a[2], a[3]
		}
		model.Terms = append(model.Terms, term)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(model.Terms) == 0 {
		return nil, domain.MalformedInput("short-period model %s has no terms", name)
	}
	return model, nil
}

// LoadShortPeriod reads a short-period EOP model file named after its base name.
func LoadShortPeriod(path string, layout ShortPeriodLayout) (*iers.ShortPeriodModel, error) {
	file, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	model, err := ReadShortPeriod(file, name, layout)
	if err != nil {
		return nil, fmt.Errorf("failed to read short-period model %s: %w", path, err)
	}
	return model, nil
}

// IERS series table file names for X, Y and s+XY/2.
var seriesFiles = [3]string{"tab5.2a.txt", "tab5.2b.txt", "tab5.2d.txt"}

// LoadIERSSeries reads the three IERS 2010 CIP tables from dir.
func LoadIERSSeries(dir string) (*iers.FullSeries, error) {
	var tables [3]*iers.SeriesTable
	for i, name := range seriesFiles {
		path := filepath.Join(dir, name)
		file, err := openFile(path)
		if err != nil {
			return nil, err
		}
		tables[i], err = iers.ParseSeriesTable(file)
		_ = file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	return iers.NewFullSeries(tables[0], tables[1], tables[2])
}

// ReadLoveNumbers parses "n h_n l_n [k_n]" rows and returns h and l indexed
// by degree. Degrees absent from the table are zero.
func ReadLoveNumbers(r io.Reader) (hn, ln []float64, err error) {
	err = scanNumeric(r, func(line int, fields []string) error {
		if len(fields) < 3 {
			return domain.MalformedInput("line %d: expected n h l, got %d columns", line, len(fields))
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil || n < 0 {
			return domain.MalformedInput("line %d: invalid degree %q", line, fields[0])
		}
		v, err := parseFloats(line, fields[1:3])
		if err != nil {
			return err
		}
		for len(hn) <= n {
			hn = append(hn, 0)
			ln = append(ln, 0)
		}
		hn[n], ln[n] = v[0], v[1]
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if len(hn) == 0 {
		return nil, nil, domain.MalformedInput("no Love numbers found")
	}
	return hn, ln, nil
}

// LoadLoveNumbers reads a Love number file.
func LoadLoveNumbers(path string) (hn, ln []float64, err error) {
	file, err := openFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = file.Close() }()

	hn, ln, err = ReadLoveNumbers(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read Love numbers %s: %w", path, err)
	}
	return hn, ln, nil
}
