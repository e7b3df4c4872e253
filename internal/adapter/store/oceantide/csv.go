// Package oceantide reads and writes harmonic ocean tide models: per
// constituent, the potential coefficients multiplying cos and sin of the
// Doodson argument.
package oceantide

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/harmonics"
	"go.ngs.io/geotides/internal/tides"
)

var csvHeader = []string{"constituent", "doodson", "degree", "order", "cnm_cos", "snm_cos", "cnm_sin", "snm_sin"}

type coefficientRow struct {
	doodson                        tides.DoodsonNumber
	n, m                           int
	cnmCos, snmCos, cnmSin, snmSin float64
}

// ReadCSV parses a coefficient table. The file carries no reference values, so
// gm and radius are assigned to the model.
func ReadCSV(r io.Reader, gm, radius float64) (*tides.HarmonicModel, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) != len(csvHeader) {
		return nil, domain.MalformedInput("invalid CSV header: expected %v, got %v", csvHeader, header)
	}
	for i, h := range header {
		if strings.TrimSpace(h) != csvHeader[i] {
			return nil, domain.MalformedInput("invalid CSV header: expected column %d to be %s, got %s", i, csvHeader[i], h)
		}
	}

	var rows []coefficientRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		row, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, domain.MalformedInput("no coefficients found in CSV")
	}
	return buildModel(rows, gm, radius)
}

func parseRow(record []string) (coefficientRow, error) {
	var row coefficientRow
	key := strings.TrimSpace(record[1])
	if key == "" {
		key = strings.TrimSpace(record[0])
	}
	d, err := tides.ParseDoodson(key)
	if err != nil {
		return row, err
	}
	row.doodson = d

	if row.n, err = strconv.Atoi(strings.TrimSpace(record[2])); err != nil {
		return row, domain.MalformedInput("invalid degree %q", record[2])
	}
	if row.m, err = strconv.Atoi(strings.TrimSpace(record[3])); err != nil {
		return row, domain.MalformedInput("invalid order %q", record[3])
	}
	if row.n < 0 || row.m < 0 || row.m > row.n {
		return row, domain.MalformedInput("invalid degree/order %d/%d", row.n, row.m)
	}

	values := []*float64{&row.cnmCos, &row.snmCos, &row.cnmSin, &row.snmSin}
	for i, v := range values {
		s := strings.TrimSpace(record[4+i])
		if *v, err = strconv.ParseFloat(s, 64); err != nil {
			return row, domain.MalformedInput("invalid %s %q", csvHeader[4+i], s)
		}
	}
	return row, nil
}

// buildModel groups rows by constituent in order of first appearance.
func buildModel(rows []coefficientRow, gm, radius float64) (*tides.HarmonicModel, error) {
	maxDegree := 0
	for _, r := range rows {
		maxDegree = max(maxDegree, r.n)
	}

	model := &tides.HarmonicModel{GM: gm, R: radius}
	index := map[tides.DoodsonNumber]int{}
	for _, r := range rows {
		i, ok := index[r.doodson]
		if !ok {
			i = len(model.Constituents)
			index[r.doodson] = i
			model.Constituents = append(model.Constituents, tides.HarmonicConstituent{
				Doodson: r.doodson,
				Cos:     harmonics.NewField(maxDegree, gm, radius),
				Sin:     harmonics.NewField(maxDegree, gm, radius),
			})
		}
		c := model.Constituents[i]
		c.Cos.C[r.n][r.m] = r.cnmCos
		c.Cos.S[r.n][r.m] = r.snmCos
		c.Sin.C[r.n][r.m] = r.cnmSin
		c.Sin.S[r.n][r.m] = r.snmSin
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	return model, nil
}

// WriteCSV writes every non-zero coefficient of model.
func WriteCSV(w io.Writer, model *tides.HarmonicModel) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	format := func(v float64) string { return strconv.FormatFloat(v, 'e', -1, 64) }
	for _, c := range model.Constituents {
		top := min(c.Cos.MaxDegree(), c.Sin.MaxDegree())
		for n := 0; n <= top; n++ {
			for m := 0; m <= n; m++ {
				values := [4]float64{c.Cos.C[n][m], c.Cos.S[n][m], c.Sin.C[n][m], c.Sin.S[n][m]}
				if values == [4]float64{} {
					continue
				}
				record := []string{
					c.Doodson.Name(), c.Doodson.String(), strconv.Itoa(n), strconv.Itoa(m),
					format(values[0]), format(values[1]), format(values[2]), format(values[3]),
				}
				if err := writer.Write(record); err != nil {
					return fmt.Errorf("failed to write CSV record: %w", err)
				}
			}
		}
	}
	writer.Flush()
	return writer.Error()
}
