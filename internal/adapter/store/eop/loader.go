// Package eop provides loading of tabulated Earth orientation parameters.
package eop

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/earthrotation"
	"go.ngs.io/geotides/internal/logging"
	"go.ngs.io/geotides/internal/timescale"
)

// Required columns: mjd xp yp ut1-utc lod dX dY.
const minColumns = 7

// Loader reads whitespace separated EOP tables such as IERS C04 extracts.
type Loader struct {
	log logging.Logger
}

// NewLoader creates a new EOP loader. A nil logger discards output.
func NewLoader(log logging.Logger) *Loader {
	if log == nil {
		log = logging.Noop()
	}
	return &Loader{log: log}
}

// LoadFile reads an EOP table from path.
func (l *Loader) LoadFile(ctx context.Context, path string) ([]earthrotation.Record, error) {
	//nolint:gosec // G304: path comes from configuration.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open EOP file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	records, err := l.Read(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("failed to read EOP file %s: %w", path, err)
	}
	return records, nil
}

// Read parses records. Lines starting with '#' and lines whose first field is
// not numeric are skipped; columns beyond the seventh are ignored.
func (l *Loader) Read(ctx context.Context, r io.Reader) ([]earthrotation.Record, error) {
	scanner := bufio.NewScanner(r)
	records := make([]earthrotation.Record, 0, 1024)
	skipped := 0
	line := 0

	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if _, err := strconv.ParseFloat(fields[0], 64); err != nil {
			skipped++
			continue
		}
		if len(fields) < minColumns {
			return nil, domain.MalformedInput("line %d: expected %d columns, got %d", line, minColumns, len(fields))
		}

		var v [minColumns]float64
		for i := range v {
			x, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, domain.MalformedInput("line %d column %d: invalid number %q", line, i+1, fields[i])
			}
			v[i] = x
		}

		records = append(records, earthrotation.Record{
			EpochUTC:    timescale.FromMJD(v[0]),
			XP:          v[1],
			YP:          v[2],
			UT1MinusUTC: v[3],
			LOD:         v[4],
			DX:          v[5],
			DY:          v[6],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan EOP table: %w", err)
	}
	if len(records) == 0 {
		return nil, domain.MalformedInput("no EOP records found")
	}

	l.log.Debug(ctx, "EOP table loaded",
		logging.Int("records", len(records)),
		logging.Int("skipped_lines", skipped),
		logging.Float("first_mjd", records[0].EpochUTC.MJD()),
		logging.Float("last_mjd", records[len(records)-1].EpochUTC.MJD()))
	return records, nil
}

// LoadSeries reads path and converts it into an interpolation series.
func (l *Loader) LoadSeries(ctx context.Context, path string) (*earthrotation.Series, error) {
	records, err := l.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	series, err := earthrotation.NewSeries(records)
	if err != nil {
		return nil, fmt.Errorf("invalid EOP series in %s: %w", path, err)
	}
	l.log.Info(ctx, "EOP series ready",
		logging.String("file", path),
		logging.Int("epochs", series.Len()))
	return series, nil
}
