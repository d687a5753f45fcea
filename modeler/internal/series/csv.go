package series

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/firewatch/firewatch/pkg/types"
)

// Column spellings accepted in the header row, compared case-insensitively.
// The micro:bit data logger writes "temperature value" and "light value".
var (
	temperatureColumns = []string{"temperature", "temperature value", "temp"}
	lightColumns       = []string{"light", "light value", "light level"}
)

type csvSource struct {
	path     string
	fallback Source // used when the file is missing or has no usable rows
}

func (s *csvSource) Name() string { return "csv:" + s.path }

// Load reads the CSV file. A missing or empty file switches to the fallback
// provider when one is configured.
func (s *csvSource) Load(ctx context.Context) ([]types.Sample, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && s.fallback != nil {
			slog.Info("series: no data file found, using fallback",
				"path", s.path, "fallback", s.fallback.Name())
			return s.fallback.Load(ctx)
		}
		return nil, fmt.Errorf("series: open %q: %w", s.path, err)
	}
	defer f.Close()

	samples, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("series: %q: %w", s.path, err)
	}
	if len(samples) == 0 && s.fallback != nil {
		slog.Warn("series: data file has no usable rows, using fallback",
			"path", s.path, "fallback", s.fallback.Name())
		return s.fallback.Load(ctx)
	}

	slog.Info("series: loaded readings", "path", s.path, "count", len(samples))
	return samples, nil
}

// ParseCSV decodes a data-logger export. The first record is the header; an
// empty input yields no samples.
// Rows whose temperature or light cannot be parsed are skipped; the sample
// index is the 1-based data row position, so skipped rows leave gaps.
func ParseCSV(r io.Reader) ([]types.Sample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	tempCol := findColumn(header, temperatureColumns)
	lightCol := findColumn(header, lightColumns)
	if tempCol < 0 {
		return nil, fmt.Errorf("csv: no temperature column in header %q", header)
	}
	if lightCol < 0 {
		return nil, fmt.Errorf("csv: no light column in header %q", header)
	}

	var out []types.Sample
	for row := 1; ; row++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			slog.Debug("series: skipping unreadable row", "row", row, "err", err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read row %d: %w", row, err)
		}

		smp, ok := parseRow(rec, tempCol, lightCol)
		if !ok {
			slog.Debug("series: skipping malformed row", "row", row, "record", rec)
			continue
		}
		smp.Index = row
		out = append(out, smp)
	}
	return out, nil
}

// parseRow extracts temperature and light from one record.
func parseRow(rec []string, tempCol, lightCol int) (types.Sample, bool) {
	if tempCol >= len(rec) || lightCol >= len(rec) {
		return types.Sample{}, false
	}
	temp, err := strconv.ParseFloat(strings.TrimSpace(rec[tempCol]), 64)
	if err != nil || math.IsNaN(temp) || math.IsInf(temp, 0) {
		return types.Sample{}, false
	}
	light, err := strconv.ParseFloat(strings.TrimSpace(rec[lightCol]), 64)
	if err != nil || math.IsNaN(light) || math.IsInf(light, 0) {
		return types.Sample{}, false
	}
	return types.Sample{Temperature: temp, Light: truncLight(light)}, true
}

// findColumn returns the index of the first header cell matching any of the
// accepted names, or -1.
func findColumn(header, names []string) int {
	for _, name := range names {
		for i, h := range header {
			h = strings.TrimPrefix(h, "\ufeff")
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
	}
	return -1
}
