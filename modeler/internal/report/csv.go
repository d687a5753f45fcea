package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/firewatch/firewatch/pkg/types"
)

// Header is the column order of every result file.
var Header = []string{
	"reading",
	"temperature",
	"light",
	"rolling_avg",
	"warning_threshold",
	"fire_risk",
	"warning_margin",
}

// WriteCSV writes the header followed by one record per row.
func WriteCSV(w io.Writer, rows []types.ResultRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("report: write header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.Index),
			oneDecimal(r.Temperature),
			strconv.Itoa(r.Light),
			oneDecimal(r.RollingAvg),
			oneDecimal(r.WarningThreshold),
			strconv.Itoa(r.FireRisk),
			strconv.Itoa(r.WarningMargin),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("report: write row %d: %w", r.Index, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("report: flush: %w", err)
	}
	return nil
}

// WriteFile writes rows to dir/name and returns the path written. Empty rows
// write nothing and return "".
func WriteFile(dir, name string, rows []types.ResultRow) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report: create %q: %w", dir, err)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("report: create %q: %w", path, err)
	}
	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("report: close %q: %w", path, err)
	}
	return path, nil
}

func oneDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
