package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/firewatch/firewatch/modeler/internal/config"
	"github.com/firewatch/firewatch/modeler/internal/report"
	"github.com/firewatch/firewatch/modeler/internal/risk"
	"github.com/firewatch/firewatch/modeler/internal/series"
	"github.com/firewatch/firewatch/pkg/types"
)

// Runner holds everything one sweep needs.
type Runner struct {
	cfg config.ModelerConfig
	src series.Source
	out io.Writer
	now func() time.Time
}

// New builds a Runner that prints to out.
func New(cfg config.ModelerConfig, src series.Source, out io.Writer) *Runner {
	return &Runner{cfg: cfg, src: src, out: out, now: time.Now}
}

// Run performs the sweep. An empty series is not an error: the returned
// sweep has no reports and no files are written.
func (r *Runner) Run(ctx context.Context) (*types.Sweep, error) {
	samples, err := r.src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("runner: load series: %w", err)
	}

	sweep := &types.Sweep{
		ID:          uuid.NewString(),
		SiteID:      r.cfg.SiteID,
		Source:      r.src.Name(),
		GeneratedAt: r.now().UTC(),
		Readings:    len(samples),
		Reports:     risk.RunAll(samples, r.cfg.ScenarioTypes()),
	}
	slog.Info("runner: sweep scored",
		"sweep", sweep.ID, "source", sweep.Source,
		"readings", sweep.Readings, "scenarios", len(sweep.Reports))

	report.PrintSweep(r.out, sweep)

	if len(sweep.Reports) == 0 {
		slog.Warn("runner: no readings, nothing written", "source", sweep.Source)
		return sweep, nil
	}

	if err := r.writeFiles(sweep); err != nil {
		return sweep, err
	}
	return sweep, nil
}

func (r *Runner) writeFiles(sweep *types.Sweep) error {
	fmt.Fprintln(r.out, "\n  Output files written:")
	for i, rep := range sweep.Reports {
		path, err := report.WriteFile(r.cfg.Output.Dir, r.cfg.Scenarios[i].FileName(), rep.Rows)
		if err != nil {
			return fmt.Errorf("runner: %w", err)
		}
		if path != "" {
			fmt.Fprintf(r.out, "    %s\n", path)
		}
	}

	if r.cfg.Output.Textfile != "" {
		if err := report.WriteTextfile(r.cfg.Output.Textfile, sweep); err != nil {
			return fmt.Errorf("runner: %w", err)
		}
		fmt.Fprintf(r.out, "    %s\n", r.cfg.Output.Textfile)
	}
	return nil
}
