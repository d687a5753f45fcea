package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/firewatch/firewatch/modeler/internal/config"
	"github.com/firewatch/firewatch/pkg/types"
)

// stubSource returns a fixed series.
type stubSource struct {
	samples []types.Sample
	err     error
}

func (s stubSource) Load(context.Context) ([]types.Sample, error) { return s.samples, s.err }
func (s stubSource) Name() string                                 { return "stub" }

func testConfig(t *testing.T) config.ModelerConfig {
	t.Helper()
	cfg := config.Default().Modeler
	cfg.SiteID = "ridge"
	cfg.Output.Dir = t.TempDir()
	return cfg
}

func samples() []types.Sample {
	return []types.Sample{
		{Index: 1, Temperature: 10, Light: 0},
		{Index: 2, Temperature: 20, Light: 0},
		{Index: 3, Temperature: 30, Light: 200},
	}
}

func TestRun_WritesStandardFiles(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.Textfile = filepath.Join(cfg.Output.Dir, "firewatch.prom")

	var out bytes.Buffer
	r := New(cfg, stubSource{samples: samples()}, &out)
	fixed := time.Date(2026, 7, 1, 12, 0, 0, 0, time.FixedZone("IST", 3600))
	r.now = func() time.Time { return fixed }

	sweep, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if _, err := uuid.Parse(sweep.ID); err != nil {
		t.Errorf("sweep ID %q is not a UUID: %v", sweep.ID, err)
	}
	if sweep.SiteID != "ridge" || sweep.Source != "stub" || sweep.Readings != 3 {
		t.Errorf("sweep = %+v", sweep)
	}
	if !sweep.GeneratedAt.Equal(fixed) || sweep.GeneratedAt.Location() != time.UTC {
		t.Errorf("GeneratedAt = %v, want %v in UTC", sweep.GeneratedAt, fixed)
	}
	if len(sweep.Reports) != 4 {
		t.Fatalf("got %d reports, want 4", len(sweep.Reports))
	}

	for _, name := range []string{
		"results_baseline.csv",
		"results_scenario1_heatwave.csv",
		"results_scenario2_canopy_loss.csv",
		"results_scenario_combined.csv",
		"firewatch.prom",
	} {
		if _, err := os.Stat(filepath.Join(cfg.Output.Dir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
		if !strings.Contains(out.String(), name) {
			t.Errorf("printed report does not list %s", name)
		}
	}

	data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "results_baseline.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "3,30.0,200,12.9,17.9,4,5") {
		t.Errorf("baseline file content:\n%s", data)
	}
}

func TestRun_CustomScenarioFile(t *testing.T) {
	cfg := testConfig(t)
	mult := 2.0
	cfg.Scenarios = []config.Scenario{{ID: "glare", LightMultiplier: &mult}}

	sweep, err := New(cfg, stubSource{samples: samples()}, &bytes.Buffer{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(sweep.Reports) != 1 || sweep.Reports[0].Scenario.Label != "glare" {
		t.Errorf("reports = %+v", sweep.Reports)
	}
	if _, err := os.Stat(filepath.Join(cfg.Output.Dir, "results_glare.csv")); err != nil {
		t.Errorf("custom scenario file missing: %v", err)
	}
}

func TestRun_EmptySeries(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer
	sweep, err := New(cfg, stubSource{}, &out).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(sweep.Reports) != 0 || sweep.Readings != 0 {
		t.Errorf("sweep = %+v, want no reports", sweep)
	}
	entries, _ := os.ReadDir(cfg.Output.Dir)
	if len(entries) != 0 {
		t.Errorf("empty run wrote %d files", len(entries))
	}
}

func TestRun_LoadError(t *testing.T) {
	boom := errors.New("boom")
	_, err := New(testConfig(t), stubSource{err: boom}, &bytes.Buffer{}).Run(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want wrapped boom", err)
	}
}
