package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/firewatch/firewatch/pkg/types"
)

func TestLoad_Valid(t *testing.T) {
	yaml := `
modeler:
  site_id: ridge-north
  interval: 5m
  server_endpoint: "localhost:50051"
  input:
    source: synthetic
    synthetic:
      peak_temp: 32
      low_temp: 12
      start_temp: 18
      peak_light: 230
      avg_light: 90
      count: 48
  output:
    dir: out
    textfile: out/firewatch.prom
  scenarios:
    - id: baseline
      label: Baseline
    - id: drought
      label: Drought
      temperature_offset: 4.5
      light_multiplier: 1.2
      freeze_baseline: true
`
	cfg := loadFromString(t, yaml)
	m := cfg.Modeler

	if m.SiteID != "ridge-north" {
		t.Errorf("site_id: got %q", m.SiteID)
	}
	if m.Interval != 5*time.Minute {
		t.Errorf("interval: got %v", m.Interval)
	}
	if m.Input.Source != "synthetic" || m.Input.Synthetic.Count != 48 {
		t.Errorf("input: got %+v", m.Input)
	}
	if m.Output.Textfile != "out/firewatch.prom" {
		t.Errorf("textfile: got %q", m.Output.Textfile)
	}
	if len(m.Scenarios) != 2 {
		t.Fatalf("scenarios: got %d, want 2", len(m.Scenarios))
	}

	got := m.ScenarioTypes()
	if got[0].LightMultiplier != 1 {
		t.Errorf("omitted light_multiplier: got %v, want 1", got[0].LightMultiplier)
	}
	want := types.Scenario{ID: "drought", Label: "Drought", TemperatureOffset: 4.5, LightMultiplier: 1.2, FreezeBaseline: true}
	if got[1] != want {
		t.Errorf("drought scenario: got %+v, want %+v", got[1], want)
	}
	if m.Scenarios[1].FileName() != "results_drought.csv" {
		t.Errorf("FileName: got %q", m.Scenarios[1].FileName())
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadFromString(t, "modeler: {}\n")
	m := cfg.Modeler

	if m.SiteID != DefaultSiteID {
		t.Errorf("default site_id: got %q", m.SiteID)
	}
	if m.Input.Source != DefaultSource || m.Input.CSVPath != DefaultCSVPath {
		t.Errorf("default input: got %+v", m.Input)
	}
	if m.Input.Fallback != "simulate" {
		t.Errorf("default fallback: got %q", m.Input.Fallback)
	}
	if m.Input.Scrape.TemperatureMetric != DefaultTemperatureMetric {
		t.Errorf("default temperature metric: got %q", m.Input.Scrape.TemperatureMetric)
	}
	if m.BufferSize != DefaultBufferSize {
		t.Errorf("default buffer_size: got %d", m.BufferSize)
	}

	files := []string{
		"results_baseline.csv",
		"results_scenario1_heatwave.csv",
		"results_scenario2_canopy_loss.csv",
		"results_scenario_combined.csv",
	}
	if len(m.Scenarios) != len(files) {
		t.Fatalf("default scenarios: got %d, want %d", len(m.Scenarios), len(files))
	}
	for i, f := range files {
		if m.Scenarios[i].FileName() != f {
			t.Errorf("scenario %d file: got %q, want %q", i, m.Scenarios[i].FileName(), f)
		}
	}
	if sc := m.ScenarioTypes()[3]; sc.TemperatureOffset != 8 || sc.LightMultiplier != 1.4 || !sc.FreezeBaseline {
		t.Errorf("combined scenario: got %+v", sc)
	}
}

func TestDefault_MatchesEmptyFile(t *testing.T) {
	d := Default()
	if len(d.Modeler.Scenarios) != 4 || d.Modeler.Input.Source != DefaultSource {
		t.Errorf("Default(): got %+v", d.Modeler)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown source", `
modeler:
  input:
    source: telepathy
`},
		{"negative light multiplier", `
modeler:
  scenarios:
    - id: dark
      light_multiplier: -0.5
`},
		{"nan temperature offset", `
modeler:
  scenarios:
    - id: odd
      temperature_offset: .nan
`},
		{"duplicate scenario id", `
modeler:
  scenarios:
    - id: a
    - id: a
`},
		{"missing scenario id", `
modeler:
  scenarios:
    - label: nameless
`},
		{"scrape without endpoint", `
modeler:
  input:
    source: scrape
`},
		{"synthetic low above peak", `
modeler:
  input:
    source: synthetic
    synthetic: {peak_temp: 10, low_temp: 20, start_temp: 15, peak_light: 200, avg_light: 100, count: 10}
`},
		{"unknown server auth mode", `
modeler:
  server_auth:
    mode: magictoken
`},
		{"unknown fallback", `
modeler:
  input:
    fallback: guess
`},
		{"clashing file names", `
modeler:
  scenarios:
    - id: a
      file: out.csv
    - id: b
      file: out.csv
`},
		{"bad yaml", "modeler: [unclosed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := loadStringErr(t, tc.yaml); err == nil {
				t.Fatalf("expected error, got nil")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestBounds_Validate(t *testing.T) {
	valid := Bounds{PeakTemp: 30, LowTemp: 10, StartTemp: 15, PeakLight: 220, AvgLight: 100, Count: 24}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid bounds: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Bounds)
	}{
		{"zero count", func(b *Bounds) { b.Count = 0 }},
		{"huge count", func(b *Bounds) { b.Count = MaxCount + 1 }},
		{"start below low", func(b *Bounds) { b.StartTemp = 5 }},
		{"start above peak", func(b *Bounds) { b.StartTemp = 35 }},
		{"peak too hot", func(b *Bounds) { b.PeakTemp = 90 }},
		{"light above 255", func(b *Bounds) { b.PeakLight = 300 }},
		{"avg above peak light", func(b *Bounds) { b.AvgLight = 230 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := valid
			tc.mutate(&b)
			if err := b.Validate(); err == nil {
				t.Errorf("expected error for %+v", b)
			}
		})
	}
}

func TestAuthConfig_Key(t *testing.T) {
	t.Setenv("FIREWATCH_TEST_KEY", "supersecret")
	a := AuthConfig{Mode: "apikey", KeyEnv: "FIREWATCH_TEST_KEY"}
	if got := a.Key(); got != "supersecret" {
		t.Errorf("Key(): got %q, want %q", got, "supersecret")
	}
	if got := (AuthConfig{}).Key(); got != "" {
		t.Errorf("Key() with no KeyEnv: got %q, want empty", got)
	}
}

func TestAuthConfig_Token(t *testing.T) {
	t.Setenv("FIREWATCH_TEST_TOKEN", "mytoken")
	a := AuthConfig{Mode: "bearer", TokenEnv: "FIREWATCH_TEST_TOKEN"}
	if got := a.Token(); got != "mytoken" {
		t.Errorf("Token(): got %q, want %q", got, "mytoken")
	}
}

func TestAuthConfig_EffectiveHeader(t *testing.T) {
	if got := (AuthConfig{}).EffectiveHeader(); got != "x-api-key" {
		t.Errorf("default header: got %q", got)
	}
	if got := (AuthConfig{Header: "x-site-key"}).EffectiveHeader(); got != "x-site-key" {
		t.Errorf("custom header: got %q", got)
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("modeler:\n  site_id: one\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config) {
			select {
			case got <- c:
			default:
			}
		})
	}()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("modeler:\n  site_id: two\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	// WriteFile truncates first, so an intermediate reload of the empty file
	// may arrive before the final content.
	deadline := time.After(3 * time.Second)
	for reloaded := false; !reloaded; {
		select {
		case c := <-got:
			reloaded = c.Modeler.SiteID == "two"
		case <-deadline:
			t.Fatal("timed out waiting for reload with site_id two")
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
}

// loadFromString writes yaml to a temp file and calls Load, failing on error.
func loadFromString(t *testing.T, content string) *Config {
	t.Helper()
	cfg, err := loadStringErr(t, content)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	return cfg
}

// loadStringErr writes yaml to a temp file and calls Load, returning any error.
func loadStringErr(t *testing.T, content string) (*Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return Load(path)
}
