package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/firewatch/firewatch/modeler/internal/risk"
	"github.com/firewatch/firewatch/pkg/types"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultSiteID        = "site-1"
	DefaultSource        = "csv"
	DefaultCSVPath       = "microbit_log.csv"
	DefaultSimulateCount = 120
	DefaultOutputDir     = "."
	DefaultBufferSize    = 100
	DefaultScrapeTimeout = 10 * time.Second

	DefaultTemperatureMetric = "firewatch_sensor_temperature_celsius"
	DefaultLightMetric       = "firewatch_sensor_light_level"
	DefaultIndexLabel        = "reading"
)

// Config is the top-level configuration. Only the `modeler:` section is read
// here; the `server:` section of the same file belongs to the server binary.
type Config struct {
	Modeler ModelerConfig `yaml:"modeler"`
}

// ModelerConfig holds all modeler-side settings.
type ModelerConfig struct {
	// SiteID names the monitoring site this series comes from. It keys the
	// sweep on the server and labels exported metrics.
	SiteID string `yaml:"site_id"`

	// Input selects and configures the series provider.
	Input Input `yaml:"input"`

	// Output controls where result files are written.
	Output Output `yaml:"output"`

	// Scenarios is the what-if sweep. Empty means the standard four.
	Scenarios []Scenario `yaml:"scenarios"`

	// Interval re-runs the sweep periodically in watch mode. Zero disables it.
	Interval time.Duration `yaml:"interval"`

	// ServerEndpoint is the gRPC address of the dashboard server (host:port).
	// Empty disables shipping.
	ServerEndpoint string `yaml:"server_endpoint"`

	// ServerAuth configures how the modeler authenticates to the server.
	ServerAuth AuthConfig `yaml:"server_auth"`

	// BufferSize is the maximum number of sweeps held while the server is
	// unreachable.
	BufferSize int `yaml:"buffer_size"`
}

// Input describes where the sample series comes from.
type Input struct {
	// Source is one of: csv | synthetic | simulate | scrape | prompt.
	Source string `yaml:"source"`

	// CSVPath is the micro:bit data-logger export read when Source == "csv".
	CSVPath string `yaml:"csv_path"`

	// Fallback is used when the CSV file does not exist: simulate | none.
	Fallback string `yaml:"fallback"`

	Synthetic Bounds         `yaml:"synthetic"`
	Simulate  SimulateConfig `yaml:"simulate"`
	Scrape    ScrapeConfig   `yaml:"scrape"`
}

// Bounds are the six scalars a synthetic series is fitted through.
type Bounds struct {
	PeakTemp  float64 `yaml:"peak_temp"`
	LowTemp   float64 `yaml:"low_temp"`
	StartTemp float64 `yaml:"start_temp"`
	PeakLight float64 `yaml:"peak_light"`
	AvgLight  float64 `yaml:"avg_light"`
	Count     int     `yaml:"count"`
}

// SimulateConfig controls the day-cycle simulator.
type SimulateConfig struct {
	Count int   `yaml:"count"`
	Seed  int64 `yaml:"seed"`
}

// ScrapeConfig describes a sensor gateway exposing readings in the
// Prometheus text format.
type ScrapeConfig struct {
	// Endpoint is the full URL of the gateway's metrics endpoint.
	Endpoint string `yaml:"endpoint"`

	TemperatureMetric string `yaml:"temperature_metric"`
	LightMetric       string `yaml:"light_metric"`

	// IndexLabel is the label carrying the 1-based reading index.
	IndexLabel string `yaml:"index_label"`

	Timeout time.Duration `yaml:"timeout"`

	Auth AuthConfig `yaml:"auth"`
}

// Output controls result file locations.
type Output struct {
	// Dir receives one CSV file per scenario.
	Dir string `yaml:"dir"`

	// Textfile, when set, receives a Prometheus textfile with the summaries.
	Textfile string `yaml:"textfile"`
}

// Scenario is the YAML form of a what-if scenario.
type Scenario struct {
	ID                string  `yaml:"id"`
	Label             string  `yaml:"label"`
	TemperatureOffset float64 `yaml:"temperature_offset"`

	// LightMultiplier defaults to 1 when omitted.
	LightMultiplier *float64 `yaml:"light_multiplier"`
	FreezeBaseline  bool     `yaml:"freeze_baseline"`

	// File overrides the CSV file name. Defaults to results_<id>.csv.
	File string `yaml:"file"`
}

// ToType converts the YAML scenario into the shared scorer type.
func (s Scenario) ToType() types.Scenario {
	mult := 1.0
	if s.LightMultiplier != nil {
		mult = *s.LightMultiplier
	}
	label := s.Label
	if label == "" {
		label = s.ID
	}
	return types.Scenario{
		ID:                s.ID,
		Label:             label,
		TemperatureOffset: s.TemperatureOffset,
		LightMultiplier:   mult,
		FreezeBaseline:    s.FreezeBaseline,
	}
}

// FileName returns the CSV file name for this scenario's result rows.
func (s Scenario) FileName() string {
	if s.File != "" {
		return s.File
	}
	return "results_" + s.ID + ".csv"
}

// AuthConfig specifies how to authenticate to a remote endpoint.
type AuthConfig struct {
	// Mode is one of: apikey | bearer | none.
	Mode string `yaml:"mode"`

	// Header is the header (or gRPC metadata key) carrying the API key.
	// Defaults to "x-api-key".
	Header string `yaml:"header"`

	// KeyEnv is the name of the environment variable that holds the key value.
	KeyEnv string `yaml:"key_env"`

	// TokenEnv is the name of the environment variable that holds the bearer token.
	TokenEnv string `yaml:"token_env"`
}

// Key returns the API key value resolved from the environment.
// Returns empty string if KeyEnv is unset or the variable is not found.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// Token returns the bearer token value resolved from the environment.
func (a AuthConfig) Token() string {
	if a.TokenEnv == "" {
		return ""
	}
	return os.Getenv(a.TokenEnv)
}

// EffectiveHeader returns the configured header name, or "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "x-api-key"
}

// standardFiles keeps the historical result file names of the standard sweep.
var standardFiles = map[string]string{
	types.BaselineID: "results_baseline.csv",
	"heatwave":       "results_scenario1_heatwave.csv",
	"canopy_loss":    "results_scenario2_canopy_loss.csv",
	"combined":       "results_scenario_combined.csv",
}

// standardScenarios returns risk.Standard in its YAML form.
func standardScenarios() []Scenario {
	std := risk.Standard()
	out := make([]Scenario, len(std))
	for i, sc := range std {
		mult := sc.LightMultiplier
		out[i] = Scenario{
			ID:                sc.ID,
			Label:             sc.Label,
			TemperatureOffset: sc.TemperatureOffset,
			LightMultiplier:   &mult,
			FreezeBaseline:    sc.FreezeBaseline,
			File:              standardFiles[sc.ID],
		}
	}
	return out
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML document.
func Parse(data []byte) (*Config, error) {
	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	applyLateDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration used when no config file is supplied.
func Default() *Config {
	cfg := defaults()
	applyLateDefaults(cfg)
	return cfg
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Modeler: ModelerConfig{
			SiteID: DefaultSiteID,
			Input: Input{
				Source:   DefaultSource,
				CSVPath:  DefaultCSVPath,
				Fallback: "simulate",
				Simulate: SimulateConfig{Count: DefaultSimulateCount},
				Scrape: ScrapeConfig{
					TemperatureMetric: DefaultTemperatureMetric,
					LightMetric:       DefaultLightMetric,
					IndexLabel:        DefaultIndexLabel,
					Timeout:           DefaultScrapeTimeout,
				},
			},
			Output:     Output{Dir: DefaultOutputDir},
			BufferSize: DefaultBufferSize,
		},
	}
}

// applyLateDefaults fills in defaults that YAML cannot pre-populate, such as
// list contents.
func applyLateDefaults(cfg *Config) {
	if len(cfg.Modeler.Scenarios) == 0 {
		cfg.Modeler.Scenarios = standardScenarios()
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	m := cfg.Modeler
	if m.SiteID == "" {
		return fmt.Errorf("modeler.site_id is required")
	}
	if m.Interval < 0 {
		return fmt.Errorf("modeler.interval must not be negative")
	}
	if m.BufferSize <= 0 {
		return fmt.Errorf("modeler.buffer_size must be positive")
	}

	switch m.Input.Source {
	case "csv":
		if m.Input.CSVPath == "" {
			return fmt.Errorf("modeler.input.csv_path is required for source csv")
		}
		switch m.Input.Fallback {
		case "simulate", "none", "":
		default:
			return fmt.Errorf("modeler.input.fallback %q unknown: want simulate|none", m.Input.Fallback)
		}
	case "synthetic":
		if err := m.Input.Synthetic.Validate(); err != nil {
			return fmt.Errorf("modeler.input.synthetic: %w", err)
		}
	case "simulate":
		if m.Input.Simulate.Count <= 0 {
			return fmt.Errorf("modeler.input.simulate.count must be positive")
		}
	case "scrape":
		if m.Input.Scrape.Endpoint == "" {
			return fmt.Errorf("modeler.input.scrape.endpoint is required for source scrape")
		}
		if m.Input.Scrape.Timeout <= 0 {
			return fmt.Errorf("modeler.input.scrape.timeout must be positive")
		}
		if err := validateAuthMode("modeler.input.scrape.auth", m.Input.Scrape.Auth.Mode, "bearer"); err != nil {
			return err
		}
	case "prompt":
	default:
		return fmt.Errorf("modeler.input.source %q unknown: want csv|synthetic|simulate|scrape|prompt", m.Input.Source)
	}

	if err := validateAuthMode("modeler.server_auth", m.ServerAuth.Mode); err != nil {
		return err
	}

	seen := make(map[string]bool, len(m.Scenarios))
	files := make(map[string]bool, len(m.Scenarios))
	for i, sc := range m.Scenarios {
		if sc.ID == "" {
			return fmt.Errorf("scenarios[%d]: id is required", i)
		}
		if seen[sc.ID] {
			return fmt.Errorf("scenarios[%d]: duplicate id %q", i, sc.ID)
		}
		seen[sc.ID] = true
		if math.IsNaN(sc.TemperatureOffset) || math.IsInf(sc.TemperatureOffset, 0) {
			return fmt.Errorf("scenarios[%d] %q: temperature_offset must be finite", i, sc.ID)
		}
		if sc.LightMultiplier != nil && (*sc.LightMultiplier < 0 || math.IsNaN(*sc.LightMultiplier) || math.IsInf(*sc.LightMultiplier, 0)) {
			return fmt.Errorf("scenarios[%d] %q: light_multiplier must be finite and not negative", i, sc.ID)
		}
		if files[sc.FileName()] {
			return fmt.Errorf("scenarios[%d] %q: file %q already used", i, sc.ID, sc.FileName())
		}
		files[sc.FileName()] = true
	}
	return nil
}

// validateAuthMode accepts apikey, none, empty, plus any extra modes.
func validateAuthMode(field, mode string, extra ...string) error {
	switch mode {
	case "apikey", "none", "":
		return nil
	}
	for _, e := range extra {
		if mode == e {
			return nil
		}
	}
	return fmt.Errorf("%s.mode %q unknown", field, mode)
}

// Validate checks that the bounds describe a series that can be synthesized.
func (b Bounds) Validate() error {
	switch {
	case b.Count < 1 || b.Count > MaxCount:
		return fmt.Errorf("count %d out of range [1, %d]", b.Count, MaxCount)
	case b.LowTemp < MinTemp || b.PeakTemp > MaxTemp:
		return fmt.Errorf("temperatures must lie in [%g, %g]", float64(MinTemp), float64(MaxTemp))
	case b.LowTemp > b.PeakTemp:
		return fmt.Errorf("low_temp %g above peak_temp %g", b.LowTemp, b.PeakTemp)
	case b.StartTemp < b.LowTemp || b.StartTemp > b.PeakTemp:
		return fmt.Errorf("start_temp %g outside [%g, %g]", b.StartTemp, b.LowTemp, b.PeakTemp)
	case b.AvgLight < 0 || b.PeakLight > MaxLight:
		return fmt.Errorf("light levels must lie in [0, %d]", MaxLight)
	case b.AvgLight > b.PeakLight:
		return fmt.Errorf("avg_light %g above peak_light %g", b.AvgLight, b.PeakLight)
	}
	return nil
}

// Synthetic series limits.
const (
	MinTemp  = -50
	MaxTemp  = 60
	MaxLight = 255
	MaxCount = 10000
)

// ScenarioTypes returns the configured scenarios as scorer types, in order.
func (m ModelerConfig) ScenarioTypes() []types.Scenario {
	out := make([]types.Scenario, len(m.Scenarios))
	for i, sc := range m.Scenarios {
		out[i] = sc.ToType()
	}
	return out
}
