package types

import "time"

// BaselineID is the scenario ID of the unmodified run every other scenario is
// compared against.
const BaselineID = "baseline"

// Warning margin bounds in °C. The scorer adapts the margin within this range;
// readers of a ResultRow or summary can treat either end as saturated.
const (
	MinWarningMargin = 2
	MaxWarningMargin = 7
)

// Sample is one input observation from the sensor series.
type Sample struct {
	// Index is 1-based and strictly increasing across a series.
	Index       int     `json:"index"`
	Temperature float64 `json:"temperature"`
	// Light is clamped to [0, 255] by whoever produced the sample.
	Light int `json:"light"`
}

// Scenario is one what-if configuration applied to a series.
type Scenario struct {
	// ID is a stable slug used in file names, metric labels and alert filters.
	ID string `json:"id"`

	// Label is a human-readable name; the scorer never interprets it.
	Label string `json:"label"`

	// TemperatureOffset is added to every sample temperature.
	TemperatureOffset float64 `json:"temperature_offset"`

	// LightMultiplier scales every sample light value before clamping to 255.
	LightMultiplier float64 `json:"light_multiplier"`

	// FreezeBaseline pins the rolling average at its seed for the whole run.
	FreezeBaseline bool `json:"freeze_baseline"`
}

// ResultRow is the scorer output for one sample.
type ResultRow struct {
	Index             int     `json:"index"`
	Temperature       float64 `json:"temperature"`
	Light             int     `json:"light"`
	RollingAvg        float64 `json:"rolling_avg"`
	WarningThreshold  float64 `json:"warning_threshold"`
	CriticalThreshold float64 `json:"critical_threshold"`
	FireRisk          int     `json:"fire_risk"`
	WarningMargin     int     `json:"warning_margin"`
}

// ScenarioSummary aggregates every ResultRow of one scenario run.
type ScenarioSummary struct {
	Label              string  `json:"label"`
	Readings           int     `json:"readings"`
	AvgRisk            float64 `json:"avg_risk"`
	CriticalEvents     int     `json:"critical_events"`
	HighLightEvents    int     `json:"high_light_events"`
	PeakRisk           int     `json:"peak_risk"`
	PeakTemp           float64 `json:"peak_temp"`
	FinalWarningMargin int     `json:"final_warning_margin"`
}

// ScenarioReport is the full output of one scenario run.
type ScenarioReport struct {
	Scenario Scenario        `json:"scenario"`
	Summary  ScenarioSummary `json:"summary"`
	Rows     []ResultRow     `json:"rows,omitempty"`
}

// Sweep is every scenario run over one input series, as shipped from the
// modeler to the server.
type Sweep struct {
	ID          string           `json:"id"`
	SiteID      string           `json:"site_id"`
	Source      string           `json:"source"`
	GeneratedAt time.Time        `json:"generated_at"`
	Readings    int              `json:"readings"`
	Reports     []ScenarioReport `json:"reports"`
}

// Baseline returns the baseline report, or the first report when no scenario
// carries BaselineID. Returns nil for a sweep without reports.
func (s *Sweep) Baseline() *ScenarioReport {
	if s == nil || len(s.Reports) == 0 {
		return nil
	}
	for i := range s.Reports {
		if s.Reports[i].Scenario.ID == BaselineID {
			return &s.Reports[i]
		}
	}
	return &s.Reports[0]
}

// Report returns the report for the given scenario ID.
func (s *Sweep) Report(scenarioID string) (*ScenarioReport, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Reports {
		if s.Reports[i].Scenario.ID == scenarioID {
			return &s.Reports[i], true
		}
	}
	return nil, false
}

// riskLabels names each fire risk score 0–4.
var riskLabels = [...]string{"Safe", "Low", "Moderate", "High", "Critical"}

// RiskLabel returns the display name for a fire risk score. Scores above 4
// are reported as Critical, negative scores as Safe.
func RiskLabel(score int) string {
	if score < 0 {
		score = 0
	}
	if score >= len(riskLabels) {
		score = len(riskLabels) - 1
	}
	return riskLabels[score]
}
