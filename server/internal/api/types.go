package api

import "github.com/firewatch/firewatch/pkg/types"

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	// State is the risk label of the worst baseline peak across live sites,
	// or "unknown" when no site has reported.
	State               string `json:"state"`
	SiteCount           int    `json:"site_count"`
	WorstBaselineRisk   int    `json:"worst_baseline_risk"`
	TotalCriticalEvents int    `json:"total_critical_events"`
	AlertCount          int    `json:"alert_count"`
}

// SiteResponse is one site in GET /api/v1/sites or GET /api/v1/sites/{id}.
type SiteResponse struct {
	SiteID      string             `json:"site_id"`
	SweepID     string             `json:"sweep_id"`
	Source      string             `json:"source"`
	GeneratedAt string             `json:"generated_at"` // RFC3339
	Readings    int                `json:"readings"`
	RiskLabel   string             `json:"risk_label"`
	Scenarios   []ScenarioResponse `json:"scenarios"`
	Insights    []Insight          `json:"insights"`
	LastSeen    string             `json:"last_seen"` // RFC3339
}

// ScenarioResponse is one scenario's summary plus its deltas against the
// baseline. Deltas are zero for the baseline itself.
type ScenarioResponse struct {
	types.Scenario
	Summary             types.ScenarioSummary `json:"summary"`
	AvgRiskLabel        string                `json:"avg_risk_label"`
	DeltaAvgRisk        float64               `json:"delta_avg_risk"`
	DeltaCriticalEvents int                   `json:"delta_critical_events"`
	DeltaPeakTemp       float64               `json:"delta_peak_temp"`
}

// RowsResponse is the payload for GET /api/v1/sites/{id}/rows.
type RowsResponse struct {
	SiteID   string            `json:"site_id"`
	Scenario string            `json:"scenario"`
	Rows     []types.ResultRow `json:"rows"`
}

// SnapshotResponse is the payload for GET /api/v1/snapshot and the data of
// every WebSocket broadcast.
type SnapshotResponse struct {
	Sites       []SiteResponse `json:"sites"`
	GeneratedAt string         `json:"generated_at"` // RFC3339
}

type errorResponse struct {
	Error string `json:"error"`
}
