package risk

import (
	"math"

	"github.com/firewatch/firewatch/pkg/types"
)

// Smoothing and scoring constants.
const (
	smoothing = 0.1

	// spikeDelta is the excursion above the rolling average worth one point.
	spikeDelta = 2.0

	// criticalSpread separates the critical threshold from the warning threshold.
	criticalSpread = 5

	HighLightLevel = 170
	MaxLight       = 255

	// CriticalRisk is the lowest score counted as a critical event.
	CriticalRisk = 3
	MaxRisk      = 4
)

// Warning margin bounds and adaptation streak lengths.
const (
	InitialWarningMargin = 5
	MinWarningMargin     = types.MinWarningMargin
	MaxWarningMargin     = types.MaxWarningMargin

	alertStreak    = 4
	allClearStreak = 6
)

// State is the evolving scorer state for one scenario run.
// It is a value type; Step never mutates its argument.
type State struct {
	RollingAvg    float64
	WarningMargin int
	AlertCount    int
	AllClearCount int
}

// NewState seeds a run from the raw temperature of the first sample.
// The seed ignores the scenario temperature offset.
func NewState(first types.Sample) State {
	return State{
		RollingAvg:    first.Temperature,
		WarningMargin: InitialWarningMargin,
	}
}

// CriticalMargin is always derived from the warning margin.
func (s State) CriticalMargin() int {
	return s.WarningMargin + criticalSpread
}

// Adjust applies the scenario perturbation to a raw sample.
func Adjust(smp types.Sample, sc types.Scenario) (temp float64, light int) {
	temp = smp.Temperature + sc.TemperatureOffset
	light = clampLight(math.Round(float64(smp.Light) * sc.LightMultiplier))
	return temp, light
}

// Step consumes one sample and returns the next state and the row describing
// this sample.
func Step(st State, smp types.Sample, sc types.Scenario) (State, types.ResultRow) {
	temp, light := Adjust(smp, sc)

	if !sc.FreezeBaseline {
		st.RollingAvg = st.RollingAvg*(1-smoothing) + temp*smoothing
	}

	warning := st.RollingAvg + float64(st.WarningMargin)
	critical := st.RollingAvg + float64(st.CriticalMargin())

	// Points are tested in a fixed order; the temperature tests overlap on
	// purpose so an extreme excursion collects all three.
	risk := 0
	if temp > st.RollingAvg+spikeDelta {
		risk++
	}
	if temp > warning {
		risk++
	}
	if temp > critical {
		risk++
	}
	if light > HighLightLevel {
		risk++
	}

	st = adapt(st, risk)

	return st, types.ResultRow{
		Index:             smp.Index,
		Temperature:       temp,
		Light:             light,
		RollingAvg:        st.RollingAvg,
		WarningThreshold:  warning,
		CriticalThreshold: critical,
		FireRisk:          risk,
		WarningMargin:     st.WarningMargin,
	}
}

// adapt updates the streak counters and the warning margin after a sample
// has been scored. Risk 1 and 2 leave both counters untouched.
func adapt(st State, risk int) State {
	switch {
	case risk >= CriticalRisk:
		st.AlertCount++
		st.AllClearCount = 0
		if st.AlertCount >= alertStreak && st.WarningMargin > MinWarningMargin {
			st.WarningMargin--
		}
	case risk == 0:
		st.AllClearCount++
		st.AlertCount = 0
		if st.AllClearCount >= allClearStreak && st.WarningMargin < MaxWarningMargin {
			st.WarningMargin++
		}
	}
	return st
}

// Score runs one scenario over samples. An empty series yields no rows and a
// nil summary; that is a no-op, not an error.
func Score(samples []types.Sample, sc types.Scenario) ([]types.ResultRow, *types.ScenarioSummary) {
	if len(samples) == 0 {
		return nil, nil
	}

	st := NewState(samples[0])
	rows := make([]types.ResultRow, 0, len(samples))
	for _, smp := range samples {
		var row types.ResultRow
		st, row = Step(st, smp, sc)
		rows = append(rows, row)
	}
	return rows, Summarize(sc.Label, rows)
}

// Summarize reduces result rows into a scenario summary.
// Returns nil when rows is empty.
func Summarize(label string, rows []types.ResultRow) *types.ScenarioSummary {
	if len(rows) == 0 {
		return nil
	}

	sum := &types.ScenarioSummary{
		Label:    label,
		Readings: len(rows),
		PeakTemp: rows[0].Temperature,
	}
	var total int
	for _, r := range rows {
		total += r.FireRisk
		if r.FireRisk >= CriticalRisk {
			sum.CriticalEvents++
		}
		if r.Light > HighLightLevel {
			sum.HighLightEvents++
		}
		if r.FireRisk > sum.PeakRisk {
			sum.PeakRisk = r.FireRisk
		}
		if r.Temperature > sum.PeakTemp {
			sum.PeakTemp = r.Temperature
		}
	}
	sum.AvgRisk = float64(total) / float64(len(rows))
	sum.FinalWarningMargin = rows[len(rows)-1].WarningMargin
	return sum
}

// clampLight restricts an already-rounded light level to 0–255.
func clampLight(v float64) int {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > MaxLight {
		return MaxLight
	}
	return int(v)
}
