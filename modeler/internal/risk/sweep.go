package risk

import (
	"sync"

	"github.com/firewatch/firewatch/pkg/types"
)

// Standard returns the baseline and the three what-if scenarios every sweep
// runs unless configured otherwise.
func Standard() []types.Scenario {
	return []types.Scenario{
		{ID: types.BaselineID, Label: "Baseline", LightMultiplier: 1},
		{ID: "heatwave", Label: "Heatwave (+8°C, sudden)", TemperatureOffset: 8, LightMultiplier: 1, FreezeBaseline: true},
		{ID: "canopy_loss", Label: "Canopy Loss (light ×1.4)", LightMultiplier: 1.4},
		{ID: "combined", Label: "Combined worst-case", TemperatureOffset: 8, LightMultiplier: 1.4, FreezeBaseline: true},
	}
}

// Run scores one scenario and packages the result. Returns nil for an empty
// series.
func Run(samples []types.Sample, sc types.Scenario) *types.ScenarioReport {
	rows, sum := Score(samples, sc)
	if sum == nil {
		return nil
	}
	return &types.ScenarioReport{Scenario: sc, Summary: *sum, Rows: rows}
}

// RunAll scores every scenario against the same series and returns the
// reports in scenario order. samples is shared read-only between goroutines;
// each scenario owns its own State. An empty series yields nil.
func RunAll(samples []types.Sample, scenarios []types.Scenario) []types.ScenarioReport {
	if len(samples) == 0 || len(scenarios) == 0 {
		return nil
	}

	out := make([]types.ScenarioReport, len(scenarios))
	var wg sync.WaitGroup
	for i, sc := range scenarios {
		wg.Add(1)
		go func(i int, sc types.Scenario) {
			defer wg.Done()
			out[i] = *Run(samples, sc)
		}(i, sc)
	}
	wg.Wait()
	return out
}
