// Package risk implements the adaptive wildfire risk scorer.
//
// risk.go holds the per-sample state machine. Step is a pure transition
// (State, Sample, Scenario) → (State, ResultRow); Score folds it left to right
// over a series and Summarize reduces the rows into a ScenarioSummary.
//
// Per sample:
//
//	temp  = sample.temperature + offset
//	light = clamp(round(sample.light * multiplier), 0, 255)
//	avg   = avg*0.9 + temp*0.1                 (skipped when the baseline is frozen)
//	risk  = [temp > avg+2] + [temp > avg+warn] + [temp > avg+warn+5] + [light > 170]
//
// After scoring, four consecutive readings at risk ≥3 tighten the warning
// margin by one (floor 2) and six consecutive all-clear readings relax it by
// one (ceiling 7). Readings at risk 1 or 2 touch neither streak.
//
// sweep.go runs a set of scenarios over one shared series. Scenarios run
// concurrently, each with its own freshly seeded State.
package risk
