package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/firewatch/firewatch/modeler/internal/risk"
	"github.com/firewatch/firewatch/pkg/types"
)

const width = 60

// Separator prints a full-width rule made of char.
func Separator(w io.Writer, char string) {
	fmt.Fprintln(w, strings.Repeat(char, width))
}

// PrintSummary prints one scenario's summary block.
func PrintSummary(w io.Writer, s *types.ScenarioSummary) {
	if s == nil {
		fmt.Fprintln(w, "\n  No readings processed.")
		return
	}
	fmt.Fprintf(w, "\n  Scenario:             %s\n", s.Label)
	fmt.Fprintf(w, "  Readings processed:   %d\n", s.Readings)
	fmt.Fprintf(w, "  Average risk score:   %.2f / %d (%s)\n", s.AvgRisk, risk.MaxRisk, types.RiskLabel(roundRisk(s.AvgRisk)))
	fmt.Fprintf(w, "  Critical events:      %d  (risk ≥ %d)\n", s.CriticalEvents, risk.CriticalRisk)
	fmt.Fprintf(w, "  High light events:    %d  (light > %d)\n", s.HighLightEvents, risk.HighLightLevel)
	fmt.Fprintf(w, "  Peak temperature:     %.1f°C\n", s.PeakTemp)
	fmt.Fprintf(w, "  Peak risk score:      %d / %d (%s)\n", s.PeakRisk, risk.MaxRisk, types.RiskLabel(s.PeakRisk))
	fmt.Fprintf(w, "  Final warning margin: %d°C  (adapted from %d°C)\n", s.FinalWarningMargin, risk.InitialWarningMargin)
}

// PrintComparison prints how scenario moved against baseline.
func PrintComparison(w io.Writer, baseline, scenario *types.ScenarioSummary) {
	if baseline == nil || scenario == nil {
		return
	}
	fmt.Fprintf(w, "\n  Impact of '%s' vs %s:\n", scenario.Label, baseline.Label)
	fmt.Fprintf(w, "     Average risk change:    %+.2f\n", scenario.AvgRisk-baseline.AvgRisk)
	fmt.Fprintf(w, "     Critical events change: %+d\n", scenario.CriticalEvents-baseline.CriticalEvents)
	fmt.Fprintf(w, "     Peak temperature:       %.1f°C  (was %.1f°C, Δ %+.1f°C)\n",
		scenario.PeakTemp, baseline.PeakTemp, scenario.PeakTemp-baseline.PeakTemp)
}

// PrintTable prints the final comparison table, one line per report with a
// summary.
func PrintTable(w io.Writer, reports []types.ScenarioReport) {
	Separator(w, "═")
	fmt.Fprintln(w, "\n  FINAL COMPARISON TABLE")
	Separator(w, "─")
	fmt.Fprintf(w, "  %-30s %10s %10s %12s\n", "Scenario", "Avg Risk", "Critical", "Peak Temp")
	Separator(w, "─")
	for _, r := range reports {
		s := r.Summary
		fmt.Fprintf(w, "  %-30s %10.2f %10d %9.1f°C\n", s.Label, s.AvgRisk, s.CriticalEvents, s.PeakTemp)
	}
	Separator(w, "═")
}

// PrintSweep prints every summary, each scenario's impact against the
// baseline, and the comparison table.
func PrintSweep(w io.Writer, sweep *types.Sweep) {
	Separator(w, "═")
	fmt.Fprintln(w, "  WILDFIRE RISK MODEL: adaptive scoring under what-if scenarios")
	fmt.Fprintf(w, "  Site: %s   Source: %s   Readings: %d\n", sweep.SiteID, sweep.Source, sweep.Readings)
	Separator(w, "═")

	if len(sweep.Reports) == 0 {
		fmt.Fprintln(w, "\n  No readings to score.")
		return
	}

	base := sweep.Baseline()
	for i := range sweep.Reports {
		r := &sweep.Reports[i]
		PrintSummary(w, &r.Summary)
		if r != base {
			PrintComparison(w, &base.Summary, &r.Summary)
		}
		Separator(w, "─")
	}
	PrintTable(w, sweep.Reports)
}

func roundRisk(avg float64) int {
	return int(avg + 0.5)
}
