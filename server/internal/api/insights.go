package api

import (
	"fmt"
	"sort"

	"github.com/firewatch/firewatch/pkg/types"
)

// Insight is one short, ranked hint about a site's sweep. The dashboard shows
// Title on a chip and Detail on hover.
type Insight struct {
	// Key is stable and machine-readable.
	Key string `json:"key"`
	// Level is "critical" | "warning" | "info" | "ok".
	Level  string   `json:"level"`
	Title  string   `json:"title"`
	Detail string   `json:"detail"`
	Value  *float64 `json:"value,omitempty"`
}

// highLightShare is the fraction of high-light readings worth flagging.
const highLightShare = 0.25

var levelRank = map[string]int{"critical": 0, "warning": 1, "info": 2, "ok": 3}

// computeInsights derives hints from a sweep, critical first.
func computeInsights(sw *types.Sweep) []Insight {
	base := sw.Baseline()
	if base == nil {
		return []Insight{{
			Key:    "no_readings",
			Level:  "info",
			Title:  "No readings",
			Detail: "The modeler published a sweep without any scored readings. Check the series source.",
		}}
	}
	bs := base.Summary
	var hints []Insight

	if bs.CriticalEvents > 0 {
		v := float64(bs.CriticalEvents)
		hints = append(hints, Insight{
			Key:   "baseline_critical",
			Level: "critical",
			Title: fmt.Sprintf("%d critical readings", bs.CriticalEvents),
			Detail: fmt.Sprintf(
				"%d of %d unmodified readings scored 3 or higher, peaking at %.1f°C. "+
					"Conditions on site already reach critical fire risk without any what-if adjustment.",
				bs.CriticalEvents, bs.Readings, bs.PeakTemp),
			Value: &v,
		})
	}

	switch bs.FinalWarningMargin {
	case types.MinWarningMargin:
		v := float64(bs.FinalWarningMargin)
		hints = append(hints, Insight{
			Key:   "margin_floor",
			Level: "warning",
			Title: "Margin at floor",
			Detail: fmt.Sprintf(
				"Sustained high risk tightened the warning margin to its %d°C minimum. "+
					"The scorer cannot become any more sensitive.", types.MinWarningMargin),
			Value: &v,
		})
	case types.MaxWarningMargin:
		v := float64(bs.FinalWarningMargin)
		hints = append(hints, Insight{
			Key:   "margin_ceiling",
			Level: "info",
			Title: "Margin relaxed",
			Detail: fmt.Sprintf(
				"A long calm stretch relaxed the warning margin to its %d°C maximum. "+
					"A sudden spike will need to climb further before it warns.", types.MaxWarningMargin),
			Value: &v,
		})
	}

	for _, r := range sw.Reports {
		if r.Scenario.ID == base.Scenario.ID {
			continue
		}
		s := r.Summary
		if s.CriticalEvents == 0 || s.CriticalEvents < 2*bs.CriticalEvents {
			continue
		}
		v := float64(s.CriticalEvents)
		hints = append(hints, Insight{
			Key:   "amplified_" + r.Scenario.ID,
			Level: "warning",
			Title: fmt.Sprintf("%s amplifies risk", s.Label),
			Detail: fmt.Sprintf(
				"Under %s the site logs %d critical readings against %d in the baseline "+
					"(average risk %.2f vs %.2f).",
				s.Label, s.CriticalEvents, bs.CriticalEvents, s.AvgRisk, bs.AvgRisk),
			Value: &v,
		})
	}

	if bs.Readings > 0 {
		share := float64(bs.HighLightEvents) / float64(bs.Readings)
		if share >= highLightShare {
			v := share * 100
			hints = append(hints, Insight{
				Key:   "high_light",
				Level: "info",
				Title: fmt.Sprintf("%.0f%% high light", v),
				Detail: fmt.Sprintf(
					"%d of %d readings exceed light level 170. Open canopy lets direct sun dry out fuel.",
					bs.HighLightEvents, bs.Readings),
				Value: &v,
			})
		}
	}

	if len(hints) == 0 {
		hints = append(hints, Insight{
			Key:    "calm",
			Level:  "ok",
			Title:  "Calm conditions",
			Detail: "No critical readings and no scenario doubles the baseline's critical events.",
		})
	}

	sort.SliceStable(hints, func(i, j int) bool {
		return levelRank[hints[i].Level] < levelRank[hints[j].Level]
	})
	return hints
}
