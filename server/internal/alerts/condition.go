package alerts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/firewatch/firewatch/pkg/types"
)

// condition is a parsed "field op value" expression.
type condition struct {
	field     string
	op        string
	threshold float64
}

// Fields usable in a rule condition, all taken from types.ScenarioSummary.
var summaryFields = map[string]func(types.ScenarioSummary) float64{
	"avg_risk":             func(s types.ScenarioSummary) float64 { return s.AvgRisk },
	"critical_events":      func(s types.ScenarioSummary) float64 { return float64(s.CriticalEvents) },
	"high_light_events":    func(s types.ScenarioSummary) float64 { return float64(s.HighLightEvents) },
	"peak_risk":            func(s types.ScenarioSummary) float64 { return float64(s.PeakRisk) },
	"peak_temp":            func(s types.ScenarioSummary) float64 { return s.PeakTemp },
	"final_warning_margin": func(s types.ScenarioSummary) float64 { return float64(s.FinalWarningMargin) },
	"readings":             func(s types.ScenarioSummary) float64 { return float64(s.Readings) },
}

// parseCondition parses expressions such as
//
//	critical_events >= 5
//	avg_risk > 2.5
//	final_warning_margin <= 2
//	peak_temp > 40
func parseCondition(expr string) (condition, error) {
	parts := strings.Fields(expr)
	if len(parts) != 3 {
		return condition{}, fmt.Errorf("condition %q: want \"field op value\"", expr)
	}
	c := condition{field: parts[0], op: parts[1]}

	if _, ok := summaryFields[c.field]; !ok {
		return condition{}, fmt.Errorf("condition %q: unknown field %q", expr, c.field)
	}
	switch c.op {
	case ">", ">=", "<", "<=", "==":
	default:
		return condition{}, fmt.Errorf("condition %q: unknown operator %q", expr, c.op)
	}
	v, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return condition{}, fmt.Errorf("condition %q: threshold: %w", expr, err)
	}
	c.threshold = v
	return c, nil
}

// eval reports whether the summary satisfies the condition and the value it
// was compared on.
func (c condition) eval(s types.ScenarioSummary) (bool, float64) {
	v := summaryFields[c.field](s)
	return compareFloat(v, c.op, c.threshold), v
}

func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
