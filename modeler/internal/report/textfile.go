package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/firewatch/firewatch/pkg/types"
)

// gauge is one exported summary field.
type gauge struct {
	name  string
	help  string
	value func(types.ScenarioSummary) float64
}

var gauges = []gauge{
	{"firewatch_scenario_avg_risk", "Mean fire risk score over the run (0-4).",
		func(s types.ScenarioSummary) float64 { return s.AvgRisk }},
	{"firewatch_scenario_critical_events", "Readings scored at risk 3 or above.",
		func(s types.ScenarioSummary) float64 { return float64(s.CriticalEvents) }},
	{"firewatch_scenario_high_light_events", "Readings with light above 170.",
		func(s types.ScenarioSummary) float64 { return float64(s.HighLightEvents) }},
	{"firewatch_scenario_peak_risk", "Highest fire risk score observed.",
		func(s types.ScenarioSummary) float64 { return float64(s.PeakRisk) }},
	{"firewatch_scenario_peak_temperature_celsius", "Highest adjusted temperature observed.",
		func(s types.ScenarioSummary) float64 { return s.PeakTemp }},
	{"firewatch_scenario_final_warning_margin", "Warning margin after the last reading.",
		func(s types.ScenarioSummary) float64 { return float64(s.FinalWarningMargin) }},
	{"firewatch_scenario_readings", "Readings scored in the run.",
		func(s types.ScenarioSummary) float64 { return float64(s.Readings) }},
}

// MetricFamilies converts the sweep summaries into gauge families, sorted by
// name.
func MetricFamilies(sweep *types.Sweep) []*dto.MetricFamily {
	out := make([]*dto.MetricFamily, 0, len(gauges))
	for _, g := range gauges {
		mf := &dto.MetricFamily{
			Name: proto.String(g.name),
			Help: proto.String(g.help),
			Type: dto.MetricType_GAUGE.Enum(),
		}
		for _, r := range sweep.Reports {
			mf.Metric = append(mf.Metric, &dto.Metric{
				Label: []*dto.LabelPair{
					{Name: proto.String("scenario"), Value: proto.String(r.Scenario.ID)},
					{Name: proto.String("site"), Value: proto.String(sweep.SiteID)},
				},
				Gauge: &dto.Gauge{Value: proto.Float64(g.value(r.Summary))},
			})
		}
		out = append(out, mf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GetName() < out[j].GetName() })
	return out
}

// WriteTextfile writes the sweep summaries to path in the Prometheus text
// format. The file is written to a temporary name in the same directory and
// renamed into place, so a collector never reads a partial file.
func WriteTextfile(path string, sweep *types.Sweep) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("report: textfile: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	enc := expfmt.NewEncoder(tmp, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range MetricFamilies(sweep) {
		if err := enc.Encode(mf); err != nil {
			tmp.Close()
			return fmt.Errorf("report: textfile: encode %s: %w", mf.GetName(), err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("report: textfile: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("report: textfile: %w", err)
	}
	return nil
}
