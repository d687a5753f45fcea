package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/firewatch/firewatch/pkg/types"
)

func sweep(site string, reports ...types.ScenarioReport) *types.Sweep {
	return &types.Sweep{ID: site + "-1", SiteID: site, Reports: reports}
}

func report(id string, avg float64, critical int) types.ScenarioReport {
	return types.ScenarioReport{
		Scenario: types.Scenario{ID: id, Label: id, LightMultiplier: 1},
		Summary: types.ScenarioSummary{
			Label: id, Readings: 10, AvgRisk: avg, CriticalEvents: critical,
			PeakRisk: 3, PeakTemp: 31.5, FinalWarningMargin: 4,
		},
	}
}

func family(t *testing.T, m *Metrics, name string) *dto.MetricFamily {
	t.Helper()
	mfs, err := m.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

// value returns the sample of family name whose labels match want.
func value(t *testing.T, m *Metrics, name string, want map[string]string) (float64, bool) {
	t.Helper()
	mf := family(t, m, name)
	if mf == nil {
		return 0, false
	}
next:
	for _, metric := range mf.GetMetric() {
		for k, v := range want {
			if labelValue(metric, k) != v {
				continue next
			}
		}
		switch {
		case metric.GetGauge() != nil:
			return metric.GetGauge().GetValue(), true
		case metric.GetCounter() != nil:
			return metric.GetCounter().GetValue(), true
		}
	}
	return 0, false
}

func TestObserveSweep_SetsScenarioGauges(t *testing.T) {
	m := New(nil, nil)
	at := time.Unix(1_750_000_000, 0)
	m.ObserveSweep(sweep("ridge", report("baseline", 1.25, 2), report("heatwave", 2.5, 6)), at)

	cases := []struct {
		name     string
		scenario string
		want     float64
	}{
		{"firewatch_scenario_avg_risk", "baseline", 1.25},
		{"firewatch_scenario_avg_risk", "heatwave", 2.5},
		{"firewatch_scenario_critical_events", "heatwave", 6},
		{"firewatch_scenario_peak_temperature_celsius", "baseline", 31.5},
		{"firewatch_scenario_final_warning_margin", "baseline", 4},
		{"firewatch_scenario_readings", "heatwave", 10},
	}
	for _, tc := range cases {
		got, ok := value(t, m, tc.name, map[string]string{"site": "ridge", "scenario": tc.scenario})
		if !ok {
			t.Errorf("%s{scenario=%s}: missing", tc.name, tc.scenario)
			continue
		}
		if got != tc.want {
			t.Errorf("%s{scenario=%s}: got %v, want %v", tc.name, tc.scenario, got, tc.want)
		}
	}

	if got, _ := value(t, m, "firewatch_sweeps_received_total", map[string]string{"site": "ridge"}); got != 1 {
		t.Errorf("received: got %v, want 1", got)
	}
	if got, _ := value(t, m, "firewatch_site_last_sweep_timestamp_seconds", map[string]string{"site": "ridge"}); got != 1_750_000_000 {
		t.Errorf("last sweep: got %v", got)
	}
}

func TestObserveSweep_DropsVanishedScenarios(t *testing.T) {
	m := New(nil, nil)
	m.ObserveSweep(sweep("ridge", report("baseline", 1, 0), report("drought", 2, 3)), time.Now())
	m.ObserveSweep(sweep("canyon", report("drought", 3, 9)), time.Now())
	m.ObserveSweep(sweep("ridge", report("baseline", 0.5, 0)), time.Now())

	if _, ok := value(t, m, "firewatch_scenario_avg_risk", map[string]string{"site": "ridge", "scenario": "drought"}); ok {
		t.Error("ridge drought gauge should be gone after a sweep without it")
	}
	if got, ok := value(t, m, "firewatch_scenario_avg_risk", map[string]string{"site": "canyon", "scenario": "drought"}); !ok || got != 3 {
		t.Errorf("canyon drought: got %v (present %v), want 3", got, ok)
	}
	if got, _ := value(t, m, "firewatch_sweeps_received_total", map[string]string{"site": "ridge"}); got != 2 {
		t.Errorf("ridge received: got %v, want 2", got)
	}
}

func TestRejected(t *testing.T) {
	m := New(nil, nil)
	m.Rejected("missing_site")
	m.Rejected("missing_site")
	m.Rejected("no_reports")

	if got, _ := value(t, m, "firewatch_sweeps_rejected_total", map[string]string{"reason": "missing_site"}); got != 2 {
		t.Errorf("missing_site: got %v, want 2", got)
	}
}

func TestGaugeFuncs(t *testing.T) {
	m := New(func() int { return 3 }, func() int { return 1 })
	if got, ok := value(t, m, "firewatch_sites_live", nil); !ok || got != 3 {
		t.Errorf("sites_live: got %v (present %v), want 3", got, ok)
	}
	if got, ok := value(t, m, "firewatch_alerts_firing", nil); !ok || got != 1 {
		t.Errorf("alerts_firing: got %v (present %v), want 1", got, ok)
	}
	if family(t, New(nil, nil), "firewatch_sites_live") != nil {
		t.Error("sites_live registered without a source")
	}
}

func TestWrapHandler(t *testing.T) {
	m := New(nil, nil)
	h := m.WrapHandler("/api/v1/sites", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("missing") != "" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("ok")) //nolint:errcheck
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/sites", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/sites?missing=1", nil))

	for status, want := range map[string]float64{"200": 1, "404": 1} {
		got, _ := value(t, m, "firewatch_http_requests_total", map[string]string{"route": "/api/v1/sites", "status": status})
		if got != want {
			t.Errorf("status %s: got %v, want %v", status, got, want)
		}
	}
}

func TestHandler_ServesExposition(t *testing.T) {
	m := New(nil, nil)
	m.ObserveSweep(sweep("ridge", report("baseline", 1, 0)), time.Now())

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	want := `firewatch_scenario_avg_risk{scenario="baseline",site="ridge"} 1`
	if !strings.Contains(string(body), want) {
		t.Errorf("exposition missing %q", want)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveSweep(sweep("ridge", report("baseline", 1, 0)), time.Now())
	m.Rejected("x")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	if h := m.WrapHandler("/", next); h == nil {
		t.Error("WrapHandler on nil returned nil")
	}
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("nil Handler status: got %d, want 404", rr.Code)
	}
}
