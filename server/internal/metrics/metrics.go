package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/firewatch/firewatch/pkg/types"
)

type summaryGauge struct {
	vec   *prometheus.GaugeVec
	value func(types.ScenarioSummary) float64
}

// Metrics holds the server collectors and the registry they live in.
type Metrics struct {
	reg *prometheus.Registry

	summaries []summaryGauge
	received  *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	lastSweep *prometheus.GaugeVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates Metrics on a fresh registry. sites and alerts are sampled on
// every scrape; either may be nil.
func New(sites, firing func() int) *Metrics {
	labels := []string{"site", "scenario"}
	gauge := func(name, help string, value func(types.ScenarioSummary) float64) summaryGauge {
		return summaryGauge{
			vec:   prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, labels),
			value: value,
		}
	}

	m := &Metrics{
		reg: prometheus.NewRegistry(),
		summaries: []summaryGauge{
			gauge("firewatch_scenario_avg_risk", "Mean fire risk score over the run (0-4).",
				func(s types.ScenarioSummary) float64 { return s.AvgRisk }),
			gauge("firewatch_scenario_critical_events", "Readings scored at risk 3 or above.",
				func(s types.ScenarioSummary) float64 { return float64(s.CriticalEvents) }),
			gauge("firewatch_scenario_high_light_events", "Readings with light above 170.",
				func(s types.ScenarioSummary) float64 { return float64(s.HighLightEvents) }),
			gauge("firewatch_scenario_peak_risk", "Highest fire risk score observed.",
				func(s types.ScenarioSummary) float64 { return float64(s.PeakRisk) }),
			gauge("firewatch_scenario_peak_temperature_celsius", "Highest adjusted temperature observed.",
				func(s types.ScenarioSummary) float64 { return s.PeakTemp }),
			gauge("firewatch_scenario_final_warning_margin", "Warning margin after the last reading.",
				func(s types.ScenarioSummary) float64 { return float64(s.FinalWarningMargin) }),
			gauge("firewatch_scenario_readings", "Readings scored in the run.",
				func(s types.ScenarioSummary) float64 { return float64(s.Readings) }),
		},
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "firewatch_sweeps_received_total",
			Help: "Sweeps accepted from modelers, by site.",
		}, []string{"site"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "firewatch_sweeps_rejected_total",
			Help: "Sweeps refused before storage, by reason.",
		}, []string{"reason"}),
		lastSweep: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "firewatch_site_last_sweep_timestamp_seconds",
			Help: "Unix time the latest sweep of a site was accepted.",
		}, []string{"site"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "firewatch_http_requests_total",
			Help: "HTTP requests served, by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "firewatch_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	for _, g := range m.summaries {
		m.reg.MustRegister(g.vec)
	}
	m.reg.MustRegister(m.received, m.rejected, m.lastSweep, m.httpRequests, m.httpDuration)
	m.reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if sites != nil {
		m.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "firewatch_sites_live",
			Help: "Sites with a sweep inside the retention TTL.",
		}, func() float64 { return float64(sites()) }))
	}
	if firing != nil {
		m.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "firewatch_alerts_firing",
			Help: "Alerts currently firing.",
		}, func() float64 { return float64(firing()) }))
	}
	return m
}

// ObserveSweep replaces the site's scenario gauges with the sweep's
// summaries. Scenarios missing from sw disappear from the output.
func (m *Metrics) ObserveSweep(sw *types.Sweep, at time.Time) {
	if m == nil || sw == nil {
		return
	}
	for _, g := range m.summaries {
		g.vec.DeletePartialMatch(prometheus.Labels{"site": sw.SiteID})
		for _, r := range sw.Reports {
			g.vec.WithLabelValues(sw.SiteID, r.Scenario.ID).Set(g.value(r.Summary))
		}
	}
	m.received.WithLabelValues(sw.SiteID).Inc()
	m.lastSweep.WithLabelValues(sw.SiteID).Set(float64(at.UnixNano()) / 1e9)
}

// Rejected counts a refused sweep.
func (m *Metrics) Rejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// WrapHandler counts and times requests to next under the given route label.
func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		m.httpRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry for tests and embedding.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.reg
}
