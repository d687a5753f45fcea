package series

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sort"
	"strconv"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/firewatch/firewatch/modeler/internal/config"
	"github.com/firewatch/firewatch/pkg/types"
)

// scrapeSource pulls a series from a sensor gateway that exposes one gauge
// sample per reading, e.g.
//
//	firewatch_sensor_temperature_celsius{reading="1"} 21.4
//	firewatch_sensor_light_level{reading="1"} 87
type scrapeSource struct {
	cfg    config.ScrapeConfig
	client *http.Client
}

func newScrapeSource(cfg config.ScrapeConfig) *scrapeSource {
	transport := http.DefaultTransport
	if cfg.Auth.Mode != "" && cfg.Auth.Mode != "none" {
		transport = &authRoundTripper{base: transport, auth: cfg.Auth}
	}
	return &scrapeSource{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout, Transport: transport},
	}
}

func (s *scrapeSource) Name() string { return "scrape:" + s.cfg.Endpoint }

// Load fetches the endpoint and joins the temperature and light gauges on the
// index label. Readings missing either gauge, or with a non-numeric index, are
// dropped. The result is sorted by index.
func (s *scrapeSource) Load(ctx context.Context) ([]types.Sample, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: build request: %w", s.cfg.Endpoint, err)
	}
	req.Header.Set("Accept", "text/plain;version=0.0.4")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", s.cfg.Endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrape %s: unexpected status %d", s.cfg.Endpoint, resp.StatusCode)
	}

	samples, err := ParseExposition(resp.Body, s.cfg.TemperatureMetric, s.cfg.LightMetric, s.cfg.IndexLabel)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", s.cfg.Endpoint, err)
	}
	slog.Info("series: scraped readings", "endpoint", s.cfg.Endpoint, "count", len(samples))
	return samples, nil
}

// ParseExposition decodes Prometheus text exposition and builds samples from
// the two named gauges.
func ParseExposition(r io.Reader, tempMetric, lightMetric, indexLabel string) ([]types.Sample, error) {
	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(r)
	if err != nil {
		return nil, fmt.Errorf("parse exposition: %w", err)
	}

	temps := gaugeByIndex(families[tempMetric], indexLabel)
	lights := gaugeByIndex(families[lightMetric], indexLabel)

	out := make([]types.Sample, 0, len(temps))
	for idx, temp := range temps {
		light, ok := lights[idx]
		if !ok || math.IsNaN(temp) || math.IsInf(temp, 0) || math.IsNaN(light) {
			continue
		}
		out = append(out, types.Sample{Index: idx, Temperature: temp, Light: truncLight(light)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

// gaugeByIndex maps index label value → gauge (or untyped) value.
func gaugeByIndex(mf *dto.MetricFamily, indexLabel string) map[int]float64 {
	out := make(map[int]float64)
	if mf == nil {
		return out
	}
	for _, m := range mf.GetMetric() {
		idx, ok := indexOf(m, indexLabel)
		if !ok {
			continue
		}
		switch {
		case m.GetGauge() != nil:
			out[idx] = m.GetGauge().GetValue()
		case m.GetUntyped() != nil:
			out[idx] = m.GetUntyped().GetValue()
		}
	}
	return out
}

func indexOf(m *dto.Metric, label string) (int, bool) {
	for _, lp := range m.GetLabel() {
		if lp.GetName() != label {
			continue
		}
		idx, err := strconv.Atoi(lp.GetValue())
		if err != nil || idx < 1 {
			return 0, false
		}
		return idx, true
	}
	return 0, false
}
