package series

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/firewatch/firewatch/modeler/internal/config"
	"github.com/firewatch/firewatch/pkg/types"
)

// gatewayMetrics is a sensor gateway exposition. Reading 3 has no light gauge
// and reading "x" has no usable index; both are dropped.
const gatewayMetrics = `
# HELP firewatch_sensor_temperature_celsius Logged temperature per reading.
# TYPE firewatch_sensor_temperature_celsius gauge
firewatch_sensor_temperature_celsius{reading="2"} 21.5
firewatch_sensor_temperature_celsius{reading="1"} 21
firewatch_sensor_temperature_celsius{reading="3"} 22
firewatch_sensor_temperature_celsius{reading="x"} 99
firewatch_sensor_temperature_celsius{reading="10"} 24

# HELP firewatch_sensor_light_level Logged light level per reading.
# TYPE firewatch_sensor_light_level gauge
firewatch_sensor_light_level{reading="1"} 87
firewatch_sensor_light_level{reading="2"} 301
firewatch_sensor_light_level{reading="x"} 10
firewatch_sensor_light_level{reading="10"} 12.7

# HELP unrelated_total Something else on the same endpoint.
# TYPE unrelated_total counter
unrelated_total 4
`

func scrapeConfig(endpoint string) config.ScrapeConfig {
	return config.ScrapeConfig{
		Endpoint:          endpoint,
		TemperatureMetric: config.DefaultTemperatureMetric,
		LightMetric:       config.DefaultLightMetric,
		IndexLabel:        config.DefaultIndexLabel,
		Timeout:           5 * time.Second,
	}
}

func TestScrapeSource_Load(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_, _ = w.Write([]byte(gatewayMetrics))
	}))
	defer srv.Close()

	got, err := newScrapeSource(scrapeConfig(srv.URL)).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []types.Sample{
		{Index: 1, Temperature: 21, Light: 87},
		{Index: 2, Temperature: 21.5, Light: 255},
		{Index: 10, Temperature: 24, Light: 12},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestScrapeSource_APIKey(t *testing.T) {
	t.Setenv("FIREWATCH_GATEWAY_KEY", "s3cret")

	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Gateway-Key")
		_, _ = w.Write([]byte(gatewayMetrics))
	}))
	defer srv.Close()

	cfg := scrapeConfig(srv.URL)
	cfg.Auth = config.AuthConfig{Mode: "apikey", Header: "X-Gateway-Key", KeyEnv: "FIREWATCH_GATEWAY_KEY"}
	if _, err := newScrapeSource(cfg).Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if gotKey != "s3cret" {
		t.Errorf("gateway saw key %q, want s3cret", gotKey)
	}
}

func TestScrapeSource_Bearer(t *testing.T) {
	t.Setenv("FIREWATCH_GATEWAY_TOKEN", "tok")

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(gatewayMetrics))
	}))
	defer srv.Close()

	cfg := scrapeConfig(srv.URL)
	cfg.Auth = config.AuthConfig{Mode: "bearer", TokenEnv: "FIREWATCH_GATEWAY_TOKEN"}
	if _, err := newScrapeSource(cfg).Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok")
	}
}

func TestScrapeSource_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newScrapeSource(scrapeConfig(srv.URL)).Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Errorf("Load() error = %v, want status 503", err)
	}
}

func TestParseExposition_Malformed(t *testing.T) {
	_, err := ParseExposition(strings.NewReader("# TYPE foo gauge\n# TYPE foo counter\nfoo 1\n"), "a", "b", "reading")
	if err == nil {
		t.Error("expected parse error")
	}
}

func TestParseExposition_NoMatchingMetrics(t *testing.T) {
	got, err := ParseExposition(strings.NewReader("other_metric 1\n"), "a", "b", "reading")
	if err != nil {
		t.Fatalf("ParseExposition() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d samples, want 0", len(got))
	}
}
