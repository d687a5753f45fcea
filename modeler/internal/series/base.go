package series

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/firewatch/firewatch/modeler/internal/config"
	"github.com/firewatch/firewatch/pkg/types"
)

// Source is the common interface implemented by every series provider.
type Source interface {
	// Load returns the full series. An empty series is valid.
	Load(ctx context.Context) ([]types.Sample, error)

	// Name describes the provider for logs and the shipped sweep.
	Name() string
}

// New returns the Source selected by in.Source.
func New(in config.Input) (Source, error) {
	switch in.Source {
	case "csv":
		src := &csvSource{path: in.CSVPath}
		if in.Fallback == "simulate" {
			src.fallback = newSimulateSource(in.Simulate)
		}
		return src, nil
	case "synthetic":
		if err := in.Synthetic.Validate(); err != nil {
			return nil, fmt.Errorf("series: synthetic: %w", err)
		}
		return &synthSource{bounds: in.Synthetic}, nil
	case "simulate":
		return newSimulateSource(in.Simulate), nil
	case "scrape":
		return newScrapeSource(in.Scrape), nil
	case "prompt":
		return &promptSource{in: os.Stdin, out: os.Stdout}, nil
	default:
		return nil, fmt.Errorf("series: unsupported source %q", in.Source)
	}
}

// authRoundTripper injects authentication headers into every outgoing request.
type authRoundTripper struct {
	base http.RoundTripper
	auth config.AuthConfig
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	switch t.auth.Mode {
	case "apikey":
		req = req.Clone(req.Context())
		req.Header.Set(t.auth.EffectiveHeader(), t.auth.Key())
	case "bearer":
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+t.auth.Token())
	}
	return t.base.RoundTrip(req)
}

// clampLight restricts a light reading to the sensor's 0–255 range.
func clampLight(v int) int {
	if v < 0 {
		return 0
	}
	if v > config.MaxLight {
		return config.MaxLight
	}
	return v
}

// truncLight truncates a fractional light reading toward zero and clamps it.
func truncLight(v float64) int {
	if v <= 0 {
		return 0
	}
	if v >= config.MaxLight {
		return config.MaxLight
	}
	return int(v)
}
