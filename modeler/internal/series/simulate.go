package series

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/firewatch/firewatch/modeler/internal/config"
	"github.com/firewatch/firewatch/pkg/types"
)

type simulateSource struct {
	count int
	seed  int64
}

func newSimulateSource(cfg config.SimulateConfig) *simulateSource {
	count := cfg.Count
	if count <= 0 {
		count = config.DefaultSimulateCount
	}
	return &simulateSource{count: count, seed: cfg.Seed}
}

func (s *simulateSource) Name() string { return fmt.Sprintf("simulate:%d", s.count) }

// Load generates a fresh day cycle. A zero seed draws a new one every call.
func (s *simulateSource) Load(context.Context) ([]types.Sample, error) {
	seed := s.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return Simulate(s.count, rand.New(rand.NewSource(seed))), nil //nolint:gosec // not crypto
}

// Simulate spreads n readings across one 24-hour day.
//
// Temperature follows 15 + 10·sin(π(h−6)/12) with ±1.5 uniform noise, so it
// bottoms out before dawn and peaks mid-afternoon. Light follows the sun
// between 06:00 and 20:00 (100 + 155·sin(π(h−6)/14)) and is 0–20 at night.
func Simulate(n int, rng *rand.Rand) []types.Sample {
	out := make([]types.Sample, 0, n)
	for i := 0; i < n; i++ {
		hour := float64(i) / float64(n) * 24

		base := 15 + 10*math.Sin(math.Pi*(hour-6)/12)
		temp := roundTenth(base + (rng.Float64()*3 - 1.5))

		var light int
		if hour >= 6 && hour <= 20 {
			light = int(100 + 155*math.Sin(math.Pi*(hour-6)/14))
		} else {
			light = rng.Intn(21)
		}

		out = append(out, types.Sample{
			Index:       i + 1,
			Temperature: temp,
			Light:       clampLight(light),
		})
	}
	return out
}
