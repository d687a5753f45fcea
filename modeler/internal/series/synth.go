package series

import (
	"context"
	"fmt"
	"math"

	"github.com/firewatch/firewatch/modeler/internal/config"
	"github.com/firewatch/firewatch/pkg/types"
)

type synthSource struct {
	bounds config.Bounds
}

func (s *synthSource) Name() string { return "synthetic" }

func (s *synthSource) Load(context.Context) ([]types.Sample, error) {
	return Synthesize(s.bounds), nil
}

// Synthesize fits a smooth series through the given bounds.
//
// Temperature follows one full sine period between LowTemp and PeakTemp. The
// phase is solved from the arcsine of StartTemp's normalized position so the
// first reading equals StartTemp:
//
//	mid   = (peak + low) / 2
//	amp   = (peak - low) / 2
//	phase = asin((start - mid) / amp)
//	t[i]  = mid + amp*sin(phase + 2πi/count)      rounded to 0.1
//
// Light rises from AvgLight to PeakLight and back over a half-sine envelope:
//
//	l[i] = avg + (peak - avg)*sin(πi/(count-1))   rounded, clamped to [0, 255]
//
// Callers are expected to have validated b; Synthesize returns nil for a
// non-positive count.
func Synthesize(b config.Bounds) []types.Sample {
	if b.Count <= 0 {
		return nil
	}

	mid := (b.PeakTemp + b.LowTemp) / 2
	amp := (b.PeakTemp - b.LowTemp) / 2
	var phase float64
	if amp > 0 {
		phase = math.Asin(clampUnit((b.StartTemp - mid) / amp))
	}

	out := make([]types.Sample, b.Count)
	for i := range out {
		angle := phase + 2*math.Pi*float64(i)/float64(b.Count)
		temp := mid + amp*math.Sin(angle)

		light := b.AvgLight
		if b.Count > 1 {
			light += (b.PeakLight - b.AvgLight) * math.Sin(math.Pi*float64(i)/float64(b.Count-1))
		}

		out[i] = types.Sample{
			Index:       i + 1,
			Temperature: roundTenth(temp),
			Light:       clampLight(int(math.Round(light))),
		}
	}
	return out
}

// describeBounds renders the bounds for logs.
func describeBounds(b config.Bounds) string {
	return fmt.Sprintf("temp %.1f..%.1f start %.1f, light avg %.0f peak %.0f, %d readings",
		b.LowTemp, b.PeakTemp, b.StartTemp, b.AvgLight, b.PeakLight, b.Count)
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
