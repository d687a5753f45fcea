package series

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/firewatch/firewatch/modeler/internal/config"
	"github.com/firewatch/firewatch/pkg/types"
)

type promptSource struct {
	in  io.Reader
	out io.Writer
}

func (s *promptSource) Name() string { return "prompt" }

func (s *promptSource) Load(context.Context) ([]types.Sample, error) {
	b, err := Prompt(s.in, s.out)
	if err != nil {
		return nil, err
	}
	slog.Info("series: synthesizing from prompted bounds", "bounds", describeBounds(b))
	return Synthesize(b), nil
}

// Prompt asks for the six synthetic bounds on out and reads answers from in,
// one per line. An answer that does not parse or falls outside its range is
// rejected and the question repeated. Each range depends on earlier answers,
// so the result always passes Bounds.Validate. Running out of input is an
// error.
func Prompt(in io.Reader, out io.Writer) (config.Bounds, error) {
	sc := bufio.NewScanner(in)
	var b config.Bounds
	var err error

	if b.PeakTemp, err = ask(sc, out, "Peak temperature (°C)", config.MinTemp, config.MaxTemp, false); err != nil {
		return b, err
	}
	if b.LowTemp, err = ask(sc, out, "Lowest temperature (°C)", config.MinTemp, b.PeakTemp, false); err != nil {
		return b, err
	}
	if b.StartTemp, err = ask(sc, out, "Starting temperature (°C)", b.LowTemp, b.PeakTemp, false); err != nil {
		return b, err
	}
	if b.PeakLight, err = ask(sc, out, "Peak light level", 0, config.MaxLight, false); err != nil {
		return b, err
	}
	if b.AvgLight, err = ask(sc, out, "Average light level", 0, b.PeakLight, false); err != nil {
		return b, err
	}
	count, err := ask(sc, out, "Number of readings", 1, config.MaxCount, true)
	if err != nil {
		return b, err
	}
	b.Count = int(count)
	return b, nil
}

// ask repeats one question until it gets a number in [lo, hi].
func ask(sc *bufio.Scanner, out io.Writer, question string, lo, hi float64, integer bool) (float64, error) {
	for {
		fmt.Fprintf(out, "%s [%g to %g]: ", question, lo, hi)
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return 0, fmt.Errorf("series: prompt: %w", err)
			}
			return 0, fmt.Errorf("series: prompt: input ended before %q was answered", question)
		}

		text := strings.TrimSpace(sc.Text())
		var v float64
		var err error
		if integer {
			var n int
			n, err = strconv.Atoi(text)
			v = float64(n)
		} else {
			v, err = strconv.ParseFloat(text, 64)
		}
		switch {
		case err != nil || math.IsNaN(v) || math.IsInf(v, 0):
			fmt.Fprintf(out, "  %q is not a valid number, try again.\n", text)
		case v < lo || v > hi:
			fmt.Fprintf(out, "  %g is outside %g to %g, try again.\n", v, lo, hi)
		default:
			return v, nil
		}
	}
}
