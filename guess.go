package tevc

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// Guesser computes closed-form starting values for the solver.
type Guesser struct {
	// Extrapolation is how many times the last window time the steady state
	// is extrapolated to.
	Extrapolation float64
}

// Guess uses the default extrapolation factor.
func Guess(x, y []float64, kind Kind) (Model, error) {
	return Guesser{Extrapolation: DefaultSettings().Extrapolation}.Guess(x, y, kind)
}

// Guess returns a model of the requested kind holding starting values.
// From-zero models come back with a zero shift. A flat signal makes the
// exponential tau non-finite; it is returned as-is.
func (g Guesser) Guess(x, y []float64, kind Kind) (Model, error) {
	if len(x) != len(y) {
		return nil, &ShapeMismatchError{Want: len(x), Got: len(y)}
	}
	if len(x) < 2 {
		return nil, fmt.Errorf("guess %s: %w", kind, ErrInsufficientData)
	}
	last := x[len(x)-1]

	switch kind {
	case KindLinear:
		m, y0, err := linearGuess(x, y)
		if err != nil {
			return nil, err
		}
		return Linear{M: m, Y0: y0}, nil
	case KindLinearFromZero:
		m, err := linearFromZeroGuess(x, y)
		if err != nil {
			return nil, err
		}
		return LinearFromZero{M: m}, nil
	case KindExponential:
		slope, y0, err := linearGuess(x, y)
		if err != nil {
			return nil, err
		}
		ySS := slope*g.Extrapolation*last + y0
		return Exponential{Y0: y0, YSS: ySS, Tau: (ySS - y0) / slope}, nil
	case KindExponentialFromZero:
		slope, err := linearFromZeroGuess(x, y)
		if err != nil {
			return nil, err
		}
		ySS := slope * g.Extrapolation * last
		return ExponentialFromZero{YSS: ySS, Tau: ySS / slope}, nil
	}
	return nil, &UnsupportedModelError{Tag: kind.String()}
}

// LinearEstimates holds the pieces of the linear guess.
type LinearEstimates struct {
	Slope float64
	// Intercepts are y0 estimated from the first sample, the first sample of
	// the second half and the last sample.
	Intercepts [3]float64
}

func (e LinearEstimates) Intercept() float64 {
	return (e.Intercepts[0] + e.Intercepts[1] + e.Intercepts[2]) / 3
}

// EstimateLinear splits the sample into two contiguous halves (the first half
// takes the odd sample) and estimates the slope from the difference of their
// means.
func EstimateLinear(x, y []float64) (LinearEstimates, error) {
	var est LinearEstimates
	if len(x) != len(y) {
		return est, &ShapeMismatchError{Want: len(x), Got: len(y)}
	}
	if len(x) < 2 {
		return est, ErrInsufficientData
	}
	half := (len(x) + 1) / 2

	x1, err := stats.Mean(x[:half])
	if err != nil {
		return est, err
	}
	x2, err := stats.Mean(x[half:])
	if err != nil {
		return est, err
	}
	y1, err := stats.Mean(y[:half])
	if err != nil {
		return est, err
	}
	y2, err := stats.Mean(y[half:])
	if err != nil {
		return est, err
	}

	m := (y2 - y1) / (x2 - x1)
	n := len(x) - 1
	est.Slope = m
	est.Intercepts = [3]float64{
		y[0] - m*x[0],
		y[half] - m*x[half],
		y[n] - m*x[n],
	}
	return est, nil
}

func linearGuess(x, y []float64) (m, y0 float64, err error) {
	est, err := EstimateLinear(x, y)
	if err != nil {
		return 0, 0, err
	}
	return est.Slope, est.Intercept(), nil
}

func linearFromZeroGuess(x, y []float64) (float64, error) {
	mx, err := stats.Mean(x)
	if err != nil {
		return 0, err
	}
	my, err := stats.Mean(y)
	if err != nil {
		return 0, err
	}
	return my / mx, nil
}
