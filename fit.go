package tevc

import (
	"fmt"
	"log"
)

// FitOptions carries per-request inputs of the fit engine.
type FitOptions struct {
	// Shift anchors from-zero models: the response starts at this time.
	Shift float64
	// Weights multiply the residuals; nil means unity.
	Weights []float64
}

// Fitter runs guess, solve and the quality gate for one window at a time.
// It holds no state between calls.
type Fitter struct {
	Settings Settings
}

func NewFitter(settings Settings) *Fitter {
	return &Fitter{Settings: settings}
}

// Fit fits the model family kind to (x, y).
//
// Linear families are accepted unconditionally. Exponential families are
// bounded in tau and gated on the reduced chi-square: a rejected fit falls
// back to a linear fit of the same samples, which is accepted unless it is
// even worse, in which case a *FitQualityError is returned.
func (f *Fitter) Fit(x, y []float64, kind Kind, opts FitOptions) (*FitResult, error) {
	switch kind {
	case KindLinear, KindLinearFromZero:
		initial, err := f.guess(x, y, kind, opts)
		if err != nil {
			return nil, err
		}
		return f.solve(x, y, initial, opts)
	case KindExponential, KindExponentialFromZero:
		return f.fitGated(x, y, kind, opts)
	}
	return nil, &UnsupportedModelError{Tag: kind.String()}
}

// FitModel solves from explicit starting values without a quality gate.
// It is the entry point for models without a guesser, such as BiExponential.
func (f *Fitter) FitModel(x, y []float64, initial Model, opts FitOptions) (*FitResult, error) {
	return f.solve(x, y, initial, opts)
}

func (f *Fitter) fitGated(x, y []float64, kind Kind, opts FitOptions) (*FitResult, error) {
	initial, err := f.guess(x, y, kind, opts)
	if err != nil {
		return nil, err
	}
	expFit, err := f.solve(x, y, initial, opts)
	if err != nil {
		return nil, err
	}
	if expFit.RedChi <= f.Settings.ChiSqThreshold {
		return expFit, nil
	}

	log.Printf("WARNING: reduced chi of the %s fit is %.6g (> %g), trying linear fit...",
		kind, expFit.RedChi, f.Settings.ChiSqThreshold)
	linFit, err := f.Fit(x, y, KindLinear, FitOptions{Weights: opts.Weights})
	if err != nil {
		return nil, fmt.Errorf("linear fallback: %w", err)
	}
	if linFit.RedChi > expFit.RedChi {
		return nil, &FitQualityError{ExponentialRedChi: expFit.RedChi, LinearRedChi: linFit.RedChi}
	}
	linFit.Rejected = expFit
	return linFit, nil
}

// guess computes starting values. From-zero families are guessed on the
// samples at or after the shift, measured from the shift.
func (f *Fitter) guess(x, y []float64, kind Kind, opts FitOptions) (Model, error) {
	g := Guesser{Extrapolation: f.Settings.Extrapolation}
	if kind != KindLinearFromZero && kind != KindExponentialFromZero {
		return g.Guess(x, y, kind)
	}

	var xs, ys []float64
	for i, t := range x {
		if t >= opts.Shift {
			xs = append(xs, t-opts.Shift)
			ys = append(ys, y[i])
		}
	}
	m, err := g.Guess(xs, ys, kind)
	if err != nil {
		return nil, err
	}
	return withShift(m, opts.Shift), nil
}

func (f *Fitter) solve(x, y []float64, initial Model, opts FitOptions) (*FitResult, error) {
	s := NewSolver(x, y, initial)
	s.Weights = opts.Weights
	s.Method = f.Settings.Method
	if f.Settings.Iterations > 0 {
		s.Iterations = f.Settings.Iterations
	}

	_, _, taus := freeParams(initial)
	if len(taus) > 0 {
		lo, hi := f.Settings.TauMin, f.Settings.TauMax
		if !(hi > lo) {
			return nil, fmt.Errorf("invalid tau bounds [%v, %v]", lo, hi)
		}
		s.Bounds = make(map[int]Bound, len(taus))
		for _, i := range taus {
			s.Bounds[i] = Bound{Min: lo, Max: hi}
		}
	}
	return s.Solve()
}
