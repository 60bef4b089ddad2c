package tevc

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/maorshutman/lm"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// restartFractions place restarts of bounded parameters inside their range.
var restartFractions = []float64{1.0 / 2, 1.0 / 8, 1.0 / 32, 1.0 / 128}

// Bound limits a parameter during solving. Either side may be infinite.
type Bound struct {
	Min, Max float64
}

func (b Bound) lower() bool { return !math.IsInf(b.Min, -1) }
func (b Bound) upper() bool { return !math.IsInf(b.Max, 1) }

// toExternal maps the solver's unconstrained value onto the bounded range.
func (b Bound) toExternal(p float64) float64 {
	switch {
	case b.lower() && b.upper():
		return b.Min + (math.Sin(p)+1)*(b.Max-b.Min)/2
	case b.lower():
		return b.Min - 1 + math.Sqrt(p*p+1)
	case b.upper():
		return b.Max + 1 - math.Sqrt(p*p+1)
	}
	return p
}

func (b Bound) toInternal(x float64) float64 {
	switch {
	case b.lower() && b.upper():
		return math.Asin(2*(x-b.Min)/(b.Max-b.Min) - 1)
	case b.lower():
		return math.Sqrt((x-b.Min+1)*(x-b.Min+1) - 1)
	case b.upper():
		return math.Sqrt((b.Max-x+1)*(b.Max-x+1) - 1)
	}
	return x
}

// interior pulls a starting value strictly inside the range, where the
// transform still has a usable gradient.
func (b Bound) interior(x float64) float64 {
	if b.lower() && b.upper() {
		span := b.Max - b.Min
		switch {
		case math.IsNaN(x) || math.IsInf(x, 0):
			return b.Min + span/2
		case x <= b.Min:
			return b.Min + span*1e-3
		case x >= b.Max:
			return b.Max - span*1e-3
		}
		return x
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		switch {
		case b.lower():
			return b.Min + 1
		case b.upper():
			return b.Max - 1
		}
		return 0
	}
	if b.lower() && x <= b.Min {
		return b.Min + 1e-3
	}
	if b.upper() && x >= b.Max {
		return b.Max - 1e-3
	}
	return x
}

// Solver fits one model to observed samples by least squares.
type Solver struct {
	X          []float64
	Observed   []float64
	Weights    []float64 // multiplies each residual; nil means unity
	Initial    Model
	Bounds     map[int]Bound // keyed by free-parameter index
	Method     Method
	Iterations int
}

func NewSolver(x, observed []float64, initial Model) *Solver {
	return &Solver{X: x, Observed: observed, Initial: initial, Method: LevenbergMarquardt, Iterations: 1000}
}

// residuals writes weighted model-minus-data residuals of m into dst.
func (s *Solver) residuals(dst []float64, m Model) {
	for i, t := range s.X {
		d := m.Eval(t) - s.Observed[i]
		if s.Weights != nil {
			d *= s.Weights[i]
		}
		dst[i] = d
	}
}

func (s *Solver) toExternal(p []float64) []float64 {
	x := make([]float64, len(p))
	copy(x, p)
	for i, b := range s.Bounds {
		x[i] = b.toExternal(p[i])
	}
	return x
}

func (s *Solver) toInternal(x []float64) []float64 {
	p := make([]float64, len(x))
	copy(p, x)
	for i, b := range s.Bounds {
		p[i] = b.toInternal(x[i])
	}
	return p
}

// Solve runs the minimizer from the initial model and from restarts of every
// bounded parameter, and keeps the run with the lowest chi-square.
func (s *Solver) Solve() (*FitResult, error) {
	if len(s.X) != len(s.Observed) {
		return nil, &ShapeMismatchError{Want: len(s.X), Got: len(s.Observed)}
	}
	if s.Weights != nil && len(s.Weights) != len(s.X) {
		return nil, &ShapeMismatchError{Want: len(s.X), Got: len(s.Weights)}
	}
	names, init, _ := freeParams(s.Initial)
	if len(s.X) <= len(names) {
		return nil, fmt.Errorf("%s fit with %d samples: %w", s.Initial.Kind(), len(s.X), ErrInsufficientData)
	}

	var (
		best    []float64
		bestChi = math.Inf(1)
		lastErr error
		resid   = make([]float64, len(s.X))
	)
	for i, start := range s.startingPoints(init) {
		x, err := s.solveFrom(start)
		if err != nil {
			log.Printf("%s solve from %v failed: %v", s.Method, start, err)
			lastErr = err
			continue
		}
		s.residuals(resid, withFree(s.Initial, x))
		chi := floats.Dot(resid, resid)
		if chi < bestChi {
			best, bestChi = x, chi
		}
		log.Printf("iter: %d start: %v chi: %.6e best: %.6e", i, start, chi, bestChi)
	}
	if best == nil {
		if lastErr == nil {
			lastErr = errors.New("no finite chi-square")
		}
		return nil, fmt.Errorf("%s fit did not converge: %w", s.Initial.Kind(), lastErr)
	}
	return s.result(names, best)
}

func (s *Solver) startingPoints(init []float64) [][]float64 {
	base := make([]float64, len(init))
	for i, v := range init {
		if b, ok := s.Bounds[i]; ok {
			base[i] = b.interior(v)
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			log.Printf("WARNING: initial value %d is %v, starting from 0", i, v)
			v = 0
		}
		base[i] = v
	}
	starts := [][]float64{base}

	ranged := false
	for _, b := range s.Bounds {
		ranged = ranged || (b.lower() && b.upper())
	}
	if !ranged {
		return starts
	}
	for _, f := range restartFractions {
		p := make([]float64, len(base))
		copy(p, base)
		for i, b := range s.Bounds {
			if b.lower() && b.upper() {
				p[i] = b.Min + f*(b.Max-b.Min)
			}
		}
		starts = append(starts, p)
	}
	return starts
}

func (s *Solver) solveFrom(start []float64) ([]float64, error) {
	p0 := s.toInternal(start)
	fnc := func(dst, p []float64) {
		s.residuals(dst, withFree(s.Initial, s.toExternal(p)))
	}

	var (
		p   []float64
		err error
	)
	if s.Method == NelderMead {
		p, err = s.nmSolve(fnc, p0)
	} else {
		p, err = s.lmSolve(fnc, p0)
	}
	if err != nil {
		return nil, err
	}
	x := s.toExternal(p)
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite parameters %v", x)
		}
	}
	return x, nil
}

func (s *Solver) lmSolve(fnc func(dst, p []float64), p0 []float64) (p []float64, err error) {
	jac := lm.NumJac{Func: fnc}

	problem := lm.LMProblem{
		Dim:        len(p0),
		Size:       len(s.X),
		Func:       fnc,
		Jac:        jac.Jac,
		InitParams: p0,
		Tau:        1e-6,
		Eps1:       1e-8,
		Eps2:       1e-8,
	}

	// Recover from LM panics (e.g., singular matrix)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("levenberg-marquardt panicked: %v", r)
		}
	}()

	res, err := lm.LM(problem, &lm.Settings{Iterations: s.Iterations, ObjectiveTol: 1e-16})
	if err != nil {
		return nil, err
	}
	return res.X, nil
}

func (s *Solver) nmSolve(fnc func(dst, p []float64), p0 []float64) ([]float64, error) {
	resid := make([]float64, len(s.X))
	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			fnc(resid, p)
			return floats.Dot(resid, resid)
		},
	}

	settings := &optimize.Settings{
		MajorIterations: s.Iterations * 10,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-14,
			Relative:   1e-12,
			Iterations: 200,
		},
	}

	res, err := optimize.Minimize(problem, p0, settings, &optimize.NelderMead{})
	if err != nil {
		if res == nil || res.Status != optimize.IterationLimit {
			return nil, err
		}
		log.Printf("WARNING: nelder-mead stopped at the iteration limit, f=%.6e", res.F)
	}
	return res.X, nil
}

// result evaluates the goodness of fit of the best parameters.
func (s *Solver) result(names []string, x []float64) (*FitResult, error) {
	best := withFree(s.Initial, x)
	nData, nFree := len(s.X), len(x)

	bestFit := Reconstruct(s.X, best)
	var chi float64
	if s.Weights == nil {
		var err error
		if chi, err = ChiSq(s.Observed, bestFit); err != nil {
			return nil, err
		}
	} else {
		resid := make([]float64, nData)
		s.residuals(resid, best)
		chi = floats.Dot(resid, resid)
	}
	redchi := chi / float64(nData-nFree)

	return &FitResult{
		Model:     best,
		Initial:   s.Initial,
		Names:     names,
		Stderr:    s.stderr(best, x, redchi),
		ChiSquare: chi,
		RedChi:    redchi,
		RSquared:  stat.RSquaredFrom(bestFit, s.Observed, nil),
		NData:     nData,
		NFree:     nFree,
		Method:    s.Method,
		X:         append([]float64(nil), s.X...),
		Y:         append([]float64(nil), s.Observed...),
		BestFit:   bestFit,
		InitFit:   Reconstruct(s.X, s.Initial),
	}, nil
}

// stderr estimates parameter uncertainties from the covariance
// (JᵀJ)⁻¹·redchi, with J the residual Jacobian at the optimum.
func (s *Solver) stderr(best Model, x []float64, redchi float64) []float64 {
	out := make([]float64, len(x))
	for i := range out {
		out[i] = math.NaN()
	}

	f := func(dst, p []float64) { s.residuals(dst, withFree(best, p)) }
	jac := mat.NewDense(len(s.X), len(x), nil)
	fd.Jacobian(jac, f, x, nil)

	var jtj mat.SymDense
	jtj.SymOuterK(1, jac.T())
	var cov mat.Dense
	if err := cov.Inverse(&jtj); err != nil {
		log.Printf("WARNING: covariance unavailable for %s fit: %v", best.Kind(), err)
		return out
	}
	for i := range out {
		out[i] = math.Sqrt(cov.At(i, i) * redchi)
	}
	return out
}

// ChiSq is the sum of squared differences between observed and calculated.
func ChiSq(observed, calculated []float64) (float64, error) {
	if len(observed) != len(calculated) {
		return 0, &ShapeMismatchError{Want: len(observed), Got: len(calculated)}
	}
	d := make([]float64, len(observed))
	floats.SubTo(d, calculated, observed)
	return floats.Dot(d, d), nil
}
