package tevc

import (
	"fmt"
	"math"
	"strings"
)

// FitResult is the outcome of one least-squares fit. It is not modified
// after the fit engine returns it.
type FitResult struct {
	Model   Model
	Initial Model
	// Names and Stderr describe the free parameters, in solver order.
	Names  []string
	Stderr []float64

	ChiSquare float64
	RedChi    float64
	RSquared  float64
	NData     int
	NFree     int
	Method    Method

	// X and Y are the fitted samples; BestFit and InitFit the model values
	// at X for the best and the starting parameters.
	X, Y    []float64
	BestFit []float64
	InitFit []float64

	// Rejected is the exponential fit that failed the quality gate when
	// this result is its linear fallback.
	Rejected *FitResult
}

func (r *FitResult) Kind() Kind {
	return r.Model.Kind()
}

// Values maps parameter names to best-fit values.
func (r *FitResult) Values() map[string]float64 {
	out := make(map[string]float64)
	for _, p := range r.Model.Params() {
		out[p.Name] = p.Value
	}
	return out
}

// Residuals returns data minus best fit.
func (r *FitResult) Residuals() []float64 {
	out := make([]float64, len(r.Y))
	for i := range r.Y {
		out[i] = r.Y[i] - r.BestFit[i]
	}
	return out
}

// Report is a plain-text summary in the layout of a classic fit report.
func (r *FitResult) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[[Model]]\n    %s\n", r.Kind())
	fmt.Fprintf(&b, "[[Fit Statistics]]\n")
	fmt.Fprintf(&b, "    # fitting method   = %s\n", r.Method)
	fmt.Fprintf(&b, "    # data points      = %d\n", r.NData)
	fmt.Fprintf(&b, "    # variables        = %d\n", r.NFree)
	fmt.Fprintf(&b, "    chi-square         = %.8g\n", r.ChiSquare)
	fmt.Fprintf(&b, "    reduced chi-square = %.8g\n", r.RedChi)
	fmt.Fprintf(&b, "    R-squared          = %.8g\n", r.RSquared)
	fmt.Fprintf(&b, "[[Variables]]\n")

	stderr := make(map[string]float64, len(r.Names))
	for i, n := range r.Names {
		stderr[n] = r.Stderr[i]
	}
	initial := make(map[string]float64)
	for _, p := range r.Initial.Params() {
		initial[p.Name] = p.Value
	}
	for _, p := range r.Model.Params() {
		se, free := stderr[p.Name]
		switch {
		case !free:
			fmt.Fprintf(&b, "    %-14s %.8g (fixed)\n", p.Name+":", p.Value)
		case math.IsNaN(se):
			fmt.Fprintf(&b, "    %-14s %.8g (init = %.8g)\n", p.Name+":", p.Value, initial[p.Name])
		default:
			fmt.Fprintf(&b, "    %-14s %.8g +/- %.8g (init = %.8g)\n", p.Name+":", p.Value, se, initial[p.Name])
		}
	}
	if r.Rejected != nil {
		fmt.Fprintf(&b, "[[Rejected]]\n    %s, reduced chi-square = %.8g\n", r.Rejected.Kind(), r.Rejected.RedChi)
	}
	return b.String()
}

// Truncate cuts v to the given number of decimals without rounding.
func Truncate(v float64, decimals int) float64 {
	mul := math.Pow(10, float64(decimals))
	return math.Trunc(v*mul) / mul
}
