package tevc

import (
	"fmt"
	"math"
	"strings"
)

// Kind tags a model family.
type Kind int

const (
	KindLinear Kind = iota
	KindLinearFromZero
	KindExponential
	KindExponentialFromZero
	KindBiExponential
)

var kindNames = map[Kind]string{
	KindLinear:              "linear",
	KindLinearFromZero:      "linear from zero",
	KindExponential:         "exponential",
	KindExponentialFromZero: "exponential from zero",
	KindBiExponential:       "biexponential",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts the tag names above; underscores and dashes may stand in
// for spaces.
func ParseKind(tag string) (Kind, error) {
	norm := strings.ToLower(strings.TrimSpace(tag))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)
	for k, n := range kindNames {
		if n == norm {
			return k, nil
		}
	}
	return 0, &UnsupportedModelError{Tag: tag}
}

// Param is one named model parameter.
type Param struct {
	Name  string
	Value float64
}

// Model is a closed set of relaxation models. Only the types in this file
// implement it.
type Model interface {
	Kind() Kind
	Eval(t float64) float64
	Params() []Param
	model()
}

func LinearAt(t, m, y0 float64) float64 {
	return m*t + y0
}

func LinearFromZeroAt(t, m, shift float64) float64 {
	if shift != 0 && t < shift {
		return 0
	}
	return m * (t - shift)
}

// FirstOrderResponse relaxes from y0 at t=0 towards the steady state ySS with
// time constant tau.
func FirstOrderResponse(t, y0, ySS, tau float64) float64 {
	return (y0-ySS)*math.Exp(-t/tau) + ySS
}

// FirstOrderResponseFromZero rises from 0 at t=shift towards ySS. With a zero
// shift there is no time restriction.
func FirstOrderResponseFromZero(t, ySS, tau, shift float64) float64 {
	if shift != 0 && t < shift {
		return 0
	}
	return ySS * (1 - math.Exp(-(t-shift)/tau))
}

func TwoFirstOrderResponses(t, y01, y02, ySS1, ySS2, tau1, tau2 float64) float64 {
	return (y01-ySS1)*math.Exp(-t/tau1) + (y02-ySS2)*math.Exp(-t/tau2) + ySS1 + ySS2
}

type Linear struct {
	M, Y0 float64
}

func (Linear) Kind() Kind {
	return KindLinear
}

func (l Linear) Eval(t float64) float64 {
	return LinearAt(t, l.M, l.Y0)
}

func (l Linear) Params() []Param {
	return []Param{{"m", l.M}, {"y0", l.Y0}}
}

func (Linear) model() {}

type LinearFromZero struct {
	M, Shift float64
}

func (LinearFromZero) Kind() Kind {
	return KindLinearFromZero
}

func (l LinearFromZero) Eval(t float64) float64 {
	return LinearFromZeroAt(t, l.M, l.Shift)
}

func (l LinearFromZero) Params() []Param {
	return []Param{{"m", l.M}, {"shift_along_t", l.Shift}}
}

func (LinearFromZero) model() {}

type Exponential struct {
	Y0, YSS, Tau float64
}

func (Exponential) Kind() Kind {
	return KindExponential
}

func (e Exponential) Eval(t float64) float64 {
	return FirstOrderResponse(t, e.Y0, e.YSS, e.Tau)
}

func (e Exponential) Params() []Param {
	return []Param{{"y0", e.Y0}, {"y_ss", e.YSS}, {"tau", e.Tau}}
}

func (Exponential) model() {}

type ExponentialFromZero struct {
	YSS, Tau, Shift float64
}

func (ExponentialFromZero) Kind() Kind {
	return KindExponentialFromZero
}

func (e ExponentialFromZero) Eval(t float64) float64 {
	return FirstOrderResponseFromZero(t, e.YSS, e.Tau, e.Shift)
}

func (e ExponentialFromZero) Params() []Param {
	return []Param{{"y_ss", e.YSS}, {"tau", e.Tau}, {"shift_along_t", e.Shift}}
}

func (ExponentialFromZero) model() {}

// BiExponential is the superposition of two first-order responses. It has no
// guesser; fit it with Fitter.FitModel from explicit starting values.
type BiExponential struct {
	Y01, Y02, YSS1, YSS2, Tau1, Tau2 float64
}

func (BiExponential) Kind() Kind {
	return KindBiExponential
}

func (b BiExponential) Eval(t float64) float64 {
	return TwoFirstOrderResponses(t, b.Y01, b.Y02, b.YSS1, b.YSS2, b.Tau1, b.Tau2)
}

func (b BiExponential) Params() []Param {
	return []Param{
		{"y0_1", b.Y01}, {"y0_2", b.Y02},
		{"y_ss_1", b.YSS1}, {"y_ss_2", b.YSS2},
		{"tau_1", b.Tau1}, {"tau_2", b.Tau2},
	}
}

func (BiExponential) model() {}

// freeParams returns the names and values the solver varies, plus the index
// of every time constant (bounded during solving). Shifts are held fixed.
func freeParams(m Model) (names []string, values []float64, taus []int) {
	switch v := m.(type) {
	case Linear:
		return []string{"m", "y0"}, []float64{v.M, v.Y0}, nil
	case LinearFromZero:
		return []string{"m"}, []float64{v.M}, nil
	case Exponential:
		return []string{"y0", "y_ss", "tau"}, []float64{v.Y0, v.YSS, v.Tau}, []int{2}
	case ExponentialFromZero:
		return []string{"y_ss", "tau"}, []float64{v.YSS, v.Tau}, []int{1}
	case BiExponential:
		return []string{"y0_1", "y0_2", "y_ss_1", "y_ss_2", "tau_1", "tau_2"},
			[]float64{v.Y01, v.Y02, v.YSS1, v.YSS2, v.Tau1, v.Tau2}, []int{4, 5}
	}
	panic(fmt.Sprintf("tevc: unknown model type %T", m))
}

// withFree rebuilds m from a free-parameter vector, keeping fixed parameters.
func withFree(m Model, x []float64) Model {
	switch v := m.(type) {
	case Linear:
		return Linear{M: x[0], Y0: x[1]}
	case LinearFromZero:
		return LinearFromZero{M: x[0], Shift: v.Shift}
	case Exponential:
		return Exponential{Y0: x[0], YSS: x[1], Tau: x[2]}
	case ExponentialFromZero:
		return ExponentialFromZero{YSS: x[0], Tau: x[1], Shift: v.Shift}
	case BiExponential:
		return BiExponential{Y01: x[0], Y02: x[1], YSS1: x[2], YSS2: x[3], Tau1: x[4], Tau2: x[5]}
	}
	panic(fmt.Sprintf("tevc: unknown model type %T", m))
}

// withShift sets the anchor of a from-zero model; other models pass through.
func withShift(m Model, shift float64) Model {
	switch v := m.(type) {
	case LinearFromZero:
		v.Shift = shift
		return v
	case ExponentialFromZero:
		v.Shift = shift
		return v
	}
	return m
}
