package tevc

import "math"

// samples returns n times start, start+step, ...
func samples(start, step float64, n int) []float64 {
	t := make([]float64, n)
	for i := range t {
		t[i] = start + float64(i)*step
	}
	return t
}

func apply(t []float64, f func(float64) float64) []float64 {
	y := make([]float64, len(t))
	for i, ti := range t {
		y[i] = f(ti)
	}
	return y
}

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
