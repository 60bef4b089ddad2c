package tevc

// Reconstruct evaluates m at every time point.
func Reconstruct(t []float64, m Model) []float64 {
	out := make([]float64, len(t))
	for i, ti := range t {
		out[i] = m.Eval(ti)
	}
	return out
}

// Subtract returns observed minus baseline, elementwise.
func Subtract(observed, baseline []float64) ([]float64, error) {
	if len(observed) != len(baseline) {
		return nil, &ShapeMismatchError{Want: len(observed), Got: len(baseline)}
	}
	out := make([]float64, len(observed))
	for i := range observed {
		out[i] = observed[i] - baseline[i]
	}
	return out, nil
}

// Correct subtracts the model's baseline over the whole sweep and returns the
// sweep carrying the corrected current.
func Correct(s Sweep, m Model) (Sweep, error) {
	corrected, err := Subtract(s.Trace.Current, Reconstruct(s.Trace.Time, m))
	if err != nil {
		return Sweep{}, err
	}
	trace, err := s.Trace.WithCurrent(corrected)
	if err != nil {
		return Sweep{}, err
	}
	return s.WithTrace(trace), nil
}
