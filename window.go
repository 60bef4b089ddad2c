package tevc

// timeTolerance absorbs float error when matching event times to samples.
const timeTolerance = 1e-9

// ClosestIndex returns the index of the first sample at or after target.
// times must be ascending; this is not checked.
func ClosestIndex(target float64, times []float64) (int, error) {
	if len(times) == 0 {
		return 0, &ValueNotFoundError{Value: target}
	}
	first, last := times[0], times[len(times)-1]
	if target < first || target > last {
		return 0, &OutOfRangeError{Value: target, Min: first, Max: last}
	}
	for i, t := range times {
		if t >= target-timeTolerance {
			return i, nil
		}
	}
	return 0, &ValueNotFoundError{Value: target}
}

// Window is the half-open sample range [Start, End) of a fit.
type Window struct {
	Start, End         int
	StartTime, EndTime float64
}

func (w Window) Len() int {
	return w.End - w.Start
}

func (w Window) Slice(xs []float64) []float64 {
	return xs[w.Start:w.End]
}

// WindowOptions overrides the default window start.
type WindowOptions struct {
	// Start is an explicit start time; nil selects the default offset.
	Start *float64
}

// StartAt is shorthand for an explicit window start.
func StartAt(t float64) WindowOptions {
	return WindowOptions{Start: &t}
}

// PreLightWindow selects the baseline before the shutter opens. It must
// start after clamp-on so the capacitive transient stays out of the fit.
func PreLightWindow(s Sweep, settings Settings, opts WindowOptions) (Window, error) {
	start := s.Events.ShutterOn - settings.PreLightOffset
	if opts.Start != nil {
		start = *opts.Start
	}
	if start <= s.Events.ClampOn {
		return Window{}, &InvalidWindowError{
			Window:    "pre-light",
			Start:     start,
			Reference: s.Events.ClampOn,
			Reason:    "the fit should not start before the capacitance peak (start must be after clamp-on)",
		}
	}
	return selectWindow("pre-light", s.Trace.Time, start, s.Events.ShutterOn)
}

// PostLightWindow selects the segment before the clamp is released. It must
// start after the shutter closes so the post-light steady state is reached.
func PostLightWindow(s Sweep, settings Settings, opts WindowOptions) (Window, error) {
	start := s.Events.ClampOff - settings.PostLightOffset
	if opts.Start != nil {
		start = *opts.Start
	}
	if start <= s.Events.ShutterOff {
		return Window{}, &InvalidWindowError{
			Window:    "post-light",
			Start:     start,
			Reference: s.Events.ShutterOff,
			Reason:    "the fit should not start before the light is off (start must be after shutter-off)",
		}
	}
	return selectWindow("post-light", s.Trace.Time, start, s.Events.ClampOff)
}

func selectWindow(name string, times []float64, start, end float64) (Window, error) {
	i, err := ClosestIndex(start, times)
	if err != nil {
		return Window{}, err
	}
	j, err := ClosestIndex(end, times)
	if err != nil {
		return Window{}, err
	}
	if i > j {
		return Window{}, &InvalidWindowError{Window: name, Start: start, Reference: end, Reason: "window starts after it ends"}
	}
	return Window{Start: i, End: j, StartTime: times[i], EndTime: times[j]}, nil
}
