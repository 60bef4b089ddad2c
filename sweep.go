package tevc

import "fmt"

// Trace holds the uniformly sampled channels of one sweep. Treat it as
// immutable; WithCurrent returns a copy with a replaced current channel.
type Trace struct {
	Time    []float64
	Current []float64
	Command []float64 // commanded clamp voltage (DAC)
	Voltage []float64 // measured membrane voltage
	Shutter []float64
}

func (t Trace) Len() int {
	return len(t.Time)
}

// Validate checks that every present channel matches the time axis.
func (t Trace) Validate() error {
	for name, ch := range map[string][]float64{
		"current": t.Current,
		"command": t.Command,
		"voltage": t.Voltage,
		"shutter": t.Shutter,
	} {
		if ch != nil && len(ch) != len(t.Time) {
			return fmt.Errorf("%s channel: %w", name, &ShapeMismatchError{Want: len(t.Time), Got: len(ch)})
		}
	}
	return nil
}

// WithCurrent returns a trace whose current channel is current.
func (t Trace) WithCurrent(current []float64) (Trace, error) {
	if len(current) != len(t.Current) {
		return Trace{}, &ShapeMismatchError{Want: len(t.Current), Got: len(current)}
	}
	t.Current = append([]float64(nil), current...)
	return t, nil
}

// Events are the protocol timestamps of a sweep.
type Events struct {
	ClampOn    float64
	ShutterOn  float64
	ShutterOff float64
	ClampOff   float64
}

// Validate enforces clamp-on <= shutter-on < shutter-off <= clamp-off.
func (e Events) Validate() error {
	switch {
	case e.ClampOn > e.ShutterOn:
		return &InvalidWindowError{Window: "protocol", Start: e.ShutterOn, Reference: e.ClampOn, Reason: "shutter opens before the clamp"}
	case e.ShutterOn >= e.ShutterOff:
		return &InvalidWindowError{Window: "protocol", Start: e.ShutterOff, Reference: e.ShutterOn, Reason: "shutter closes before it opens"}
	case e.ShutterOff > e.ClampOff:
		return &InvalidWindowError{Window: "protocol", Start: e.ClampOff, Reference: e.ShutterOff, Reason: "clamp releases before the shutter closes"}
	}
	return nil
}

// Labels are the axis titles of the channels.
type Labels struct {
	Time    string
	Current string
	Command string
	Voltage string
	Shutter string
}

func DefaultLabels() Labels {
	return Labels{
		Time:    "Time (s)",
		Current: "Current (uA)",
		Command: "Digital Input Clamp Voltage (mV)",
		Voltage: "Voltage (mV)",
		Shutter: "Shutter Voltage (V)",
	}
}

// Sweep is one trial of a recording.
type Sweep struct {
	Index  int
	Events Events
	Trace  Trace
	Labels Labels
}

// WithTrace returns a copy of s carrying trace.
func (s Sweep) WithTrace(trace Trace) Sweep {
	s.Trace = trace
	return s
}

// ClampVoltage is the command voltage at mid-sweep, the holding potential of
// the clamped segment.
func (s Sweep) ClampVoltage() float64 {
	if len(s.Trace.Command) == 0 {
		return 0
	}
	return s.Trace.Command[len(s.Trace.Command)/2]
}
