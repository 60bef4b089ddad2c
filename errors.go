package tevc

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is returned when a fit window holds no more samples
// than the model has free parameters.
var ErrInsufficientData = errors.New("not enough samples for the number of free parameters")

// UnsupportedModelError reports a model tag with no guesser or solver path.
type UnsupportedModelError struct {
	Tag string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("model %q is not supported here", e.Tag)
}

// OutOfRangeError reports a time outside the span of a trace.
type OutOfRangeError struct {
	Value    float64
	Min, Max float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("time %v is out of the sweep interval [%v, %v]", e.Value, e.Min, e.Max)
}

// ValueNotFoundError means an in-range scan over a time array found no sample
// at or after the target. It only happens when the time array is not ascending.
type ValueNotFoundError struct {
	Value float64
}

func (e *ValueNotFoundError) Error() string {
	return fmt.Sprintf("no sample found at or after time %v", e.Value)
}

// InvalidWindowError reports a fit window that breaks the protocol ordering.
type InvalidWindowError struct {
	Window    string
	Start     float64
	Reference float64
	Reason    string
}

func (e *InvalidWindowError) Error() string {
	return fmt.Sprintf("%s window: %s: %v vs %v", e.Window, e.Reason, e.Start, e.Reference)
}

// ShapeMismatchError reports arrays of different lengths in the correction step.
type ShapeMismatchError struct {
	Want, Got int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("new currents do not have the same shape as the previous ones: want %d samples, got %d", e.Want, e.Got)
}

// FitQualityError is returned when both the exponential fit and its linear
// fallback are inadequate. The caller should pick a later window start.
type FitQualityError struct {
	ExponentialRedChi float64
	LinearRedChi      float64
}

func (e *FitQualityError) Error() string {
	return fmt.Sprintf("reduced chi of the linear fit (%.6g) is even worse than the exponential one (%.6g); try to begin the fit window from a later time point",
		e.LinearRedChi, e.ExponentialRedChi)
}
