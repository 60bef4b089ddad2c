package tevc

import (
	"errors"
	"math"
	"testing"
)

// driftSweep has a linear drift over the whole sweep plus a slow response
// rising from zero at shutter-on.
func driftSweep() Sweep {
	ev := Events{ClampOn: 0.2, ShutterOn: 2, ShutterOff: 4, ClampOff: 20}
	tm := samples(0, 0.01, 2001)
	cur := apply(tm, func(t float64) float64 {
		return 0.1*t + 1 + FirstOrderResponseFromZero(t, 5, 3, ev.ShutterOn)
	})
	cmd := apply(tm, func(float64) float64 { return -40 })
	return Sweep{Index: 3, Events: ev, Trace: Trace{Time: tm, Current: cur, Command: cmd}, Labels: DefaultLabels()}
}

func maxAbs(xs []float64) float64 {
	var m float64
	for _, x := range xs {
		m = math.Max(m, math.Abs(x))
	}
	return m
}

func TestSubtract_ShapeMismatch(t *testing.T) {
	_, err := Subtract([]float64{1, 2, 3}, []float64{1, 2})
	var se *ShapeMismatchError
	if !errors.As(err, &se) {
		t.Fatalf("expected ShapeMismatchError, got %v", err)
	}
}

func TestTrace_WithCurrentShapeMismatch(t *testing.T) {
	tr := Trace{Time: []float64{0, 1, 2}, Current: []float64{1, 1, 1}}
	_, err := tr.WithCurrent([]float64{0, 0})
	var se *ShapeMismatchError
	if !errors.As(err, &se) || se.Want != 3 || se.Got != 2 {
		t.Fatalf("expected ShapeMismatchError, got %v", err)
	}

	next, err := tr.WithCurrent([]float64{0, 0, 0})
	if err != nil {
		t.Fatalf("WithCurrent: %v", err)
	}
	if tr.Current[0] != 1 || next.Current[0] != 0 {
		t.Fatalf("original %v new %v", tr.Current, next.Current)
	}
}

func TestReconstruct_FromZeroModel(t *testing.T) {
	tm := []float64{0, 1, 2, 3}
	got := Reconstruct(tm, LinearFromZero{M: 2, Shift: 1.5})
	want := []float64{0, 0, 1, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestCorrector_PreLightLinearDrift(t *testing.T) {
	s := driftSweep()
	s.Trace.Current = apply(s.Trace.Time, func(t float64) float64 { return 2*t + 1 })

	c := NewCorrector(DefaultSettings(), CorrectionOptions{PreKind: KindLinear, PostKind: KindLinear})
	res, err := c.Apply(s, CorrectionPreLight)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.PreFit == nil || res.PostFit != nil {
		t.Fatalf("fits pre=%v post=%v", res.PreFit, res.PostFit)
	}
	if m := maxAbs(res.Corrected()); m > 1e-6 {
		t.Fatalf("corrected current not flat: max |i| = %v", m)
	}
	// window [shutter-on - 1.5, shutter-on)
	if res.PreWindow.StartTime < 0.5-1e-9 || res.PreWindow.EndTime != s.Trace.Time[200] {
		t.Fatalf("window %+v", res.PreWindow)
	}
	if s.Trace.Current[100] != 2*s.Trace.Time[100]+1 {
		t.Fatalf("input sweep was modified")
	}
}

func TestCorrector_PreAndAfterLight(t *testing.T) {
	s := driftSweep()
	opts := CorrectionOptions{PreKind: KindLinear, PostKind: KindExponential, PostStart: StartAt(4.5)}
	c := NewCorrector(DefaultSettings(), opts)

	res, err := c.Apply(s, CorrectionPreAndAfterLight)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Mode != CorrectionPreAndAfterLight {
		t.Fatalf("mode %v", res.Mode)
	}
	if res.PostFit.Kind() != KindExponentialFromZero {
		t.Fatalf("post-light kind %v", res.PostFit.Kind())
	}
	v := res.PostFit.Values()
	if v["shift_along_t"] != s.Events.ShutterOn || !near(v["tau"], 3, 0.03) || !near(v["y_ss"], 5, 0.05) {
		t.Fatalf("post-light values %v", v)
	}
	// the post-light fit saw the pre-light corrected current, so both the
	// drift and the response are gone
	if m := maxAbs(res.Corrected()); m > 0.05 {
		t.Fatalf("corrected current not flat: max |i| = %v", m)
	}
	if res.Raw.Trace.Current[1500] != s.Trace.Current[1500] {
		t.Fatalf("raw sweep changed")
	}
}

func TestCorrector_None(t *testing.T) {
	s := driftSweep()
	res, err := NewCorrector(DefaultSettings(), DefaultCorrectionOptions()).Apply(s, CorrectionNone)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.PreFit != nil || &res.Corrected()[0] != &s.Trace.Current[0] {
		t.Fatalf("none mode should pass the sweep through")
	}
}

func TestCorrector_InvalidPreWindow(t *testing.T) {
	s := driftSweep()
	opts := DefaultCorrectionOptions()
	opts.PreStart = StartAt(0.1)
	_, err := NewCorrector(DefaultSettings(), opts).Apply(s, CorrectionPreLight)
	var we *InvalidWindowError
	if !errors.As(err, &we) {
		t.Fatalf("expected InvalidWindowError, got %v", err)
	}
}

func TestParseCorrectionMode(t *testing.T) {
	for in, want := range map[string]CorrectionMode{
		"none":                CorrectionNone,
		"pre_light_only":      CorrectionPreLight,
		"pre-and-after-light": CorrectionPreAndAfterLight,
	} {
		got, err := ParseCorrectionMode(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %v, %v", in, got, err)
		}
	}
	if _, err := ParseCorrectionMode("both"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSweep_ClampVoltage(t *testing.T) {
	if v := driftSweep().ClampVoltage(); v != -40 {
		t.Fatalf("got %v", v)
	}
}
