package tevc

import (
	"errors"
	"testing"
)

func scenarioSweep() Sweep {
	tm := samples(0, 1, 11)
	return Sweep{
		Events: Events{ClampOn: 0, ShutterOn: 5, ShutterOff: 8, ClampOff: 10},
		Trace:  Trace{Time: tm, Current: make([]float64, len(tm))},
		Labels: DefaultLabels(),
	}
}

func TestClosestIndex_Boundaries(t *testing.T) {
	times := samples(0, 1, 11)
	if i, err := ClosestIndex(0, times); err != nil || i != 0 {
		t.Fatalf("first sample: %d, %v", i, err)
	}
	if i, err := ClosestIndex(10, times); err != nil || i != 10 {
		t.Fatalf("last sample: %d, %v", i, err)
	}
	for _, target := range []float64{-1, 11} {
		_, err := ClosestIndex(target, times)
		var oe *OutOfRangeError
		if !errors.As(err, &oe) {
			t.Fatalf("target %v: expected OutOfRangeError, got %v", target, err)
		}
		if oe.Value != target || oe.Min != 0 || oe.Max != 10 {
			t.Fatalf("error fields %+v", oe)
		}
	}
}

func TestClosestIndex_FirstAtOrAfter(t *testing.T) {
	times := samples(0, 0.1, 101)
	// 0.3 is not exactly representable as 3*0.1
	if i, err := ClosestIndex(0.3, times); err != nil || i != 3 {
		t.Fatalf("got %d, %v want 3", i, err)
	}
	if i, err := ClosestIndex(0.35, times); err != nil || i != 4 {
		t.Fatalf("got %d, %v want 4", i, err)
	}
}

func TestClosestIndex_Empty(t *testing.T) {
	_, err := ClosestIndex(1, nil)
	var ve *ValueNotFoundError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValueNotFoundError, got %v", err)
	}
}

func TestPreLightWindow_Default(t *testing.T) {
	w, err := PreLightWindow(scenarioSweep(), DefaultSettings(), WindowOptions{})
	if err != nil {
		t.Fatalf("PreLightWindow: %v", err)
	}
	if w.Start != 4 || w.End != 5 || w.StartTime != 4 || w.EndTime != 5 {
		t.Fatalf("got %+v", w)
	}
	if w.Len() != 1 {
		t.Fatalf("len %d", w.Len())
	}
}

func TestPreLightWindow_StartBeforeClampOn(t *testing.T) {
	s := scenarioSweep()
	for _, start := range []float64{0, -0.5} {
		_, err := PreLightWindow(s, DefaultSettings(), StartAt(start))
		var we *InvalidWindowError
		if !errors.As(err, &we) {
			t.Fatalf("start %v: expected InvalidWindowError, got %v", start, err)
		}
		if we.Start != start || we.Reference != 0 {
			t.Fatalf("error fields %+v", we)
		}
	}
}

func TestPostLightWindow(t *testing.T) {
	s := scenarioSweep()
	w, err := PostLightWindow(s, DefaultSettings(), WindowOptions{})
	if err != nil {
		t.Fatalf("PostLightWindow: %v", err)
	}
	// default start 9.5 resolves to 10, the clamp-off sample
	if w.Start != 10 || w.End != 10 {
		t.Fatalf("got %+v", w)
	}

	w, err = PostLightWindow(s, DefaultSettings(), StartAt(8.5))
	if err != nil || w.Start != 9 || w.End != 10 {
		t.Fatalf("explicit start: %+v, %v", w, err)
	}

	_, err = PostLightWindow(s, DefaultSettings(), StartAt(8))
	var we *InvalidWindowError
	if !errors.As(err, &we) {
		t.Fatalf("start at shutter-off: expected InvalidWindowError, got %v", err)
	}
}

func TestPreLightWindow_StartOutsideTrace(t *testing.T) {
	s := scenarioSweep()
	s.Events.ShutterOn = 12
	_, err := PreLightWindow(s, DefaultSettings(), StartAt(11))
	var oe *OutOfRangeError
	if !errors.As(err, &oe) {
		t.Fatalf("expected OutOfRangeError, got %v", err)
	}
}

func TestEvents_Validate(t *testing.T) {
	if err := scenarioSweep().Events.Validate(); err != nil {
		t.Fatalf("valid events: %v", err)
	}
	bad := Events{ClampOn: 0, ShutterOn: 5, ShutterOff: 5, ClampOff: 10}
	var we *InvalidWindowError
	if err := bad.Validate(); !errors.As(err, &we) {
		t.Fatalf("expected InvalidWindowError, got %v", err)
	}
}
