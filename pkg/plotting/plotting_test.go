package plotting

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	tevc "github.com/avivko/Oocyte-TVEC-analyzer"
)

func testSweep(index int, voltage float64) tevc.Sweep {
	n := 200
	tr := tevc.Trace{
		Time:    make([]float64, n),
		Current: make([]float64, n),
		Command: make([]float64, n),
		Voltage: make([]float64, n),
	}
	for i := range tr.Time {
		t := float64(i) * 0.05
		tr.Time[i] = t
		tr.Current[i] = math.Sin(t) + float64(index)
		tr.Command[i] = voltage
		tr.Voltage[i] = voltage + 0.1*math.Cos(t)
	}
	return tevc.Sweep{
		Index:  index,
		Events: tevc.Events{ClampOn: 0.5, ShutterOn: 2, ShutterOff: 6, ClampOff: 9},
		Trace:  tr,
		Labels: tevc.DefaultLabels(),
	}
}

func assertFile(t *testing.T, fn string) {
	t.Helper()
	fi, err := os.Stat(fn)
	if err != nil {
		t.Fatalf("stat %s: %v", fn, err)
	}
	if fi.Size() == 0 {
		t.Fatalf("%s is empty", fn)
	}
}

func TestPlotSweep(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "sweep.png")
	opts := DefaultOptions()
	opts.From, opts.To = 10, 150
	if err := PlotSweep(fn, testSweep(0, -40), opts); err != nil {
		t.Fatalf("PlotSweep: %v", err)
	}
	assertFile(t, fn)
}

func TestPlotAllSweeps(t *testing.T) {
	sweeps := []tevc.Sweep{testSweep(0, -80), testSweep(1, -40), testSweep(2, 0)}
	fn := filepath.Join(t.TempDir(), "all.png")
	if err := PlotAllSweeps(fn, sweeps, []float64{-80, -40, 0}, DefaultOptions()); err != nil {
		t.Fatalf("PlotAllSweeps: %v", err)
	}
	assertFile(t, fn)

	if err := PlotAllSweeps(fn, sweeps, []float64{-80}, DefaultOptions()); err == nil {
		t.Fatalf("expected shape mismatch")
	}
}

func TestPlotFit(t *testing.T) {
	x := make([]float64, 50)
	y := make([]float64, 50)
	for i := range x {
		x[i] = float64(i) * 0.1
		y[i] = 2*x[i] + 1 + 0.01*math.Sin(float64(i))
	}
	fit, err := tevc.NewFitter(tevc.DefaultSettings()).Fit(x, y, tevc.KindLinear, tevc.FitOptions{})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	dir := t.TempDir()
	for _, name := range []string{"fit.png", "fit.svg"} {
		fn := filepath.Join(dir, name)
		if err := PlotFit(fn, "pre-light fit", fit, DefaultOptions()); err != nil {
			t.Fatalf("PlotFit %s: %v", name, err)
		}
		assertFile(t, fn)
	}
}

func TestOptions_Interval(t *testing.T) {
	cases := []struct {
		from, to, wantFrom, wantTo int
	}{
		{0, -1, 0, 100},
		{10, 50, 10, 50},
		{-5, 500, 0, 100},
		{80, 20, 20, 20},
	}
	for _, c := range cases {
		o := Options{From: c.from, To: c.to}
		f, to := o.interval(100)
		if f != c.wantFrom || to != c.wantTo {
			t.Fatalf("interval(%d,%d) = %d,%d", c.from, c.to, f, to)
		}
	}
}

func TestPlotAllCorrected(t *testing.T) {
	var corrections []*tevc.Correction
	for i, v := range []float64{-80, -40} {
		s := testSweep(i, v)
		corrections = append(corrections, &tevc.Correction{Mode: tevc.CorrectionPreLight, Raw: s, Sweep: s})
	}
	corrections = append(corrections, nil)

	fn := filepath.Join(t.TempDir(), "sweeps_corrected.png")
	if err := PlotAllCorrected(fn, corrections, DefaultOptions()); err != nil {
		t.Fatalf("PlotAllCorrected: %v", err)
	}
	assertFile(t, fn)

	if err := PlotAllCorrected(fn, []*tevc.Correction{nil}, DefaultOptions()); err == nil {
		t.Fatalf("expected error without corrections")
	}
}

func TestCorrectionPanels_PreLightOnly(t *testing.T) {
	raw := testSweep(1, -40)
	pre := &tevc.FitResult{Model: tevc.Linear{M: 0, Y0: 1}}
	c := &tevc.Correction{Mode: tevc.CorrectionPreLight, Raw: raw, PreFit: pre}

	panels, err := CorrectionPanels(c)
	if err != nil {
		t.Fatalf("CorrectionPanels: %v", err)
	}
	if len(panels) != 1 || len(panels[0].Curves) != 2 {
		t.Fatalf("panels %+v", panels)
	}
	if got := panels[0].Curves[0].Y[10]; got != raw.Trace.Current[10] {
		t.Fatalf("current %v want raw %v", got, raw.Trace.Current[10])
	}
	if got := panels[0].Curves[1].Y[10]; got != 1 {
		t.Fatalf("baseline %v want 1", got)
	}
}

func TestCorrectionPanels_PostLightOverPreCorrected(t *testing.T) {
	raw := testSweep(1, -40)
	c := &tevc.Correction{
		Mode:    tevc.CorrectionPreAndAfterLight,
		Raw:     raw,
		PreFit:  &tevc.FitResult{Model: tevc.Linear{M: 0, Y0: 1}},
		PostFit: &tevc.FitResult{Model: tevc.Linear{M: 0.5, Y0: 0}},
	}

	panels, err := CorrectionPanels(c)
	if err != nil {
		t.Fatalf("CorrectionPanels: %v", err)
	}
	if len(panels) != 2 {
		t.Fatalf("got %d panels", len(panels))
	}
	post := panels[1]
	for i := range post.X {
		if want := raw.Trace.Current[i] - 1; math.Abs(post.Curves[0].Y[i]-want) > 1e-12 {
			t.Fatalf("sample %d: current %v want pre-light corrected %v", i, post.Curves[0].Y[i], want)
		}
		if want := 0.5 * post.X[i]; math.Abs(post.Curves[1].Y[i]-want) > 1e-12 {
			t.Fatalf("sample %d: baseline %v want %v", i, post.Curves[1].Y[i], want)
		}
	}
	if post.Curves[1].Name != tevc.KindLinear.String() {
		t.Fatalf("curve name %q", post.Curves[1].Name)
	}
}
