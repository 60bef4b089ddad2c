// Package plotting draws sweeps and fits with gonum/plot.
package plotting

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	_ "gonum.org/v1/plot/vg/vgpdf"
	_ "gonum.org/v1/plot/vg/vgsvg"

	tevc "github.com/avivko/Oocyte-TVEC-analyzer"
)

// Options controls the size and range of a figure.
type Options struct {
	Width, Height vg.Length
	DPI           int
	// From and To select the samples [From, To); a negative To means up
	// to the last sample.
	From, To int
}

func DefaultOptions() Options {
	return Options{Width: 6 * vg.Inch, Height: 6 * vg.Inch, DPI: 96, To: -1}
}

// interval clamps the plot interval to n samples.
func (o Options) interval(n int) (int, int) {
	from, to := o.From, o.To
	if to < 0 || to > n {
		to = n
	}
	if from < 0 {
		from = 0
	}
	if from > to {
		from = to
	}
	return from, to
}

var shutterColor = color.NRGBA{R: 255, G: 200, B: 0, A: 80}

// xys pairs x and y. A nil y yields an empty set.
func xys(x, y []float64) plotter.XYs {
	if len(y) == 0 {
		return nil
	}
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}
	return pts
}

// shutterSpan shades [on, off] across the y range of pts.
func shutterSpan(p *plot.Plot, pts plotter.XYs, on, off float64) error {
	if len(pts) == 0 {
		return nil
	}
	_, _, ymin, ymax := plotter.XYRange(pts)
	if ymin == ymax {
		ymin, ymax = ymin-1, ymax+1
	}
	poly, err := plotter.NewPolygon(plotter.XYs{{X: on, Y: ymin}, {X: off, Y: ymin}, {X: off, Y: ymax}, {X: on, Y: ymax}})
	if err != nil {
		return err
	}
	poly.Color = shutterColor
	poly.LineStyle.Width = 0
	p.Add(poly)
	p.Legend.Add("shutter open", poly)
	return nil
}

// PlotSweep draws the current above the voltage of one sweep and shades the
// time the shutter is open.
func PlotSweep(path string, s tevc.Sweep, opts Options) error {
	from, to := opts.interval(s.Trace.Len())
	t := s.Trace.Time[from:to]

	top := plot.New()
	top.Title.Text = fmt.Sprintf("Sweep %d", s.Index)
	top.X.Label.Text = s.Labels.Time
	top.Y.Label.Text = s.Labels.Current
	current := xys(t, s.Trace.Current[from:to])
	if err := shutterSpan(top, current, s.Events.ShutterOn, s.Events.ShutterOff); err != nil {
		return err
	}
	if err := plotutil.AddLines(top, current); err != nil {
		return err
	}

	bottom := plot.New()
	bottom.X.Label.Text = s.Labels.Time
	volt, label := s.Trace.Voltage, s.Labels.Voltage
	if len(volt) == 0 {
		volt, label = s.Trace.Command, s.Labels.Command
	}
	bottom.Y.Label.Text = label
	if len(volt) > 0 {
		if err := plotutil.AddLines(bottom, xys(t, volt[from:to])); err != nil {
			return err
		}
	}

	return saveStacked(path, [][]*plot.Plot{{top}, {bottom}}, opts)
}

// PlotAllSweeps overlays the current of every sweep, labelled with its
// clamp voltage in mV, above an overlay of the voltages.
func PlotAllSweeps(path string, sweeps []tevc.Sweep, voltages []float64, opts Options) error {
	return plotOverlay(path, "All sweeps", sweeps, voltages, opts)
}

// PlotAllCorrected overlays the corrected current of every correction. Nil
// corrections are skipped.
func PlotAllCorrected(path string, corrections []*tevc.Correction, opts Options) error {
	var (
		sweeps   []tevc.Sweep
		voltages []float64
		mode     tevc.CorrectionMode
	)
	for _, c := range corrections {
		if c == nil {
			continue
		}
		sweeps = append(sweeps, c.Sweep)
		voltages = append(voltages, c.Raw.ClampVoltage())
		mode = c.Mode
	}
	if len(sweeps) == 0 {
		return fmt.Errorf("no corrected sweeps to plot")
	}
	return plotOverlay(path, fmt.Sprintf("All sweeps (%s)", mode), sweeps, voltages, opts)
}

func plotOverlay(path, title string, sweeps []tevc.Sweep, voltages []float64, opts Options) error {
	if len(voltages) != len(sweeps) {
		return &tevc.ShapeMismatchError{Want: len(sweeps), Got: len(voltages)}
	}
	top := plot.New()
	top.Title.Text = title
	top.Legend.Top = true
	bottom := plot.New()

	var currents, volts plotter.XYs
	for i, s := range sweeps {
		from, to := opts.interval(s.Trace.Len())
		t := s.Trace.Time[from:to]
		if i == 0 {
			top.X.Label.Text = s.Labels.Time
			top.Y.Label.Text = s.Labels.Current
			bottom.X.Label.Text = s.Labels.Time
			bottom.Y.Label.Text = s.Labels.Voltage
		}

		current := xys(t, s.Trace.Current[from:to])
		l, err := plotter.NewLine(current)
		if err != nil {
			return fmt.Errorf("sweep %d: %w", s.Index, err)
		}
		l.Color = plotutil.Color(i)
		top.Add(l)
		top.Legend.Add(fmt.Sprintf("%.0f mV", voltages[i]), l)
		currents = append(currents, current...)

		volt := s.Trace.Voltage
		if len(volt) == 0 {
			volt = s.Trace.Command
			bottom.Y.Label.Text = s.Labels.Command
		}
		if len(volt) == 0 {
			continue
		}
		v := xys(t, volt[from:to])
		vl, err := plotter.NewLine(v)
		if err != nil {
			return fmt.Errorf("sweep %d: %w", s.Index, err)
		}
		vl.Color = plotutil.Color(i)
		bottom.Add(vl)
		volts = append(volts, v...)
	}

	if len(sweeps) > 0 {
		ev := sweeps[0].Events
		if err := shutterSpan(top, currents, ev.ShutterOn, ev.ShutterOff); err != nil {
			return err
		}
		if err := shutterSpan(bottom, volts, ev.ShutterOn, ev.ShutterOff); err != nil {
			return err
		}
	}
	return saveStacked(path, [][]*plot.Plot{{top}, {bottom}}, opts)
}

// PlotFit draws the fitted samples, the starting model dashed and the best
// fit solid.
func PlotFit(path, title string, fit *tevc.FitResult, opts Options) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Current (uA)"

	data, err := plotter.NewScatter(xys(fit.X, fit.Y))
	if err != nil {
		return err
	}
	data.GlyphStyle.Radius = vg.Points(1.5)
	data.GlyphStyle.Color = color.Gray{Y: 96}

	start, err := plotter.NewLine(xys(fit.X, fit.InitFit))
	if err != nil {
		return err
	}
	start.Color = plotutil.Color(1)
	start.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	best, err := plotter.NewLine(xys(fit.X, fit.BestFit))
	if err != nil {
		return err
	}
	best.Color = plotutil.Color(0)
	best.Width = vg.Points(1.5)

	p.Add(data, start, best)
	p.Legend.Add("data", data)
	p.Legend.Add("initial fit", start)
	p.Legend.Add(fmt.Sprintf("best fit (%s), redchi=%v, R2=%v",
		fit.Kind(), tevc.Truncate(fit.RedChi, 2), tevc.Truncate(fit.RSquared, 2)), best)
	p.Legend.Top = true
	return save(path, p, opts)
}

func save(path string, p *plot.Plot, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(opts.Width, opts.Height, path)
}

// saveStacked renders aligned panels into one raster image: PNG, or JPEG
// and TIFF by extension.
func saveStacked(path string, plots [][]*plot.Plot, opts Options) error {
	img := vgimg.NewWith(vgimg.UseWH(opts.Width, opts.Height), vgimg.UseDPI(opts.DPI))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: len(plots),
		Cols: 1,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	var w interface {
		WriteTo(w io.Writer) (int64, error)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		w = vgimg.JpegCanvas{Canvas: img}
	case ".tif", ".tiff":
		w = vgimg.TiffCanvas{Canvas: img}
	default:
		w = vgimg.PngCanvas{Canvas: img}
	}
	if _, err := w.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
