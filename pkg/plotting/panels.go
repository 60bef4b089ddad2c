package plotting

import (
	"fmt"

	tevc "github.com/avivko/Oocyte-TVEC-analyzer"
)

// Curve is one named series of a Panel.
type Curve struct {
	Name string
	Y    []float64
}

// Panel is a current trace with the baselines fitted to it, sharing one
// time axis.
type Panel struct {
	Title  string
	XLabel string
	YLabel string
	X      []float64
	Curves []Curve
}

// CorrectionPanels lays out each baseline over the current it was fitted
// to: the pre-light baseline over the raw current, and the post-light
// baseline over the pre-light corrected current.
func CorrectionPanels(c *tevc.Correction) ([]Panel, error) {
	raw := c.Raw
	panels := []Panel{newPanel("Sweep %d raw", raw, c.PreFit)}
	if c.PostFit == nil {
		return panels, nil
	}

	fitted := raw
	if c.PreFit != nil {
		var err error
		if fitted, err = tevc.Correct(raw, c.PreFit.Model); err != nil {
			return nil, err
		}
	}
	return append(panels, newPanel("Sweep %d pre-light corrected", fitted, c.PostFit)), nil
}

func newPanel(title string, s tevc.Sweep, fit *tevc.FitResult) Panel {
	p := Panel{
		Title:  fmt.Sprintf(title, s.Index),
		XLabel: s.Labels.Time,
		YLabel: s.Labels.Current,
		X:      s.Trace.Time,
		Curves: []Curve{{Name: "current", Y: s.Trace.Current}},
	}
	if fit != nil {
		p.Curves = append(p.Curves, Curve{Name: fit.Kind().String(), Y: tevc.Reconstruct(s.Trace.Time, fit.Model)})
	}
	return p
}
