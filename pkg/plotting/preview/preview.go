// Package preview opens interactive gnuplot windows. Importing it requires
// gnuplot on the PATH, so only the preview binary links it.
package preview

import (
	"fmt"

	"github.com/Arafatk/glot"

	tevc "github.com/avivko/Oocyte-TVEC-analyzer"
	"github.com/avivko/Oocyte-TVEC-analyzer/pkg/plotting"
)

// Correction opens one persistent window per panel of c.
func Correction(c *tevc.Correction) error {
	panels, err := plotting.CorrectionPanels(c)
	if err != nil {
		return err
	}
	for _, p := range panels {
		if err := Panel(p); err != nil {
			return err
		}
	}
	return nil
}

// Panel draws p in a persistent gnuplot window.
func Panel(p plotting.Panel) error {
	dimensions := 2
	persist := true
	debug := false
	plot, err := glot.NewPlot(dimensions, persist, debug)
	if err != nil {
		return fmt.Errorf("gnuplot: %w", err)
	}

	plot.SetTitle(p.Title)
	plot.SetXLabel(p.XLabel)
	plot.SetYLabel(p.YLabel)
	for _, c := range p.Curves {
		if err := plot.AddPointGroup(c.Name, "lines", [][]float64{p.X, c.Y}); err != nil {
			return err
		}
	}
	return nil
}
