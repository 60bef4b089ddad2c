package tevc

import (
	"fmt"
	"log"
	"strings"
)

// CorrectionMode selects which baselines are subtracted from a sweep.
type CorrectionMode int

const (
	CorrectionNone CorrectionMode = iota
	CorrectionPreLight
	CorrectionPreAndAfterLight
)

var correctionNames = map[CorrectionMode]string{
	CorrectionNone:             "none",
	CorrectionPreLight:         "pre_light_only",
	CorrectionPreAndAfterLight: "pre_and_after_light",
}

func (m CorrectionMode) String() string {
	if s, ok := correctionNames[m]; ok {
		return s
	}
	return fmt.Sprintf("CorrectionMode(%d)", int(m))
}

// ParseCorrectionMode accepts the mode names, with '-' in place of '_'.
func ParseCorrectionMode(s string) (CorrectionMode, error) {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	switch s {
	case "", "none", "false", "raw":
		return CorrectionNone, nil
	case "pre_light", "pre_light_only":
		return CorrectionPreLight, nil
	case "pre_and_after_light", "pre_and_post_light":
		return CorrectionPreAndAfterLight, nil
	}
	return CorrectionNone, fmt.Errorf("unknown correction mode %q", s)
}

// CorrectionOptions picks the model families and window starts of the
// pre-light and post-light fits.
type CorrectionOptions struct {
	PreKind   Kind
	PostKind  Kind
	PreStart  WindowOptions
	PostStart WindowOptions
}

func DefaultCorrectionOptions() CorrectionOptions {
	return CorrectionOptions{PreKind: KindExponential, PostKind: KindExponential}
}

// Correction is the outcome of correcting one sweep. PostWindow and PostFit
// are only set in pre-and-after-light mode.
type Correction struct {
	Mode  CorrectionMode
	Raw   Sweep
	Sweep Sweep

	PreWindow  Window
	PreFit     *FitResult
	PostWindow Window
	PostFit    *FitResult
}

// Corrected is the current after all baselines were subtracted.
func (c *Correction) Corrected() []float64 {
	return c.Sweep.Trace.Current
}

// Corrector composes window selection, fitting and subtraction.
type Corrector struct {
	Settings Settings
	Options  CorrectionOptions
	fitter   *Fitter
}

func NewCorrector(settings Settings, opts CorrectionOptions) *Corrector {
	return &Corrector{Settings: settings, Options: opts, fitter: NewFitter(settings)}
}

// Apply runs the given mode on s. s itself is never modified.
func (c *Corrector) Apply(s Sweep, mode CorrectionMode) (*Correction, error) {
	switch mode {
	case CorrectionNone:
		return &Correction{Mode: mode, Raw: s, Sweep: s}, nil
	case CorrectionPreLight:
		return c.PreLight(s)
	case CorrectionPreAndAfterLight:
		return c.PreAndAfterLight(s)
	}
	return nil, fmt.Errorf("unknown correction mode %v", mode)
}

// FitPreLight fits the baseline between the default (or requested) start and
// shutter-on.
func (c *Corrector) FitPreLight(s Sweep) (Window, *FitResult, error) {
	w, err := PreLightWindow(s, c.Settings, c.Options.PreStart)
	if err != nil {
		return Window{}, nil, err
	}
	fit, err := c.fitter.Fit(w.Slice(s.Trace.Time), w.Slice(s.Trace.Current), c.Options.PreKind, FitOptions{})
	if err != nil {
		return w, nil, fmt.Errorf("pre-light fit of sweep %d: %w", s.Index, err)
	}
	return w, fit, nil
}

// FitPostLight fits the segment before clamp-off. An exponential is fitted as
// a response rising from zero at shutter-on.
func (c *Corrector) FitPostLight(s Sweep) (Window, *FitResult, error) {
	w, err := PostLightWindow(s, c.Settings, c.Options.PostStart)
	if err != nil {
		return Window{}, nil, err
	}
	kind := c.Options.PostKind
	var opts FitOptions
	if kind == KindExponential || kind == KindExponentialFromZero {
		kind = KindExponentialFromZero
		opts.Shift = s.Events.ShutterOn
	}
	fit, err := c.fitter.Fit(w.Slice(s.Trace.Time), w.Slice(s.Trace.Current), kind, opts)
	if err != nil {
		return w, nil, fmt.Errorf("post-light fit of sweep %d: %w", s.Index, err)
	}
	return w, fit, nil
}

// PreLight subtracts the pre-light baseline from the raw current.
func (c *Corrector) PreLight(s Sweep) (*Correction, error) {
	w, fit, err := c.FitPreLight(s)
	if err != nil {
		return nil, err
	}
	corrected, err := Correct(s, fit.Model)
	if err != nil {
		return nil, err
	}
	log.Printf("sweep %d: pre-light baseline %s (redchi %.4g)", s.Index, fit.Kind(), fit.RedChi)
	return &Correction{Mode: CorrectionPreLight, Raw: s, Sweep: corrected, PreWindow: w, PreFit: fit}, nil
}

// PreAndAfterLight fits the post-light window on the pre-light corrected
// current and subtracts that baseline from it as well.
func (c *Corrector) PreAndAfterLight(s Sweep) (*Correction, error) {
	pre, err := c.PreLight(s)
	if err != nil {
		return nil, err
	}
	w, fit, err := c.FitPostLight(pre.Sweep)
	if err != nil {
		return nil, err
	}
	corrected, err := Correct(pre.Sweep, fit.Model)
	if err != nil {
		return nil, err
	}
	log.Printf("sweep %d: post-light baseline %s (redchi %.4g)", s.Index, fit.Kind(), fit.RedChi)

	pre.Mode = CorrectionPreAndAfterLight
	pre.Sweep = corrected
	pre.PostWindow = w
	pre.PostFit = fit
	return pre, nil
}
