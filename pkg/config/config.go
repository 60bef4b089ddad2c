package config

import (
	"flag"
	"fmt"
	"strconv"

	tevc "github.com/avivko/Oocyte-TVEC-analyzer"
)

// ArrayFlags collects a repeated float flag.
type ArrayFlags []float64

func (a *ArrayFlags) String() string {
	return fmt.Sprint([]float64(*a))
}

func (a *ArrayFlags) Set(value string) error {
	if val, err := strconv.ParseFloat(value, 64); err == nil {
		*a = append(*a, val)
		return nil
	} else {
		return err
	}
}

// Last returns the most recent value and whether one was set.
func (a ArrayFlags) Last() (float64, bool) {
	if len(a) == 0 {
		return 0, false
	}
	return a[len(a)-1], true
}

// Config holds all configuration settings of an analysis run
type Config struct {
	File string
	// Sweep selects a single sweep; negative means all.
	Sweep      int
	Correction string
	PreModel   string
	PostModel  string
	PreStart   ArrayFlags
	PostStart  ArrayFlags

	// Events of a text recording, which carries none.
	ClampOn    float64
	ShutterOn  float64
	ShutterOff float64
	ClampOff   float64

	OptimMethod     string
	Iterations      int
	ChiSqThreshold  float64
	TauMin          float64
	TauMax          float64
	PreLightOffset  float64
	PostLightOffset float64
	Extrapolation   float64

	OutDir    string
	Report    bool
	CSV       bool
	ImgSave   bool
	ImgFormat string
	ImgDPI    uint
	ImgSize   uint
	PlotFrom  int
	PlotTo    int

	Threads uint
	Profile bool
	Quiet   bool
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	s := tevc.DefaultSettings()
	return &Config{
		Sweep:           -1,
		Correction:      "pre_and_after_light",
		PreModel:        "exponential",
		PostModel:       "exponential",
		OptimMethod:     s.Method.String(),
		Iterations:      s.Iterations,
		ChiSqThreshold:  s.ChiSqThreshold,
		TauMin:          s.TauMin,
		TauMax:          s.TauMax,
		PreLightOffset:  s.PreLightOffset,
		PostLightOffset: s.PostLightOffset,
		Extrapolation:   s.Extrapolation,
		OutDir:          "out",
		Report:          true,
		ImgFormat:       "png",
		ImgDPI:          96,
		ImgSize:         6,
		PlotTo:          -1,
		Threads:         1,
	}
}

// Settings maps the run configuration onto the fitting settings.
func (c *Config) Settings() (tevc.Settings, error) {
	method, err := ParseMethod(c.OptimMethod)
	if err != nil {
		return tevc.Settings{}, err
	}
	return tevc.Settings{
		PreLightOffset:  c.PreLightOffset,
		PostLightOffset: c.PostLightOffset,
		Extrapolation:   c.Extrapolation,
		ChiSqThreshold:  c.ChiSqThreshold,
		TauMin:          c.TauMin,
		TauMax:          c.TauMax,
		Method:          method,
		Iterations:      c.Iterations,
	}, nil
}

// CorrectionOptions resolves model tags and window starts.
func (c *Config) CorrectionOptions() (tevc.CorrectionOptions, error) {
	pre, err := tevc.ParseKind(c.PreModel)
	if err != nil {
		return tevc.CorrectionOptions{}, fmt.Errorf("pre-light model: %w", err)
	}
	post, err := tevc.ParseKind(c.PostModel)
	if err != nil {
		return tevc.CorrectionOptions{}, fmt.Errorf("post-light model: %w", err)
	}
	opts := tevc.CorrectionOptions{PreKind: pre, PostKind: post}
	if t, ok := c.PreStart.Last(); ok {
		opts.PreStart = tevc.StartAt(t)
	}
	if t, ok := c.PostStart.Last(); ok {
		opts.PostStart = tevc.StartAt(t)
	}
	return opts, nil
}

// Mode parses the correction mode.
func (c *Config) Mode() (tevc.CorrectionMode, error) {
	return tevc.ParseCorrectionMode(c.Correction)
}

// Events returns the protocol events given on the command line.
func (c *Config) Events() tevc.Events {
	return tevc.Events{ClampOn: c.ClampOn, ShutterOn: c.ShutterOn, ShutterOff: c.ShutterOff, ClampOff: c.ClampOff}
}

func ParseMethod(s string) (tevc.Method, error) {
	switch s {
	case "levenberg-marquardt", "lm", "leastsq":
		return tevc.LevenbergMarquardt, nil
	case "nelder-mead", "nm":
		return tevc.NelderMead, nil
	}
	return 0, fmt.Errorf("unknown optimization method %q", s)
}

// RegisterFlags binds every field of c to a flag of fs, using the current
// values as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.File, "f", c.File, "Recording file (.json export or whitespace text)")
	fs.IntVar(&c.Sweep, "sweep", c.Sweep, "Sweep to analyze (-1 for all)")
	fs.StringVar(&c.Correction, "correction", c.Correction, "Correction mode: none, pre_light_only, pre_and_after_light")
	fs.StringVar(&c.PreModel, "pre-model", c.PreModel, "Pre-light model: linear, exponential")
	fs.StringVar(&c.PostModel, "post-model", c.PostModel, "Post-light model: linear, exponential")
	fs.Var(&c.PreStart, "pre-start", "Pre-light window start time (last value wins)")
	fs.Var(&c.PostStart, "post-start", "Post-light window start time (last value wins)")
	fs.Float64Var(&c.ClampOn, "clamp-on", c.ClampOn, "Clamp-on time of a text recording")
	fs.Float64Var(&c.ShutterOn, "shutter-on", c.ShutterOn, "Shutter-on time of a text recording")
	fs.Float64Var(&c.ShutterOff, "shutter-off", c.ShutterOff, "Shutter-off time of a text recording")
	fs.Float64Var(&c.ClampOff, "clamp-off", c.ClampOff, "Clamp-off time of a text recording")
	fs.StringVar(&c.OptimMethod, "method", c.OptimMethod, "Optimization method: levenberg-marquardt, nelder-mead")
	fs.IntVar(&c.Iterations, "iterations", c.Iterations, "Solver iteration cap")
	fs.Float64Var(&c.ChiSqThreshold, "chisq", c.ChiSqThreshold, "Reduced chi-square above which an exponential fit is rejected")
	fs.Float64Var(&c.TauMin, "tau-min", c.TauMin, "Lower bound of tau")
	fs.Float64Var(&c.TauMax, "tau-max", c.TauMax, "Upper bound of tau")
	fs.Float64Var(&c.PreLightOffset, "pre-offset", c.PreLightOffset, "Default pre-light window start before shutter-on")
	fs.Float64Var(&c.PostLightOffset, "post-offset", c.PostLightOffset, "Default post-light window start before clamp-off")
	fs.Float64Var(&c.Extrapolation, "extrapolation", c.Extrapolation, "Steady-state extrapolation factor of the exponential guess")
	fs.StringVar(&c.OutDir, "out", c.OutDir, "Output directory")
	fs.BoolVar(&c.Report, "report", c.Report, "Write report.json")
	fs.BoolVar(&c.CSV, "csv", c.CSV, "Write corrected traces to corrected.csv")
	fs.BoolVar(&c.ImgSave, "imgsave", c.ImgSave, "Save sweep and fit plots")
	fs.StringVar(&c.ImgFormat, "imgformat", c.ImgFormat, "Fit plot format: png, svg, pdf")
	fs.UintVar(&c.ImgDPI, "dpi", c.ImgDPI, "Image DPI")
	fs.UintVar(&c.ImgSize, "imgsize", c.ImgSize, "Image size (inches)")
	fs.IntVar(&c.PlotFrom, "plot-from", c.PlotFrom, "First plotted sample")
	fs.IntVar(&c.PlotTo, "plot-to", c.PlotTo, "End of plotted samples (-1 for all)")
	fs.UintVar(&c.Threads, "threads", c.Threads, "Number of worker threads")
	fs.BoolVar(&c.Profile, "profile", c.Profile, "Write CPU and heap profiles")
	fs.BoolVar(&c.Quiet, "q", c.Quiet, "Quiet mode")
}
