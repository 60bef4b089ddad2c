package models

import (
	"math"
	"time"

	tevc "github.com/avivko/Oocyte-TVEC-analyzer"
)

// FitReport is the JSON record of one accepted fit
type FitReport struct {
	Window     string             `json:"window"`
	Model      string             `json:"model"`
	Values     map[string]float64 `json:"values"`
	Stderr     map[string]float64 `json:"stderr,omitempty"`
	ChiSquare  float64            `json:"chi_square"`
	RedChi     float64            `json:"reduced_chi_square"`
	RSquared   *float64           `json:"r_squared,omitempty"`
	NData      int                `json:"n_data"`
	NFree      int                `json:"n_free"`
	Method     string             `json:"method"`
	StartTime  float64            `json:"start_time"`
	EndTime    float64            `json:"end_time"`
	Rejected   string             `json:"rejected_model,omitempty"`
	RejectedRC float64            `json:"rejected_reduced_chi_square,omitempty"`
}

// SweepReport collects the outcome of correcting one sweep
type SweepReport struct {
	Sweep          int           `json:"sweep"`
	ClampVoltage   float64       `json:"clamp_voltage"`
	Correction     string        `json:"correction"`
	Fits           []FitReport   `json:"fits,omitempty"`
	Success        bool          `json:"success"`
	Error          string        `json:"error,omitempty"`
	ProcessingTime time.Duration `json:"processing_time_ns"`
}

// RunReport is the top-level report of an analysis run
type RunReport struct {
	ID        string        `json:"id"`
	File      string        `json:"file"`
	Started   time.Time     `json:"started"`
	Duration  time.Duration `json:"duration_ns"`
	Settings  tevc.Settings `json:"settings"`
	Sweeps    []SweepReport `json:"sweeps"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
}

// NewFitReport flattens a fit result. Non-finite statistics are left out
// since encoding/json cannot represent them.
func NewFitReport(window string, w tevc.Window, r *tevc.FitResult) FitReport {
	rep := FitReport{
		Window:    window,
		Model:     r.Kind().String(),
		Values:    r.Values(),
		ChiSquare: r.ChiSquare,
		RedChi:    r.RedChi,
		NData:     r.NData,
		NFree:     r.NFree,
		Method:    r.Method.String(),
		StartTime: w.StartTime,
		EndTime:   w.EndTime,
	}
	if finite(r.RSquared) {
		r2 := r.RSquared
		rep.RSquared = &r2
	}
	for i, n := range r.Names {
		if se := r.Stderr[i]; finite(se) {
			if rep.Stderr == nil {
				rep.Stderr = make(map[string]float64)
			}
			rep.Stderr[n] = se
		}
	}
	if r.Rejected != nil {
		rep.Rejected = r.Rejected.Kind().String()
		rep.RejectedRC = r.Rejected.RedChi
	}
	return rep
}

// NewSweepReport summarises a correction; fits are listed pre-light first.
func NewSweepReport(c *tevc.Correction) SweepReport {
	rep := SweepReport{
		Sweep:        c.Raw.Index,
		ClampVoltage: c.Raw.ClampVoltage(),
		Correction:   c.Mode.String(),
		Success:      true,
	}
	if c.PreFit != nil {
		rep.Fits = append(rep.Fits, NewFitReport("pre-light", c.PreWindow, c.PreFit))
	}
	if c.PostFit != nil {
		rep.Fits = append(rep.Fits, NewFitReport("post-light", c.PostWindow, c.PostFit))
	}
	return rep
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// WorkItem is one sweep queued for correction
type WorkItem struct {
	ID    int
	Sweep tevc.Sweep
}

// WorkResult contains the outcome of correcting one sweep
type WorkResult struct {
	ID             int
	Correction     *tevc.Correction
	Err            error
	ProcessingTime time.Duration
}
