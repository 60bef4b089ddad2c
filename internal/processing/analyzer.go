package processing

import (
	"fmt"
	"log"
	"time"

	tevc "github.com/avivko/Oocyte-TVEC-analyzer"
	"github.com/avivko/Oocyte-TVEC-analyzer/internal/utils"
	"github.com/avivko/Oocyte-TVEC-analyzer/pkg/config"
	"github.com/avivko/Oocyte-TVEC-analyzer/pkg/models"
	"github.com/avivko/Oocyte-TVEC-analyzer/pkg/recording"
	"github.com/avivko/Oocyte-TVEC-analyzer/pkg/worker"
)

// Analyzer corrects the sweeps of a recording
type Analyzer struct {
	cfg       *config.Config
	settings  tevc.Settings
	mode      tevc.CorrectionMode
	corrector *tevc.Corrector
}

// Result holds the report and the corrections of a run. Corrections has
// a nil entry for every failed sweep.
type Result struct {
	Report      models.RunReport
	Corrections []*tevc.Correction
}

// NewAnalyzer validates cfg and prepares the corrector
func NewAnalyzer(cfg *config.Config) (*Analyzer, error) {
	settings, err := cfg.Settings()
	if err != nil {
		return nil, err
	}
	mode, err := cfg.Mode()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.CorrectionOptions()
	if err != nil {
		return nil, err
	}
	return &Analyzer{
		cfg:       cfg,
		settings:  settings,
		mode:      mode,
		corrector: tevc.NewCorrector(settings, opts),
	}, nil
}

// Process corrects the selected sweeps of rec. A failing sweep is reported
// and does not stop the others.
func (a *Analyzer) Process(rec *recording.Recording) (*Result, error) {
	sweeps, err := a.selectSweeps(rec)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	if !a.cfg.Quiet {
		log.Printf("Processing %d sweeps of %s with correction %s", len(sweeps), rec.Path, a.mode)
	}
	results := worker.Run(worker.Options{
		Workers:   int(a.cfg.Threads),
		Processor: a.ProcessSweep,
		Profile:   a.cfg.Profile,
	}, sweeps)

	res := &Result{
		Report: models.RunReport{
			ID:       utils.GenerateID(),
			File:     rec.Path,
			Started:  started,
			Settings: a.settings,
		},
		Corrections: make([]*tevc.Correction, len(results)),
	}
	for i, r := range results {
		var rep models.SweepReport
		if r.Err != nil {
			log.Printf("Sweep %d FAILED: %v", sweeps[i].Index, r.Err)
			rep = models.SweepReport{
				Sweep:        sweeps[i].Index,
				ClampVoltage: sweeps[i].ClampVoltage(),
				Correction:   a.mode.String(),
				Error:        r.Err.Error(),
			}
			res.Report.Failed++
		} else {
			rep = models.NewSweepReport(r.Correction)
			res.Corrections[i] = r.Correction
			res.Report.Succeeded++
		}
		rep.ProcessingTime = r.ProcessingTime
		res.Report.Sweeps = append(res.Report.Sweeps, rep)
	}
	res.Report.Duration = time.Since(started)
	log.Printf("Processed %d sweeps: %d succeeded, %d failed in %v",
		len(sweeps), res.Report.Succeeded, res.Report.Failed, res.Report.Duration)
	return res, nil
}

// ProcessSweep corrects a single sweep
func (a *Analyzer) ProcessSweep(s tevc.Sweep) (*tevc.Correction, error) {
	c, err := a.corrector.Apply(s, a.mode)
	if err != nil {
		return nil, err
	}
	if !a.cfg.Quiet {
		for _, f := range []*tevc.FitResult{c.PreFit, c.PostFit} {
			if f != nil {
				log.Printf("Sweep %d: %s, RedChi=%.6e, R2=%.6f, Params=%v", s.Index, f.Kind(), f.RedChi, f.RSquared, f.Values())
			}
		}
	}
	return c, nil
}

func (a *Analyzer) selectSweeps(rec *recording.Recording) ([]tevc.Sweep, error) {
	if a.cfg.Sweep < 0 {
		return rec.Sweeps(), nil
	}
	s, err := rec.Sweep(a.cfg.Sweep)
	if err != nil {
		return nil, fmt.Errorf("select sweep: %w", err)
	}
	return []tevc.Sweep{s}, nil
}
