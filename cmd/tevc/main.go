package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gonum.org/v1/plot/vg"

	tevc "github.com/avivko/Oocyte-TVEC-analyzer"
	"github.com/avivko/Oocyte-TVEC-analyzer/internal/processing"
	"github.com/avivko/Oocyte-TVEC-analyzer/pkg/config"
	"github.com/avivko/Oocyte-TVEC-analyzer/pkg/export"
	"github.com/avivko/Oocyte-TVEC-analyzer/pkg/plotting"
	"github.com/avivko/Oocyte-TVEC-analyzer/pkg/profiling"
	"github.com/avivko/Oocyte-TVEC-analyzer/pkg/recording"
)

func main() {
	cfg := parseFlags()
	if cfg.File == "" {
		flag.Usage()
		os.Exit(2)
	}

	analyzer, err := processing.NewAnalyzer(cfg)
	if err != nil {
		log.Fatal(err)
	}

	rec, err := recording.Open(cfg.File, cfg.Events())
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Loaded %s: %d sweeps, events %+v", rec.Path, rec.SweepCount(), rec.Events)

	var profiler *profiling.Profiler
	if cfg.Profile {
		profiler = profiling.New(filepath.Join(cfg.OutDir, "profile"))
		if err := profiler.Start(); err != nil {
			log.Fatal(err)
		}
	}

	var res *processing.Result
	process := func() { res, err = analyzer.Process(rec) }
	if cfg.Profile {
		profiling.ProfileFunc("process", process)
	} else {
		process()
	}
	if err != nil {
		log.Fatal(err)
	}
	if profiler != nil {
		if err := profiler.Stop(); err != nil {
			log.Printf("Error writing profiles: %v", err)
		}
	}

	dir := filepath.Join(cfg.OutDir, res.Report.ID)
	if err := writeOutputs(cfg, dir, rec, res); err != nil {
		log.Fatal(err)
	}
	if res.Report.Failed > 0 {
		os.Exit(1)
	}
}

// parseFlags parses command line flags and returns configuration
func parseFlags() *config.Config {
	cfg := config.DefaultConfig()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()
	return cfg
}

func writeOutputs(cfg *config.Config, dir string, rec *recording.Recording, res *processing.Result) error {
	if cfg.Report {
		if err := export.WriteJSON(filepath.Join(dir, "report.json"), res.Report); err != nil {
			return err
		}
	}
	if cfg.CSV {
		if err := export.WriteCSV(filepath.Join(dir, "corrected.csv"), res.Corrections); err != nil {
			return err
		}
	}
	if cfg.ImgSave {
		if err := savePlots(cfg, dir, rec, res.Corrections); err != nil {
			return err
		}
	}
	log.Printf("Outputs written to %s", dir)
	return nil
}

func savePlots(cfg *config.Config, dir string, rec *recording.Recording, corrections []*tevc.Correction) error {
	opts := plotting.DefaultOptions()
	opts.Width = vg.Length(cfg.ImgSize) * vg.Inch
	opts.Height = opts.Width
	opts.DPI = int(cfg.ImgDPI)
	opts.From, opts.To = cfg.PlotFrom, cfg.PlotTo

	if cfg.Sweep < 0 && rec.SweepCount() > 1 {
		if err := plotting.PlotAllSweeps(filepath.Join(dir, "sweeps.png"), rec.Sweeps(), rec.SweepVoltages(), opts); err != nil {
			return err
		}
		if mode, _ := cfg.Mode(); mode != tevc.CorrectionNone && succeeded(corrections) > 1 {
			if err := plotting.PlotAllCorrected(filepath.Join(dir, "sweeps_corrected.png"), corrections, opts); err != nil {
				return err
			}
		}
	}
	for _, c := range corrections {
		if c == nil {
			continue
		}
		name := fmt.Sprintf("sweep%03d", c.Raw.Index)
		if err := plotting.PlotSweep(filepath.Join(dir, name+"_raw.png"), c.Raw, opts); err != nil {
			return err
		}
		if c.Mode != tevc.CorrectionNone {
			if err := plotting.PlotSweep(filepath.Join(dir, name+"_corrected.png"), c.Sweep, opts); err != nil {
				return err
			}
		}
		for window, fit := range map[string]*tevc.FitResult{"pre": c.PreFit, "post": c.PostFit} {
			if fit == nil {
				continue
			}
			path := filepath.Join(dir, fmt.Sprintf("%s_%s_fit.%s", name, window, cfg.ImgFormat))
			title := fmt.Sprintf("Sweep %d %s-light fit", c.Raw.Index, window)
			if err := plotting.PlotFit(path, title, fit, opts); err != nil {
				return err
			}
		}
	}
	return nil
}

func succeeded(corrections []*tevc.Correction) int {
	n := 0
	for _, c := range corrections {
		if c != nil {
			n++
		}
	}
	return n
}
