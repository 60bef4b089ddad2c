// Command tevc-preview corrects sweeps like tevc and shows each baseline over
// the current it was fitted to in gnuplot windows. It needs gnuplot on the
// PATH; tevc itself does not.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/avivko/Oocyte-TVEC-analyzer/internal/processing"
	"github.com/avivko/Oocyte-TVEC-analyzer/pkg/config"
	"github.com/avivko/Oocyte-TVEC-analyzer/pkg/plotting/preview"
	"github.com/avivko/Oocyte-TVEC-analyzer/pkg/recording"
)

func main() {
	cfg := config.DefaultConfig()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()
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
	res, err := analyzer.Process(rec)
	if err != nil {
		log.Fatal(err)
	}

	for _, c := range res.Corrections {
		if c == nil {
			continue
		}
		if err := preview.Correction(c); err != nil {
			log.Fatalf("Preview of sweep %d: %v", c.Raw.Index, err)
		}
	}
}
