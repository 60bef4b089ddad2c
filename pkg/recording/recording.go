// Package recording reads exported TEVC recordings and hands out sweeps.
package recording

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qdm12/reprint"

	tevc "github.com/avivko/Oocyte-TVEC-analyzer"
)

// Recording is a multi-sweep recording with a shared protocol.
type Recording struct {
	Path     string
	DataRate float64
	Labels   tevc.Labels
	Events   tevc.Events
	traces   []tevc.Trace
}

// New builds a recording from in-memory traces.
func New(events tevc.Events, labels tevc.Labels, traces ...tevc.Trace) (*Recording, error) {
	if err := events.Validate(); err != nil {
		return nil, err
	}
	for i, tr := range traces {
		if err := tr.Validate(); err != nil {
			return nil, fmt.Errorf("sweep %d: %w", i, err)
		}
	}
	return &Recording{Labels: labels, Events: events, traces: traces}, nil
}

// Open loads a JSON export, or a text export with the given events.
func Open(path string, events tevc.Events) (*Recording, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadJSON(path)
	}
	return LoadText(path, events)
}

func (r *Recording) SweepCount() int {
	return len(r.traces)
}

// Sweep returns sweep i. The returned sweep owns its channels.
func (r *Recording) Sweep(i int) (tevc.Sweep, error) {
	if i < 0 || i >= len(r.traces) {
		return tevc.Sweep{}, fmt.Errorf("sweep %d out of range [0, %d)", i, len(r.traces))
	}
	trace := reprint.This(r.traces[i]).(tevc.Trace)
	return tevc.Sweep{Index: i, Events: r.Events, Trace: trace, Labels: r.Labels}, nil
}

// Sweeps returns copies of all sweeps.
func (r *Recording) Sweeps() []tevc.Sweep {
	out := make([]tevc.Sweep, 0, len(r.traces))
	for i := range r.traces {
		s, _ := r.Sweep(i)
		out = append(out, s)
	}
	return out
}

// SweepVoltages is the clamp voltage of every sweep, read at mid-sweep.
func (r *Recording) SweepVoltages() []float64 {
	out := make([]float64, len(r.traces))
	for i, tr := range r.traces {
		out[i] = tevc.Sweep{Trace: tr}.ClampVoltage()
	}
	return out
}
