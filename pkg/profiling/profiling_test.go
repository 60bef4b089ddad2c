package profiling

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProfileFunc(t *testing.T) {
	called := false
	m := ProfileFunc("noop", func() { called = true })
	if !called || m.Name != "noop" || m.Duration < 0 {
		t.Fatalf("metrics %+v called %v", m, called)
	}
}

func TestProfiler_WritesProfiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profile")
	p := New(dir)
	if err := p.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	for _, name := range []string{"cpu.pprof", "heap.pprof"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}
