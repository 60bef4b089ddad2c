package profiling

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
)

// Profiler writes a CPU profile of a run and a heap profile at its end.
type Profiler struct {
	dir     string
	cpuFile *os.File
}

// New creates a profiler writing into dir.
func New(dir string) *Profiler {
	return &Profiler{dir: dir}
}

// Start begins CPU profiling
func (p *Profiler) Start() error {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(p.dir, "cpu.pprof"))
	if err != nil {
		return err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return fmt.Errorf("start cpu profile: %w", err)
	}
	p.cpuFile = f
	log.Printf("CPU profiling to %s", f.Name())
	return nil
}

// Stop ends CPU profiling and writes the heap profile
func (p *Profiler) Stop() error {
	if p.cpuFile == nil {
		return nil
	}
	pprof.StopCPUProfile()
	if err := p.cpuFile.Close(); err != nil {
		return err
	}
	p.cpuFile = nil

	f, err := os.Create(filepath.Join(p.dir, "heap.pprof"))
	if err != nil {
		return err
	}
	defer f.Close()
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("write heap profile: %w", err)
	}
	LogMemoryStats()
	return nil
}
