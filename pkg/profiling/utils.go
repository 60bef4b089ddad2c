package profiling

import (
	"log"
	"runtime"
	"time"
)

// Metrics is what a profiler measured for one operation.
type Metrics struct {
	Name        string
	Duration    time.Duration
	MemoryDelta int64
	Goroutines  int
}

// WorkerProfiler profiles worker pool operations
type WorkerProfiler struct {
	startTime   time.Time
	startMemory uint64
	workerID    int
	operation   string
}

// NewWorkerProfiler creates a new worker profiler
func NewWorkerProfiler(workerID int, operation string) *WorkerProfiler {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &WorkerProfiler{
		startTime:   time.Now(),
		startMemory: m.Alloc,
		workerID:    workerID,
		operation:   operation,
	}
}

// Finish completes worker profiling and logs metrics
func (wp *WorkerProfiler) Finish() Metrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	metrics := Metrics{
		Name:        wp.operation,
		Duration:    time.Since(wp.startTime),
		MemoryDelta: int64(m.Alloc) - int64(wp.startMemory),
		Goroutines:  runtime.NumGoroutine(),
	}
	log.Printf("Worker[%d] %s: %.3fms, memory: %+d bytes, goroutines: %d",
		wp.workerID, metrics.Name, msec(metrics.Duration), metrics.MemoryDelta, metrics.Goroutines)
	return metrics
}

// ProfileFunc profiles a function execution
func ProfileFunc(name string, fn func()) Metrics {
	profiler := NewWorkerProfiler(0, name)
	fn()
	return profiler.Finish()
}

// LogMemoryStats logs current memory and garbage collector statistics
func LogMemoryStats() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	log.Printf("Memory: Alloc=%.2fMB, TotalAlloc=%.2fMB, Sys=%.2fMB, GC=%d, GCPause=%.2fms",
		bToMb(m.Alloc), bToMb(m.TotalAlloc), bToMb(m.Sys), m.NumGC, msec(time.Duration(m.PauseTotalNs)))
}

func msec(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1000000.0
}

func bToMb(b uint64) float64 {
	return float64(b) / 1024 / 1024
}
