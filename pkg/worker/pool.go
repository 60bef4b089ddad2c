package worker

import (
	"fmt"
	"log"
	"sync"
	"time"

	tevc "github.com/avivko/Oocyte-TVEC-analyzer"
	"github.com/avivko/Oocyte-TVEC-analyzer/pkg/models"
	"github.com/avivko/Oocyte-TVEC-analyzer/pkg/profiling"
)

// Pool manages concurrent sweep correction workers
type Pool struct {
	jobs      chan models.WorkItem
	results   chan models.WorkResult
	workers   int
	wg        sync.WaitGroup
	processor ProcessorFunc
	profile   bool
	once      sync.Once
}

// ProcessorFunc corrects one sweep. It must not share state between calls.
type ProcessorFunc func(s tevc.Sweep) (*tevc.Correction, error)

// Options holds configuration for creating a new worker pool
type Options struct {
	Workers   int
	Processor ProcessorFunc
	Profile   bool
}

// New creates a new worker pool with specified configuration
func New(opts Options) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	pool := &Pool{
		jobs:      make(chan models.WorkItem, opts.Workers*2),
		results:   make(chan models.WorkResult, opts.Workers*2),
		workers:   opts.Workers,
		processor: opts.Processor,
		profile:   opts.Profile,
	}

	pool.start()
	return pool
}

// start initializes and starts all workers
func (p *Pool) start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	go func() {
		p.wg.Wait()
		close(p.results)
	}()

	log.Printf("Worker pool started with %d workers", p.workers)
}

// worker corrects sweeps until the jobs channel is closed
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for job := range p.jobs {
		p.results <- p.processJob(id, job)
	}
}

// processJob runs the processor; a panic fails only its own sweep
func (p *Pool) processJob(id int, job models.WorkItem) (res models.WorkResult) {
	res.ID = job.ID
	if p.profile {
		defer profiling.NewWorkerProfiler(id, fmt.Sprintf("sweep %d", job.Sweep.Index)).Finish()
	}
	startTime := time.Now()
	defer func() {
		res.ProcessingTime = time.Since(startTime)
		if r := recover(); r != nil {
			res.Correction = nil
			res.Err = fmt.Errorf("sweep %d: panic: %v", job.Sweep.Index, r)
		}
	}()

	res.Correction, res.Err = p.processor(job.Sweep)
	return res
}

// SubmitJob queues a sweep, blocking while the queue is full
func (p *Pool) SubmitJob(job models.WorkItem) {
	p.jobs <- job
}

// Results is closed once Shutdown was called and every job finished
func (p *Pool) Results() <-chan models.WorkResult {
	return p.results
}

// Shutdown stops accepting jobs; workers drain the queue and exit
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.jobs)
	})
}

// Run corrects all sweeps and returns the results in input order.
func Run(opts Options, sweeps []tevc.Sweep) []models.WorkResult {
	p := New(opts)
	go func() {
		for i, s := range sweeps {
			p.SubmitJob(models.WorkItem{ID: i, Sweep: s})
		}
		p.Shutdown()
	}()

	out := make([]models.WorkResult, len(sweeps))
	for r := range p.Results() {
		out[r.ID] = r
	}
	log.Printf("Worker pool finished %d sweeps", len(sweeps))
	return out
}
