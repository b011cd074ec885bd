// Package worker provides a bounded pool for running independent jobs
// concurrently and collecting their outcomes.
package worker

import (
	"context"
	"sync"
	"time"
)

// Job is a unit of work identified by ID.
type Job struct {
	// ID identifies the job in its Result (useful for logging/debugging)
	ID string
	// Run is the function to execute. It receives the pool's context.
	Run func(ctx context.Context) error
}

// Result is the outcome of a single job.
type Result struct {
	// JobID is the ID of the job that produced this result
	JobID string
	// Duration is the wall-clock time the job took
	Duration time.Duration
	// Err is the error from the job (nil on success)
	Err error
}

// Pool runs jobs on a fixed number of worker goroutines.
type Pool struct {
	workers  int
	jobQueue chan Job
	results  chan Result
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

// New creates a pool with the given number of workers and queue buffer.
// Workers start immediately and wait for jobs.
func New(ctx context.Context, workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	poolCtx, cancel := context.WithCancel(ctx)

	p := &Pool{
		workers:  workers,
		jobQueue: make(chan Job, queueSize),
		results:  make(chan Result, queueSize),
		ctx:      poolCtx,
		cancel:   cancel,
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// worker is the main worker goroutine loop.
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			start := time.Now()
			err := job.Run(p.ctx)
			select {
			case p.results <- Result{JobID: job.ID, Duration: time.Since(start), Err: err}:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit enqueues a job. It blocks while the queue is full and returns
// an error if the pool's context is cancelled first.
func (p *Pool) Submit(job Job) error {
	select {
	case <-p.ctx.Done():
		return p.ctx.Err()
	case p.jobQueue <- job:
		return nil
	}
}

// RunAll submits every job and waits for all results.
// Results arrive in completion order, not submission order.
func (p *Pool) RunAll(jobs []Job) []Result {
	submitted := 0
	for _, job := range jobs {
		if err := p.Submit(job); err != nil {
			// Context cancelled, collect what already ran
			break
		}
		submitted++
	}

	results := make([]Result, 0, submitted)
	for i := 0; i < submitted; i++ {
		select {
		case <-p.ctx.Done():
			return results
		case result := <-p.results:
			results = append(results, result)
		}
	}

	return results
}

// Results exposes the results channel for streaming consumption.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Workers returns the pool size.
func (p *Pool) Workers() int {
	return p.workers
}

// Close stops the pool and waits for workers to exit.
func (p *Pool) Close() {
	p.cancel()
	p.wg.Wait()
}
