package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/esachdev28/truth-weaver/internal/logging"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// Pool runs jobs on a fixed set of workers. Results are either collected
// and returned by Wait (batch use) or handed to a result handler as they
// complete (long-running use).
type Pool struct {
	workers   int
	jobQueue  chan Job
	handler   func(Result)
	collector *ResultCollector
	log       *zap.Logger

	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// Option configures a Pool
type Option func(*Pool)

// WithQueueSize sets the job queue capacity
func WithQueueSize(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.jobQueue = make(chan Job, n)
		}
	}
}

// WithResultHandler routes each result to fn instead of collecting it
func WithResultHandler(fn func(Result)) Option {
	return func(p *Pool) {
		p.handler = fn
	}
}

// WithLogger sets the logger used for panics and dropped jobs
func WithLogger(l *zap.Logger) Option {
	return func(p *Pool) {
		p.log = logging.OrNop(l)
	}
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(workers int, opts ...Option) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &Pool{
		workers:    workers,
		jobQueue:   make(chan Job, workers*2),
		collector:  NewResultCollector(),
		log:        zap.NewNop(),
		ctx:        ctx,
		cancelFunc: cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start starts the worker pool
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			p.deliver(p.run(id, job))
		}
	}
}

func (p *Pool) run(id int, job Job) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("job panicked", zap.Int("worker", id), zap.Any("panic", r))
			result = &panicResult{err: fmt.Errorf("job panicked: %v", r)}
		}
	}()
	return job.Execute(p.ctx)
}

func (p *Pool) deliver(result Result) {
	if p.handler != nil {
		p.handler(result)
		return
	}
	p.collector.Add(result)
}

// Submit queues a job, blocking while the queue is full. It returns false
// if the pool is closed.
func (p *Pool) Submit(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}

	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- job:
		return true
	}
}

// TrySubmit queues a job without blocking. It returns false if the pool
// is closed or the queue is full.
func (p *Pool) TrySubmit(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}

	select {
	case p.jobQueue <- job:
		return true
	default:
		p.log.Warn("job queue full, dropping job", zap.Int("capacity", cap(p.jobQueue)))
		return false
	}
}

// Wait stops accepting jobs, waits for queued jobs to finish and returns
// the collected results. Results routed to a handler are not returned.
func (p *Pool) Wait() []Result {
	p.close()
	p.wg.Wait()
	p.cancelFunc()
	return p.collector.Results()
}

// Shutdown stops accepting jobs and drains the queue. If ctx expires first,
// running jobs are cancelled and ctx's error is returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.close()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancelFunc()
		return nil
	case <-ctx.Done():
		p.cancelFunc()
		<-done
		return ctx.Err()
	}
}

func (p *Pool) close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.jobQueue)
		p.mu.Unlock()
	})
}

// Pending returns the number of queued jobs not yet picked up
func (p *Pool) Pending() int {
	return len(p.jobQueue)
}

type panicResult struct {
	err error
}

func (r *panicResult) GetError() error {
	return r.err
}

// ResultCollector provides a safer way to collect results as they arrive
type ResultCollector struct {
	results []Result
	mu      sync.Mutex
}

// NewResultCollector creates a new result collector
func NewResultCollector() *ResultCollector {
	return &ResultCollector{
		results: make([]Result, 0),
	}
}

// Add adds a result to the collector (thread-safe)
func (c *ResultCollector) Add(result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
}

// Results returns a copy of the collected results
func (c *ResultCollector) Results() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Result, len(c.results))
	copy(out, c.results)
	return out
}
