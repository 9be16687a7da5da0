package worker

import (
	"context"
	"runtime"
	"sync"
)

// Job is a unit of work processed by the pool.
type Job interface {
	Process(ctx context.Context) error
	ID() string
}

// Result contains the outcome of processing a job.
type Result struct {
	JobID string
	Index int
	Error error
}

// Observer is notified as jobs start and finish. Calls may come from any
// worker goroutine.
type Observer interface {
	Started(workerID int, jobID string)
	Finished(workerID int, result Result)
}

type indexedJob struct {
	index int
	job   Job
}

// Pool manages a fixed number of worker goroutines.
type Pool struct {
	workerCount int
	jobs        chan indexedJob
	results     chan Result
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	observer    Observer
	submitted   int
	mu          sync.Mutex
}

// NewPool creates a pool bound to ctx. A non-positive workerCount uses one
// worker per CPU.
func NewPool(ctx context.Context, workerCount int) *Pool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workerCount: workerCount,
		jobs:        make(chan indexedJob, workerCount*2),
		results:     make(chan Result, workerCount*2),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// NewPoolWithObserver creates a pool that reports progress to observer.
func NewPoolWithObserver(ctx context.Context, workerCount int, observer Observer) *Pool {
	p := NewPool(ctx, workerCount)
	p.observer = observer
	return p
}

// Start begins processing jobs
func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop waits for queued jobs to finish and closes the results channel.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
	close(p.results)
	p.cancel()
}

// ForceStop cancels outstanding work and waits for workers to exit.
func (p *Pool) ForceStop() {
	p.cancel()
	close(p.jobs)
	p.wg.Wait()
	close(p.results)
}

// Submit queues a job. It blocks while the queue is full and reports the
// context error as the job's result once the pool is cancelled.
func (p *Pool) Submit(job Job) {
	p.mu.Lock()
	index := p.submitted
	p.submitted++
	p.mu.Unlock()

	select {
	case p.jobs <- indexedJob{index: index, job: job}:
	case <-p.ctx.Done():
		p.results <- Result{JobID: job.ID(), Index: index, Error: p.ctx.Err()}
	}
}

// Results returns the results channel
func (p *Pool) Results() <-chan Result {
	return p.results
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case item, ok := <-p.jobs:
			if !ok {
				return
			}
			if p.observer != nil {
				p.observer.Started(id, item.job.ID())
			}

			result := Result{JobID: item.job.ID(), Index: item.index}
			if err := p.ctx.Err(); err != nil {
				result.Error = err
			} else {
				result.Error = item.job.Process(p.ctx)
			}

			if p.observer != nil {
				p.observer.Finished(id, result)
			}
			p.results <- result

		case <-p.ctx.Done():
			return
		}
	}
}

// WorkerCount returns the number of workers in the pool
func (p *Pool) WorkerCount() int {
	return p.workerCount
}

// Run processes jobs on a fresh pool and returns their results in
// submission order.
func Run(ctx context.Context, workerCount int, observer Observer, jobs []Job) []Result {
	p := NewPoolWithObserver(ctx, workerCount, observer)
	p.Start()

	go func() {
		for _, job := range jobs {
			p.Submit(job)
		}
		p.Stop()
	}()

	results := make([]Result, len(jobs))
	seen := make([]bool, len(jobs))
	for r := range p.Results() {
		results[r.Index] = r
		seen[r.Index] = true
	}

	// jobs still queued when the context was cancelled
	for i, ok := range seen {
		if !ok {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			results[i] = Result{JobID: jobs[i].ID(), Index: i, Error: err}
		}
	}
	return results
}
