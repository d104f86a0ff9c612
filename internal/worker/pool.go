package worker

import (
	"context"
	"sort"
	"sync"
)

// Job is a unit of work run by the pool
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a Job produces
type Result interface {
	GetError() error
}

// sequenced tags a job or result with its submission order
type sequenced struct {
	seq    int
	job    Job
	result Result
}

// Pool runs jobs on a fixed number of goroutines. Wait returns results in
// submission order regardless of completion order.
type Pool struct {
	workers    int
	jobQueue   chan sequenced
	results    chan sequenced
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc

	mu        sync.Mutex
	submitted int
}

// NewPool creates a pool bound to ctx; cancelling ctx stops the workers
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan sequenced, workers*2),
		results:    make(chan sequenced, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start launches the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case item, ok := <-p.jobQueue:
			if !ok {
				return
			}
			item.result = item.job.Execute(p.ctx)
			item.job = nil
			select {
			case p.results <- item:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. It returns false once the pool has been shut down.
func (p *Pool) Submit(job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}

	p.mu.Lock()
	seq := p.submitted
	p.submitted++
	p.mu.Unlock()

	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- sequenced{seq: seq, job: job}:
		return true
	}
}

// Wait closes the queue, waits for the workers and returns every result
// that was produced, ordered by submission.
func (p *Pool) Wait() []Result {
	close(p.jobQueue)

	go func() {
		p.wg.Wait()
		close(p.results)
	}()

	var items []sequenced
	for item := range p.results {
		items = append(items, item)
	}
	p.cancelFunc()

	sort.Slice(items, func(i, j int) bool { return items[i].seq < items[j].seq })
	results := make([]Result, len(items))
	for i, item := range items {
		results[i] = item.result
	}
	return results
}
