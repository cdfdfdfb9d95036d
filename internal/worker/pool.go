package worker

import (
	"sync"

	"github.com/momo-analytics/momo-backend/internal/metrics"
)

type task func()

// Pool is a fixed set of goroutines draining a shared job queue.
type Pool struct {
	wg   sync.WaitGroup
	jobs chan task
	once sync.Once
}

func NewPool(n int) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{jobs: make(chan task, 1024)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				metrics.WorkerQueueDepth.Dec()
				job()
			}
		}()
	}
	return p
}

// Submit queues f. It blocks while the queue is full and panics after Stop.
func (p *Pool) Submit(f func()) {
	metrics.WorkerQueueDepth.Inc()
	p.jobs <- f
}

// Stop waits for queued jobs to finish.
func (p *Pool) Stop() {
	p.once.Do(func() {
		close(p.jobs)
		p.wg.Wait()
	})
}

// Map applies fn to every element of in on the pool and returns the results
// in input order. It must not be called from inside a pool job.
func Map[T, R any](p *Pool, in []T, fn func(int, T) R) []R {
	out := make([]R, len(in))
	var wg sync.WaitGroup
	wg.Add(len(in))
	for i, v := range in {
		p.Submit(func() {
			defer wg.Done()
			out[i] = fn(i, v)
		})
	}
	wg.Wait()
	return out
}
