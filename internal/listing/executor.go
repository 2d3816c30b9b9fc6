package listing

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// DefaultWorkers bounds concurrent fetches of the default pool
const DefaultWorkers = 5

// Executor runs fetches off the UI goroutine
type Executor interface {
	Go(fn func())
}

// ExecutorFunc adapts a function to an Executor
type ExecutorFunc func(fn func())

func (f ExecutorFunc) Go(fn func()) { f(fn) }

// Synchronous runs work on the calling goroutine
var Synchronous Executor = ExecutorFunc(func(fn func()) { fn() })

// Pool runs work on goroutines, at most n at a time.
type Pool struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

// NewPool returns a pool running at most n jobs concurrently.
func NewPool(n int64) *Pool {
	if n < 1 {
		n = 1
	}
	return &Pool{sem: semaphore.NewWeighted(n)}
}

// Go schedules fn and returns immediately.
func (p *Pool) Go(fn func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.sem.Acquire(context.Background(), 1); err != nil {
			return
		}
		defer p.sem.Release(1)
		fn()
	}()
}

// Wait blocks until every scheduled job has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}
