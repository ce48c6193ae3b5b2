// Package workerpool provides a bounded goroutine pool with backpressure.
//
// A Pool limits the number of goroutines that run concurrently. When all
// workers are busy and the queue is full, Submit returns ErrPoolFull so the
// caller can decide to retry or reject; SubmitWait blocks instead.
//
//	pool := workerpool.New(8)
//	defer pool.Shutdown()
//
//	err := pool.SubmitWait(func() { index(product) })
//
// Run is the batch form used by the seeder: it fans a set of fallible jobs
// out over a pool and joins their errors.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPoolFull is returned by Submit when the task queue is at capacity.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed is returned by Submit after Shutdown has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool is a bounded goroutine pool.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup

	// mu guards closed and the tasks channel against a send racing close.
	mu     sync.RWMutex
	closed bool
}

// New creates a Pool with size workers and a queue of twice that.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}

	p := &Pool{tasks: make(chan func(), size*2)}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues task without blocking.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait enqueues task, blocking until there is room. Shutdown waits
// for a blocked SubmitWait to land its task.
func (p *Pool) SubmitWait(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}
	p.tasks <- task
	return nil
}

// Shutdown stops accepting tasks, runs everything already queued and
// releases the workers. Safe to call multiple times.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		safeRun(task)
	}
}

// safeRun keeps a panicking task from killing its worker.
func safeRun(task func()) {
	defer func() { recover() }() //nolint:errcheck
	task()
}

// Run executes jobs on size workers and returns every failure joined. Once
// ctx is done the jobs not yet started are skipped and ctx.Err() is
// reported once. A panicking job counts as a failure.
func Run(ctx context.Context, size int, jobs ...func(context.Context) error) error {
	pool := New(size)

	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)
	record := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for i, job := range jobs {
		if ctx.Err() != nil {
			record(ctx.Err())
			break
		}
		i, job := i, job
		wg.Add(1)
		err := pool.SubmitWait(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					record(fmt.Errorf("job %d panicked: %v", i, r))
				}
			}()
			if ctx.Err() != nil {
				return
			}
			if err := job(ctx); err != nil {
				record(err)
			}
		})
		if err != nil {
			wg.Done()
			record(err)
			break
		}
	}

	wg.Wait()
	pool.Shutdown()
	return errors.Join(errs...)
}
