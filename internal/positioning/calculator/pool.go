package calculator

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/monitoring"
)

// ErrPoolClosed is returned by Submit after Shutdown has begun.
var ErrPoolClosed = errors.New("calculator: worker pool is shut down")

// workerPool is a bounded pool shared across every request a Calculator
// serves. Sizing deliberately leaves headroom for other workloads on the
// host: max(2, NumCPU/2). Backpressure across concurrent requests comes from
// the task queue; within one request at most six tasks are ever submitted.
type workerPool struct {
	tasks  chan func(context.Context)
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup // running workers
	inFly  sync.WaitGroup // submitted, not yet finished tasks
}

// defaultPoolSize computes the shared pool size.
func defaultPoolSize() int {
	n := runtime.NumCPU() / 2
	if n < 2 {
		n = 2
	}
	return n
}

func newWorkerPool(size int) *workerPool {
	if size <= 0 {
		size = defaultPoolSize()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &workerPool{
		tasks:  make(chan func(context.Context), size*4),
		ctx:    ctx,
		cancel: cancel,
	}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

func (p *workerPool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		task(p.ctx)
		p.inFly.Done()
	}
}

// Submit enqueues a task. The task receives the pool context, which is
// cancelled when Shutdown's grace period expires.
//
// The send happens under the mutex: Shutdown takes the same lock before
// closing the channel, so an admitted Submit always completes its send
// first and a late Submit gets ErrPoolClosed instead of a closed-channel
// panic. Workers keep draining the queue, so a send blocked on a full
// queue holds the lock only until a slot frees up.
func (p *workerPool) Submit(task func(context.Context)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.inFly.Add(1)
	p.tasks <- task
	return nil
}

// Shutdown stops intake, waits up to grace for in-flight tasks, then
// force-cancels the remainder and logs if any fail to terminate.
func (p *workerPool) Shutdown(grace time.Duration) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	close(p.tasks)

	done := make(chan struct{})
	go func() {
		p.inFly.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.wg.Wait()
	case <-time.After(grace):
		monitoring.Logf("calculator: shutdown grace period expired, force-cancelling in-flight tasks")
		p.cancel()
		select {
		case <-done:
			p.wg.Wait()
		case <-time.After(grace):
			// A task is ignoring cancellation; leave its worker behind
			// rather than block shutdown forever.
			monitoring.Logf("calculator: tasks failed to terminate within the grace period")
		}
	}
}
