// Package pool implements a fixed-size worker pool with an unbounded job
// queue, grounded on
// original_source/src/thread_pool/shared_queue.rs's SharedQueueThreadPool:
// N long-lived workers pull jobs off one shared channel, and a worker whose
// job panics is respawned rather than left dead. Rust gets this via a Drop
// guard (Sentinel) that runs during unwind; Go's mechanical equivalent is a
// deferred recover that re-spawns the worker before the goroutine exits.
package pool

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Pool runs jobs on a fixed number of background goroutines. The queue is
// unbounded: a dispatcher goroutine buffers submitted jobs on a growing
// slice and only ever hands one to a worker once that worker is free, so
// Spawn never blocks on workers being busy — it only ever waits on the
// dispatcher goroutine itself, which is always ready to receive.
type Pool struct {
	enqueue chan func()
	jobs    chan func()
	done    chan struct{}
	n       int
	log     *zap.SugaredLogger
}

// New starts n worker goroutines and one dispatcher goroutine feeding them
// from a shared, unbounded job queue. n is clamped to at least 1.
func New(n int, log *zap.SugaredLogger) *Pool {
	if n < 1 {
		n = 1
	}

	p := &Pool{
		enqueue: make(chan func()),
		jobs:    make(chan func()),
		done:    make(chan struct{}),
		n:       n,
		log:     log,
	}

	for i := 0; i < n; i++ {
		p.spawnWorker(i)
	}
	go p.dispatch()
	return p
}

// dispatch owns the unbounded queue: a plain slice that grows as jobs are
// submitted and drains as workers become free. It is the only goroutine
// that ever reads p.enqueue or writes p.jobs.
func (p *Pool) dispatch() {
	var queue []func()
	for {
		if len(queue) == 0 {
			select {
			case job := <-p.enqueue:
				queue = append(queue, job)
			case <-p.done:
				return
			}
			continue
		}

		select {
		case job := <-p.enqueue:
			queue = append(queue, job)
		case p.jobs <- queue[0]:
			queue = queue[1:]
		case <-p.done:
			return
		}
	}
}

// Spawn enqueues job to run on whichever worker picks it up next. Spawn
// after Shutdown is a no-op; the job is dropped rather than panicking the
// caller.
func (p *Pool) Spawn(job func()) {
	select {
	case p.enqueue <- job:
	case <-p.done:
	}
}

// Shutdown signals the dispatcher and every worker to exit and returns
// without waiting for them; a worker busy with a job exits once that job
// returns. It does not attempt to drain jobs still sitting in the queue.
func (p *Pool) Shutdown() {
	close(p.done)
}

// spawnWorker starts worker id and installs the panic-respawn guard. id is
// used only for log correlation; a respawned replacement keeps the same id.
func (p *Pool) spawnWorker(id int) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				err := multierr.Append(nil, panicError{v: r})
				p.log.Errorw("worker panicked, respawning", "worker", id, "error", err)
				select {
				case <-p.done:
					return
				default:
					p.spawnWorker(id)
				}
			}
		}()

		for {
			select {
			case job := <-p.jobs:
				job()
			case <-p.done:
				return
			}
		}
	}()
}

type panicError struct{ v any }

func (p panicError) Error() string {
	if err, ok := p.v.(error); ok {
		return err.Error()
	}
	return "panic: " + toString(p.v)
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return "non-string panic value"
}
