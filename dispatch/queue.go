// Package dispatch provides a serial execution queue.
//
// Work submitted to a Queue runs one task at a time, in submission order, on a
// single worker goroutine. Submitting never blocks.
package dispatch

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Flush once the queue no longer accepts work.
var ErrClosed = errors.New("dispatch queue closed")

// Queue is an unbounded FIFO of tasks drained by one goroutine.
type Queue struct {
	mu     sync.Mutex
	tasks  []func()
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

// New starts a queue worker.
func New() *Queue {
	q := &Queue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

// Async enqueues fn. It reports false, dropping fn, if the queue is closed.
func (q *Queue) Async(fn func()) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// Flush waits until every task enqueued before the call has run.
// It must not be called from a task on the same queue.
// When ctx ends first, Flush returns ctx.Err() but its marker stays queued
// and is consumed by the worker in order, after the tasks ahead of it.
func (q *Queue) Flush(ctx context.Context) error {
	reached := make(chan struct{})
	if !q.Async(func() { close(reached) }) {
		return ErrClosed
	}

	select {
	case <-reached:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work. Tasks already enqueued still run; Done is closed afterwards.
// Close never blocks, so tasks may call it.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Done is closed once the queue is closed and drained.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

func (q *Queue) run() {
	defer close(q.done)

	for {
		q.mu.Lock()
		if len(q.tasks) == 0 {
			closed := q.closed
			q.mu.Unlock()
			if closed {
				return
			}
			<-q.wake
			continue
		}

		task := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		task()
	}
}
