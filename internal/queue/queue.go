// Package queue bounds how many tasks run at once and starts waiting tasks
// strictly in the order they were added.
package queue

import (
	"context"
	"fmt"
	"sync"
)

// Queue is safe for concurrent use. The zero value is not usable; call New.
type Queue struct {
	mu      sync.Mutex
	waiting []func()
	active  int
	limit   int
}

// New returns a queue running at most concurrency tasks at a time.
// The limit is fixed for the lifetime of the queue.
func New(concurrency int) *Queue {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Queue{limit: concurrency}
}

// Future is the single-shot result of a task added to a Queue.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Done is closed once the task has settled.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the task settles or ctx is done. Giving up on the wait
// does not withdraw the task: it still runs when its turn comes.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Add enqueues task and returns immediately. If a slot is free and nothing is
// waiting ahead of it, the task starts right away.
func Add[T any](q *Queue, task func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	run := func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				var zero T
				f.value, f.err = zero, fmt.Errorf("queued task panicked: %v", r)
			}
		}()
		f.value, f.err = task()
	}

	q.mu.Lock()
	q.waiting = append(q.waiting, run)
	q.mu.Unlock()

	q.dispatch()
	return f
}

// Do adds task and waits for its result.
func Do[T any](ctx context.Context, q *Queue, task func() (T, error)) (T, error) {
	return Add(q, task).Wait(ctx)
}

func (q *Queue) dispatch() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.active < q.limit && len(q.waiting) > 0 {
		next := q.waiting[0]
		q.waiting[0] = nil
		q.waiting = q.waiting[1:]
		q.active++

		go func() {
			defer q.release()
			next()
		}()
	}
}

func (q *Queue) release() {
	q.mu.Lock()
	q.active--
	q.mu.Unlock()

	q.dispatch()
}

// Pending is the number of tasks that have not started yet.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}

// Active is the number of tasks currently running.
func (q *Queue) Active() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.active
}

// Concurrency is the limit the queue was built with.
func (q *Queue) Concurrency() int {
	return q.limit
}
