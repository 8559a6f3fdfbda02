// Package limiter runs task lists with a fixed number of tasks in flight.
package limiter

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// DefaultMax is the bound used when a Limiter is created with max < 1.
const DefaultMax = 3

// Task is one unit of work.
type Task func(ctx context.Context) error

// Limiter bounds concurrently running tasks. Tasks start in the order given;
// the next queued task starts as soon as a slot frees. Completion order is
// not preserved.
type Limiter struct {
	max int
}

// New creates a Limiter allowing max tasks in flight.
func New(max int) *Limiter {
	if max < 1 {
		max = DefaultMax
	}
	return &Limiter{max: max}
}

// Max returns the in-flight bound.
func (l *Limiter) Max() int {
	return l.max
}

// Run executes every task and waits for all of them. A failing task does not
// stop its siblings; all failures are joined in task order. Once ctx is done
// no further tasks are started and each unstarted task reports ctx.Err().
func (l *Limiter) Run(ctx context.Context, tasks []Task) error {
	errs := make([]error, len(tasks))

	var g errgroup.Group
	g.SetLimit(l.max)

	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		g.Go(func() error {
			// The slot may have been granted after cancellation.
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = task(ctx)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// Each runs fn for every item through l.
func Each[T any](ctx context.Context, l *Limiter, items []T, fn func(ctx context.Context, item T) error) error {
	tasks := make([]Task, len(items))
	for i, item := range items {
		tasks[i] = func(ctx context.Context) error {
			return fn(ctx, item)
		}
	}
	return l.Run(ctx, tasks)
}
