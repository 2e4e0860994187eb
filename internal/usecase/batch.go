package usecase

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Outcome is the result of one unit of work run by ForEach.
type Outcome[T any] struct {
	Item T
	Err  error
}

// ForEach runs fn for every item, at most limit at a time (unbounded when limit <= 0).
// A unit that fails or panics never stops the others. Outcomes come back in input order.
func ForEach[T any](ctx context.Context, items []T, limit int, fn func(context.Context, T) error) []Outcome[T] {
	outcomes := make([]Outcome[T], len(items))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		g.Go(func() error {
			outcomes[i] = Outcome[T]{Item: item, Err: runUnit(ctx, item, fn)}
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func runUnit[T any](ctx context.Context, item T, fn func(context.Context, T) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx, item)
}
