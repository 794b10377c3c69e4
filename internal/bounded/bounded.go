// Package bounded runs blocking calls with an upper bound on how long the
// caller waits for them.
package bounded

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is wrapped by every error returned when the wait bound expires.
var ErrTimeout = errors.New("operation timed out")

// Call runs fn with a context limited to d and stops waiting once d elapses,
// even if fn ignores its context. A non-positive d waits indefinitely.
func Call[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if d <= 0 {
		return fn(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	ch := make(chan result, 1)

	go func() {
		v, err := fn(ctx)
		ch <- result{value: v, err: err}
	}()

	select {
	case r := <-ch:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, fmt.Errorf("%w after %s", ErrTimeout, d)
		}
		return zero, ctx.Err()
	}
}

// Do is Call for functions without a result value.
func Do(ctx context.Context, d time.Duration, fn func(context.Context) error) error {
	_, err := Call(ctx, d, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
