package bounded

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCallReturnsResult(t *testing.T) {
	v, err := Call(context.Background(), time.Second, func(context.Context) (int, error) {
		return 42, nil
	})
	if err != nil || v != 42 {
		t.Fatalf("expected 42, nil; got %d, %v", v, err)
	}
}

func TestCallTimesOutOnStuckFunction(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	err := Do(context.Background(), 20*time.Millisecond, func(context.Context) error {
		<-release // ignores its context on purpose
		return nil
	})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("wait was not bounded: %s", time.Since(start))
	}
}

func TestCallPropagatesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, time.Second, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestZeroDurationWaitsForCompletion(t *testing.T) {
	err := Do(context.Background(), 0, func(context.Context) error {
		time.Sleep(5 * time.Millisecond)
		return errors.New("boom")
	})
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}
