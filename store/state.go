package store

import (
	"context"
	"errors"
	"time"

	bankerrors "github.com/mezonai/sawlet/errors"
)

// DefaultTimeout bounds every state call unless configured otherwise.
const DefaultTimeout = 3 * time.Second

// State is the key/value view a transition runs against.
// Get returns one entry per requested address, in order; nil means absent.
// Set writes every entry or none of them.
type State interface {
	Get(ctx context.Context, addresses []string) ([][]byte, error)
	Set(ctx context.Context, entries map[string][]byte) error
	Delete(ctx context.Context, addresses []string) error
}

type result[T any] struct {
	val T
	err error
}

// bounded runs fn and gives up once the timeout or ctx expires.
// The abandoned call is left to finish on its own goroutine; fn receives
// the bounded context so it can refuse to commit after the caller gave up.
func bounded[T any](ctx context.Context, timeout time.Duration, op string, addresses []string, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan result[T], 1)
	go func() {
		v, err := fn(ctx)
		done <- result[T]{val: v, err: err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, bankerrors.NewError(bankerrors.ErrCodeStoreTimeout, op, addresses,
				"state %s did not complete within %s", op, timeout)
		}
		return zero, bankerrors.Wrap(bankerrors.ErrCodeInternal, op, addresses, ctx.Err())
	}
}
