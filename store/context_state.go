package store

import (
	"context"
	"time"

	bankerrors "github.com/mezonai/sawlet/errors"
)

// PlatformContext is the subset of the validator's per-transaction context
// used by the processor. *processor.Context from the Sawtooth SDK satisfies it.
type PlatformContext interface {
	GetState(addresses []string) (map[string][]byte, error)
	SetState(pairs map[string][]byte) ([]string, error)
	DeleteState(addresses []string) ([]string, error)
}

// ContextState adapts a PlatformContext to State, bounding each call by a timeout.
type ContextState struct {
	pc      PlatformContext
	timeout time.Duration
}

func NewContextState(pc PlatformContext, timeout time.Duration) *ContextState {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ContextState{pc: pc, timeout: timeout}
}

func (s *ContextState) Get(ctx context.Context, addresses []string) ([][]byte, error) {
	entries, err := bounded(ctx, s.timeout, "get", addresses, func(context.Context) (map[string][]byte, error) {
		return s.pc.GetState(addresses)
	})
	if err != nil {
		return nil, asStoreError("get", addresses, err)
	}

	out := make([][]byte, len(addresses))
	for i, addr := range addresses {
		// the validator reports unset addresses with empty data
		if v, ok := entries[addr]; ok && len(v) > 0 {
			out[i] = v
		}
	}
	return out, nil
}

func (s *ContextState) Set(ctx context.Context, entries map[string][]byte) error {
	addresses := keys(entries)
	written, err := bounded(ctx, s.timeout, "set", addresses, func(context.Context) ([]string, error) {
		return s.pc.SetState(entries)
	})
	if err != nil {
		return asStoreError("set", addresses, err)
	}
	if len(written) != len(entries) {
		return bankerrors.NewError(bankerrors.ErrCodeInternal, "set", addresses,
			"validator accepted %d of %d writes", len(written), len(entries))
	}
	return nil
}

func (s *ContextState) Delete(ctx context.Context, addresses []string) error {
	_, err := bounded(ctx, s.timeout, "delete", addresses, func(context.Context) ([]string, error) {
		return s.pc.DeleteState(addresses)
	})
	if err != nil {
		return asStoreError("delete", addresses, err)
	}
	return nil
}

// asStoreError keeps coded errors and files everything else as internal.
func asStoreError(op string, addresses []string, err error) error {
	if _, ok := err.(*bankerrors.LedgerError); ok {
		return err
	}
	return bankerrors.Wrap(bankerrors.ErrCodeInternal, op, addresses, err)
}
