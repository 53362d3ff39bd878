package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mezonai/sawlet/db"
	"github.com/mezonai/sawlet/logx"
)

// ProviderState is a State kept in a local key/value database, for local
// runs and tests. A write whose deadline passes before the batch is
// committed is discarded.
type ProviderState struct {
	mu       sync.RWMutex
	provider db.DatabaseProvider
	txm      *db.DBTxManager
	timeout  time.Duration
}

func NewProviderState(provider db.DatabaseProvider, timeout time.Duration, log *logx.Logger) *ProviderState {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ProviderState{
		provider: provider,
		txm:      db.NewDBTxManager(provider, log),
		timeout:  timeout,
	}
}

func (s *ProviderState) Get(ctx context.Context, addresses []string) ([][]byte, error) {
	out, err := bounded(ctx, s.timeout, "get", addresses, func(context.Context) ([][]byte, error) {
		s.mu.RLock()
		defer s.mu.RUnlock()

		out := make([][]byte, len(addresses))
		for i, addr := range addresses {
			v, err := s.provider.Get(stateKey(addr))
			if err != nil {
				return nil, err
			}
			if len(v) > 0 {
				out[i] = v
			}
		}
		return out, nil
	})
	if err != nil {
		return nil, asStoreError("get", addresses, err)
	}
	return out, nil
}

func (s *ProviderState) Set(ctx context.Context, entries map[string][]byte) error {
	addresses := keys(entries)
	_, err := bounded(ctx, s.timeout, "set", addresses, func(ctx context.Context) (struct{}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		return struct{}{}, s.txm.WithBatch(func(batch db.DatabaseBatch) error {
			for _, addr := range addresses {
				batch.Put(stateKey(addr), entries[addr])
			}
			return ctx.Err()
		})
	})
	if err != nil {
		return asStoreError("set", addresses, err)
	}
	return nil
}

func (s *ProviderState) Delete(ctx context.Context, addresses []string) error {
	_, err := bounded(ctx, s.timeout, "delete", addresses, func(ctx context.Context) (struct{}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		return struct{}{}, s.txm.WithBatch(func(batch db.DatabaseBatch) error {
			for _, addr := range addresses {
				batch.Delete(stateKey(addr))
			}
			return ctx.Err()
		})
	})
	if err != nil {
		return asStoreError("delete", addresses, err)
	}
	return nil
}

func stateKey(addr string) []byte {
	return []byte(PrefixState + addr)
}

func keys(entries map[string][]byte) []string {
	out := make([]string, 0, len(entries))
	for k := range entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
