package wallet

import (
	"fmt"

	"github.com/mezonai/sawlet/db"
	"github.com/mezonai/sawlet/jsonx"
	"github.com/mezonai/sawlet/store"
	"github.com/mezonai/sawlet/types"
)

// Cache remembers the last balance observed for each account name.
// It is for display only; the chain is always authoritative.
type Cache struct {
	provider db.DatabaseProvider
}

func NewCache(provider db.DatabaseProvider) *Cache {
	return &Cache{provider: provider}
}

// Get returns the cached snapshot for name, or nil if there is none.
func (c *Cache) Get(name string) (*types.AccountSnapshot, error) {
	data, err := c.provider.Get(cacheKey(name))
	if err != nil {
		return nil, fmt.Errorf("read cache for %s: %w", name, err)
	}
	if data == nil {
		return nil, nil
	}
	var snap types.AccountSnapshot
	if err := jsonx.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode cache for %s: %w", name, err)
	}
	return &snap, nil
}

func (c *Cache) Put(snap *types.AccountSnapshot) error {
	data, err := jsonx.Marshal(snap)
	if err != nil {
		return err
	}
	return c.provider.Put(cacheKey(snap.Name), data)
}

func (c *Cache) Delete(name string) error {
	return c.provider.Delete(cacheKey(name))
}

// List returns every cached snapshot when the backend can iterate.
func (c *Cache) List() ([]*types.AccountSnapshot, error) {
	it, ok := c.provider.(db.IterableProvider)
	if !ok {
		return nil, fmt.Errorf("cache backend cannot list entries")
	}
	var out []*types.AccountSnapshot
	var decodeErr error
	err := it.IteratePrefix([]byte(store.PrefixWallet), func(_, value []byte) bool {
		var snap types.AccountSnapshot
		if decodeErr = jsonx.Unmarshal(value, &snap); decodeErr != nil {
			return false
		}
		out = append(out, &snap)
		return true
	})
	if err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode cache entry: %w", decodeErr)
	}
	return out, nil
}

func (c *Cache) Close() error {
	return c.provider.Close()
}

func cacheKey(name string) []byte {
	return []byte(store.PrefixWallet + name)
}
