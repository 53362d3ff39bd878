package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func providers(t *testing.T) map[string]IterableProvider {
	t.Helper()
	level, err := NewLevelDBProvider(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = level.Close() })

	return map[string]IterableProvider{
		"memory":  memProvider(t),
		"leveldb": level,
	}
}

func memProvider(t *testing.T) *LevelDBProvider {
	t.Helper()
	p, err := NewLevelDBMemProvider()
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestProviderBasicOps(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			v, err := p.Get([]byte("missing"))
			require.NoError(t, err)
			assert.Nil(t, v)

			require.NoError(t, p.Put([]byte("k1"), []byte("v1")))
			v, err = p.Get([]byte("k1"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v1"), v)

			ok, err := p.Has([]byte("k1"))
			require.NoError(t, err)
			assert.True(t, ok)

			require.NoError(t, p.Delete([]byte("k1")))
			ok, err = p.Has([]byte("k1"))
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestProviderBatchAndIterate(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, p.Put([]byte("wallet:gone"), []byte("x")))

			batch := p.Batch()
			batch.Put([]byte("wallet:alice"), []byte("1"))
			batch.Put([]byte("wallet:bob"), []byte("2"))
			batch.Put([]byte("other:carol"), []byte("3"))
			batch.Delete([]byte("wallet:gone"))
			require.NoError(t, batch.Write())
			require.NoError(t, batch.Close())

			var keys []string
			require.NoError(t, p.IteratePrefix([]byte("wallet:"), func(key, value []byte) bool {
				keys = append(keys, string(key))
				return true
			}))
			assert.Equal(t, []string{"wallet:alice", "wallet:bob"}, keys)
		})
	}
}

func TestDBTxManagerDiscardsOnError(t *testing.T) {
	p := memProvider(t)
	tm := NewDBTxManager(p, nil)

	err := tm.WithBatch(func(batch DatabaseBatch) error {
		batch.Put([]byte("a"), []byte("1"))
		return errors.New("validation failed")
	})
	require.Error(t, err)
	ok, err := p.Has([]byte("a"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, tm.WithBatch(func(batch DatabaseBatch) error {
		batch.Put([]byte("a"), []byte("1"))
		batch.Put([]byte("b"), []byte("2"))
		return nil
	}))
	for _, key := range []string{"a", "b"} {
		ok, err = p.Has([]byte(key))
		require.NoError(t, err)
		assert.True(t, ok, key)
	}
}

func TestLevelDBMemProviderIsolated(t *testing.T) {
	first, second := memProvider(t), memProvider(t)
	require.NoError(t, first.Put([]byte("k"), []byte("v")))

	ok, err := second.Has([]byte("k"))
	require.NoError(t, err)
	assert.False(t, ok)
}
