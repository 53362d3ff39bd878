package db

import (
	"fmt"

	"github.com/mezonai/sawlet/logx"
)

// DBTxManager runs a group of writes as one batch on the shared provider.
type DBTxManager struct {
	provider DatabaseProvider
	log      *logx.Logger
}

// NewDBTxManager creates a new transaction manager with the given provider
func NewDBTxManager(provider DatabaseProvider, log *logx.Logger) *DBTxManager {
	return &DBTxManager{provider: provider, log: log}
}

// WithBatch executes fn within a batch context.
// If fn returns nil, the batch is committed; otherwise it is discarded.
func (tm *DBTxManager) WithBatch(fn func(batch DatabaseBatch) error) error {
	batch := tm.provider.Batch()
	defer func() {
		if err := batch.Close(); err != nil {
			tm.log.Error("Failed to close batch: ", err)
		}
	}()

	if err := fn(batch); err != nil {
		batch.Reset()
		return fmt.Errorf("batch aborted: %w", err)
	}

	if err := batch.Write(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}

	return nil
}
