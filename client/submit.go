package client

import (
	"context"
	"fmt"

	"github.com/mezonai/sawlet/transaction"
)

// Submission identifies a submitted transaction and the batch carrying it.
type Submission struct {
	TxID    string
	BatchID string
	Link    string
}

// Submit wraps op in a single-transaction batch and posts it.
// The ids are returned even when the post fails, so a caller facing an
// unknown acceptance can still track the batch.
func Submit(ctx context.Context, api LedgerAPI, b *transaction.Builder, op transaction.Operation) (*Submission, error) {
	tx, err := b.Build(op)
	if err != nil {
		return nil, fmt.Errorf("build %s transaction: %w", op.Type(), err)
	}
	batch, err := b.BuildBatch(tx)
	if err != nil {
		return nil, fmt.Errorf("build batch: %w", err)
	}
	body, err := transaction.EncodeBatchList(batch)
	if err != nil {
		return nil, fmt.Errorf("encode batch list: %w", err)
	}

	sub := &Submission{TxID: tx.HeaderSignature, BatchID: batch.HeaderSignature}
	link, err := api.SubmitBatches(ctx, body, sub.BatchID)
	if err != nil {
		return sub, err
	}
	sub.Link = link
	return sub, nil
}
