package client

import "context"

// LedgerAPI is the subset of the validator REST API the wallet and the
// tracker depend on.
type LedgerAPI interface {
	SubmitBatches(ctx context.Context, batchList []byte, batchID string) (string, error)
	BatchStatus(ctx context.Context, batchID string) (*BatchStatus, error)
	Receipts(ctx context.Context, txID string) ([]Receipt, error)
	State(ctx context.Context, addr string) ([]byte, error)
}
