package client

import (
	"context"
	"fmt"
	"time"

	bankerrors "github.com/mezonai/sawlet/errors"
	"github.com/mezonai/sawlet/logx"
	"github.com/mezonai/sawlet/monitoring"
)

const (
	DefaultPollInterval = time.Second
	DefaultMaxAttempts  = 10
)

type TrackerConfig struct {
	Interval    time.Duration `yaml:"interval"`
	MaxAttempts int           `yaml:"max_attempts"`
	// FailOnExhaustion turns a still-pending batch into a CommitTimeout error.
	FailOnExhaustion bool `yaml:"fail_on_exhaustion"`
}

// Result is what the tracker learned about one transaction.
type Result struct {
	TxID                string
	BatchID             string
	Status              string
	Attempts            int
	InvalidTransactions []InvalidTransaction
	// Receipt is set once the batch is committed and the validator has a receipt for TxID.
	Receipt *Receipt
}

func (r *Result) Committed() bool {
	return r.Status == StatusCommitted
}

// Tracker polls batch status on a fixed interval until the batch settles
// or the attempt budget runs out.
type Tracker struct {
	api LedgerAPI
	cfg TrackerConfig
	log *logx.Logger
}

func NewTracker(api LedgerAPI, cfg TrackerConfig, log *logx.Logger) *Tracker {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	return &Tracker{api: api, cfg: cfg, log: log}
}

// Track polls until batchID is COMMITTED or INVALID. On exhaustion it returns
// the last observed status, plus CommitTimeout if FailOnExhaustion is set.
// Cancelling ctx stops polling and returns ctx.Err().
func (t *Tracker) Track(ctx context.Context, txID, batchID string) (*Result, error) {
	res := &Result{TxID: txID, BatchID: batchID, Status: StatusUnknown}
	start := time.Now()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for attempt := 1; attempt <= t.cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-timer.C:
		}

		monitoring.IncreasePollAttempts()
		res.Attempts = attempt
		status, err := t.api.BatchStatus(ctx, batchID)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			t.log.Warnf("Status poll %d/%d for batch %s failed: %v", attempt, t.cfg.MaxAttempts, batchID, err)
			timer.Reset(t.cfg.Interval)
			continue
		}
		res.Status = status.Status

		switch status.Status {
		case StatusCommitted:
			monitoring.RecordTimeToCommit(time.Since(start))
			monitoring.RecordTracked(res.Status)
			return res, t.attachReceipt(ctx, res)
		case StatusInvalid:
			res.InvalidTransactions = status.InvalidTransactions
			monitoring.RecordTracked(res.Status)
			t.log.Infof("Batch %s is invalid: %s", batchID, res.InvalidMessage())
			return res, nil
		}

		t.log.Debugf("Batch %s is %s after %d attempts", batchID, status.Status, attempt)
		timer.Reset(t.cfg.Interval)
	}

	monitoring.RecordTracked(res.Status)
	if t.cfg.FailOnExhaustion {
		return res, bankerrors.NewError(bankerrors.ErrCodeCommitTimeout, "track", nil,
			"batch %s still %s after %d attempts", batchID, res.Status, res.Attempts)
	}
	return res, nil
}

func (t *Tracker) attachReceipt(ctx context.Context, res *Result) error {
	receipts, err := t.api.Receipts(ctx, res.TxID)
	if err != nil {
		return fmt.Errorf("fetch receipt for %s: %w", res.TxID, err)
	}
	for i := range receipts {
		if receipts[i].TransactionID == res.TxID {
			res.Receipt = &receipts[i]
			return nil
		}
	}
	if len(receipts) > 0 {
		res.Receipt = &receipts[0]
	}
	return nil
}

// InvalidMessage returns the validator's reason for rejecting TxID, if any.
func (r *Result) InvalidMessage() string {
	for _, it := range r.InvalidTransactions {
		if it.ID == r.TxID || r.TxID == "" {
			return it.Message
		}
	}
	if len(r.InvalidTransactions) > 0 {
		return r.InvalidTransactions[0].Message
	}
	return ""
}
