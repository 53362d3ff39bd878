package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mezonai/sawlet/client"
	bankerrors "github.com/mezonai/sawlet/errors"
	"github.com/mezonai/sawlet/ledger"
	"github.com/mezonai/sawlet/logx"
	"github.com/mezonai/sawlet/store"
	"github.com/mezonai/sawlet/transaction"
	"github.com/mezonai/sawlet/types"
)

// ErrInvalidTransaction is returned when the validator rejects a committed-to batch.
var ErrInvalidTransaction = errors.New("transaction rejected by the validator")

// Deps are the collaborators shared by every wallet of one CLI invocation.
type Deps struct {
	Builder *transaction.Builder
	API     client.LedgerAPI
	Tracker *client.Tracker
	Cache   *Cache
	Log     *logx.Logger
}

// Receipt reports one submitted operation.
type Receipt struct {
	Op         transaction.OpType
	Submission *client.Submission
	Result     *client.Result
	// Loaded is set when create found an existing account and submitted nothing.
	Loaded *types.AccountSnapshot
	// Value is the decoded query result; nil when the receipt carried none.
	Value *int64
}

// Status is the tracked status, or "LOADED" when nothing was submitted.
func (r *Receipt) Status() string {
	if r.Result == nil {
		return "LOADED"
	}
	return r.Result.Status
}

// Wallet is the user-facing handle on one named account.
type Wallet struct {
	name string
	addr string
	deps Deps
}

func New(name string, deps Deps) *Wallet {
	return &Wallet{
		name: name,
		addr: deps.Builder.Codec().Address(name),
		deps: deps,
	}
}

func (w *Wallet) Name() string {
	return w.name
}

func (w *Wallet) Address() string {
	return w.addr
}

// Create opens the account on chain. Without force an existing account is
// loaded instead and nothing is submitted.
func (w *Wallet) Create(ctx context.Context, balance int64, force bool) (*Receipt, error) {
	if !force {
		snap, err := w.Refresh(ctx)
		if err != nil && !errors.Is(err, bankerrors.ErrNotFound) {
			return nil, err
		}
		if snap != nil {
			w.deps.Log.Infof("Account %s already exists with balance %d, loaded it.", w.name, snap.Balance)
			return &Receipt{Op: transaction.OpCreate, Loaded: snap}, nil
		}
	}
	return w.execute(ctx, transaction.Create{Name: w.name, Balance: balance, Force: force}, w.name)
}

// Load returns the account snapshot. With check it is refreshed from chain
// state first; otherwise the cache is used when it has an entry.
func (w *Wallet) Load(ctx context.Context, check bool) (*types.AccountSnapshot, error) {
	if !check {
		snap, err := w.CachedBalance()
		if err != nil {
			return nil, err
		}
		if snap != nil {
			return snap, nil
		}
	}
	return w.Refresh(ctx)
}

// CachedBalance returns the last observed snapshot without touching the network.
func (w *Wallet) CachedBalance() (*types.AccountSnapshot, error) {
	if w.deps.Cache == nil {
		return nil, nil
	}
	return w.deps.Cache.Get(w.name)
}

// Refresh reads the account from chain state and updates the cache.
func (w *Wallet) Refresh(ctx context.Context) (*types.AccountSnapshot, error) {
	return refresh(ctx, w.deps, w.name)
}

func (w *Wallet) Transfer(ctx context.Context, dst string, amount int64) (*Receipt, error) {
	if amount < 0 {
		return nil, bankerrors.NewError(bankerrors.ErrCodeInvalidAmount, "transfer", []string{w.name, dst},
			"transfer amount must not be negative, got %d", amount)
	}
	op := transaction.Transfer{
		Sender:   w.addr,
		Receiver: w.deps.Builder.Codec().Address(dst),
		Amount:   amount,
	}
	return w.execute(ctx, op, w.name, dst)
}

func (w *Wallet) Deposit(ctx context.Context, amount int64) (*Receipt, error) {
	if amount <= 0 {
		return nil, bankerrors.NewError(bankerrors.ErrCodeInvalidAmount, "deposit", []string{w.name},
			"deposit amount must be positive, got %d", amount)
	}
	return w.execute(ctx, transaction.Change{Name: w.name, Amount: amount}, w.name)
}

func (w *Wallet) Withdraw(ctx context.Context, amount int64) (*Receipt, error) {
	if amount <= 0 {
		return nil, bankerrors.NewError(bankerrors.ErrCodeInvalidAmount, "withdraw", []string{w.name},
			"withdraw amount must be positive, got %d", amount)
	}
	return w.execute(ctx, transaction.Change{Name: w.name, Amount: -amount}, w.name)
}

// Purge removes the account from current state. Earlier blocks still hold its history.
func (w *Wallet) Purge(ctx context.Context) (*Receipt, error) {
	return w.execute(ctx, transaction.Purge{Name: w.name}, w.name)
}

// Query runs a query transaction and decodes the value from its receipt.
// A committed query whose receipt has no data is a valid outcome and leaves
// Receipt.Value nil.
func (w *Wallet) Query(ctx context.Context, key string) (int64, *Receipt, error) {
	rcpt, err := w.execute(ctx, transaction.Query{Name: w.name, Key: key})
	if err != nil {
		return 0, rcpt, err
	}
	res := rcpt.Result
	if !res.Committed() || res.Receipt == nil || len(res.Receipt.Data) == 0 {
		return 0, rcpt, nil
	}
	v, err := ledger.DecodeValue(res.Receipt.Data[0])
	if err != nil {
		return 0, rcpt, err
	}
	rcpt.Value = &v
	return v, rcpt, nil
}

// execute submits op, tracks it, and refreshes the cache for touched once it commits.
func (w *Wallet) execute(ctx context.Context, op transaction.Operation, touched ...string) (*Receipt, error) {
	rcpt := &Receipt{Op: op.Type()}
	sub, err := client.Submit(ctx, w.deps.API, w.deps.Builder, op)
	rcpt.Submission = sub
	if err != nil {
		var se *bankerrors.SubmissionError
		if !errors.As(err, &se) || !se.AcceptanceUnknown {
			return rcpt, err
		}
		// the batch may have landed; find out rather than resubmit
		w.deps.Log.Warnf("Acceptance of %s unknown, tracking batch %s anyway: %v", op.Type(), sub.BatchID, err)
	}

	start := time.Now()
	res, err := w.deps.Tracker.Track(ctx, sub.TxID, sub.BatchID)
	rcpt.Result = res
	if err != nil {
		return rcpt, err
	}
	w.deps.Log.Infof("%s for %s is %s after %d polls (%s)", op.Type(), w.name, res.Status, res.Attempts, time.Since(start).Round(time.Millisecond))

	switch res.Status {
	case client.StatusInvalid:
		return rcpt, fmt.Errorf("%w: %s", ErrInvalidTransaction, res.InvalidMessage())
	case client.StatusCommitted:
		for _, name := range touched {
			if _, err := refresh(ctx, w.deps, name); err != nil && !errors.Is(err, bankerrors.ErrNotFound) {
				w.deps.Log.Warnf("Could not refresh cached balance of %s: %v", name, err)
			}
		}
	}
	return rcpt, nil
}

func refresh(ctx context.Context, deps Deps, name string) (*types.AccountSnapshot, error) {
	addr := deps.Builder.Codec().Address(name)
	data, err := deps.API.State(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("read state of %s: %w", name, err)
	}
	if data == nil {
		if deps.Cache != nil {
			if err := deps.Cache.Delete(name); err != nil {
				return nil, err
			}
		}
		return nil, bankerrors.NewError(bankerrors.ErrCodeNotFound, "load", []string{name},
			"account %s does not exist", name)
	}

	acc, err := store.DecodeAccount(data)
	if err != nil {
		return nil, err
	}
	snap := &types.AccountSnapshot{
		Name:      name,
		Address:   addr,
		Balance:   acc.Balance,
		UpdatedAt: time.Now().Unix(),
	}
	if deps.Cache != nil {
		if err := deps.Cache.Put(snap); err != nil {
			return nil, err
		}
	}
	return snap, nil
}
