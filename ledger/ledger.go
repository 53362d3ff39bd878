package ledger

import (
	"context"
	"math"

	"github.com/holiman/uint256"

	"github.com/mezonai/sawlet/address"
	bankerrors "github.com/mezonai/sawlet/errors"
	"github.com/mezonai/sawlet/logx"
	"github.com/mezonai/sawlet/store"
	"github.com/mezonai/sawlet/transaction"
	"github.com/mezonai/sawlet/types"
)

var maxBalance = uint256.NewInt(math.MaxInt64)

// Outcome describes what applying one operation did.
type Outcome struct {
	Op transaction.OpType
	// Changed lists the addresses written or deleted, in declaration order.
	Changed []string
	// Accounts holds the post-state of every written account.
	Accounts []*types.Account
	Deleted  bool
	// Receipt is the opaque result of a query, nil otherwise.
	Receipt []byte
}

// Ledger applies bank operations to a State. It holds no per-transaction
// data, so one instance serves any number of concurrent transactions.
type Ledger struct {
	codec *address.Codec
	log   *logx.Logger
}

func NewLedger(codec *address.Codec, log *logx.Logger) *Ledger {
	return &Ledger{codec: codec, log: log}
}

func (l *Ledger) Codec() *address.Codec {
	return l.codec
}

// Apply routes op to its transition. Each transition either leaves state
// untouched and returns an error, or commits all of its writes.
func (l *Ledger) Apply(ctx context.Context, st store.State, op transaction.Operation) (*Outcome, error) {
	switch o := op.(type) {
	case transaction.Create:
		return l.Create(ctx, st, o.Name, o.Balance, o.Force)
	case transaction.Transfer:
		return l.Transfer(ctx, st, o.Sender, o.Receiver, o.Amount)
	case transaction.Change:
		return l.Change(ctx, st, o.Name, o.Amount)
	case transaction.Query:
		return l.Query(ctx, st, o.Name, o.Key)
	case transaction.Purge:
		return l.Purge(ctx, st, o.Name)
	default:
		return nil, bankerrors.NewError(bankerrors.ErrCodeUnknownOperation, "apply", nil,
			"unsupported operation %T", op)
	}
}

// Create opens an account with the given balance. Unless force is set,
// an account that already exists is left alone and AccountExists is returned.
func (l *Ledger) Create(ctx context.Context, st store.State, name string, balance int64, force bool) (*Outcome, error) {
	const op = "create"
	if balance < 0 {
		return nil, bankerrors.NewError(bankerrors.ErrCodeInvalidAmount, op, []string{name},
			"initial balance must not be negative, got %d", balance)
	}

	addr := l.codec.Address(name)
	accounts := store.NewAccountStore(st)
	if !force {
		existing, err := accounts.GetByAddr(ctx, addr)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, bankerrors.NewError(bankerrors.ErrCodeAccountExists, op, []string{name},
				"account %s already exists with balance %d", name, existing.Balance)
		}
	}

	acc := &types.Account{Name: name, Balance: balance, Address: addr}
	if err := accounts.Store(ctx, acc); err != nil {
		return nil, err
	}

	l.log.Infof("Account %s with initial balance %d created.", name, balance)
	return &Outcome{Op: transaction.OpCreate, Changed: []string{addr}, Accounts: []*types.Account{acc}}, nil
}

// Transfer moves amount from sender to receiver. Both are state addresses.
// The two updated records are written in a single state call.
func (l *Ledger) Transfer(ctx context.Context, st store.State, sender, receiver string, amount int64) (*Outcome, error) {
	const op = "transfer"
	parties := []string{sender, receiver}

	if amount < 0 {
		return nil, bankerrors.NewError(bankerrors.ErrCodeInvalidAmount, op, parties,
			"transfer amount must not be negative, got %d", amount)
	}
	for _, addr := range parties {
		if err := l.codec.Validate(addr); err != nil {
			return nil, bankerrors.NewError(bankerrors.ErrCodeInvalidAddress, op, parties,
				"%s is not an account address: %v", addr, err)
		}
	}
	if sender == receiver {
		return nil, bankerrors.NewError(bankerrors.ErrCodeInvalidAddress, op, parties,
			"sender and receiver must differ")
	}

	accounts := store.NewAccountStore(st)
	loaded, err := accounts.GetBatch(ctx, parties)
	if err != nil {
		return nil, err
	}
	// sender is validated in full before the receiver is looked at
	from := loaded[sender]
	if from == nil {
		return nil, bankerrors.NewError(bankerrors.ErrCodeNotFound, op, parties,
			"sender %s does not exist", sender)
	}
	if from.Balance < amount {
		return nil, bankerrors.NewError(bankerrors.ErrCodeInsufficientFunds, op, []string{from.Name, receiver},
			"%s holds %d, cannot send %d", from.Name, from.Balance, amount)
	}
	to := loaded[receiver]
	if to == nil {
		return nil, bankerrors.NewError(bankerrors.ErrCodeNotFound, op, []string{from.Name, receiver},
			"receiver %s does not exist", receiver)
	}

	names := []string{from.Name, to.Name}
	credited, ok := addBalance(to.Balance, amount)
	if !ok {
		return nil, bankerrors.NewError(bankerrors.ErrCodeInvalidAmount, op, names,
			"crediting %d to %s would overflow its balance %d", amount, to.Name, to.Balance)
	}

	from.Balance -= amount
	to.Balance = credited
	if err := accounts.StoreBatch(ctx, []*types.Account{from, to}); err != nil {
		return nil, err
	}

	l.log.Infof("Transferred %d from %s to %s.", amount, from.Name, to.Name)
	return &Outcome{Op: transaction.OpTransfer, Changed: parties, Accounts: []*types.Account{from, to}}, nil
}

// Change deposits a positive amount or withdraws a negative one.
func (l *Ledger) Change(ctx context.Context, st store.State, name string, amount int64) (*Outcome, error) {
	const op = "change"
	addr := l.codec.Address(name)
	accounts := store.NewAccountStore(st)

	acc, err := accounts.GetByAddr(ctx, addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, bankerrors.NewError(bankerrors.ErrCodeNotFound, op, []string{name},
			"account %s does not exist", name)
	}

	if amount < 0 {
		// acc.Balance >= 0, so -acc.Balance cannot overflow
		if amount < -acc.Balance {
			return nil, bankerrors.NewError(bankerrors.ErrCodeInsufficientFunds, op, []string{name},
				"%s holds %d, cannot withdraw %d", name, acc.Balance, magnitude(amount))
		}
		acc.Balance += amount
	} else {
		next, ok := addBalance(acc.Balance, amount)
		if !ok {
			return nil, bankerrors.NewError(bankerrors.ErrCodeInvalidAmount, op, []string{name},
				"depositing %d would overflow balance %d", amount, acc.Balance)
		}
		acc.Balance = next
	}

	if acc.Address == "" {
		acc.Address = addr
	}
	if err := accounts.Store(ctx, acc); err != nil {
		return nil, err
	}

	l.log.Infof("Balance of %s changed by %d to %d.", name, amount, acc.Balance)
	return &Outcome{Op: transaction.OpChange, Changed: []string{addr}, Accounts: []*types.Account{acc}}, nil
}

// Query reads one field of an account and returns it as receipt data.
func (l *Ledger) Query(ctx context.Context, st store.State, name, key string) (*Outcome, error) {
	const op = "query"
	if key != transaction.KeyBalance {
		return nil, bankerrors.NewError(bankerrors.ErrCodeUnknownField, op, []string{name},
			"account has no queryable field %q", key)
	}

	acc, err := store.NewAccountStore(st).GetByAddr(ctx, l.codec.Address(name))
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, bankerrors.NewError(bankerrors.ErrCodeNotFound, op, []string{name},
			"account %s does not exist", name)
	}

	l.log.Debugf("Balance of %s is %d.", name, acc.Balance)
	return &Outcome{Op: transaction.OpQuery, Receipt: EncodeValue(acc.Balance)}, nil
}

// Purge deletes the account record. Deleting an absent account is not an error.
func (l *Ledger) Purge(ctx context.Context, st store.State, name string) (*Outcome, error) {
	addr := l.codec.Address(name)
	if err := store.NewAccountStore(st).Delete(ctx, addr); err != nil {
		return nil, err
	}

	l.log.Infof("Account %s purged.", name)
	return &Outcome{Op: transaction.OpPurge, Changed: []string{addr}, Deleted: true}, nil
}

func addBalance(balance, amount int64) (int64, bool) {
	sum := new(uint256.Int).Add(uint256.NewInt(uint64(balance)), uint256.NewInt(uint64(amount)))
	if sum.Gt(maxBalance) {
		return 0, false
	}
	return int64(sum.Uint64()), true
}

func magnitude(v int64) uint64 {
	if v >= 0 {
		return uint64(v)
	}
	return uint64(-(v + 1)) + 1
}
