package store

import (
	"context"
	"fmt"

	bankerrors "github.com/mezonai/sawlet/errors"
	"github.com/mezonai/sawlet/jsonx"
	"github.com/mezonai/sawlet/types"
)

// AccountStore reads and writes account records through a State.
type AccountStore struct {
	state State
}

func NewAccountStore(state State) *AccountStore {
	return &AccountStore{state: state}
}

// GetByAddr returns the account stored at addr, or nil if there is none.
func (as *AccountStore) GetByAddr(ctx context.Context, addr string) (*types.Account, error) {
	accounts, err := as.GetBatch(ctx, []string{addr})
	if err != nil {
		return nil, err
	}
	return accounts[addr], nil
}

// GetBatch loads several accounts with a single state read.
// Missing addresses are absent from the returned map.
func (as *AccountStore) GetBatch(ctx context.Context, addrs []string) (map[string]*types.Account, error) {
	values, err := as.state.Get(ctx, addrs)
	if err != nil {
		return nil, err
	}

	accounts := make(map[string]*types.Account, len(addrs))
	for i, data := range values {
		if data == nil {
			continue
		}
		acc, err := DecodeAccount(data)
		if err != nil {
			return nil, bankerrors.Wrap(bankerrors.ErrCodeInternal, "get", []string{addrs[i]}, err)
		}
		if acc.Address == "" {
			acc.Address = addrs[i]
		}
		accounts[addrs[i]] = acc
	}
	return accounts, nil
}

// ExistsByAddr reports whether a record is stored at addr.
func (as *AccountStore) ExistsByAddr(ctx context.Context, addr string) (bool, error) {
	acc, err := as.GetByAddr(ctx, addr)
	if err != nil {
		return false, err
	}
	return acc != nil, nil
}

func (as *AccountStore) Store(ctx context.Context, account *types.Account) error {
	return as.StoreBatch(ctx, []*types.Account{account})
}

// StoreBatch writes all accounts in one state call, so either all land or none.
func (as *AccountStore) StoreBatch(ctx context.Context, accounts []*types.Account) error {
	entries := make(map[string][]byte, len(accounts))
	for _, account := range accounts {
		data, err := EncodeAccount(account)
		if err != nil {
			return bankerrors.Wrap(bankerrors.ErrCodeInternal, "set", []string{account.Address}, err)
		}
		entries[account.Address] = data
	}
	return as.state.Set(ctx, entries)
}

func (as *AccountStore) Delete(ctx context.Context, addr string) error {
	return as.state.Delete(ctx, []string{addr})
}

// EncodeAccount renders the persisted record.
func EncodeAccount(account *types.Account) ([]byte, error) {
	if account.Address == "" {
		return nil, fmt.Errorf("account %q has no address", account.Name)
	}
	return jsonx.Marshal(account)
}

// DecodeAccount parses a persisted record.
func DecodeAccount(data []byte) (*types.Account, error) {
	var acc types.Account
	if err := jsonx.Unmarshal(data, &acc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return &acc, nil
}
