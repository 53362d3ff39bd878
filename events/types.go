package events

import (
	"time"

	"github.com/mezonai/sawlet/types"
)

// EventType is an enum-like string type for account events
type EventType string

const (
	EventAccountUpdated EventType = "AccountUpdated"
	EventAccountDeleted EventType = "AccountDeleted"
)

// AccountEvent is a committed change to one account record.
type AccountEvent interface {
	Type() EventType
	Timestamp() time.Time
	Address() string
	// BlockNum is the number of the block that committed the change, or 0 if unknown.
	BlockNum() uint64
}

// AccountUpdated is published when an account record is written
type AccountUpdated struct {
	address   string
	account   *types.Account
	blockNum  uint64
	timestamp time.Time
}

func NewAccountUpdated(address string, account *types.Account, blockNum uint64) *AccountUpdated {
	return &AccountUpdated{
		address:   address,
		account:   account,
		blockNum:  blockNum,
		timestamp: time.Now(),
	}
}

func (e *AccountUpdated) Type() EventType {
	return EventAccountUpdated
}

func (e *AccountUpdated) Timestamp() time.Time {
	return e.timestamp
}

func (e *AccountUpdated) Address() string {
	return e.address
}

func (e *AccountUpdated) BlockNum() uint64 {
	return e.blockNum
}

func (e *AccountUpdated) Account() *types.Account {
	return e.account
}

// AccountDeleted is published when an account record is purged
type AccountDeleted struct {
	address   string
	blockNum  uint64
	timestamp time.Time
}

func NewAccountDeleted(address string, blockNum uint64) *AccountDeleted {
	return &AccountDeleted{
		address:   address,
		blockNum:  blockNum,
		timestamp: time.Now(),
	}
}

func (e *AccountDeleted) Type() EventType {
	return EventAccountDeleted
}

func (e *AccountDeleted) Timestamp() time.Time {
	return e.timestamp
}

func (e *AccountDeleted) Address() string {
	return e.address
}

func (e *AccountDeleted) BlockNum() uint64 {
	return e.blockNum
}
