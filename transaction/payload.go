package transaction

import (
	"fmt"

	bankerrors "github.com/mezonai/sawlet/errors"
	"github.com/mezonai/sawlet/jsonx"
)

type OpType string

const (
	OpCreate   OpType = "create"
	OpTransfer OpType = "transfer"
	OpChange   OpType = "change"
	OpQuery    OpType = "query"
	OpPurge    OpType = "purge"
)

// KeyBalance is the only account field a query can read.
const KeyBalance = "balance"

// Operation is the closed set of ledger operations. Exactly one travels in each transaction.
type Operation interface {
	Type() OpType
	isOperation()
}

type Create struct {
	Name    string
	Balance int64
	// Force overwrites an existing account instead of failing.
	Force bool
}

// Transfer moves funds between two accounts identified by their state addresses.
type Transfer struct {
	Sender   string
	Receiver string
	Amount   int64
}

// Change deposits a positive amount or withdraws a negative one.
type Change struct {
	Name   string
	Amount int64
}

type Query struct {
	Name string
	Key  string
}

type Purge struct {
	Name string
}

func (Create) Type() OpType   { return OpCreate }
func (Transfer) Type() OpType { return OpTransfer }
func (Change) Type() OpType   { return OpChange }
func (Query) Type() OpType    { return OpQuery }
func (Purge) Type() OpType    { return OpPurge }

func (Create) isOperation()   {}
func (Transfer) isOperation() {}
func (Change) isOperation()   {}
func (Query) isOperation()    {}
func (Purge) isOperation()    {}

// payloadJSON is the on-chain payload layout; field names are fixed by deployed data.
type payloadJSON struct {
	Typ      OpType  `json:"typ"`
	Name     *string `json:"name,omitempty"`
	Balance  *int64  `json:"balance,omitempty"`
	Force    bool    `json:"force,omitempty"`
	Sender   *string `json:"sender,omitempty"`
	Receiver *string `json:"receiver,omitempty"`
	Amount   *int64  `json:"amount,omitempty"`
	Key      *string `json:"key,omitempty"`
}

// EncodePayload renders op in the JSON payload format.
func EncodePayload(op Operation) ([]byte, error) {
	var p payloadJSON
	switch o := op.(type) {
	case Create:
		p = payloadJSON{Typ: OpCreate, Name: &o.Name, Balance: &o.Balance, Force: o.Force}
	case Transfer:
		p = payloadJSON{Typ: OpTransfer, Sender: &o.Sender, Receiver: &o.Receiver, Amount: &o.Amount}
	case Change:
		p = payloadJSON{Typ: OpChange, Name: &o.Name, Amount: &o.Amount}
	case Query:
		p = payloadJSON{Typ: OpQuery, Name: &o.Name, Key: &o.Key}
	case Purge:
		p = payloadJSON{Typ: OpPurge, Name: &o.Name}
	default:
		return nil, bankerrors.NewError(bankerrors.ErrCodeUnknownOperation, "", nil, "unsupported operation %T", op)
	}
	return jsonx.Marshal(p)
}

// DecodePayload parses and validates a JSON payload into its operation.
func DecodePayload(data []byte) (Operation, error) {
	var p payloadJSON
	if err := jsonx.Unmarshal(data, &p); err != nil {
		return nil, bankerrors.NewError(bankerrors.ErrCodeInvalidPayload, "", nil, "malformed payload: %v", err)
	}

	switch p.Typ {
	case OpCreate:
		name, err := requireName(p)
		if err != nil {
			return nil, err
		}
		if p.Balance == nil {
			return nil, missingField(p.Typ, "balance")
		}
		return Create{Name: name, Balance: *p.Balance, Force: p.Force}, nil
	case OpTransfer:
		if p.Sender == nil || *p.Sender == "" {
			return nil, missingField(p.Typ, "sender")
		}
		if p.Receiver == nil || *p.Receiver == "" {
			return nil, missingField(p.Typ, "receiver")
		}
		if p.Amount == nil {
			return nil, missingField(p.Typ, "amount")
		}
		return Transfer{Sender: *p.Sender, Receiver: *p.Receiver, Amount: *p.Amount}, nil
	case OpChange:
		name, err := requireName(p)
		if err != nil {
			return nil, err
		}
		if p.Amount == nil {
			return nil, missingField(p.Typ, "amount")
		}
		return Change{Name: name, Amount: *p.Amount}, nil
	case OpQuery:
		name, err := requireName(p)
		if err != nil {
			return nil, err
		}
		if p.Key == nil || *p.Key == "" {
			return nil, missingField(p.Typ, "key")
		}
		return Query{Name: name, Key: *p.Key}, nil
	case OpPurge:
		name, err := requireName(p)
		if err != nil {
			return nil, err
		}
		return Purge{Name: name}, nil
	case "":
		return nil, bankerrors.NewError(bankerrors.ErrCodeInvalidPayload, "", nil, "payload has no typ")
	default:
		return nil, bankerrors.NewError(bankerrors.ErrCodeUnknownOperation, string(p.Typ), nil, "unknown operation %q", p.Typ)
	}
}

func requireName(p payloadJSON) (string, error) {
	if p.Name == nil || *p.Name == "" {
		return "", missingField(p.Typ, "name")
	}
	return *p.Name, nil
}

func missingField(typ OpType, field string) error {
	return bankerrors.NewError(bankerrors.ErrCodeInvalidPayload, string(typ), nil, "missing field %q", field)
}

// Accounts lists the account identifiers an operation refers to, for error reporting.
func Accounts(op Operation) []string {
	switch o := op.(type) {
	case Create:
		return []string{o.Name}
	case Transfer:
		return []string{o.Sender, o.Receiver}
	case Change:
		return []string{o.Name}
	case Query:
		return []string{o.Name}
	case Purge:
		return []string{o.Name}
	default:
		return nil
	}
}

func (o Create) String() string {
	return fmt.Sprintf("create(%s, balance=%d, force=%t)", o.Name, o.Balance, o.Force)
}

func (o Transfer) String() string {
	return fmt.Sprintf("transfer(%s -> %s, amount=%d)", o.Sender, o.Receiver, o.Amount)
}

func (o Change) String() string {
	return fmt.Sprintf("change(%s, amount=%d)", o.Name, o.Amount)
}

func (o Query) String() string {
	return fmt.Sprintf("query(%s, key=%s)", o.Name, o.Key)
}

func (o Purge) String() string {
	return fmt.Sprintf("purge(%s)", o.Name)
}
