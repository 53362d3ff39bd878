package processor

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hyperledger/sawtooth-sdk-go/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezonai/sawlet/address"
	"github.com/mezonai/sawlet/jsonx"
	"github.com/mezonai/sawlet/ledger"
	"github.com/mezonai/sawlet/transaction"
	"github.com/mezonai/sawlet/types"
)

type event struct {
	typ   string
	attrs []processor.Attribute
	data  []byte
}

// fakeTxContext stands in for the validator's per-transaction context.
type fakeTxContext struct {
	mu       sync.Mutex
	state    map[string][]byte
	receipts [][]byte
	events   []event
	delay    time.Duration
}

func newFakeTxContext() *fakeTxContext {
	return &fakeTxContext{state: make(map[string][]byte)}
}

func (f *fakeTxContext) GetState(addresses []string) (map[string][]byte, error) {
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string][]byte)
	for _, a := range addresses {
		out[a] = f.state[a]
	}
	return out, nil
}

func (f *fakeTxContext) SetState(pairs map[string][]byte) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for k, v := range pairs {
		f.state[k] = v
		out = append(out, k)
	}
	return out, nil
}

func (f *fakeTxContext) DeleteState(addresses []string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range addresses {
		delete(f.state, a)
	}
	return addresses, nil
}

func (f *fakeTxContext) AddReceiptData(data []byte) error {
	f.receipts = append(f.receipts, data)
	return nil
}

func (f *fakeTxContext) AddEvent(eventType string, attributes []processor.Attribute, eventData []byte) error {
	f.events = append(f.events, event{typ: eventType, attrs: attributes, data: eventData})
	return nil
}

func newHandler() *BankHandler {
	codec := address.NewCodec(transaction.FamilyName)
	return NewBankHandler(ledger.NewLedger(codec, nil), time.Second, nil)
}

func apply(t *testing.T, h *BankHandler, tc TxContext, op transaction.Operation) error {
	t.Helper()
	payload, err := transaction.EncodePayload(op)
	require.NoError(t, err)
	return h.ApplyPayload("txid", payload, tc)
}

func TestHandlerIdentity(t *testing.T) {
	h := newHandler()
	assert.Equal(t, "bank", h.FamilyName())
	assert.Equal(t, []string{"1.1"}, h.FamilyVersions())
	assert.Equal(t, []string{address.NamespacePrefix("bank")}, h.Namespaces())
}

func TestHandlerAppliesAndRecords(t *testing.T) {
	h := newHandler()
	tc := newFakeTxContext()

	require.NoError(t, apply(t, h, tc, transaction.Create{Name: "alice", Balance: 60}))
	require.Len(t, tc.events, 1)
	assert.Equal(t, "bank/create", tc.events[0].typ)
	alice := h.ledger.Codec().Address("alice")
	assert.Equal(t, []processor.Attribute{{Key: "address", Value: alice}}, tc.events[0].attrs)

	var accounts []*types.Account
	require.NoError(t, jsonx.Unmarshal(tc.events[0].data, &accounts))
	require.Len(t, accounts, 1)
	assert.Equal(t, int64(60), accounts[0].Balance)

	require.NoError(t, apply(t, h, tc, transaction.Query{Name: "alice", Key: transaction.KeyBalance}))
	require.Len(t, tc.receipts, 1)
	v, err := ledger.DecodeValue(tc.receipts[0])
	require.NoError(t, err)
	assert.Equal(t, int64(60), v)
	assert.Len(t, tc.events, 1, "queries emit no event")
}

func TestHandlerRejectsInvalidTransactions(t *testing.T) {
	h := newHandler()
	tc := newFakeTxContext()
	require.NoError(t, apply(t, h, tc, transaction.Create{Name: "bob", Balance: 5}))

	err := apply(t, h, tc, transaction.Change{Name: "bob", Amount: -6})
	var invalid *processor.InvalidTransactionError
	require.True(t, errors.As(err, &invalid))
	assert.Contains(t, invalid.Msg, "bob holds 5, cannot withdraw 6")

	err = h.ApplyPayload("txid", []byte(`{"typ":"mint","name":"bob"}`), tc)
	assert.True(t, errors.As(err, &invalid))

	err = h.ApplyPayload("txid", []byte(`garbage`), tc)
	assert.True(t, errors.As(err, &invalid))
}

func TestHandlerStoreTimeoutIsInternal(t *testing.T) {
	codec := address.NewCodec(transaction.FamilyName)
	h := NewBankHandler(ledger.NewLedger(codec, nil), 10*time.Millisecond, nil)
	tc := newFakeTxContext()
	tc.delay = 200 * time.Millisecond

	err := apply(t, h, tc, transaction.Query{Name: "carol", Key: transaction.KeyBalance})
	var internal *processor.InternalError
	assert.True(t, errors.As(err, &internal))
}
