package processor

import (
	"context"
	"errors"
	"time"

	"github.com/hyperledger/sawtooth-sdk-go/processor"
	"github.com/hyperledger/sawtooth-sdk-go/protobuf/processor_pb2"

	bankerrors "github.com/mezonai/sawlet/errors"
	"github.com/mezonai/sawlet/jsonx"
	"github.com/mezonai/sawlet/ledger"
	"github.com/mezonai/sawlet/logx"
	"github.com/mezonai/sawlet/monitoring"
	"github.com/mezonai/sawlet/store"
	"github.com/mezonai/sawlet/transaction"
	"github.com/mezonai/sawlet/types"
)

// EventPrefix namespaces the events emitted for applied operations, e.g. "bank/transfer".
const EventPrefix = transaction.FamilyName + "/"

// TxContext is what the handler needs from the validator for one transaction.
// *processor.Context satisfies it.
type TxContext interface {
	store.PlatformContext
	AddReceiptData(data []byte) error
	AddEvent(eventType string, attributes []processor.Attribute, eventData []byte) error
}

// BankHandler applies bank transactions on behalf of the validator.
type BankHandler struct {
	ledger  *ledger.Ledger
	timeout time.Duration
	log     *logx.Logger
}

func NewBankHandler(l *ledger.Ledger, stateTimeout time.Duration, log *logx.Logger) *BankHandler {
	return &BankHandler{ledger: l, timeout: stateTimeout, log: log}
}

func (h *BankHandler) FamilyName() string {
	return h.ledger.Codec().Family()
}

func (h *BankHandler) FamilyVersions() []string {
	return []string{transaction.FamilyVersion}
}

func (h *BankHandler) Namespaces() []string {
	return []string{h.ledger.Codec().Prefix()}
}

func (h *BankHandler) Apply(request *processor_pb2.TpProcessRequest, tc *processor.Context) error {
	return h.ApplyPayload(request.GetSignature(), request.GetPayload(), tc)
}

// ApplyPayload decodes and applies one transaction payload. Failures are
// reported to the validator as invalid unless they are worth retrying.
func (h *BankHandler) ApplyPayload(txID string, payload []byte, tc TxContext) error {
	start := time.Now()

	op, err := transaction.DecodePayload(payload)
	if err != nil {
		monitoring.RecordRejected("decode", string(bankerrors.CodeOf(err)))
		return h.reject(txID, err)
	}

	st := store.NewContextState(tc, h.timeout)
	out, err := h.ledger.Apply(context.Background(), st, op)
	if err != nil {
		monitoring.RecordRejected(string(op.Type()), string(bankerrors.CodeOf(err)))
		return h.reject(txID, err)
	}

	if out.Receipt != nil {
		if err := tc.AddReceiptData(out.Receipt); err != nil {
			return &processor.InternalError{Msg: "failed to add receipt data: " + err.Error()}
		}
	}
	if err := h.emit(tc, out); err != nil {
		// the state change is already recorded; a lost event is not worth a retry
		h.log.Warnf("Failed to emit event for %s: %v", txID, err)
	}

	monitoring.RecordApplied(string(op.Type()), time.Since(start))
	return nil
}

func (h *BankHandler) emit(tc TxContext, out *ledger.Outcome) error {
	if len(out.Changed) == 0 {
		return nil
	}
	attrs := make([]processor.Attribute, 0, len(out.Changed))
	for _, addr := range out.Changed {
		attrs = append(attrs, processor.Attribute{Key: "address", Value: addr})
	}

	accounts := out.Accounts
	if accounts == nil {
		accounts = []*types.Account{}
	}
	data, err := jsonx.Marshal(accounts)
	if err != nil {
		return err
	}
	return tc.AddEvent(EventPrefix+string(out.Op), attrs, data)
}

// reject maps a ledger error to the SDK's error types: retryable failures
// become InternalError, everything else InvalidTransactionError.
func (h *BankHandler) reject(txID string, err error) error {
	msg := err.Error()
	var le *bankerrors.LedgerError
	if errors.As(err, &le) {
		msg = le.Describe()
	}
	if bankerrors.IsRetryable(err) {
		h.log.Errorf("Transaction %s hit an internal error: %s", shortID(txID), msg)
		return &processor.InternalError{Msg: msg}
	}
	h.log.Infof("Transaction %s rejected: %s", shortID(txID), msg)
	return &processor.InvalidTransactionError{Msg: msg}
}

func shortID(id string) string {
	if len(id) > 16 {
		return id[:16]
	}
	return id
}
