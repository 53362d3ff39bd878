package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerErrorMatchesSentinelByCode(t *testing.T) {
	err := NewError(ErrCodeInsufficientFunds, "withdraw", []string{"alice"}, "account alice has balance %d, cannot withdraw %d", 60, 100)

	assert.True(t, stderrors.Is(err, ErrInsufficientFunds))
	assert.False(t, stderrors.Is(err, ErrNotFound))

	wrapped := fmt.Errorf("apply: %w", err)
	assert.True(t, stderrors.Is(wrapped, ErrInsufficientFunds))
	assert.Equal(t, ErrCodeInsufficientFunds, CodeOf(wrapped))
}

func TestLedgerErrorRendering(t *testing.T) {
	err := NewError(ErrCodeNotFound, "transfer", []string{"alice", "bob"}, "receiver does not exist")

	var le *LedgerError
	require.True(t, stderrors.As(err, &le))
	assert.Equal(t, "transfer failed [alice, bob]: receiver does not exist", le.Describe())
	assert.JSONEq(t, `{"code":"not_found","op":"transfer","accounts":["alice","bob"],"message":"receiver does not exist"}`, err.Error())
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("deadline exceeded")
	err := Wrap(ErrCodeStoreTimeout, "set", nil, cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.True(t, stderrors.Is(err, ErrStoreTimeout))
	assert.True(t, IsRetryable(err))
}

func TestCodeOfForeignError(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(nil))
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("boom")))
	assert.False(t, IsRetryable(ErrUnknownField))
}

func TestSubmissionErrorClassification(t *testing.T) {
	unknown := &SubmissionError{BatchID: "b1", AcceptanceUnknown: true, Err: stderrors.New("connection reset")}
	assert.True(t, stderrors.Is(unknown, ErrSubmissionTransport))
	assert.False(t, stderrors.Is(unknown, ErrSubmissionRejected))
	assert.Contains(t, unknown.Error(), "acceptance unknown")

	rejected := &SubmissionError{BatchID: "b2", StatusCode: 400, Err: stderrors.New("bad batch")}
	assert.True(t, stderrors.Is(rejected, ErrSubmissionRejected))
	assert.Contains(t, rejected.Error(), "http 400")
}
