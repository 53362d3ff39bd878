package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/mezonai/sawlet/jsonx"
)

// Code is a stable, machine readable error class shared by the processor and the client.
type Code string

const (
	// Transition errors
	ErrCodeInsufficientFunds Code = "insufficient_funds"
	ErrCodeNotFound          Code = "not_found"
	ErrCodeAccountExists     Code = "account_exists"
	ErrCodeInvalidAmount     Code = "invalid_amount"
	ErrCodeInvalidAddress    Code = "invalid_address"

	// Request errors
	ErrCodeUnknownOperation Code = "unknown_operation"
	ErrCodeUnknownField     Code = "unknown_field"
	ErrCodeInvalidPayload   Code = "invalid_payload"

	// Store errors
	ErrCodeStoreTimeout Code = "store_timeout"
	ErrCodeInternal     Code = "internal_error"

	// Client errors
	ErrCodeSubmissionTransport Code = "submission_transport_error"
	ErrCodeSubmissionRejected  Code = "submission_rejected"
	ErrCodeCommitTimeout       Code = "commit_timeout"
)

// Sentinels for errors.Is; a *LedgerError matches the sentinel with the same code.
var (
	ErrInsufficientFunds   = &LedgerError{Code: ErrCodeInsufficientFunds}
	ErrNotFound            = &LedgerError{Code: ErrCodeNotFound}
	ErrAccountExists       = &LedgerError{Code: ErrCodeAccountExists}
	ErrInvalidAmount       = &LedgerError{Code: ErrCodeInvalidAmount}
	ErrInvalidAddress      = &LedgerError{Code: ErrCodeInvalidAddress}
	ErrUnknownOperation    = &LedgerError{Code: ErrCodeUnknownOperation}
	ErrUnknownField        = &LedgerError{Code: ErrCodeUnknownField}
	ErrInvalidPayload      = &LedgerError{Code: ErrCodeInvalidPayload}
	ErrStoreTimeout        = &LedgerError{Code: ErrCodeStoreTimeout}
	ErrInternal            = &LedgerError{Code: ErrCodeInternal}
	ErrSubmissionRejected  = &LedgerError{Code: ErrCodeSubmissionRejected}
	ErrCommitTimeout       = &LedgerError{Code: ErrCodeCommitTimeout}
	ErrSubmissionTransport = &LedgerError{Code: ErrCodeSubmissionTransport}
)

// LedgerError reports which operation failed, on which accounts, and why.
type LedgerError struct {
	Code     Code     `json:"code"`
	Op       string   `json:"op,omitempty"`
	Accounts []string `json:"accounts,omitempty"`
	Message  string   `json:"message"`
	cause    error
}

// Error implements the error interface
func (e *LedgerError) Error() string {
	b, err := jsonx.Marshal(e)
	if err != nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return string(b)
}

// Is matches on code so callers can compare against the package sentinels.
func (e *LedgerError) Is(target error) bool {
	t, ok := target.(*LedgerError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func (e *LedgerError) Unwrap() error {
	return e.cause
}

// Describe renders the error for humans, e.g. in CLI output.
func (e *LedgerError) Describe() string {
	var sb strings.Builder
	if e.Op != "" {
		sb.WriteString(e.Op)
		sb.WriteString(" failed")
	} else {
		sb.WriteString("request failed")
	}
	if len(e.Accounts) > 0 {
		sb.WriteString(" [")
		sb.WriteString(strings.Join(e.Accounts, ", "))
		sb.WriteString("]")
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	return sb.String()
}

// NewError creates a new LedgerError and returns it as error interface
func NewError(code Code, op string, accounts []string, format string, args ...interface{}) error {
	return &LedgerError{
		Code:     code,
		Op:       op,
		Accounts: accounts,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Wrap attaches a code to an underlying error, keeping it reachable through errors.Unwrap.
func Wrap(code Code, op string, accounts []string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &LedgerError{
		Code:     code,
		Op:       op,
		Accounts: accounts,
		Message:  msg,
		cause:    cause,
	}
}

// CodeOf returns the code carried by err, or ErrCodeInternal for foreign errors.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var le *LedgerError
	if stderrors.As(err, &le) {
		return le.Code
	}
	return ErrCodeInternal
}

// IsRetryable tells whether the platform should retry the transaction rather than reject it.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case ErrCodeStoreTimeout, ErrCodeInternal:
		return true
	default:
		return false
	}
}
