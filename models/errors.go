package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError reports malformed or out-of-range input. It is raised
// before any write reaches the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// InvalidAmountError rejects a payment that is non-positive or would push
// paidAmount above totalFee. The engine re-validates against the pending
// balance on every call; a capped client value is never trusted.
type InvalidAmountError struct {
	Amount  decimal.Decimal
	Pending decimal.Decimal
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid payment amount %s: must be greater than 0 and at most the pending amount %s",
		e.Amount.String(), e.Pending.String())
}

// AuthError covers wrong credentials, disabled accounts and rate limits.
// Surfaced to the caller as a user-facing message, never retried.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return e.Reason
}

// PersistenceError wraps a rejected store read or write with the operation
// and target path, enough context for a permission-debugging workflow.
// Writes are not retried automatically.
type PersistenceError struct {
	Op     string
	Target string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
