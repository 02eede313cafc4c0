package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so that a
// detailed instance still matches the sentinel it was derived from.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Errorf creates a domain error carrying the sentinel's code with a formatted message
func Errorf(sentinel *DomainError, format string, args ...any) *DomainError {
	return &DomainError{
		Code:    sentinel.Code,
		Message: fmt.Sprintf(format, args...),
	}
}

// CodeOf returns the domain error code of err, or an empty string
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Common domain errors
var (
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput  = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState  = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Ledger errors. All of them are raised inside the triggering transaction,
// which is then rolled back.
var (
	ErrInsufficientStock      = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrNoInventoryRecord      = NewDomainError("NO_INVENTORY_RECORD", "No inventory record for location")
	ErrAlreadyFinalized       = NewDomainError("ALREADY_FINALIZED", "Order is already finalized")
	ErrInvalidTransition      = NewDomainError("INVALID_TRANSITION", "Transition not allowed")
	ErrRefundExceedsAvailable = NewDomainError("REFUND_EXCEEDS_AVAILABLE", "Refund exceeds the amount available for refund")
	ErrAlreadyReceived        = NewDomainError("ALREADY_RECEIVED", "Purchase order has already been received")
)
