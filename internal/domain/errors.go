package domain

import (
	"errors"
	"fmt"
	"net/mail"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrDuplicateOrder    = errors.New("order already exists")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError reports a malformed or missing request field.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// NotFoundError wraps ErrOrderNotFound or ErrProductNotFound with the looked up key.
type NotFoundError struct {
	Resource string
	ID       string
	Err      error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s[%s] not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// GatewayError is any failed call to the payment provider.
// Err keeps the provider detail for logs, it is never shown to clients.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// PersistenceError is a failed store operation. Partial writes are rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return errors.New("invalid email format")
	}

	// reject display-name forms like "Bob <bob@example.com>"
	if addr.Address != email {
		return errors.New("invalid email format")
	}

	return nil
}
