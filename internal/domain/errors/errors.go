package errors

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
	ErrOrderNotFound = fmt.Errorf("order %w", ErrNotFound)
	ErrInvalidInput  = errors.New("invalid input")

	ErrAddressNotOwned   = errors.New("address does not belong to customer")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("order status transition not allowed")

	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrForbidden        = errors.New("forbidden")

	ErrPaymentGateway = errors.New("payment gateway error")
	ErrPaymentPending = errors.New("payment not captured yet")
	ErrAmountMismatch = errors.New("captured amount does not match order")

	// ErrConsistency marks a failure after an external side effect that must be reconciled out of band.
	ErrConsistency = errors.New("consistency error")
)

// GatewayError carries the status and reason reported by the payment gateway.
type GatewayError struct {
	StatusCode int
	Reason     string
	RetryAfter time.Duration
}

func (e *GatewayError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("payment gateway error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("payment gateway error: status %d: %s", e.StatusCode, e.Reason)
}

func (e *GatewayError) Unwrap() error {
	return ErrPaymentGateway
}
