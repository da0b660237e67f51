package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"already exists", ErrAlreadyExists},
		{"not found", ErrNotFound},
		{"invalid input", ErrInvalidInput},
		{"address not owned", ErrAddressNotOwned},
		{"empty cart", ErrEmptyCart},
		{"invalid status", ErrInvalidStatus},
		{"invalid transition", ErrInvalidTransition},
		{"invalid signature", ErrInvalidSignature},
		{"forbidden", ErrForbidden},
		{"gateway", ErrPaymentGateway},
		{"payment pending", ErrPaymentPending},
		{"amount mismatch", ErrAmountMismatch},
		{"consistency", ErrConsistency},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !stdErrors.Is(tc.err, tc.err) {
				t.Fatalf("expected error to match itself: %v", tc.err)
			}
		})
	}
}

func TestOrderNotFoundIsNotFound(t *testing.T) {
	if !stdErrors.Is(ErrOrderNotFound, ErrNotFound) {
		t.Fatal("expected order not found to wrap not found")
	}
	wrapped := fmt.Errorf("lookup: %w", ErrOrderNotFound)
	if !stdErrors.Is(wrapped, ErrOrderNotFound) {
		t.Fatal("expected wrapped error to match order not found")
	}
}

func TestGatewayError(t *testing.T) {
	err := error(&GatewayError{StatusCode: 400, Reason: "amount too small"})
	if !stdErrors.Is(err, ErrPaymentGateway) {
		t.Fatal("expected gateway error to unwrap to ErrPaymentGateway")
	}
	if !strings.Contains(err.Error(), "amount too small") || !strings.Contains(err.Error(), "400") {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	var gwErr *GatewayError
	if !stdErrors.As(fmt.Errorf("checkout: %w", err), &gwErr) || gwErr.StatusCode != 400 {
		t.Fatalf("expected to extract gateway error, got %+v", gwErr)
	}

	bare := &GatewayError{StatusCode: 502}
	if bare.Error() != "payment gateway error: status 502" {
		t.Fatalf("unexpected message: %q", bare.Error())
	}
}
