package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// Create stores a pending order together with its items.
	Create(ctx context.Context, order *model.Order) error
	// ConfirmPayment flips the order bound to paymentReference to CONFIRMED and applies stock and cart
	// side effects in one transaction. A repeated call reports Applied=false and changes nothing.
	ConfirmPayment(ctx context.Context, paymentReference, gatewayPaymentID string) (*model.FulfillmentResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	// UpdateStatus moves the order from one status to another, failing if it is no longer in from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) error
	SellerOwnsItem(ctx context.Context, orderID, sellerID uuid.UUID) (bool, error)
	// ListAwaitingPayment claims unpaid orders created before createdBefore, least recently
	// claimed first, and records the claim so a larger backlog rotates across calls.
	ListAwaitingPayment(ctx context.Context, createdBefore time.Time, limit int) ([]model.Order, error)
}
