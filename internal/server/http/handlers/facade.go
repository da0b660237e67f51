package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
)

// CheckoutFacade covers the payment flow exposed via HTTP.
type CheckoutFacade interface {
	InitiateCheckout(ctx context.Context, customerID, addressID uuid.UUID) (*model.CheckoutSession, error)
	ConfirmPayment(ctx context.Context, in model.PaymentConfirmation) (*model.FulfillmentResult, error)
}

// OrderFacade encapsulates order reads and staff status changes.
type OrderFacade interface {
	OrderDetail(ctx context.Context, orderID uuid.UUID, requester model.Identity) (*model.OrderDetail, error)
	MyOrders(ctx context.Context, customerID uuid.UUID, page model.PageRequest, status string) (*model.Page[model.OrderSummary], error)
	SellerOrders(ctx context.Context, requester model.Identity, page model.PageRequest, status string) (*model.Page[model.SellerOrder], error)
	SetOrderStatus(ctx context.Context, orderID uuid.UUID, status string, requester model.Identity) (*model.Order, error)
}

// HealthFacade reports readiness of backing services.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// StorefrontFacade aggregates the full set of operations used across handlers.
type StorefrontFacade interface {
	CheckoutFacade
	OrderFacade
	HealthFacade
	middleware.TokenParser
}
