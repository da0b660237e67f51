package usecase

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// PaymentGateway creates payment intents and reports payments made against them.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency, receipt string) (*model.PaymentIntent, error)
	OrderPayments(ctx context.Context, orderRef string) ([]model.GatewayPayment, error)
}

// SignatureVerifier authenticates payment callbacks.
type SignatureVerifier interface {
	Verify(orderRef, paymentRef, signature string) bool
}

// EventPublisher announces confirmed orders to downstream consumers.
type EventPublisher interface {
	PublishOrderConfirmed(ctx context.Context, result *model.FulfillmentResult) error
}
