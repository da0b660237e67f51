package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

const (
	sourceCallback   = "callback"
	sourceReconciler = "reconciler"
)

// FulfillmentUseCase confirms paid orders exactly once and applies their stock and cart effects.
type FulfillmentUseCase struct {
	orders   repository.OrderRepository
	verifier SignatureVerifier
	events   EventPublisher
	logger   *slog.Logger
}

// NewFulfillmentUseCase constructs FulfillmentUseCase.
func NewFulfillmentUseCase(orders repository.OrderRepository, verifier SignatureVerifier, events EventPublisher, logger *slog.Logger) *FulfillmentUseCase {
	return &FulfillmentUseCase{orders: orders, verifier: verifier, events: events, logger: logger}
}

// ConfirmPayment authenticates a gateway callback and confirms the order bound to it.
// A repeated callback for a confirmed order succeeds with Applied=false.
func (u *FulfillmentUseCase) ConfirmPayment(ctx context.Context, in model.PaymentConfirmation) (*model.FulfillmentResult, error) {
	if !u.verifier.Verify(in.GatewayOrderRef, in.GatewayPaymentRef, in.Signature) {
		confirmationsTotal.WithLabelValues(sourceCallback, "invalid_signature").Inc()
		u.logger.Warn("payment callback rejected",
			slog.String("security_event", "invalid_signature"),
			slog.String("gateway_order_ref", in.GatewayOrderRef),
			slog.String("gateway_payment_ref", in.GatewayPaymentRef),
		)
		return nil, domainErrors.ErrInvalidSignature
	}

	result, err := u.apply(ctx, in.GatewayOrderRef, in.GatewayPaymentRef, sourceCallback)
	if err != nil {
		return nil, err
	}

	if in.CustomerID != uuid.Nil && in.CustomerID != result.CustomerID {
		u.logger.Warn("payment confirmed by a different customer",
			slog.String("order_id", result.OrderID.String()),
			slog.String("order_customer_id", result.CustomerID.String()),
			slog.String("caller_id", in.CustomerID.String()),
		)
	}
	return result, nil
}

// ApplyCapturedPayment confirms an order whose payment the gateway reports as captured.
func (u *FulfillmentUseCase) ApplyCapturedPayment(ctx context.Context, paymentReference, gatewayPaymentID string) (*model.FulfillmentResult, error) {
	return u.apply(ctx, paymentReference, gatewayPaymentID, sourceReconciler)
}

func (u *FulfillmentUseCase) apply(ctx context.Context, paymentReference, gatewayPaymentID, source string) (*model.FulfillmentResult, error) {
	result, err := u.orders.ConfirmPayment(ctx, paymentReference, gatewayPaymentID)
	if err != nil {
		confirmationsTotal.WithLabelValues(source, "error").Inc()
		return nil, err
	}

	if !result.Applied {
		confirmationsTotal.WithLabelValues(source, "duplicate").Inc()
		u.logger.Info("duplicate payment confirmation",
			slog.String("source", source),
			slog.String("order_id", result.OrderID.String()),
			slog.String("gateway_order_ref", paymentReference),
		)
		return result, nil
	}

	confirmationsTotal.WithLabelValues(source, "applied").Inc()
	for _, level := range result.NegativeStock {
		negativeStockTotal.Inc()
		u.logger.Warn("product stock below zero after fulfillment",
			slog.String("order_id", result.OrderID.String()),
			slog.String("product_id", level.ProductID.String()),
			slog.Int("stock", level.Stock),
		)
	}

	u.logger.Info("order confirmed",
		slog.String("source", source),
		slog.String("order_id", result.OrderID.String()),
		slog.String("customer_id", result.CustomerID.String()),
		slog.String("gateway_order_ref", paymentReference),
		slog.Int("items", len(result.Items)),
	)

	if err := u.events.PublishOrderConfirmed(context.WithoutCancel(ctx), result); err != nil {
		eventPublishFailuresTotal.Inc()
		u.logger.Error("publish order confirmed event failed",
			slog.String("order_id", result.OrderID.String()),
			slog.String("error", err.Error()),
		)
	}
	return result, nil
}
