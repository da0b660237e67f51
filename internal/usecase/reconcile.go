package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// ReconcileUseCase settles pending orders whose callback never arrived by asking the gateway.
type ReconcileUseCase struct {
	orders      repository.OrderRepository
	gateway     PaymentGateway
	fulfillment *FulfillmentUseCase
	after       time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// NewReconcileUseCase constructs ReconcileUseCase. Orders younger than after are left alone.
func NewReconcileUseCase(
	orders repository.OrderRepository,
	gateway PaymentGateway,
	fulfillment *FulfillmentUseCase,
	after time.Duration,
	logger *slog.Logger,
) *ReconcileUseCase {
	return &ReconcileUseCase{
		orders:      orders,
		gateway:     gateway,
		fulfillment: fulfillment,
		after:       after,
		logger:      logger,
		now:         time.Now,
	}
}

// AwaitingPayment returns up to limit unconfirmed orders older than the reconciliation age.
func (u *ReconcileUseCase) AwaitingPayment(ctx context.Context, limit int) ([]model.Order, error) {
	return u.orders.ListAwaitingPayment(ctx, u.now().Add(-u.after), limit)
}

// Reconcile confirms the order when the gateway holds a captured payment for the order amount.
// ErrPaymentPending is returned while nothing is captured and ErrAmountMismatch when only
// captures for a different amount exist.
func (u *ReconcileUseCase) Reconcile(ctx context.Context, order model.Order) (*model.FulfillmentResult, error) {
	payments, err := u.gateway.OrderPayments(ctx, order.PaymentReference)
	if err != nil {
		return nil, fmt.Errorf("list gateway payments: %w", err)
	}

	mismatched := 0
	for _, p := range payments {
		if p.Status != model.GatewayPaymentCaptured {
			continue
		}
		if p.Amount != order.DiscountedOrderPrice {
			mismatched++
			u.logger.Warn("captured amount differs from order",
				slog.String("order_id", order.ID.String()),
				slog.String("gateway_payment_ref", p.ID),
				slog.Int64("captured", p.Amount),
				slog.Int64("expected", order.DiscountedOrderPrice),
			)
			continue
		}
		u.logger.Info("captured payment found for pending order",
			slog.String("order_id", order.ID.String()),
			slog.String("gateway_order_ref", order.PaymentReference),
			slog.String("gateway_payment_ref", p.ID),
		)
		return u.fulfillment.ApplyCapturedPayment(ctx, order.PaymentReference, p.ID)
	}
	if mismatched > 0 {
		return nil, fmt.Errorf("%w: %d captured payments for %s", domainErrors.ErrAmountMismatch, mismatched, order.PaymentReference)
	}
	return nil, domainErrors.ErrPaymentPending
}
