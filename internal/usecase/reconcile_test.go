package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

func TestReconcileAwaitingPaymentHonoursAge(t *testing.T) {
	p := newPipeline(t)
	ref := p.checkout(t)
	order, _ := p.store.OrderByReference(ref)

	uc := NewReconcileUseCase(p.store, p.gateway, p.fulfillment, 15*time.Minute, discardLogger())

	pending, err := uc.AwaitingPayment(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "fresh orders wait for their callback")

	p.store.Backdate(order.ID, time.Hour)
	pending, err = uc.AwaitingPayment(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, order.ID, pending[0].ID)
}

func TestReconcileAppliesCapturedPayment(t *testing.T) {
	p := newPipeline(t)
	ref := p.checkout(t)
	order, _ := p.store.OrderByReference(ref)

	p.gateway.OrderPaymentsFn = func(_ context.Context, orderRef string) ([]model.GatewayPayment, error) {
		require.Equal(t, ref, orderRef)
		return []model.GatewayPayment{
			{ID: "pay_failed", OrderRef: ref, Status: model.GatewayPaymentFailed},
			{ID: "pay_ok", OrderRef: ref, Status: model.GatewayPaymentCaptured, Amount: 1800},
		}, nil
	}
	uc := NewReconcileUseCase(p.store, p.gateway, p.fulfillment, 0, discardLogger())

	result, err := uc.Reconcile(context.Background(), order)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, "pay_ok", result.GatewayPaymentID)
	assert.Equal(t, 8, p.store.Stock(p.productA))
	assert.Zero(t, p.store.CartItems(p.customer))

	again, err := uc.Reconcile(context.Background(), order)
	require.NoError(t, err)
	assert.False(t, again.Applied)
	assert.Equal(t, 8, p.store.Stock(p.productA))
}

func TestReconcileWithoutCapture(t *testing.T) {
	p := newPipeline(t)
	ref := p.checkout(t)
	order, _ := p.store.OrderByReference(ref)

	p.gateway.OrderPaymentsFn = func(context.Context, string) ([]model.GatewayPayment, error) {
		return []model.GatewayPayment{{ID: "pay_auth", Status: model.GatewayPaymentAuthorized}}, nil
	}
	uc := NewReconcileUseCase(p.store, p.gateway, p.fulfillment, 0, discardLogger())

	_, err := uc.Reconcile(context.Background(), order)
	require.ErrorIs(t, err, domainErrors.ErrPaymentPending)

	stored, _ := p.store.OrderByReference(ref)
	assert.Equal(t, model.OrderStatusPending, stored.Status)
}

func TestReconcileGatewayError(t *testing.T) {
	p := newPipeline(t)
	ref := p.checkout(t)
	order, _ := p.store.OrderByReference(ref)

	p.gateway.OrderPaymentsFn = func(context.Context, string) ([]model.GatewayPayment, error) {
		return nil, &domainErrors.GatewayError{StatusCode: 429, RetryAfter: time.Second}
	}
	uc := NewReconcileUseCase(p.store, p.gateway, p.fulfillment, 0, discardLogger())

	_, err := uc.Reconcile(context.Background(), order)
	var gwErr *domainErrors.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, 429, gwErr.StatusCode)
}

func TestReconcileRotatesPastAbandonedBacklog(t *testing.T) {
	p := newPipeline(t)
	var abandoned []string
	for _, age := range []time.Duration{3 * time.Hour, 2 * time.Hour} {
		ref := p.checkout(t)
		order, _ := p.store.OrderByReference(ref)
		p.store.Backdate(order.ID, age)
		abandoned = append(abandoned, ref)
	}
	paidRef := p.checkout(t)
	paid, _ := p.store.OrderByReference(paidRef)
	p.store.Backdate(paid.ID, time.Hour)

	p.gateway.OrderPaymentsFn = func(_ context.Context, orderRef string) ([]model.GatewayPayment, error) {
		if orderRef != paidRef {
			return nil, nil
		}
		return []model.GatewayPayment{{ID: "pay_late", OrderRef: orderRef, Status: model.GatewayPaymentCaptured, Amount: 1800}}, nil
	}
	uc := NewReconcileUseCase(p.store, p.gateway, p.fulfillment, 15*time.Minute, discardLogger())

	const batch = 2
	for pass := 0; pass < 3; pass++ {
		pending, err := uc.AwaitingPayment(context.Background(), batch)
		require.NoError(t, err)
		require.LessOrEqual(t, len(pending), batch)
		for _, order := range pending {
			if _, err := uc.Reconcile(context.Background(), order); err != nil {
				require.ErrorIs(t, err, domainErrors.ErrPaymentPending)
			}
		}
	}

	stored, _ := p.store.OrderByReference(paidRef)
	assert.Equal(t, model.OrderStatusConfirmed, stored.Status)
	assert.True(t, stored.PaymentConfirmed)
	for _, ref := range abandoned {
		order, _ := p.store.OrderByReference(ref)
		assert.Equal(t, model.OrderStatusPending, order.Status)
	}
}

func TestReconcileAwaitingPaymentClaimsLeastRecentFirst(t *testing.T) {
	p := newPipeline(t)
	uc := NewReconcileUseCase(p.store, p.gateway, p.fulfillment, 0, discardLogger())
	var ids []uuid.UUID
	for _, age := range []time.Duration{3 * time.Hour, 2 * time.Hour, time.Hour} {
		order, _ := p.store.OrderByReference(p.checkout(t))
		p.store.Backdate(order.ID, age)
		ids = append(ids, order.ID)
	}

	first, err := uc.AwaitingPayment(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, ids[0], first[0].ID)
	assert.Equal(t, ids[1], first[1].ID)

	second, err := uc.AwaitingPayment(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, ids[2], second[0].ID, "never claimed orders go first")
	assert.Equal(t, ids[0], second[1].ID)
}

func TestReconcileRejectsAmountMismatch(t *testing.T) {
	p := newPipeline(t)
	ref := p.checkout(t)
	order, _ := p.store.OrderByReference(ref)

	p.gateway.OrderPaymentsFn = func(context.Context, string) ([]model.GatewayPayment, error) {
		return []model.GatewayPayment{{ID: "pay_short", OrderRef: ref, Status: model.GatewayPaymentCaptured, Amount: 100}}, nil
	}
	uc := NewReconcileUseCase(p.store, p.gateway, p.fulfillment, 0, discardLogger())

	_, err := uc.Reconcile(context.Background(), order)
	require.ErrorIs(t, err, domainErrors.ErrAmountMismatch)

	stored, _ := p.store.OrderByReference(ref)
	assert.Equal(t, model.OrderStatusPending, stored.Status)
	assert.False(t, stored.PaymentConfirmed)
	assert.Equal(t, 10, p.store.Stock(p.productA))

	p.gateway.OrderPaymentsFn = func(context.Context, string) ([]model.GatewayPayment, error) {
		return []model.GatewayPayment{
			{ID: "pay_short", OrderRef: ref, Status: model.GatewayPaymentCaptured, Amount: 100},
			{ID: "pay_full", OrderRef: ref, Status: model.GatewayPaymentCaptured, Amount: 1800},
		}, nil
	}
	result, err := uc.Reconcile(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, "pay_full", result.GatewayPaymentID)
}
