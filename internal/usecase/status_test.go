package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

func confirmedOrder(t *testing.T, p *pipeline) model.Order {
	t.Helper()
	ref := p.checkout(t)
	_, err := p.fulfillment.ConfirmPayment(context.Background(), p.confirmation(ref, "pay_1"))
	require.NoError(t, err)
	order, ok := p.store.OrderByReference(ref)
	require.True(t, ok)
	return order
}

func TestSetStatusTransitions(t *testing.T) {
	admin := model.Identity{UserID: uuid.New(), Role: model.RoleAdmin}

	cases := []struct {
		name    string
		prepare func(t *testing.T, p *pipeline) model.Order
		status  string
		want    model.OrderStatus
		wantErr error
	}{
		{name: "confirmed to delivered", prepare: confirmedOrder, status: "DELIVERED", want: model.OrderStatusDelivered},
		{name: "confirmed to cancelled", prepare: confirmedOrder, status: "cancelled", want: model.OrderStatusCancelled},
		{name: "same status", prepare: confirmedOrder, status: "CONFIRMED", want: model.OrderStatusConfirmed},
		{name: "back to pending", prepare: confirmedOrder, status: "PENDING", wantErr: domainErrors.ErrInvalidTransition},
		{
			name: "pending cannot be confirmed by hand",
			prepare: func(t *testing.T, p *pipeline) model.Order {
				ref := p.checkout(t)
				order, _ := p.store.OrderByReference(ref)
				return order
			},
			status:  "CONFIRMED",
			wantErr: domainErrors.ErrInvalidTransition,
		},
		{name: "unknown status", prepare: confirmedOrder, status: "SHIPPED", wantErr: domainErrors.ErrInvalidStatus},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newPipeline(t)
			order := tc.prepare(t, p)
			uc := NewStatusUseCase(p.store, discardLogger())

			updated, err := uc.SetStatus(context.Background(), order.ID, tc.status, admin)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				stored, _ := p.store.GetByID(context.Background(), order.ID)
				assert.Equal(t, order.Status, stored.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, updated.Status)
			stored, _ := p.store.GetByID(context.Background(), order.ID)
			assert.Equal(t, tc.want, stored.Status)
		})
	}
}

func TestSetStatusTerminal(t *testing.T) {
	p := newPipeline(t)
	order := confirmedOrder(t, p)
	uc := NewStatusUseCase(p.store, discardLogger())
	admin := model.Identity{UserID: uuid.New(), Role: model.RoleAdmin}

	_, err := uc.SetStatus(context.Background(), order.ID, "DELIVERED", admin)
	require.NoError(t, err)

	_, err = uc.SetStatus(context.Background(), order.ID, "CANCELLED", admin)
	require.ErrorIs(t, err, domainErrors.ErrInvalidTransition)
}

func TestSetStatusAccess(t *testing.T) {
	p := newPipeline(t)
	order := confirmedOrder(t, p)
	uc := NewStatusUseCase(p.store, discardLogger())

	t.Run("customer", func(t *testing.T) {
		_, err := uc.SetStatus(context.Background(), order.ID, "DELIVERED", model.Identity{UserID: p.customer, Role: model.RoleCustomer})
		require.ErrorIs(t, err, domainErrors.ErrForbidden)
	})

	t.Run("foreign seller", func(t *testing.T) {
		_, err := uc.SetStatus(context.Background(), order.ID, "DELIVERED", model.Identity{UserID: uuid.New(), Role: model.RoleSeller})
		require.ErrorIs(t, err, domainErrors.ErrForbidden)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := uc.SetStatus(context.Background(), uuid.New(), "DELIVERED", model.Identity{UserID: p.seller, Role: model.RoleSeller})
		require.ErrorIs(t, err, domainErrors.ErrOrderNotFound)
	})

	t.Run("owning seller", func(t *testing.T) {
		updated, err := uc.SetStatus(context.Background(), order.ID, "DELIVERED", model.Identity{UserID: p.seller, Role: model.RoleSeller})
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusDelivered, updated.Status)
	})
}
