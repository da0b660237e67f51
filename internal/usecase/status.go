package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// StatusUseCase applies manual order status changes made by staff.
type StatusUseCase struct {
	orders repository.OrderRepository
	logger *slog.Logger
}

// NewStatusUseCase constructs StatusUseCase.
func NewStatusUseCase(orders repository.OrderRepository, logger *slog.Logger) *StatusUseCase {
	return &StatusUseCase{orders: orders, logger: logger}
}

// SetStatus moves the order forward along the lifecycle. Sellers may only touch orders that
// contain one of their products. Requesting the current status is a no-op.
func (u *StatusUseCase) SetStatus(ctx context.Context, orderID uuid.UUID, rawStatus string, requester model.Identity) (*model.Order, error) {
	next, ok := model.ParseOrderStatus(rawStatus)
	if !ok {
		return nil, domainErrors.ErrInvalidStatus
	}
	if !requester.CanManageOrders() {
		return nil, domainErrors.ErrForbidden
	}

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if requester.Role == model.RoleSeller {
		owns, err := u.orders.SellerOwnsItem(ctx, orderID, requester.UserID)
		if err != nil {
			return nil, fmt.Errorf("check seller ownership: %w", err)
		}
		if !owns {
			return nil, domainErrors.ErrForbidden
		}
	}

	if order.Status == next {
		return order, nil
	}
	if !order.Status.ManualTransitionAllowed(next) {
		return nil, fmt.Errorf("%w: %s to %s", domainErrors.ErrInvalidTransition, order.Status, next)
	}

	if err := u.orders.UpdateStatus(ctx, orderID, order.Status, next); err != nil {
		return nil, err
	}

	u.logger.Info("order status changed",
		slog.String("order_id", orderID.String()),
		slog.String("from", string(order.Status)),
		slog.String("to", string(next)),
		slog.String("requester_id", requester.UserID.String()),
		slog.String("role", string(requester.Role)),
	)

	order.Status = next
	return order, nil
}
