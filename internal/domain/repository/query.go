package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// OrderQueryRepository serves read projections of orders.
type OrderQueryRepository interface {
	Detail(ctx context.Context, orderID uuid.UUID) (*model.OrderDetail, error)
	CustomerOrders(ctx context.Context, customerID uuid.UUID, filter model.OrderFilter) ([]model.OrderSummary, int, error)
	SellerOrders(ctx context.Context, sellerID uuid.UUID, filter model.OrderFilter) ([]model.SellerOrder, int, error)
}
