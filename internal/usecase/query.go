package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// OrderQueryUseCase serves order projections with access checks and pagination.
type OrderQueryUseCase struct {
	queries repository.OrderQueryRepository
}

// NewOrderQueryUseCase constructs OrderQueryUseCase.
func NewOrderQueryUseCase(queries repository.OrderQueryRepository) *OrderQueryUseCase {
	return &OrderQueryUseCase{queries: queries}
}

// GetOrderByID returns the order to its customer or an admin. A seller gets the order only when
// it holds one of their products, trimmed to those lines. Other callers see ErrOrderNotFound.
func (u *OrderQueryUseCase) GetOrderByID(ctx context.Context, orderID uuid.UUID, requester model.Identity) (*model.OrderDetail, error) {
	detail, err := u.queries.Detail(ctx, orderID)
	if err != nil {
		return nil, err
	}
	switch {
	case detail.Customer.ID == requester.UserID, requester.Role == model.RoleAdmin:
		return detail, nil
	case requester.Role == model.RoleSeller && detail.OwnsAnyItem(requester.UserID):
		return detail.ForSeller(requester.UserID), nil
	}
	return nil, domainErrors.ErrOrderNotFound
}

// MyOrders lists the customer's orders, newest first.
func (u *OrderQueryUseCase) MyOrders(ctx context.Context, customerID uuid.UUID, page model.PageRequest, status string) (*model.Page[model.OrderSummary], error) {
	filter, err := newOrderFilter(page, status)
	if err != nil {
		return nil, err
	}
	items, total, err := u.queries.CustomerOrders(ctx, customerID, filter)
	if err != nil {
		return nil, err
	}
	return model.NewPage(items, filter.PageRequest, total), nil
}

// OrderListAdmin lists orders containing products of the requester, trimmed to those products.
func (u *OrderQueryUseCase) OrderListAdmin(ctx context.Context, requester model.Identity, page model.PageRequest, status string) (*model.Page[model.SellerOrder], error) {
	if !requester.CanManageOrders() {
		return nil, domainErrors.ErrForbidden
	}
	filter, err := newOrderFilter(page, status)
	if err != nil {
		return nil, err
	}
	items, total, err := u.queries.SellerOrders(ctx, requester.UserID, filter)
	if err != nil {
		return nil, err
	}
	return model.NewPage(items, filter.PageRequest, total), nil
}

func newOrderFilter(page model.PageRequest, status string) (model.OrderFilter, error) {
	filter := model.OrderFilter{PageRequest: model.NewPageRequest(page.Page, page.Limit)}
	if strings.TrimSpace(status) == "" {
		return filter, nil
	}
	parsed, ok := model.ParseOrderStatus(status)
	if !ok {
		return filter, domainErrors.ErrInvalidStatus
	}
	filter.Status = parsed
	return filter, nil
}
