package app

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/usecase"
)

// HealthChecker reports whether backing storage is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type facadeParams struct {
	fx.In

	Checkout    *usecase.CheckoutUseCase
	Fulfillment *usecase.FulfillmentUseCase
	Status      *usecase.StatusUseCase
	Queries     *usecase.OrderQueryUseCase
	Reconcile   *usecase.ReconcileUseCase
	Tokens      auth.Strategy
	Health      HealthChecker
}

// StorefrontFacade groups the use cases behind the HTTP handlers and the reconciler.
type StorefrontFacade struct {
	checkout    *usecase.CheckoutUseCase
	fulfillment *usecase.FulfillmentUseCase
	status      *usecase.StatusUseCase
	queries     *usecase.OrderQueryUseCase
	reconcile   *usecase.ReconcileUseCase
	tokens      auth.Strategy
	health      HealthChecker
}

func NewStorefrontFacade(p facadeParams) *StorefrontFacade {
	return &StorefrontFacade{
		checkout:    p.Checkout,
		fulfillment: p.Fulfillment,
		status:      p.Status,
		queries:     p.Queries,
		reconcile:   p.Reconcile,
		tokens:      p.Tokens,
		health:      p.Health,
	}
}

func (f *StorefrontFacade) ParseToken(token string) (model.Identity, error) {
	return f.tokens.ParseToken(token)
}

func (f *StorefrontFacade) InitiateCheckout(ctx context.Context, customerID, addressID uuid.UUID) (*model.CheckoutSession, error) {
	return f.checkout.InitiateCheckout(ctx, customerID, addressID)
}

func (f *StorefrontFacade) ConfirmPayment(ctx context.Context, in model.PaymentConfirmation) (*model.FulfillmentResult, error) {
	return f.fulfillment.ConfirmPayment(ctx, in)
}

func (f *StorefrontFacade) OrderDetail(ctx context.Context, orderID uuid.UUID, requester model.Identity) (*model.OrderDetail, error) {
	return f.queries.GetOrderByID(ctx, orderID, requester)
}

func (f *StorefrontFacade) MyOrders(ctx context.Context, customerID uuid.UUID, page model.PageRequest, status string) (*model.Page[model.OrderSummary], error) {
	return f.queries.MyOrders(ctx, customerID, page, status)
}

func (f *StorefrontFacade) SellerOrders(ctx context.Context, requester model.Identity, page model.PageRequest, status string) (*model.Page[model.SellerOrder], error) {
	return f.queries.OrderListAdmin(ctx, requester, page, status)
}

func (f *StorefrontFacade) SetOrderStatus(ctx context.Context, orderID uuid.UUID, status string, requester model.Identity) (*model.Order, error) {
	return f.status.SetStatus(ctx, orderID, status, requester)
}

// HealthCheck pings storage. A facade without a checker is always healthy.
func (f *StorefrontFacade) HealthCheck(ctx context.Context) error {
	if f.health == nil {
		return nil
	}
	return f.health.HealthCheck(ctx)
}

func (f *StorefrontFacade) AwaitingPayment(ctx context.Context, limit int) ([]model.Order, error) {
	return f.reconcile.AwaitingPayment(ctx, limit)
}

func (f *StorefrontFacade) Reconcile(ctx context.Context, order model.Order) (*model.FulfillmentResult, error) {
	return f.reconcile.Reconcile(ctx, order)
}
