package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// StorefrontFacadeStub implements the HTTP facade with overridable behaviour.
type StorefrontFacadeStub struct {
	TokenParserStub

	InitiateCheckoutFn func(context.Context, uuid.UUID, uuid.UUID) (*model.CheckoutSession, error)
	ConfirmPaymentFn   func(context.Context, model.PaymentConfirmation) (*model.FulfillmentResult, error)
	OrderDetailFn      func(context.Context, uuid.UUID, model.Identity) (*model.OrderDetail, error)
	MyOrdersFn         func(context.Context, uuid.UUID, model.PageRequest, string) (*model.Page[model.OrderSummary], error)
	SellerOrdersFn     func(context.Context, model.Identity, model.PageRequest, string) (*model.Page[model.SellerOrder], error)
	SetOrderStatusFn   func(context.Context, uuid.UUID, string, model.Identity) (*model.Order, error)
	HealthCheckFn      func(context.Context) error
}

func (s StorefrontFacadeStub) InitiateCheckout(ctx context.Context, customerID, addressID uuid.UUID) (*model.CheckoutSession, error) {
	if s.InitiateCheckoutFn != nil {
		return s.InitiateCheckoutFn(ctx, customerID, addressID)
	}
	return &model.CheckoutSession{KeyID: "key", Amount: 100, Currency: "INR", Intent: []byte(`{"id":"order_1"}`)}, nil
}

func (s StorefrontFacadeStub) ConfirmPayment(ctx context.Context, in model.PaymentConfirmation) (*model.FulfillmentResult, error) {
	if s.ConfirmPaymentFn != nil {
		return s.ConfirmPaymentFn(ctx, in)
	}
	return &model.FulfillmentResult{PaymentReference: in.GatewayOrderRef, GatewayPaymentID: in.GatewayPaymentRef, Applied: true}, nil
}

func (s StorefrontFacadeStub) OrderDetail(ctx context.Context, orderID uuid.UUID, requester model.Identity) (*model.OrderDetail, error) {
	if s.OrderDetailFn != nil {
		return s.OrderDetailFn(ctx, orderID, requester)
	}
	return nil, domainErrors.ErrOrderNotFound
}

func (s StorefrontFacadeStub) MyOrders(ctx context.Context, customerID uuid.UUID, page model.PageRequest, status string) (*model.Page[model.OrderSummary], error) {
	if s.MyOrdersFn != nil {
		return s.MyOrdersFn(ctx, customerID, page, status)
	}
	return model.NewPage[model.OrderSummary](nil, page, 0), nil
}

func (s StorefrontFacadeStub) SellerOrders(ctx context.Context, requester model.Identity, page model.PageRequest, status string) (*model.Page[model.SellerOrder], error) {
	if s.SellerOrdersFn != nil {
		return s.SellerOrdersFn(ctx, requester, page, status)
	}
	return model.NewPage[model.SellerOrder](nil, page, 0), nil
}

func (s StorefrontFacadeStub) SetOrderStatus(ctx context.Context, orderID uuid.UUID, status string, requester model.Identity) (*model.Order, error) {
	if s.SetOrderStatusFn != nil {
		return s.SetOrderStatusFn(ctx, orderID, status, requester)
	}
	return &model.Order{ID: orderID, Status: model.OrderStatus(status), UpdatedAt: time.Unix(0, 0).UTC()}, nil
}

func (s StorefrontFacadeStub) HealthCheck(ctx context.Context) error {
	if s.HealthCheckFn != nil {
		return s.HealthCheckFn(ctx)
	}
	return nil
}

// ReconcileFacadeStub mimics the reconciler's view of the application.
type ReconcileFacadeStub struct {
	Batches     [][]model.Order
	AwaitingFn  func(context.Context, int) ([]model.Order, error)
	ReconcileFn func(context.Context, model.Order) (*model.FulfillmentResult, error)

	mu         sync.Mutex
	Reconciled []model.Order
	fetchCalls int32
}

// AwaitingPayment returns the configured batches one call at a time.
func (s *ReconcileFacadeStub) AwaitingPayment(ctx context.Context, limit int) ([]model.Order, error) {
	if s.AwaitingFn != nil {
		return s.AwaitingFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.fetchCalls, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	return nil, nil
}

// Reconcile records the order and reports it as applied unless overridden.
func (s *ReconcileFacadeStub) Reconcile(ctx context.Context, order model.Order) (*model.FulfillmentResult, error) {
	var (
		result *model.FulfillmentResult
		err    error
	)
	if s.ReconcileFn != nil {
		result, err = s.ReconcileFn(ctx, order)
	} else {
		result = &model.FulfillmentResult{OrderID: order.ID, PaymentReference: order.PaymentReference, Applied: true}
	}
	if err == nil {
		s.mu.Lock()
		s.Reconciled = append(s.Reconciled, order)
		s.mu.Unlock()
	}
	return result, err
}

// ReconciledCount returns the number of successfully reconciled orders.
func (s *ReconcileFacadeStub) ReconciledCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Reconciled)
}

// FetchCalls returns how many times AwaitingPayment ran.
func (s *ReconcileFacadeStub) FetchCalls() int {
	return int(atomic.LoadInt32(&s.fetchCalls))
}
