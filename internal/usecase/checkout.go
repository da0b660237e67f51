package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// CheckoutOptions carries the gateway settings used when opening a payment.
type CheckoutOptions struct {
	KeyID          string
	Currency       string
	GatewayTimeout time.Duration
}

// CheckoutUseCase turns a customer's cart into a gateway payment intent and a pending order.
type CheckoutUseCase struct {
	orders    repository.OrderRepository
	addresses repository.AddressRepository
	carts     repository.CartRepository
	gateway   PaymentGateway
	opts      CheckoutOptions
	logger    *slog.Logger

	newID      func() uuid.UUID
	newReceipt func() string
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(
	orders repository.OrderRepository,
	addresses repository.AddressRepository,
	carts repository.CartRepository,
	gateway PaymentGateway,
	opts CheckoutOptions,
	logger *slog.Logger,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		orders:     orders,
		addresses:  addresses,
		carts:      carts,
		gateway:    gateway,
		opts:       opts,
		logger:     logger,
		newID:      uuid.New,
		newReceipt: func() string { return ulid.Make().String() },
	}
}

// InitiateCheckout opens a gateway payment for the customer's cart and records the pending order.
// No order is stored when the gateway refuses the intent.
func (u *CheckoutUseCase) InitiateCheckout(ctx context.Context, customerID, addressID uuid.UUID) (*model.CheckoutSession, error) {
	owned, err := u.addresses.IsOwnedBy(ctx, addressID, customerID)
	if err != nil {
		return nil, fmt.Errorf("check address: %w", err)
	}
	if !owned {
		checkoutsTotal.WithLabelValues("rejected").Inc()
		return nil, domainErrors.ErrAddressNotOwned
	}

	cart, err := u.carts.Snapshot(ctx, customerID)
	if err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart.Empty() {
		checkoutsTotal.WithLabelValues("rejected").Inc()
		return nil, domainErrors.ErrEmptyCart
	}

	amount := cart.PayableAmount()
	if amount <= 0 {
		checkoutsTotal.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: nothing to pay after coupon", domainErrors.ErrInvalidInput)
	}
	receipt := u.newReceipt()

	intent, err := u.createIntent(ctx, amount, receipt)
	if err != nil {
		checkoutsTotal.WithLabelValues("gateway_error").Inc()
		u.logger.Warn("payment intent rejected",
			slog.String("customer_id", customerID.String()),
			slog.Int64("amount", amount),
			slog.String("receipt", receipt),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	order := model.NewPendingOrder(u.newID(), customerID, addressID, cart, intent)
	// The intent already exists at the gateway, so a client disconnect must not drop the order.
	if err := u.orders.Create(context.WithoutCancel(ctx), order); err != nil {
		checkoutsTotal.WithLabelValues("inconsistent").Inc()
		reconciliationRequiredTotal.Inc()
		u.logger.Error("order not persisted after payment intent creation",
			slog.Bool("reconcile", true),
			slog.String("gateway_order_ref", intent.GatewayOrderRef),
			slog.String("receipt", receipt),
			slog.String("customer_id", customerID.String()),
			slog.Int64("amount", intent.Amount),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: persist order for %s: %v", domainErrors.ErrConsistency, intent.GatewayOrderRef, err)
	}

	checkoutsTotal.WithLabelValues("created").Inc()
	u.logger.Info("checkout initiated",
		slog.String("order_id", order.ID.String()),
		slog.String("gateway_order_ref", intent.GatewayOrderRef),
		slog.Int64("amount", intent.Amount),
		slog.String("currency", intent.Currency),
	)

	return &model.CheckoutSession{
		KeyID:    u.opts.KeyID,
		Amount:   intent.Amount,
		Currency: intent.Currency,
		Intent:   intent.Payload,
	}, nil
}

func (u *CheckoutUseCase) createIntent(ctx context.Context, amount int64, receipt string) (*model.PaymentIntent, error) {
	if u.opts.GatewayTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.opts.GatewayTimeout)
		defer cancel()
	}
	intent, err := u.gateway.CreateIntent(ctx, amount, u.opts.Currency, receipt)
	if err != nil {
		return nil, err
	}
	if intent.Currency == "" {
		intent.Currency = u.opts.Currency
	}
	if intent.Receipt == "" {
		intent.Receipt = receipt
	}
	return intent, nil
}
