package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newCheckoutOptions,
	NewCheckoutUseCase,
	NewFulfillmentUseCase,
	NewStatusUseCase,
	NewOrderQueryUseCase,
	newReconcileUseCase,
)

func newCheckoutOptions(cfg *config.Config) CheckoutOptions {
	return CheckoutOptions{
		KeyID:          cfg.GatewayKeyID,
		Currency:       cfg.SettlementCurrency,
		GatewayTimeout: cfg.GatewayTimeout,
	}
}

func newReconcileUseCase(
	cfg *config.Config,
	orders repository.OrderRepository,
	gateway PaymentGateway,
	fulfillment *FulfillmentUseCase,
	logger *slog.Logger,
) *ReconcileUseCase {
	return NewReconcileUseCase(orders, gateway, fulfillment, cfg.ReconcileAfter, logger)
}
