package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/adapter/events"
	"github.com/polkiloo/storefront/internal/adapter/gateway"
	"github.com/polkiloo/storefront/internal/app"
	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/logger"
	"github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/pkg/signature"
	"github.com/polkiloo/storefront/internal/server/http/handlers"
	"github.com/polkiloo/storefront/internal/server/http/router"
	"github.com/polkiloo/storefront/internal/storage/postgres"
	"github.com/polkiloo/storefront/internal/usecase"
)

// core is shared by the HTTP server and the reconciler.
func core() fx.Option {
	return fx.Options(
		config.Module,
		logger.Module,
		auth.Module,
		signature.Module,
		postgres.Module,
		gateway.Module,
		events.Module,
		usecase.Module,
		fx.Provide(
			func(c gateway.Client) usecase.PaymentGateway { return c },
			func(v *signature.Verifier) usecase.SignatureVerifier { return v },
			func(p events.Publisher) usecase.EventPublisher { return p },
			func(s *postgres.Storage) app.HealthChecker { return s },
		),
	)
}

// Module composes the storefront HTTP service.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		core(),
		fx.Provide(func(f *app.StorefrontFacade) handlers.StorefrontFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

// ReconcilerModule composes the background reconciliation process.
func ReconcilerModule(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		core(),
		app.ReconcilerModule,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
