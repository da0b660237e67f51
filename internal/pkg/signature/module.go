package signature

import (
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
)

// Module provides the gateway signature verifier.
var Module = fx.Provide(func(cfg *config.Config) *Verifier {
	return NewVerifier(cfg.GatewayKeySecret)
})
