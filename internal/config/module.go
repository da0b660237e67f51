package config

import "go.uber.org/fx"

// Module provides the validated configuration shared by the storefront and reconciler processes.
var Module = fx.Provide(Load)
