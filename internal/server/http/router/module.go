package router

import "go.uber.org/fx"

// Module provides the storefront gin engine.
var Module = fx.Provide(Setup)
