package payment

import (
	"log/slog"

	httpadapter "loanbook/contexts/lending-core/payment-service/adapters/http"
	"loanbook/contexts/lending-core/payment-service/adapters/memory"
	"loanbook/contexts/lending-core/payment-service/application"
	"loanbook/contexts/lending-core/payment-service/ports"
)

// Module is the payment-service composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Repository  ports.Repository
	Authorizer  ports.PaymentAuthorizer
	Scope       ports.ScopeResolver
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// NewModule wires the payment service and transport handler using explicit
// ports.
func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:        deps.Repository,
		Authorizer:  deps.Authorizer,
		Scope:       deps.Scope,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
		Service: service,
	}
}

// NewInMemoryModule builds a development/testing module around the memory
// store. The authorizer and scope resolver belong to the authorization
// service and are injected.
func NewInMemoryModule(
	authorizer ports.PaymentAuthorizer,
	scope ports.ScopeResolver,
	logger *slog.Logger,
) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:  store,
		Authorizer:  authorizer,
		Scope:       scope,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
