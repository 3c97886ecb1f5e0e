package loan

import (
	"log/slog"

	httpadapter "loanbook/contexts/lending-core/loan-service/adapters/http"
	"loanbook/contexts/lending-core/loan-service/adapters/memory"
	"loanbook/contexts/lending-core/loan-service/application"
	"loanbook/contexts/lending-core/loan-service/application/workers"
	"loanbook/contexts/lending-core/loan-service/ports"
)

// Module is the loan-service composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Repository  ports.Repository
	Accounts    ports.AccountDirectory
	Payments    ports.PaymentCounter
	Invalidator ports.OwnershipInvalidator
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// NewModule wires the loan service and transport handler using explicit ports.
func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:        deps.Repository,
		Accounts:    deps.Accounts,
		Payments:    deps.Payments,
		Invalidator: deps.Invalidator,
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
// store. Cross-context ports are injected because they belong to the account
// and payment services.
func NewInMemoryModule(
	accounts ports.AccountDirectory,
	payments ports.PaymentCounter,
	invalidator ports.OwnershipInvalidator,
	logger *slog.Logger,
) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:  store,
		Accounts:    accounts,
		Payments:    payments,
		Invalidator: invalidator,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}

// NewOutboxRelay builds the worker that drains pending loan events to the bus.
func NewOutboxRelay(
	outbox ports.OutboxRepository,
	publisher ports.EventPublisher,
	clock ports.Clock,
	logger *slog.Logger,
) workers.OutboxRelay {
	return workers.OutboxRelay{
		Outbox:    outbox,
		Publisher: publisher,
		Clock:     clock,
		Logger:    logger,
	}
}
