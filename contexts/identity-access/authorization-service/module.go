package authorization

import (
	"log/slog"
	"time"

	httpadapter "loanbook/contexts/identity-access/authorization-service/adapters/http"
	"loanbook/contexts/identity-access/authorization-service/adapters/memory"
	"loanbook/contexts/identity-access/authorization-service/application/queries"
	"loanbook/contexts/identity-access/authorization-service/ports"
)

// Module is the authorization-service composition root exposed to runtime wiring.
type Module struct {
	Handler          httpadapter.Handler
	AuthorizePayment queries.AuthorizePaymentUseCase
	OwnedLoanScope   queries.OwnedLoanScopeUseCase
	Store            *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Loans    ports.LoanOwnership
	Cache    ports.OwnershipCache
	Clock    ports.Clock
	CacheTTL time.Duration
	Logger   *slog.Logger
}

// NewModule wires the decision use-cases and the check handler using explicit ports.
func NewModule(deps Dependencies) Module {
	authorizePayment := queries.AuthorizePaymentUseCase{
		Loans:  deps.Loans,
		Logger: deps.Logger,
	}
	ownedLoanScope := queries.OwnedLoanScopeUseCase{
		Loans:    deps.Loans,
		Cache:    deps.Cache,
		Clock:    deps.Clock,
		CacheTTL: deps.CacheTTL,
		Logger:   deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			AuthorizePayment: authorizePayment,
			Logger:           deps.Logger,
		},
		AuthorizePayment: authorizePayment,
		OwnedLoanScope:   ownedLoanScope,
	}
}

// NewInMemoryModule builds a development/testing module with in-memory adapters.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Loans:    store,
		Cache:    store,
		Clock:    store,
		CacheTTL: 5 * time.Minute,
		Logger:   logger,
	})
	module.Store = store
	return module
}
