package account

import (
	"log/slog"
	"time"

	httpadapter "loanbook/contexts/identity-access/account-service/adapters/http"
	"loanbook/contexts/identity-access/account-service/adapters/memory"
	"loanbook/contexts/identity-access/account-service/application"
	"loanbook/contexts/identity-access/account-service/ports"
	tokens "loanbook/contexts/identity-access/token-service"
)

// Module is the account-service composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Repository  ports.Repository
	Tokens      ports.TokenService
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// NewModule wires the account service and transport handler using explicit ports.
func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:        deps.Repository,
		Tokens:      deps.Tokens,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
		Service: service,
	}
}

// NewInMemoryModule builds a development/testing module with in-memory
// adapters and a throwaway signing secret.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	tokenService, err := tokens.NewService(tokens.Config{
		Secret:     []byte("in-memory-development-secret"),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}, store)
	if err != nil {
		panic(err)
	}
	module := NewModule(Dependencies{
		Repository:  store,
		Tokens:      tokenService,
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
