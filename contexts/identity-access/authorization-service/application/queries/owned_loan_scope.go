package queries

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"loanbook/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "loanbook/contexts/identity-access/authorization-service/domain/errors"
	"loanbook/contexts/identity-access/authorization-service/ports"
)

// OwnedLoanScopeUseCase resolves the listing scope for a principal:
// admins see everything, users see only payments attached to loans they own.
// Cache-first with repository fallback; an empty owned set is a valid scope.
type OwnedLoanScopeUseCase struct {
	Loans    ports.LoanOwnership
	Cache    ports.OwnershipCache
	Clock    ports.Clock
	CacheTTL time.Duration
	Logger   *slog.Logger
}

func (u OwnedLoanScopeUseCase) Execute(
	ctx context.Context,
	principal entities.Principal,
) (ports.Scope, error) {
	if strings.TrimSpace(principal.ID) == "" {
		return ports.Scope{}, domainerrors.ErrInvalidPrincipal
	}
	if principal.IsAdmin() {
		return ports.Scope{All: true}, nil
	}

	now := u.now()
	logger := resolveLogger(u.Logger)

	if u.Cache != nil {
		loanIDs, hit, err := u.Cache.Get(ctx, principal.ID, now)
		if err != nil {
			logger.Warn("ownership cache lookup failed, falling back to repository",
				"event", "authz_scope_cache_failed",
				"module", "identity-access/authorization-service",
				"layer", "application",
				"principal_id", principal.ID,
				"error", err.Error(),
			)
		} else if hit {
			return ports.Scope{LoanIDs: loanIDs}, nil
		}
	}

	loanIDs, err := u.Loans.LoanIDsOwnedBy(ctx, principal.ID)
	if err != nil {
		return ports.Scope{}, err
	}

	if u.Cache != nil {
		if err := u.Cache.Set(ctx, principal.ID, loanIDs, now.Add(u.cacheTTL())); err != nil {
			logger.Warn("ownership cache fill failed",
				"event", "authz_scope_cache_fill_failed",
				"module", "identity-access/authorization-service",
				"layer", "application",
				"principal_id", principal.ID,
				"error", err.Error(),
			)
		}
	}
	return ports.Scope{LoanIDs: loanIDs}, nil
}

func (u OwnedLoanScopeUseCase) cacheTTL() time.Duration {
	if u.CacheTTL <= 0 {
		return 5 * time.Minute
	}
	return u.CacheTTL
}

func (u OwnedLoanScopeUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
