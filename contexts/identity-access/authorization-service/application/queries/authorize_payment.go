package queries

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"loanbook/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "loanbook/contexts/identity-access/authorization-service/domain/errors"
	"loanbook/contexts/identity-access/authorization-service/domain/services"
	"loanbook/contexts/identity-access/authorization-service/ports"
)

// AuthorizePaymentUseCase resolves payment ownership transitively: the
// effective owner of a payment is the owner of its loan. The two-hop lookup is
// explicit rather than a denormalized owner field so a loan owner change can
// never leave stale payment ownership behind.
type AuthorizePaymentUseCase struct {
	Loans  ports.LoanOwnership
	Logger *slog.Logger
}

// Execute decides access to a payment attached to loanID. Loan existence is
// settled before any verdict: a missing loan surfaces as ErrLoanNotFound for
// every principal, admins included, so callers report not-found before
// forbidden and never act on a loan that is not there.
func (u AuthorizePaymentUseCase) Execute(
	ctx context.Context,
	principal entities.Principal,
	loanID string,
) (entities.Decision, error) {
	if strings.TrimSpace(principal.ID) == "" {
		return entities.Decision{}, domainerrors.ErrInvalidPrincipal
	}

	ownerID, err := u.Loans.OwnerOfLoan(ctx, loanID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrLoanNotFound) {
			return entities.Decision{}, domainerrors.ErrLoanNotFound
		}
		return entities.Decision{}, err
	}

	decision := services.Authorize(principal, ownerID)
	if !decision.Allowed {
		resolveLogger(u.Logger).Debug("payment access denied",
			"event", "authz_payment_denied",
			"module", "identity-access/authorization-service",
			"layer", "application",
			"principal_id", principal.ID,
			"loan_id", loanID,
			"reason", decision.Reason,
		)
	}
	return decision, nil
}
