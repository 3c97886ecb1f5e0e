package ports

import (
	"context"
	"time"

	authzentities "loanbook/contexts/identity-access/authorization-service/domain/entities"
	authzports "loanbook/contexts/identity-access/authorization-service/ports"
	"loanbook/contexts/lending-core/payment-service/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator mints payment identifiers.
type IDGenerator interface {
	NewID() string
}

// PaymentFilter narrows List results. Zero values mean no constraint; a
// non-nil LoanIDs restricts results to those loans (scope intersection).
type PaymentFilter struct {
	Status  string
	LoanID  string
	LoanIDs []string
	Skip    int
	Limit   int
}

// Repository is the payment persistence port. CountByLoan also serves the
// loan service's delete-restrict check.
type Repository interface {
	Create(ctx context.Context, payment entities.Payment) error
	GetByID(ctx context.Context, paymentID string) (entities.Payment, error)
	List(ctx context.Context, filter PaymentFilter) ([]entities.Payment, int64, error)
	Update(ctx context.Context, payment entities.Payment) error
	Delete(ctx context.Context, paymentID string) error
	CountByLoan(ctx context.Context, loanID string) (int64, error)
}

// PaymentAuthorizer decides access to a payment through its loan. Satisfied
// by the authorization service's two-hop use case.
type PaymentAuthorizer interface {
	Execute(
		ctx context.Context,
		principal authzentities.Principal,
		loanID string,
	) (authzentities.Decision, error)
}

// ScopeResolver resolves the owned-loan listing scope for a principal.
type ScopeResolver interface {
	Execute(ctx context.Context, principal authzentities.Principal) (authzports.Scope, error)
}
