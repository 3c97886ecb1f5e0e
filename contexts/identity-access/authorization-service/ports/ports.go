package ports

import (
	"context"
	"time"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// LoanOwnership resolves the owner chain of lending resources. Implemented by
// the loan repository; payment ownership is derived transitively through it.
type LoanOwnership interface {
	// OwnerOfLoan returns the owning account id for a loan, or
	// errors.ErrLoanNotFound when the loan does not exist.
	OwnerOfLoan(ctx context.Context, loanID string) (string, error)
	// LoanIDsOwnedBy returns the ids of every loan owned by an account.
	LoanIDsOwnedBy(ctx context.Context, accountID string) ([]string, error)
}

// OwnershipCache stores owned-loan-id sets with TTL semantics. Lookups are
// best-effort: a cache fault falls back to the repository.
type OwnershipCache interface {
	Get(ctx context.Context, accountID string, now time.Time) ([]string, bool, error)
	Set(ctx context.Context, accountID string, loanIDs []string, expiresAt time.Time) error
	Invalidate(ctx context.Context, accountID string) error
}

// Scope is the result of resolving a principal's listing visibility. All=true
// means unscoped (admin); otherwise only the listed loan ids are visible, and
// an empty set means an empty result page, not an error.
type Scope struct {
	All     bool
	LoanIDs []string
}
