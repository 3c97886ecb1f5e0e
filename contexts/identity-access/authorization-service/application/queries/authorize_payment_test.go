package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"loanbook/contexts/identity-access/authorization-service/adapters/memory"
	"loanbook/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "loanbook/contexts/identity-access/authorization-service/domain/errors"
)

func TestAuthorizePaymentTransitiveOwnership(t *testing.T) {
	store := memory.NewStore()
	store.AddLoan("loan_1", "acc_owner")
	useCase := AuthorizePaymentUseCase{Loans: store}

	owner := entities.Principal{ID: "acc_owner", Role: entities.RoleUser}
	decision, err := useCase.Execute(context.Background(), owner, "loan_1")
	if err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("loan owner should access its payments, got %+v", decision)
	}

	stranger := entities.Principal{ID: "acc_other", Role: entities.RoleUser}
	decision, err = useCase.Execute(context.Background(), stranger, "loan_1")
	if err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("non-owner should be denied, got %+v", decision)
	}
}

func TestAuthorizePaymentAdminBypassesOwnership(t *testing.T) {
	store := memory.NewStore()
	store.AddLoan("loan_1", "acc_owner")
	useCase := AuthorizePaymentUseCase{Loans: store}
	admin := entities.Principal{ID: "acc_adm", Role: entities.RoleAdmin}

	decision, err := useCase.Execute(context.Background(), admin, "loan_1")
	if err != nil {
		t.Fatalf("authorize failed: %v", err)
	}
	if !decision.Allowed || decision.Reason != entities.ReasonAdminBypass {
		t.Fatalf("expected admin bypass, got %+v", decision)
	}
}

func TestAuthorizePaymentMissingLoan(t *testing.T) {
	// Existence is decided before any role verdict: a missing loan is
	// not-found for admins too, never an allow.
	useCase := AuthorizePaymentUseCase{Loans: memory.NewStore()}
	for _, principal := range []entities.Principal{
		{ID: "acc_1", Role: entities.RoleUser},
		{ID: "acc_adm", Role: entities.RoleAdmin},
	} {
		_, err := useCase.Execute(context.Background(), principal, "loan_missing")
		if !errors.Is(err, domainerrors.ErrLoanNotFound) {
			t.Fatalf("role %s: expected loan not found, got %v", principal.Role, err)
		}
	}
}

func TestOwnedLoanScopeAdminUnscoped(t *testing.T) {
	store := memory.NewStore()
	useCase := OwnedLoanScopeUseCase{Loans: store, Cache: store, Clock: store}

	scope, err := useCase.Execute(context.Background(), entities.Principal{ID: "acc_adm", Role: entities.RoleAdmin})
	if err != nil {
		t.Fatalf("scope failed: %v", err)
	}
	if !scope.All {
		t.Fatalf("admin scope must be unscoped, got %+v", scope)
	}
}

func TestOwnedLoanScopeEmptyForUserWithoutLoans(t *testing.T) {
	store := memory.NewStore()
	useCase := OwnedLoanScopeUseCase{Loans: store, Cache: store, Clock: store}

	scope, err := useCase.Execute(context.Background(), entities.Principal{ID: "acc_new", Role: entities.RoleUser})
	if err != nil {
		t.Fatalf("scope failed: %v", err)
	}
	if scope.All || len(scope.LoanIDs) != 0 {
		t.Fatalf("expected empty scope, got %+v", scope)
	}
}

func TestOwnedLoanScopeUsesCacheUntilExpiry(t *testing.T) {
	store := memory.NewStore()
	store.SetNow(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	store.AddLoan("loan_1", "acc_1")
	useCase := OwnedLoanScopeUseCase{
		Loans:    store,
		Cache:    store,
		Clock:    store,
		CacheTTL: 5 * time.Minute,
	}
	principal := entities.Principal{ID: "acc_1", Role: entities.RoleUser}

	scope, err := useCase.Execute(context.Background(), principal)
	if err != nil {
		t.Fatalf("scope failed: %v", err)
	}
	if len(scope.LoanIDs) != 1 || scope.LoanIDs[0] != "loan_1" {
		t.Fatalf("unexpected scope %+v", scope)
	}

	// A second loan appears but the cached set is still fresh.
	store.AddLoan("loan_2", "acc_1")
	scope, err = useCase.Execute(context.Background(), principal)
	if err != nil {
		t.Fatalf("scope failed: %v", err)
	}
	if len(scope.LoanIDs) != 1 {
		t.Fatalf("expected cached scope of 1 loan, got %+v", scope)
	}

	// After TTL the repository is consulted again.
	store.SetNow(time.Date(2025, 6, 1, 10, 6, 0, 0, time.UTC))
	scope, err = useCase.Execute(context.Background(), principal)
	if err != nil {
		t.Fatalf("scope failed: %v", err)
	}
	if len(scope.LoanIDs) != 2 {
		t.Fatalf("expected refreshed scope of 2 loans, got %+v", scope)
	}
}

func TestOwnedLoanScopeInvalidation(t *testing.T) {
	store := memory.NewStore()
	store.AddLoan("loan_1", "acc_1")
	useCase := OwnedLoanScopeUseCase{Loans: store, Cache: store, Clock: store, CacheTTL: time.Hour}
	principal := entities.Principal{ID: "acc_1", Role: entities.RoleUser}

	if _, err := useCase.Execute(context.Background(), principal); err != nil {
		t.Fatalf("scope failed: %v", err)
	}
	store.AddLoan("loan_2", "acc_1")
	if err := store.Invalidate(context.Background(), "acc_1"); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}

	scope, err := useCase.Execute(context.Background(), principal)
	if err != nil {
		t.Fatalf("scope failed: %v", err)
	}
	if len(scope.LoanIDs) != 2 {
		t.Fatalf("expected scope refresh after invalidation, got %+v", scope)
	}
}
