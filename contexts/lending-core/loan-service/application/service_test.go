package application

import (
	"context"
	"errors"
	"testing"
	"time"

	authzentities "loanbook/contexts/identity-access/authorization-service/domain/entities"
	"loanbook/contexts/lending-core/loan-service/adapters/memory"
	"loanbook/contexts/lending-core/loan-service/domain/entities"
	domainerrors "loanbook/contexts/lending-core/loan-service/domain/errors"
	"loanbook/contexts/lending-core/loan-service/ports"

	"github.com/shopspring/decimal"
)

type accountDirectoryStub struct {
	ids map[string]bool
}

func (d accountDirectoryStub) AccountExists(_ context.Context, id string) (bool, error) {
	return d.ids[id], nil
}

type paymentCounterStub struct {
	counts map[string]int64
}

func (c paymentCounterStub) CountByLoan(_ context.Context, loanID string) (int64, error) {
	return c.counts[loanID], nil
}

type invalidatorRecorder struct {
	calls []string
}

func (r *invalidatorRecorder) Invalidate(_ context.Context, accountID string) error {
	r.calls = append(r.calls, accountID)
	return nil
}

type fixture struct {
	service     Service
	store       *memory.Store
	counter     paymentCounterStub
	invalidator *invalidatorRecorder
}

func newFixture(t *testing.T, accountIDs ...string) *fixture {
	t.Helper()
	store := memory.NewStore()
	ids := make(map[string]bool, len(accountIDs))
	for _, id := range accountIDs {
		ids[id] = true
	}
	counter := paymentCounterStub{counts: make(map[string]int64)}
	invalidator := &invalidatorRecorder{}
	return &fixture{
		service: Service{
			Repo:        store,
			Accounts:    accountDirectoryStub{ids: ids},
			Payments:    counter,
			Invalidator: invalidator,
			Clock:       store,
			IDGenerator: store,
		},
		store:       store,
		counter:     counter,
		invalidator: invalidator,
	}
}

var alice = authzentities.Principal{ID: "acc_alice", Role: authzentities.RoleUser}
var bob = authzentities.Principal{ID: "acc_bob", Role: authzentities.RoleUser}
var admin = authzentities.Principal{ID: "acc_admin", Role: authzentities.RoleAdmin}

func validInput(ownerID string) CreateInput {
	return CreateInput{
		BorrowerName:   "Ada Lovelace",
		Amount:         decimal.NewFromInt(10_000),
		InterestRate:   5.0,
		LoanTermMonths: 24,
		StartDate:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		OwnerID:        ownerID,
	}
}

func TestCreateDerivesMonthlyPayment(t *testing.T) {
	f := newFixture(t, alice.ID)

	loan, err := f.service.Create(context.Background(), alice, validInput(alice.ID))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !loan.MonthlyPayment.Equal(decimal.NewFromFloat(438.71)) {
		t.Fatalf("expected derived annuity 438.71, got %s", loan.MonthlyPayment)
	}
	if loan.Status != entities.StatusPending {
		t.Fatalf("expected default pending status, got %q", loan.Status)
	}
}

func TestCreateWritesOutboxAndInvalidatesScope(t *testing.T) {
	f := newFixture(t, alice.ID)

	loan, err := f.service.Create(context.Background(), alice, validInput(alice.ID))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	pending, err := f.store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("outbox list failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one pending outbox row, got %d", len(pending))
	}
	if pending[0].EventType != EventTypeLoanCreated {
		t.Fatalf("unexpected event type %q", pending[0].EventType)
	}
	if len(f.invalidator.calls) != 1 || f.invalidator.calls[0] != loan.OwnerID {
		t.Fatalf("expected ownership invalidation for %s, got %v", loan.OwnerID, f.invalidator.calls)
	}
}

func TestCreateHonorsExplicitMonthlyPayment(t *testing.T) {
	f := newFixture(t, alice.ID)

	monthly := decimal.NewFromFloat(500.00)
	in := validInput(alice.ID)
	in.MonthlyPayment = &monthly
	loan, err := f.service.Create(context.Background(), alice, in)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !loan.MonthlyPayment.Equal(monthly) {
		t.Fatalf("expected explicit 500.00, got %s", loan.MonthlyPayment)
	}
}

func TestCreateUnknownOwner(t *testing.T) {
	f := newFixture(t, alice.ID)
	if _, err := f.service.Create(context.Background(), alice, validInput("acc_ghost")); !errors.Is(err, domainerrors.ErrOwnerAccountNotFound) {
		t.Fatalf("expected owner not found, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t, alice.ID)
	negative := decimal.NewFromInt(-1)

	cases := []struct {
		name   string
		mutate func(*CreateInput)
		want   error
	}{
		{"empty borrower", func(in *CreateInput) { in.BorrowerName = "  " }, domainerrors.ErrInvalidBorrowerName},
		{"zero amount", func(in *CreateInput) { in.Amount = decimal.Zero }, domainerrors.ErrInvalidAmount},
		{"rate above 100", func(in *CreateInput) { in.InterestRate = 100.5 }, domainerrors.ErrInvalidInterestRate},
		{"negative rate", func(in *CreateInput) { in.InterestRate = -0.1 }, domainerrors.ErrInvalidInterestRate},
		{"zero term", func(in *CreateInput) { in.LoanTermMonths = 0 }, domainerrors.ErrInvalidLoanTerm},
		{"unknown status", func(in *CreateInput) { in.Status = "archived" }, domainerrors.ErrInvalidLoanStatus},
		{"negative monthly payment", func(in *CreateInput) { in.MonthlyPayment = &negative }, domainerrors.ErrInvalidMonthlyPayment},
	}
	for _, tc := range cases {
		in := validInput(alice.ID)
		tc.mutate(&in)
		if _, err := f.service.Create(context.Background(), alice, in); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestListForcesOwnScopeForNonAdmins(t *testing.T) {
	f := newFixture(t, alice.ID, bob.ID)
	if _, err := f.service.Create(context.Background(), alice, validInput(alice.ID)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := f.service.Create(context.Background(), bob, validInput(bob.ID)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Alice asking for Bob's loans still only sees her own.
	loans, total, err := f.service.List(context.Background(), alice, ports.LoanFilter{OwnerID: bob.ID})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(loans) != 1 || loans[0].OwnerID != alice.ID {
		t.Fatalf("scope leak: total=%d loans=%v", total, loans)
	}

	_, total, err = f.service.List(context.Background(), admin, ports.LoanFilter{})
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("admin must see both loans, got total=%d", total)
	}
}

func TestGetOwnershipRules(t *testing.T) {
	f := newFixture(t, alice.ID)
	loan, err := f.service.Create(context.Background(), alice, validInput(alice.ID))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := f.service.Get(context.Background(), alice, "loan_missing"); !errors.Is(err, domainerrors.ErrLoanNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := f.service.Get(context.Background(), bob, loan.ID); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := f.service.Get(context.Background(), admin, loan.ID); err != nil {
		t.Fatalf("admin get failed: %v", err)
	}
}

func TestUpdateMergePatch(t *testing.T) {
	f := newFixture(t, alice.ID)
	loan, err := f.service.Create(context.Background(), alice, validInput(alice.ID))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := f.service.Update(context.Background(), alice, loan.ID, entities.LoanPatch{})
	if err != nil {
		t.Fatalf("empty patch failed: %v", err)
	}
	if !updated.Amount.Equal(loan.Amount) || updated.Status != loan.Status {
		t.Fatalf("empty patch mutated loan: %+v", updated)
	}

	status := entities.StatusActive
	updated, err = f.service.Update(context.Background(), alice, loan.ID, entities.LoanPatch{Status: &status})
	if err != nil {
		t.Fatalf("status patch failed: %v", err)
	}
	if updated.Status != entities.StatusActive {
		t.Fatalf("expected active status, got %q", updated.Status)
	}
	if updated.BorrowerName != loan.BorrowerName || !updated.Amount.Equal(loan.Amount) {
		t.Fatalf("patch touched unrelated fields: %+v", updated)
	}

	badStatus := "archived"
	if _, err := f.service.Update(context.Background(), alice, loan.ID, entities.LoanPatch{Status: &badStatus}); !errors.Is(err, domainerrors.ErrInvalidLoanStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
	if _, err := f.service.Update(context.Background(), bob, loan.ID, entities.LoanPatch{Status: &status}); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestDeleteRestrictedWhenPaymentsExist(t *testing.T) {
	f := newFixture(t, alice.ID)
	loan, err := f.service.Create(context.Background(), alice, validInput(alice.ID))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	f.counter.counts[loan.ID] = 2
	if err := f.service.Delete(context.Background(), alice, loan.ID); !errors.Is(err, domainerrors.ErrLoanHasPayments) {
		t.Fatalf("expected delete restricted, got %v", err)
	}

	f.counter.counts[loan.ID] = 0
	if err := f.service.Delete(context.Background(), alice, loan.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := f.service.Get(context.Background(), alice, loan.ID); !errors.Is(err, domainerrors.ErrLoanNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
