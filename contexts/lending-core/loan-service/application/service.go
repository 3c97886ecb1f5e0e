package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	authzentities "loanbook/contexts/identity-access/authorization-service/domain/entities"
	authzservices "loanbook/contexts/identity-access/authorization-service/domain/services"
	"loanbook/contexts/lending-core/loan-service/domain/entities"
	domainerrors "loanbook/contexts/lending-core/loan-service/domain/errors"
	"loanbook/contexts/lending-core/loan-service/domain/services"
	"loanbook/contexts/lending-core/loan-service/ports"

	"github.com/shopspring/decimal"
)

// Service implements the loan resource operations.
type Service struct {
	Repo        ports.Repository
	Accounts    ports.AccountDirectory
	Payments    ports.PaymentCounter
	Invalidator ports.OwnershipInvalidator
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

type CreateInput struct {
	BorrowerName   string
	Amount         decimal.Decimal
	InterestRate   float64
	LoanTermMonths int
	StartDate      time.Time
	Status         string
	MonthlyPayment *decimal.Decimal
	OwnerID        string
}

// Create records a new loan for an existing account and writes the created
// event to the outbox in the same transaction. Any authenticated principal
// may create a loan, but the owner account must exist. When MonthlyPayment is
// omitted it is derived with the annuity schedule.
func (s Service) Create(
	ctx context.Context,
	principal authzentities.Principal,
	in CreateInput,
) (entities.Loan, error) {
	borrower := strings.TrimSpace(in.BorrowerName)
	if borrower == "" {
		return entities.Loan{}, domainerrors.ErrInvalidBorrowerName
	}
	if !in.Amount.IsPositive() {
		return entities.Loan{}, domainerrors.ErrInvalidAmount
	}
	if in.InterestRate < 0 || in.InterestRate > 100 {
		return entities.Loan{}, domainerrors.ErrInvalidInterestRate
	}
	if in.LoanTermMonths <= 0 {
		return entities.Loan{}, domainerrors.ErrInvalidLoanTerm
	}
	status := in.Status
	if status == "" {
		status = entities.StatusPending
	}
	if !entities.IsValidStatus(status) {
		return entities.Loan{}, domainerrors.ErrInvalidLoanStatus
	}

	ownerID := strings.TrimSpace(in.OwnerID)
	if ownerID == "" {
		return entities.Loan{}, domainerrors.ErrOwnerAccountNotFound
	}
	exists, err := s.Accounts.AccountExists(ctx, ownerID)
	if err != nil {
		return entities.Loan{}, err
	}
	if !exists {
		return entities.Loan{}, domainerrors.ErrOwnerAccountNotFound
	}

	monthlyPayment := services.MonthlyPayment(in.Amount, in.InterestRate, in.LoanTermMonths)
	if in.MonthlyPayment != nil {
		if !in.MonthlyPayment.IsPositive() {
			return entities.Loan{}, domainerrors.ErrInvalidMonthlyPayment
		}
		monthlyPayment = *in.MonthlyPayment
	}

	now := s.now()
	loan := entities.Loan{
		ID:             s.IDGenerator.NewID(),
		BorrowerName:   borrower,
		Amount:         in.Amount,
		InterestRate:   in.InterestRate,
		LoanTermMonths: in.LoanTermMonths,
		StartDate:      in.StartDate.UTC(),
		Status:         status,
		MonthlyPayment: monthlyPayment,
		OwnerID:        ownerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	envelope, err := loanCreatedEnvelope(s.IDGenerator.NewID(), loan, now)
	if err != nil {
		return entities.Loan{}, err
	}
	if err := s.Repo.CreateWithOutbox(ctx, loan, envelope); err != nil {
		return entities.Loan{}, err
	}
	s.invalidateOwnership(ctx, ownerID)

	resolveLogger(s.Logger).Info("loan created",
		"event", "loan_created",
		"module", "lending-core/loan-service",
		"layer", "application",
		"loan_id", loan.ID,
		"owner_id", loan.OwnerID,
		"created_by", principal.ID,
	)
	return loan, nil
}

// List returns a page of loans. Non-admin principals only ever see their own
// loans regardless of the requested owner filter.
func (s Service) List(
	ctx context.Context,
	principal authzentities.Principal,
	filter ports.LoanFilter,
) ([]entities.Loan, int64, error) {
	if filter.Status != "" && !entities.IsValidStatus(filter.Status) {
		return nil, 0, domainerrors.ErrInvalidLoanStatus
	}
	if !principal.IsAdmin() {
		filter.OwnerID = principal.ID
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	return s.Repo.List(ctx, filter)
}

// Get returns one loan. A missing loan is 404 for everyone; an existing loan
// owned by someone else is 403 for non-admins.
func (s Service) Get(
	ctx context.Context,
	principal authzentities.Principal,
	loanID string,
) (entities.Loan, error) {
	loan, err := s.Repo.GetByID(ctx, loanID)
	if err != nil {
		return entities.Loan{}, err
	}
	if decision := authzservices.Authorize(principal, loan.OwnerID); !decision.Allowed {
		return entities.Loan{}, domainerrors.ErrForbidden
	}
	return loan, nil
}

// Update merge-patches a loan. Ownership is immutable; only supplied fields
// change and each supplied field is re-validated.
func (s Service) Update(
	ctx context.Context,
	principal authzentities.Principal,
	loanID string,
	patch entities.LoanPatch,
) (entities.Loan, error) {
	existing, err := s.Repo.GetByID(ctx, loanID)
	if err != nil {
		return entities.Loan{}, err
	}
	if decision := authzservices.Authorize(principal, existing.OwnerID); !decision.Allowed {
		return entities.Loan{}, domainerrors.ErrForbidden
	}

	if patch.BorrowerName != nil && strings.TrimSpace(*patch.BorrowerName) == "" {
		return entities.Loan{}, domainerrors.ErrInvalidBorrowerName
	}
	if patch.Amount != nil && !patch.Amount.IsPositive() {
		return entities.Loan{}, domainerrors.ErrInvalidAmount
	}
	if patch.InterestRate != nil && (*patch.InterestRate < 0 || *patch.InterestRate > 100) {
		return entities.Loan{}, domainerrors.ErrInvalidInterestRate
	}
	if patch.LoanTermMonths != nil && *patch.LoanTermMonths <= 0 {
		return entities.Loan{}, domainerrors.ErrInvalidLoanTerm
	}
	if patch.Status != nil && !entities.IsValidStatus(*patch.Status) {
		return entities.Loan{}, domainerrors.ErrInvalidLoanStatus
	}
	if patch.MonthlyPayment != nil && !patch.MonthlyPayment.IsPositive() {
		return entities.Loan{}, domainerrors.ErrInvalidMonthlyPayment
	}

	updated := services.MergeLoan(existing, patch)
	updated.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, updated); err != nil {
		return entities.Loan{}, err
	}
	return updated, nil
}

// Delete removes a loan unless payments reference it, in which case the
// delete is restricted with ErrLoanHasPayments.
func (s Service) Delete(
	ctx context.Context,
	principal authzentities.Principal,
	loanID string,
) error {
	loan, err := s.Repo.GetByID(ctx, loanID)
	if err != nil {
		return err
	}
	if decision := authzservices.Authorize(principal, loan.OwnerID); !decision.Allowed {
		return domainerrors.ErrForbidden
	}

	count, err := s.Payments.CountByLoan(ctx, loanID)
	if err != nil {
		return err
	}
	if count > 0 {
		return domainerrors.ErrLoanHasPayments
	}

	if err := s.Repo.Delete(ctx, loanID); err != nil {
		return err
	}
	s.invalidateOwnership(ctx, loan.OwnerID)

	resolveLogger(s.Logger).Info("loan deleted",
		"event", "loan_deleted",
		"module", "lending-core/loan-service",
		"layer", "application",
		"loan_id", loanID,
		"owner_id", loan.OwnerID,
		"deleted_by", principal.ID,
	)
	return nil
}

func (s Service) invalidateOwnership(ctx context.Context, ownerID string) {
	if s.Invalidator == nil {
		return
	}
	if err := s.Invalidator.Invalidate(ctx, ownerID); err != nil {
		resolveLogger(s.Logger).Warn("ownership cache invalidation failed",
			"event", "loan_ownership_invalidate_failed",
			"module", "lending-core/loan-service",
			"layer", "application",
			"owner_id", ownerID,
			"error", err.Error(),
		)
	}
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
