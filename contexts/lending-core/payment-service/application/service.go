package application

import (
	"context"
	"log/slog"
	"time"

	authzentities "loanbook/contexts/identity-access/authorization-service/domain/entities"
	"loanbook/contexts/lending-core/payment-service/domain/entities"
	domainerrors "loanbook/contexts/lending-core/payment-service/domain/errors"
	"loanbook/contexts/lending-core/payment-service/domain/services"
	"loanbook/contexts/lending-core/payment-service/ports"

	"github.com/shopspring/decimal"
)

// Service implements the payment resource operations. Every access decision
// is transitive: the caller must own the payment's loan, or be admin.
type Service struct {
	Repo        ports.Repository
	Authorizer  ports.PaymentAuthorizer
	Scope       ports.ScopeResolver
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

type CreateInput struct {
	LoanID string
	Amount decimal.Decimal
	Date   time.Time
	Status string
}

// Create records a payment against a loan. A missing loan is not-found before
// any ownership verdict; a loan owned by someone else is forbidden.
func (s Service) Create(
	ctx context.Context,
	principal authzentities.Principal,
	in CreateInput,
) (entities.Payment, error) {
	if !in.Amount.IsPositive() {
		return entities.Payment{}, domainerrors.ErrInvalidPaymentAmount
	}
	status := in.Status
	if status == "" {
		status = entities.StatusPending
	}
	if !entities.IsValidStatus(status) {
		return entities.Payment{}, domainerrors.ErrInvalidPaymentStatus
	}

	if err := s.authorize(ctx, principal, in.LoanID); err != nil {
		return entities.Payment{}, err
	}

	now := s.now()
	payment := entities.Payment{
		ID:        s.IDGenerator.NewID(),
		LoanID:    in.LoanID,
		Amount:    in.Amount,
		Date:      in.Date.UTC(),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, payment); err != nil {
		return entities.Payment{}, err
	}

	resolveLogger(s.Logger).Info("payment recorded",
		"event", "payment_recorded",
		"module", "lending-core/payment-service",
		"layer", "application",
		"payment_id", payment.ID,
		"loan_id", payment.LoanID,
		"recorded_by", principal.ID,
	)
	return payment, nil
}

// List returns a page of payments. Non-admin principals are scoped to loans
// they own; an empty owned set yields an empty page with total zero.
func (s Service) List(
	ctx context.Context,
	principal authzentities.Principal,
	filter ports.PaymentFilter,
) ([]entities.Payment, int64, error) {
	if filter.Status != "" && !entities.IsValidStatus(filter.Status) {
		return nil, 0, domainerrors.ErrInvalidPaymentStatus
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}

	scope, err := s.Scope.Execute(ctx, principal)
	if err != nil {
		return nil, 0, err
	}
	if !scope.All {
		if len(scope.LoanIDs) == 0 {
			return []entities.Payment{}, 0, nil
		}
		if filter.LoanID != "" && !contains(scope.LoanIDs, filter.LoanID) {
			return []entities.Payment{}, 0, nil
		}
		filter.LoanIDs = scope.LoanIDs
	}
	return s.Repo.List(ctx, filter)
}

// ListByLoan returns the payments of one loan, verifying the loan exists and
// the principal may see it before touching the payment table.
func (s Service) ListByLoan(
	ctx context.Context,
	principal authzentities.Principal,
	loanID string,
	skip int,
	limit int,
) ([]entities.Payment, int64, error) {
	if err := s.authorize(ctx, principal, loanID); err != nil {
		return nil, 0, err
	}
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 100
	}
	return s.Repo.List(ctx, ports.PaymentFilter{LoanID: loanID, Skip: skip, Limit: limit})
}

// Get returns one payment after resolving ownership through its loan.
func (s Service) Get(
	ctx context.Context,
	principal authzentities.Principal,
	paymentID string,
) (entities.Payment, error) {
	payment, err := s.Repo.GetByID(ctx, paymentID)
	if err != nil {
		return entities.Payment{}, err
	}
	if err := s.authorize(ctx, principal, payment.LoanID); err != nil {
		return entities.Payment{}, err
	}
	return payment, nil
}

// Update merge-patches a payment. Only supplied fields change and each
// supplied field is re-validated.
func (s Service) Update(
	ctx context.Context,
	principal authzentities.Principal,
	paymentID string,
	patch entities.PaymentPatch,
) (entities.Payment, error) {
	existing, err := s.Repo.GetByID(ctx, paymentID)
	if err != nil {
		return entities.Payment{}, err
	}
	if err := s.authorize(ctx, principal, existing.LoanID); err != nil {
		return entities.Payment{}, err
	}

	if patch.Amount != nil && !patch.Amount.IsPositive() {
		return entities.Payment{}, domainerrors.ErrInvalidPaymentAmount
	}
	if patch.Status != nil && !entities.IsValidStatus(*patch.Status) {
		return entities.Payment{}, domainerrors.ErrInvalidPaymentStatus
	}

	updated := services.MergePayment(existing, patch)
	updated.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, updated); err != nil {
		return entities.Payment{}, err
	}
	return updated, nil
}

// Delete removes a payment after resolving ownership through its loan.
func (s Service) Delete(
	ctx context.Context,
	principal authzentities.Principal,
	paymentID string,
) error {
	payment, err := s.Repo.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, principal, payment.LoanID); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, paymentID); err != nil {
		return err
	}

	resolveLogger(s.Logger).Info("payment deleted",
		"event", "payment_deleted",
		"module", "lending-core/payment-service",
		"layer", "application",
		"payment_id", paymentID,
		"loan_id", payment.LoanID,
		"deleted_by", principal.ID,
	)
	return nil
}

func (s Service) authorize(
	ctx context.Context,
	principal authzentities.Principal,
	loanID string,
) error {
	decision, err := s.Authorizer.Execute(ctx, principal, loanID)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return domainerrors.ErrForbidden
	}
	return nil
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
