package httpadapter

import (
	"context"
	"log/slog"

	authzentities "loanbook/contexts/identity-access/authorization-service/domain/entities"
	"loanbook/contexts/lending-core/loan-service/application"
	"loanbook/contexts/lending-core/loan-service/domain/entities"
	"loanbook/contexts/lending-core/loan-service/ports"
	httptransport "loanbook/contexts/lending-core/loan-service/transport/http"

	"github.com/shopspring/decimal"
)

// Handler maps HTTP DTOs to application operations.
type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) CreateHandler(
	ctx context.Context,
	principal authzentities.Principal,
	req httptransport.CreateLoanRequest,
) (httptransport.LoanResponse, error) {
	in := application.CreateInput{
		BorrowerName:   req.BorrowerName,
		Amount:         decimal.NewFromFloat(req.Amount),
		InterestRate:   req.InterestRate,
		LoanTermMonths: req.LoanTerm,
		StartDate:      req.StartDate,
		Status:         req.Status,
		OwnerID:        req.OwnerID,
	}
	if req.MonthlyPayment != nil {
		monthly := decimal.NewFromFloat(*req.MonthlyPayment)
		in.MonthlyPayment = &monthly
	}

	loan, err := h.Service.Create(ctx, principal, in)
	if err != nil {
		return httptransport.LoanResponse{}, err
	}
	return loanResponse(loan), nil
}

func (h Handler) ListHandler(
	ctx context.Context,
	principal authzentities.Principal,
	filter ports.LoanFilter,
) (httptransport.LoanListResponse, error) {
	loans, total, err := h.Service.List(ctx, principal, filter)
	if err != nil {
		return httptransport.LoanListResponse{}, err
	}
	items := make([]httptransport.LoanResponse, 0, len(loans))
	for _, loan := range loans {
		items = append(items, loanResponse(loan))
	}
	return httptransport.LoanListResponse{Loans: items, Total: total}, nil
}

func (h Handler) GetHandler(
	ctx context.Context,
	principal authzentities.Principal,
	loanID string,
) (httptransport.LoanResponse, error) {
	loan, err := h.Service.Get(ctx, principal, loanID)
	if err != nil {
		return httptransport.LoanResponse{}, err
	}
	return loanResponse(loan), nil
}

func (h Handler) UpdateHandler(
	ctx context.Context,
	principal authzentities.Principal,
	loanID string,
	req httptransport.UpdateLoanRequest,
) (httptransport.LoanResponse, error) {
	patch := entities.LoanPatch{
		BorrowerName:   req.BorrowerName,
		InterestRate:   req.InterestRate,
		LoanTermMonths: req.LoanTerm,
		StartDate:      req.StartDate,
		Status:         req.Status,
	}
	if req.Amount != nil {
		amount := decimal.NewFromFloat(*req.Amount)
		patch.Amount = &amount
	}
	if req.MonthlyPayment != nil {
		monthly := decimal.NewFromFloat(*req.MonthlyPayment)
		patch.MonthlyPayment = &monthly
	}

	loan, err := h.Service.Update(ctx, principal, loanID, patch)
	if err != nil {
		return httptransport.LoanResponse{}, err
	}
	return loanResponse(loan), nil
}

func (h Handler) DeleteHandler(
	ctx context.Context,
	principal authzentities.Principal,
	loanID string,
) error {
	return h.Service.Delete(ctx, principal, loanID)
}

func loanResponse(loan entities.Loan) httptransport.LoanResponse {
	return httptransport.LoanResponse{
		ID:             loan.ID,
		BorrowerName:   loan.BorrowerName,
		Amount:         loan.Amount.InexactFloat64(),
		InterestRate:   loan.InterestRate,
		LoanTerm:       loan.LoanTermMonths,
		StartDate:      loan.StartDate,
		Status:         loan.Status,
		MonthlyPayment: loan.MonthlyPayment.InexactFloat64(),
		OwnerID:        loan.OwnerID,
		CreatedAt:      loan.CreatedAt,
		UpdatedAt:      loan.UpdatedAt,
	}
}
