package httpadapter

import (
	"context"
	"log/slog"

	authzentities "loanbook/contexts/identity-access/authorization-service/domain/entities"
	"loanbook/contexts/lending-core/payment-service/application"
	"loanbook/contexts/lending-core/payment-service/domain/entities"
	"loanbook/contexts/lending-core/payment-service/ports"
	httptransport "loanbook/contexts/lending-core/payment-service/transport/http"

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
	req httptransport.CreatePaymentRequest,
) (httptransport.PaymentResponse, error) {
	payment, err := h.Service.Create(ctx, principal, application.CreateInput{
		LoanID: req.LoanID,
		Amount: decimal.NewFromFloat(req.Amount),
		Date:   req.Date,
		Status: req.Status,
	})
	if err != nil {
		return httptransport.PaymentResponse{}, err
	}
	return paymentResponse(payment), nil
}

func (h Handler) ListHandler(
	ctx context.Context,
	principal authzentities.Principal,
	filter ports.PaymentFilter,
) (httptransport.PaymentListResponse, error) {
	payments, total, err := h.Service.List(ctx, principal, filter)
	if err != nil {
		return httptransport.PaymentListResponse{}, err
	}
	return paymentListResponse(payments, total), nil
}

func (h Handler) ListByLoanHandler(
	ctx context.Context,
	principal authzentities.Principal,
	loanID string,
	skip int,
	limit int,
) (httptransport.PaymentListResponse, error) {
	payments, total, err := h.Service.ListByLoan(ctx, principal, loanID, skip, limit)
	if err != nil {
		return httptransport.PaymentListResponse{}, err
	}
	return paymentListResponse(payments, total), nil
}

func (h Handler) GetHandler(
	ctx context.Context,
	principal authzentities.Principal,
	paymentID string,
) (httptransport.PaymentResponse, error) {
	payment, err := h.Service.Get(ctx, principal, paymentID)
	if err != nil {
		return httptransport.PaymentResponse{}, err
	}
	return paymentResponse(payment), nil
}

func (h Handler) UpdateHandler(
	ctx context.Context,
	principal authzentities.Principal,
	paymentID string,
	req httptransport.UpdatePaymentRequest,
) (httptransport.PaymentResponse, error) {
	patch := entities.PaymentPatch{
		Date:   req.Date,
		Status: req.Status,
	}
	if req.Amount != nil {
		amount := decimal.NewFromFloat(*req.Amount)
		patch.Amount = &amount
	}

	payment, err := h.Service.Update(ctx, principal, paymentID, patch)
	if err != nil {
		return httptransport.PaymentResponse{}, err
	}
	return paymentResponse(payment), nil
}

func (h Handler) DeleteHandler(
	ctx context.Context,
	principal authzentities.Principal,
	paymentID string,
) error {
	return h.Service.Delete(ctx, principal, paymentID)
}

func paymentResponse(payment entities.Payment) httptransport.PaymentResponse {
	return httptransport.PaymentResponse{
		ID:        payment.ID,
		LoanID:    payment.LoanID,
		Amount:    payment.Amount.InexactFloat64(),
		Date:      payment.Date,
		Status:    payment.Status,
		CreatedAt: payment.CreatedAt,
		UpdatedAt: payment.UpdatedAt,
	}
}

func paymentListResponse(payments []entities.Payment, total int64) httptransport.PaymentListResponse {
	items := make([]httptransport.PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		items = append(items, paymentResponse(payment))
	}
	return httptransport.PaymentListResponse{Payments: items, Total: total}
}
