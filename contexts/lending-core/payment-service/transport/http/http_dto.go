package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreatePaymentRequest struct {
	LoanID string    `json:"loanId"`
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`
	Status string    `json:"status,omitempty"`
}

type UpdatePaymentRequest struct {
	Amount *float64   `json:"amount"`
	Date   *time.Time `json:"date"`
	Status *string    `json:"status"`
}

type PaymentResponse struct {
	ID        string    `json:"id"`
	LoanID    string    `json:"loanId"`
	Amount    float64   `json:"amount"`
	Date      time.Time `json:"date"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type PaymentListResponse struct {
	Payments []PaymentResponse `json:"payments"`
	Total    int64             `json:"total"`
}
