package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateLoanRequest struct {
	BorrowerName   string    `json:"borrowerName"`
	Amount         float64   `json:"amount"`
	InterestRate   float64   `json:"interestRate"`
	LoanTerm       int       `json:"loanTerm"`
	StartDate      time.Time `json:"startDate"`
	Status         string    `json:"status,omitempty"`
	MonthlyPayment *float64  `json:"monthlyPayment,omitempty"`
	OwnerID        string    `json:"ownerId"`
}

type UpdateLoanRequest struct {
	BorrowerName   *string    `json:"borrowerName"`
	Amount         *float64   `json:"amount"`
	InterestRate   *float64   `json:"interestRate"`
	LoanTerm       *int       `json:"loanTerm"`
	StartDate      *time.Time `json:"startDate"`
	Status         *string    `json:"status"`
	MonthlyPayment *float64   `json:"monthlyPayment"`
}

type LoanResponse struct {
	ID             string    `json:"id"`
	BorrowerName   string    `json:"borrowerName"`
	Amount         float64   `json:"amount"`
	InterestRate   float64   `json:"interestRate"`
	LoanTerm       int       `json:"loanTerm"`
	StartDate      time.Time `json:"startDate"`
	Status         string    `json:"status"`
	MonthlyPayment float64   `json:"monthlyPayment"`
	OwnerID        string    `json:"ownerId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type LoanListResponse struct {
	Loans []LoanResponse `json:"loans"`
	Total int64          `json:"total"`
}
