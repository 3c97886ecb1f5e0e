package errors

import "errors"

var (
	ErrInvalidBorrowerName   = errors.New("borrower name is required")
	ErrInvalidAmount         = errors.New("loan amount must be positive")
	ErrInvalidInterestRate   = errors.New("interest rate must be between 0 and 100")
	ErrInvalidLoanTerm       = errors.New("loan term must be a positive number of months")
	ErrInvalidMonthlyPayment = errors.New("monthly payment must be positive")
	ErrInvalidLoanStatus     = errors.New("unknown loan status")
	ErrOwnerAccountNotFound  = errors.New("owner account not found")
	ErrLoanNotFound          = errors.New("loan not found")
	ErrLoanHasPayments       = errors.New("loan has recorded payments")
	ErrForbidden             = errors.New("principal may not access this loan")
)
