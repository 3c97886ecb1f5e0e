package errors

import "errors"

var (
	ErrInvalidPaymentAmount = errors.New("payment amount must be positive")
	ErrInvalidPaymentStatus = errors.New("unknown payment status")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrForbidden            = errors.New("principal may not access this payment")
)
