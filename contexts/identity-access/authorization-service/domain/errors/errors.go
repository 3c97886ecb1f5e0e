package errors

import "errors"

var (
	ErrInvalidPrincipal    = errors.New("invalid principal")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrUnknownResourceType = errors.New("unknown resource type")
)
