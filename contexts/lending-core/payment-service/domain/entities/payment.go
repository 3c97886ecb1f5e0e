package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// IsValidStatus reports whether value is one of the recognized payment states.
func IsValidStatus(value string) bool {
	switch value {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// Payment is an installment recorded against a loan. It carries no owner
// field: ownership is always derived through the loan.
type Payment struct {
	ID        string
	LoanID    string
	Amount    decimal.Decimal
	Date      time.Time
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PaymentPatch is a merge patch: nil means absent, a pointer to the zero
// value is an explicit overwrite. LoanID is immutable.
type PaymentPatch struct {
	Amount *decimal.Decimal
	Date   *time.Time
	Status *string
}

func (p PaymentPatch) IsZero() bool {
	return p.Amount == nil && p.Date == nil && p.Status == nil
}
