package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusDefaulted = "defaulted"
)

// IsValidStatus reports whether value is one of the recognized loan states.
func IsValidStatus(value string) bool {
	switch value {
	case StatusPending, StatusActive, StatusCompleted, StatusDefaulted:
		return true
	default:
		return false
	}
}

// Loan is a single lending agreement owned by exactly one account.
type Loan struct {
	ID             string
	BorrowerName   string
	Amount         decimal.Decimal
	InterestRate   float64
	LoanTermMonths int
	StartDate      time.Time
	Status         string
	MonthlyPayment decimal.Decimal
	OwnerID        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// LoanPatch is a merge patch: nil means absent, a pointer to the zero value is
// an explicit overwrite. OwnerID is immutable and therefore not patchable.
type LoanPatch struct {
	BorrowerName   *string
	Amount         *decimal.Decimal
	InterestRate   *float64
	LoanTermMonths *int
	StartDate      *time.Time
	Status         *string
	MonthlyPayment *decimal.Decimal
}

func (p LoanPatch) IsZero() bool {
	return p.BorrowerName == nil &&
		p.Amount == nil &&
		p.InterestRate == nil &&
		p.LoanTermMonths == nil &&
		p.StartDate == nil &&
		p.Status == nil &&
		p.MonthlyPayment == nil
}
