package services

import "loanbook/contexts/lending-core/loan-service/domain/entities"

// MergeLoan applies a merge patch: only present fields overwrite, including
// explicit zero values.
func MergeLoan(existing entities.Loan, patch entities.LoanPatch) entities.Loan {
	if patch.BorrowerName != nil {
		existing.BorrowerName = *patch.BorrowerName
	}
	if patch.Amount != nil {
		existing.Amount = *patch.Amount
	}
	if patch.InterestRate != nil {
		existing.InterestRate = *patch.InterestRate
	}
	if patch.LoanTermMonths != nil {
		existing.LoanTermMonths = *patch.LoanTermMonths
	}
	if patch.StartDate != nil {
		existing.StartDate = *patch.StartDate
	}
	if patch.Status != nil {
		existing.Status = *patch.Status
	}
	if patch.MonthlyPayment != nil {
		existing.MonthlyPayment = *patch.MonthlyPayment
	}
	return existing
}
