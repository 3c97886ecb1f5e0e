package services

import "loanbook/contexts/lending-core/payment-service/domain/entities"

// MergePayment applies a merge patch: only present fields overwrite, including
// explicit zero values.
func MergePayment(existing entities.Payment, patch entities.PaymentPatch) entities.Payment {
	if patch.Amount != nil {
		existing.Amount = *patch.Amount
	}
	if patch.Date != nil {
		existing.Date = *patch.Date
	}
	if patch.Status != nil {
		existing.Status = *patch.Status
	}
	return existing
}
