package services

import "loanbook/contexts/identity-access/account-service/domain/entities"

// MergeAccount applies a merge-patch: only fields present in the patch change.
// Authorization for the field set (the role rule in particular) happens before
// this point; the merger itself is mechanical.
func MergeAccount(existing entities.Account, patch entities.AccountPatch) entities.Account {
	updated := existing
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Email != nil {
		updated.Email = *patch.Email
	}
	if patch.Phone != nil {
		updated.Phone = patch.Phone
	}
	if patch.Role != nil {
		updated.Role = *patch.Role
	}
	return updated
}
