package services

import "loanbook/contexts/identity-access/authorization-service/domain/entities"

// Authorize applies the ownership rule table: admin bypasses every check,
// everyone else must own the resource. Transitive owners (a payment's loan
// owner) are resolved by the caller before this point.
func Authorize(principal entities.Principal, ownerID string) entities.Decision {
	if principal.IsAdmin() {
		return entities.Decision{Allowed: true, Reason: entities.ReasonAdminBypass}
	}
	if principal.ID != "" && principal.ID == ownerID {
		return entities.Decision{Allowed: true, Reason: entities.ReasonOwner}
	}
	return entities.Decision{Allowed: false, Reason: entities.ReasonNotOwner}
}

// CanSetRole is the field-level override: changing an account's role requires
// admin, even when the principal owns the account.
func CanSetRole(principal entities.Principal) bool {
	return principal.IsAdmin()
}
