package services

import (
	"testing"

	"loanbook/contexts/identity-access/authorization-service/domain/entities"
)

func TestAdminBypassesOwnership(t *testing.T) {
	admin := entities.Principal{ID: "acc_admin", Role: entities.RoleAdmin}
	for _, ownerID := range []string{"acc_admin", "acc_other", ""} {
		decision := Authorize(admin, ownerID)
		if !decision.Allowed {
			t.Fatalf("admin denied for owner %q: %+v", ownerID, decision)
		}
		if decision.Reason != entities.ReasonAdminBypass {
			t.Fatalf("unexpected reason %q", decision.Reason)
		}
	}
}

func TestOwnerIsAllowed(t *testing.T) {
	principal := entities.Principal{ID: "acc_1", Role: entities.RoleUser}
	decision := Authorize(principal, "acc_1")
	if !decision.Allowed || decision.Reason != entities.ReasonOwner {
		t.Fatalf("owner should be allowed, got %+v", decision)
	}
}

func TestNonOwnerIsDenied(t *testing.T) {
	principal := entities.Principal{ID: "acc_1", Role: entities.RoleUser}
	decision := Authorize(principal, "acc_2")
	if decision.Allowed {
		t.Fatalf("non-owner should be denied, got %+v", decision)
	}
	if decision.Reason != entities.ReasonNotOwner {
		t.Fatalf("unexpected reason %q", decision.Reason)
	}
}

func TestEmptyPrincipalIDNeverMatchesEmptyOwner(t *testing.T) {
	principal := entities.Principal{Role: entities.RoleUser}
	if decision := Authorize(principal, ""); decision.Allowed {
		t.Fatal("empty principal id must not match empty owner id")
	}
}

func TestOnlyAdminCanSetRole(t *testing.T) {
	if CanSetRole(entities.Principal{ID: "acc_1", Role: entities.RoleUser}) {
		t.Fatal("user must not set roles, even on own account")
	}
	if !CanSetRole(entities.Principal{ID: "acc_adm", Role: entities.RoleAdmin}) {
		t.Fatal("admin must be able to set roles")
	}
}
