package entities

import "time"

// Account is an identity that can own loans. PasswordHash never leaves the
// service boundary; transport DTOs exclude it.
type Account struct {
	ID           string
	Name         string
	Email        string
	Phone        *string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountPatch is a merge-patch: nil fields are left untouched, non-nil
// fields replace the existing value even when they point at a zero value.
type AccountPatch struct {
	Name  *string
	Email *string
	Phone *string
	Role  *string
}

// IsZero reports whether the patch carries no field at all.
func (p AccountPatch) IsZero() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.Role == nil
}
