package entities

// Roles recognized by the rule table.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// IsValidRole reports whether role is one of the recognized labels.
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// Principal is the authenticated identity making a request.
type Principal struct {
	ID    string
	Email string
	Role  string
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
