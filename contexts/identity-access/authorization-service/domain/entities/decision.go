package entities

// Decision reasons, stable for logging and the check endpoint.
const (
	ReasonAdminBypass = "admin_bypass"
	ReasonOwner       = "owner"
	ReasonNotOwner    = "not_owner"
)

// Decision is an allow/deny outcome. Denial is a first-class value, never an
// error.
type Decision struct {
	Allowed bool
	Reason  string
}
