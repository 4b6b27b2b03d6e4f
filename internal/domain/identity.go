package domain

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Identity is the caller assertion carried by a verified token. Token
// issuance belongs to an external auth service; we only consume it.
type Identity struct {
	ID    string
	Role  Role
	Email string
}

func (i Identity) Is(role Role) bool {
	return i.Role == role
}
