package domain

// Role is the single active role resolved by the authentication boundary.
// Every authorization decision downstream consumes this one value.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return Role(s), nil
	}
	return "", Validation("invalid role: %q", s)
}

// Actor is the authenticated identity attached to every request. The core
// trusts it without re-verifying credentials.
type Actor struct {
	ID   string
	Role Role
}
