package rbac

// Role names. Keep these stable; they are part of the auth contract.
const (
	// RoleOperator can read recordings and inspect the forwarding plan.
	RoleOperator = "operator"
	// RoleAdmin additionally bypasses any role check.
	RoleAdmin = "admin"
)

func IsAdmin(role string) bool { return role == RoleAdmin }
