package domain

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether role is one of the known authorization tiers.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
