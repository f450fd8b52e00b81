package domain

import "slices"

// Role represents a user role carried in the bearer token
type Role string

const (
	// RoleAdmin may broadcast across tenants and address arbitrary users
	RoleAdmin Role = "admin"

	// RoleUser works inside its own tenant only
	RoleUser Role = "user"
)

var ValidRoles = []Role{RoleAdmin, RoleUser}

func IsValidRole(role string) bool {
	return slices.Contains(ValidRoles, Role(role))
}

// HasRole checks if a slice of roles contains a specific role
func HasRole(roles []string, role Role) bool {
	return slices.Contains(roles, string(role))
}
