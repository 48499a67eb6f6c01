package domain

import "strings"

// Role is a coarse permission tag carried in tokens and checked by the policy.
// Values are stored and compared in their raw upper-case form, without the
// "ROLE_" prefix some clients still send.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleSeller   Role = "SELLER"
	RoleAdmin    Role = "ADMIN"
)

const legacyRolePrefix = "ROLE_"

// ParseRole normalizes raw input to a known Role.
func ParseRole(raw string) (Role, bool) {
	name := strings.ToUpper(strings.TrimSpace(raw))
	name = strings.TrimPrefix(name, legacyRolePrefix)
	switch Role(name) {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return Role(name), true
	}
	return "", false
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// SelfAssignable reports whether a user may pick this role at signup.
func (r Role) SelfAssignable() bool {
	return r == RoleCustomer || r == RoleSeller
}
