package domain

// Identity is the caller resolved from a valid bearer token for a single request.
// Principal is the user's e-mail, which keeps audit logs readable.
type Identity struct {
	UserID    int64
	Principal string
	Role      Role
}

// HasRole reports whether the identity carries one of the given roles.
func (i *Identity) HasRole(roles ...Role) bool {
	if i == nil {
		return false
	}
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}
