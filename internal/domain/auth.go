package domain

// Identity is the authenticated caller carried by a session token.
type Identity struct {
	SubjectID string
	Name      string
	Role      Role
}

// IsAdmin reports whether the caller holds the ADMIN role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanAccess reports whether the caller may read or modify the account with the given id.
func (i Identity) CanAccess(userID string) bool {
	return i.IsAdmin() || i.SubjectID == userID
}
