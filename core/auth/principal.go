package auth

// Identity is what gets encoded into a token.
type Identity struct {
	ID        string
	Role      Role
	Email     string
	FirstName string
	LastName  string
}

// Principal is the authenticated identity attached to a request once its token is verified.
type Principal struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (p Principal) IsAdmin() bool   { return p.Role == RoleAdmin }
func (p Principal) IsFaculty() bool { return p.Role == RoleFaculty }
func (p Principal) IsStudent() bool { return p.Role == RoleStudent }

// HasRole reports whether the principal holds any of roles.
func (p Principal) HasRole(roles ...Role) bool {
	return p.Role.In(roles...)
}

func (p Principal) LogPerson() (id, username, email string) {
	return p.ID, p.FirstName + " " + p.LastName, p.Email
}

// OwnerOrElevated is the single owner-or-elevated rule: the principal passes if they own the
// resource or hold one of the elevated roles. An empty ownerID never matches.
func OwnerOrElevated(ownerID string, p Principal, elevated ...Role) bool {
	if ownerID != "" && p.ID == ownerID {
		return true
	}
	return p.HasRole(elevated...)
}
