package domain

// Scope restricts queries to the rows a caller may see. Admins see everything,
// everybody else only the rows they own.
type Scope struct {
	UserID int64
	All    bool
}

func ScopeFor(u User) Scope {
	return Scope{UserID: u.ID, All: u.IsAdmin()}
}

// AllRows is used by management commands that run outside a user session.
func AllRows() Scope {
	return Scope{All: true}
}

func (s Scope) Allows(ownerID *int64) bool {
	if s.All {
		return true
	}
	return ownerID != nil && *ownerID == s.UserID
}
