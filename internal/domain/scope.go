package domain

// ScopeKind separates owner and admin callers.
type ScopeKind string

const (
	ScopeOwner ScopeKind = "OWNER"
	ScopeAdmin ScopeKind = "ADMIN"
)

// Scope is the resolved access right of a caller. It carries no I/O; the
// repository turns it into a row predicate.
type Scope struct {
	Kind   ScopeKind
	UserID int64
}

// OwnerScope limits access to rows owned by userID.
func OwnerScope(userID int64) Scope {
	return Scope{Kind: ScopeOwner, UserID: userID}
}

// AdminScope grants access to every row.
func AdminScope() Scope {
	return Scope{Kind: ScopeAdmin}
}

func (s Scope) IsAdmin() bool {
	return s.Kind == ScopeAdmin
}

// OwnerFilter returns the owner id rows must match, or nil when unrestricted.
// A zero Scope is treated as owner 0 and matches nothing.
func (s Scope) OwnerFilter() *int64 {
	if s.Kind == ScopeAdmin {
		return nil
	}
	id := s.UserID
	return &id
}
