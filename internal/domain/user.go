package domain

// Role is the caller's role claim supplied by the external identity
// collaborator. The core trusts the claim but re-validates it against
// the order's actual renter/owner ids.
type Role string

const (
	RoleUser      Role = "USER"
	RoleModerator Role = "MODERATOR"
	// RoleSystem is used by internal callers (the overdue-order sweep),
	// never accepted from a request token.
	RoleSystem Role = "SYSTEM"
)

// Actor identifies who is invoking an operation.
type Actor struct {
	UserID int64
	Role   Role
}

func (a Actor) Moderator() bool { return a.Role == RoleModerator || a.Role == RoleSystem }
