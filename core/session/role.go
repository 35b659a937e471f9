package session

import "fmt"

// Role is an immutable-per-session privilege tier.
//
// The hierarchy is exactly two tiers with an implicit ordering: Admin
// satisfies both Admin-required and Editor-required checks, Editor satisfies
// only Editor-required checks. Representing roles as a closed type with an
// explicit partial order removes the typo-class bugs of raw string
// comparison.
type Role string

const (
	// RoleNone marks a session without a role: identified but not privileged.
	RoleNone Role = ""
	// RoleEditor can view registration and project data.
	RoleEditor Role = "Editor"
	// RoleAdmin can do everything an Editor can plus administrative changes.
	RoleAdmin Role = "Admin"
)

// roleRank orders roles for Satisfies. Higher ranks satisfy lower ones.
var roleRank = map[Role]int{
	RoleNone:   0,
	RoleEditor: 1,
	RoleAdmin:  2,
}

// ParseRole converts a stored role string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleEditor, RoleNone:
		return Role(s), nil
	default:
		return RoleNone, fmt.Errorf("unknown role %q", s)
	}
}

// Satisfies reports whether the role meets the required tier.
// A session without a role fails every role check.
func (r Role) Satisfies(required Role) bool {
	if r == RoleNone {
		return false
	}
	return roleRank[r] >= roleRank[required]
}

// String implements fmt.Stringer.
func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}
