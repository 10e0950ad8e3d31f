package model

import "fmt"

// Role is the closed set of user roles. It is resolved once when a request
// is authenticated and then passed around as part of a Session.
type Role string

const (
	RoleAttendee  Role = "attendee"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

// ParseRole maps a token claim onto a Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAttendee, RoleOrganizer, RoleAdmin:
		return r, nil
	case "":
		return RoleAttendee, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Session identifies the caller of an operation.
type Session struct {
	UserID string
	Role   Role
}

// CanAccess reports whether the caller may read or change b. Admins reach
// every booking; everyone else only their own.
func (s Session) CanAccess(b *Booking) bool {
	return s.Role == RoleAdmin || b.UserID == s.UserID
}
