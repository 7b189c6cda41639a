package model

import (
	"fmt"
	"strings"
)

// Role is the closed set of directory roles.  It is stored as a string in
// the users table and carried verbatim in the JWT "role" claim.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

// ParseRole normalizes and validates a role string.  Unknown values are
// rejected rather than defaulted so a typo in an admin request cannot
// silently grant or strip privileges.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether the role is one of the enumerated values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// Rank orders roles by privilege, admins highest.  Used only for display
// ordering; authorization checks go through the explicit predicates below.
func (r Role) Rank() int {
	switch r {
	case RoleAdmin:
		return 2
	case RoleTeacher:
		return 1
	default:
		return 0
	}
}

// CanManageUsers reports whether the role may create, edit or delete
// directory users.
func (r Role) CanManageUsers() bool { return r == RoleAdmin }

// CanManageEquipment reports whether the role may create, edit or delete
// equipment records.
func (r Role) CanManageEquipment() bool { return r == RoleAdmin }

// CanOpenSession reports whether the role may open usage sessions.
func (r Role) CanOpenSession() bool { return r == RoleAdmin || r == RoleTeacher }

// CanCloseSession reports whether a user with this role may close the
// given session.  Admins close any session; teachers only their own.
func (r Role) CanCloseSession(userID, teacherID string) bool {
	if r == RoleAdmin {
		return true
	}
	return r == RoleTeacher && userID == teacherID
}

// CanViewSessionQR reports whether the role may fetch a session's dynamic
// QR image.  Students only ever see the projected code in the room.
func (r Role) CanViewSessionQR() bool { return r == RoleAdmin || r == RoleTeacher }
