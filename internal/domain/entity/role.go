package entity

import "strings"

// Role identifies what a user is allowed to do. It is a closed set;
// ParseRole is the single canonicalization point for external input.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleTeacher   Role = "TEACHER"
	RoleDirection Role = "DIRECTION"
	RoleStudent   Role = "STUDENT"
)

var validRoles = map[Role]bool{
	RoleAdmin:     true,
	RoleTeacher:   true,
	RoleDirection: true,
	RoleStudent:   true,
}

// ParseRole canonicalizes a role string. It accepts any casing and the
// legacy "ROLE_" prefix that older clients still send.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "ROLE_"))
	if !validRoles[r] {
		return "", ErrInvalidArgument
	}
	return r, nil
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsValid returns true if the role is one of the known roles.
func (r Role) IsValid() bool {
	return validRoles[r]
}
