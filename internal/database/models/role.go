package models

import "fmt"

// Role is the closed set of membership roles. Anything outside
// admin/member is rejected at parse time.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleMember:
		return Role(s), nil
	}
	return "", fmt.Errorf("invalid role %q: must be 'admin' or 'member'", s)
}

func (r Role) String() string {
	return string(r)
}
