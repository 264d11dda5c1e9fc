// Package actor carries the authenticated caller from the transport layer into the use cases.
package actor

import "errors"

// Role is the coarse permission level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ErrInvalidRole is returned for roles outside the known set.
var ErrInvalidRole = errors.New("role must be user or admin")

// Actor identifies who performs an operation.
type Actor struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Anonymous reports whether no user is attached.
func (a Actor) Anonymous() bool {
	return a.UserID == ""
}

// ParseRole validates a role string.
func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RoleUser, RoleAdmin:
		return Role(value), nil
	}
	return "", ErrInvalidRole
}
