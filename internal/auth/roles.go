package auth

import "errors"

type Role string

const (
	RoleDriver     Role = "driver"
	RoleDispatcher Role = "dispatcher"
	RoleAdmin      Role = "admin"
)

var ErrInvalidToken = errors.New("auth: invalid token")

// NormalizeRole validates a role string.
func NormalizeRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleDriver, RoleDispatcher, RoleAdmin:
		return Role(value), true
	default:
		return "", false
	}
}
