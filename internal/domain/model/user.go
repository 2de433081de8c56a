package model

import "time"

type UserRole string

const (
	UserRoleMember UserRole = "member"
	UserRoleStaff  UserRole = "staff"
	UserRoleAdmin  UserRole = "admin"
)

// User is the account owning listings and purchases. Auth and profile CRUD
// live outside this core; only ownership and privilege checks need it here.
type User struct {
	ID           string // UUID
	Email        string
	Role         UserRole
	RegisteredAt time.Time
}

// Privileged reports whether listings created by this account skip moderation.
func (u *User) Privileged() bool {
	return u.Role == UserRoleStaff || u.Role == UserRoleAdmin
}
