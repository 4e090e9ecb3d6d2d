package domain

import (
	"crypto/subtle"
	"time"
)

// Role is the authorization role of a user.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleEventOwner Role = "EVENT_OWNER"
	RoleBaseUser   Role = "BASE_USER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleEventOwner, RoleBaseUser:
		return true
	}
	return false
}

// UserStatus represents the approval lifecycle of an account.
type UserStatus string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusApproved  UserStatus = "approved"
	UserStatusSuspended UserStatus = "suspended"
)

// InitialStatus returns the status a newly registered user starts in.
func InitialStatus(role Role) UserStatus {
	if role == RoleSuperAdmin {
		return UserStatusApproved
	}
	return UserStatusPending
}

// User is an account able to authenticate against the API.
//
// For EVENT_OWNER accounts CompanyID is the generated company code; BASE_USER
// accounts carry the CompanyID of the owner they belong to.
type User struct {
	ID               string
	Name             string
	Email            string
	PasswordHash     string
	Role             Role
	Company          string
	CompanyID        string
	Status           UserStatus
	ResetToken       *string
	ResetTokenExpiry *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ResetTokenValid reports whether token matches the stored reset code and has not expired at now.
func (u *User) ResetTokenValid(token string, now time.Time) bool {
	if u.ResetToken == nil || subtle.ConstantTimeCompare([]byte(*u.ResetToken), []byte(token)) != 1 {
		return false
	}
	if u.ResetTokenExpiry == nil {
		return false
	}
	return !u.ResetTokenExpiry.Before(now)
}
