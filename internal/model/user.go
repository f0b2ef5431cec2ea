package model

import (
	"time"

	"github.com/google/uuid"
)

// Role separates students from administrators.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// AccountStatus gates login. Only active accounts may authenticate.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountInactive  AccountStatus = "inactive"
	AccountSuspended AccountStatus = "suspended"
)

// Preferences is the user's settings bag, stored as JSONB.
type Preferences struct {
	EmailNotifications bool   `json:"email_notifications"`
	StudyReminders     bool   `json:"study_reminders"`
	Theme              string `json:"theme"`
}

// DefaultPreferences are applied to new accounts.
func DefaultPreferences() Preferences {
	return Preferences{EmailNotifications: true, StudyReminders: true, Theme: "system"}
}

// User is an account of either role.
type User struct {
	ID                uuid.UUID     `json:"id"`
	Email             string        `json:"email"`
	PasswordHash      string        `json:"-"`
	Name              string        `json:"name"`
	Role              Role          `json:"role"`
	AccountStatus     AccountStatus `json:"account_status"`
	ProfileComplete   bool          `json:"profile_complete"`
	Avatar            string        `json:"avatar,omitempty"`
	Bio               string        `json:"bio,omitempty"`
	Preferences       Preferences   `json:"preferences"`
	LastLogin         *time.Time    `json:"last_login,omitempty"`
	PasswordChangedAt *time.Time    `json:"-"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// ChangedPasswordAfter reports whether the password changed after a token
// issued at iat. Second precision matches the token's iat claim.
func (u *User) ChangedPasswordAfter(iat time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Truncate(time.Second).After(iat)
}

// SignupRequest is the payload for self-service registration.
type SignupRequest struct {
	Name     string `json:"name" binding:"required,notblank,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginRequest is the payload for authentication. Role, when present, must
// match the account's role.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     Role   `json:"role" binding:"omitempty,oneof=student admin"`
}

// UpdateMeRequest is the self-service update. Only name and password are
// writable; email is present only so it can be rejected explicitly and any
// other field is dropped by the decoder.
type UpdateMeRequest struct {
	Name     *string `json:"name" binding:"omitempty,notblank,max=100"`
	Password *string `json:"password" binding:"omitempty,min=6,max=128"`
	Email    *string `json:"email"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
