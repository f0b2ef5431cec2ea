package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/questguide/questguide-backend/internal/model"
)

// Common service errors.
var (
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrEmailTaken         = errors.New("email already in use")
	ErrAccountInactive    = errors.New("account is not active")
	ErrEmailImmutable     = errors.New("email cannot be changed")

	ErrTokenInvalid    = errors.New("invalid token")
	ErrTokenRevoked    = errors.New("token has been revoked")
	ErrUserGone        = errors.New("the user belonging to this token no longer exists")
	ErrPasswordChanged = errors.New("user recently changed password")

	ErrTestNotFound     = errors.New("no test found with that ID")
	ErrResourceNotFound = errors.New("no resource found with that ID")
	ErrNotOwner         = errors.New("you do not have permission to modify this record")
	ErrTestHasNoItems   = errors.New("test has no questions")
)

// RoleMismatchError is returned when a login names a role other than the
// account's.
type RoleMismatchError struct {
	Role model.Role
}

func (e *RoleMismatchError) Error() string {
	return fmt.Sprintf("Invalid login attempt. Please use the %s login.", e.Role)
}

// ValidationError carries field-level business validation failures.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// canModify reports whether user may mutate a record created by owner.
func canModify(user *model.User, owner uuid.UUID) bool {
	return user.IsAdmin() || user.ID == owner
}
