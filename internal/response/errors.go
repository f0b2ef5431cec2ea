package response

import (
	"errors"
	"net/http"
)

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenRevoked       ErrCode = "TOKEN_REVOKED"
	ErrUserGone           ErrCode = "USER_NO_LONGER_EXISTS"
	ErrPasswordChanged    ErrCode = "PASSWORD_CHANGED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrRoleMismatch    ErrCode = "ROLE_MISMATCH"
	ErrAccountInactive ErrCode = "ACCOUNT_INACTIVE"
	ErrNotOwner        ErrCode = "NOT_OWNER"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound   ErrCode = "NOT_FOUND"
	ErrEmailTaken ErrCode = "EMAIL_TAKEN"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns the default human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidCredentials:
		return "Incorrect email or password."
	case ErrTokenRequired:
		return "You are not logged in. Please log in to get access."
	case ErrTokenInvalid:
		return "Invalid token. Please log in again."
	case ErrTokenRevoked:
		return "This session has been logged out. Please log in again."
	case ErrUserGone:
		return "The user belonging to this token no longer exists."
	case ErrPasswordChanged:
		return "User recently changed password. Please log in again."

	case ErrForbidden:
		return "You do not have permission to perform this action."
	case ErrRoleMismatch:
		return "Invalid login attempt."
	case ErrAccountInactive:
		return "Your account is not active. Please contact an administrator."
	case ErrNotOwner:
		return "You can only modify records you created."

	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	case ErrNotFound:
		return "Resource not found."
	case ErrEmailTaken:
		return "Email already in use."

	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	case ErrInternal:
		return "Something went wrong."
	default:
		return "An unexpected error occurred."
	}
}

// AppError is an API error carrying its HTTP status. Services and handlers
// return it; the error middleware renders it.
type AppError struct {
	Status  int
	Code    ErrCode
	Message string
	Fields  map[string]string
}

func (e *AppError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// NewError builds an AppError. An empty message uses the code's default.
func NewError(status int, code ErrCode, message string) *AppError {
	if message == "" {
		message = GetMessage(code)
	}
	return &AppError{Status: status, Code: code, Message: message}
}

// NewValidationError builds a 400 VALIDATION_ERROR with field details.
func NewValidationError(fields map[string]string) *AppError {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    ErrValidation,
		Message: GetMessage(ErrValidation),
		Fields:  fields,
	}
}

// WithFields returns a copy of e carrying field-level details.
func (e *AppError) WithFields(fields map[string]string) *AppError {
	cp := *e
	cp.Fields = fields
	return &cp
}

// Classifier maps a domain error to an AppError. It returns nil when it does
// not recognize err.
type Classifier func(err error) *AppError

// FromError resolves err into an AppError. An AppError anywhere in the chain
// wins, then each classifier in order. Anything else is an internal error and
// the second return value is false.
func FromError(err error, classifiers ...Classifier) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	for _, classify := range classifiers {
		if ae := classify(err); ae != nil {
			return ae, true
		}
	}
	return NewError(http.StatusInternalServerError, ErrInternal, ""), false
}
