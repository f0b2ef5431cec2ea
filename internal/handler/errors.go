package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/questguide/questguide-backend/internal/middleware"
	"github.com/questguide/questguide-backend/internal/model"
	"github.com/questguide/questguide-backend/internal/response"
	"github.com/questguide/questguide-backend/internal/service"
)

// ClassifyError maps service errors to API errors for middleware.ErrorHandler.
func ClassifyError(err error) *response.AppError {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return response.NewValidationError(ve.Fields)
	}
	var mismatch *service.RoleMismatchError
	if errors.As(err, &mismatch) {
		return response.NewError(http.StatusForbidden, response.ErrRoleMismatch, mismatch.Error())
	}
	if appErr := middleware.TokenError(err); appErr != nil {
		return appErr
	}

	switch {
	case errors.Is(err, service.ErrEmailImmutable):
		return response.NewError(http.StatusBadRequest, response.ErrValidation, "Email cannot be changed").
			WithFields(map[string]string{"email": "Email cannot be changed"})
	case errors.Is(err, service.ErrEmailTaken):
		return response.NewError(http.StatusConflict, response.ErrEmailTaken, "")
	case errors.Is(err, service.ErrInvalidCredentials):
		return response.NewError(http.StatusUnauthorized, response.ErrInvalidCredentials, "")
	case errors.Is(err, service.ErrAccountInactive):
		return response.NewError(http.StatusForbidden, response.ErrAccountInactive, "")
	case errors.Is(err, service.ErrTestNotFound):
		return response.NewError(http.StatusNotFound, response.ErrNotFound, "No test found with that ID")
	case errors.Is(err, service.ErrResourceNotFound):
		return response.NewError(http.StatusNotFound, response.ErrNotFound, "No resource found with that ID")
	case errors.Is(err, service.ErrNotOwner):
		return response.NewError(http.StatusForbidden, response.ErrNotOwner, "")
	case errors.Is(err, service.ErrTestHasNoItems):
		return response.NewError(http.StatusBadRequest, response.ErrValidation, "This test has no questions")
	}
	return nil
}

// bindError forwards binding failures as a validation error.
func bindError(c *gin.Context, fields map[string]string) {
	_ = c.Error(response.NewValidationError(fields))
}

// paramID parses the :id route parameter. On failure it records INVALID_ID
// and returns false.
func paramID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(response.NewError(http.StatusBadRequest, response.ErrInvalidID, ""))
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the authenticated user or records TOKEN_REQUIRED.
func currentUser(c *gin.Context) (*model.User, bool) {
	user := middleware.GetUser(c)
	if user == nil {
		_ = c.Error(response.NewError(http.StatusUnauthorized, response.ErrTokenRequired, ""))
		return nil, false
	}
	return user, true
}
