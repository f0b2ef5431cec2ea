package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/questguide/questguide-backend/internal/middleware"
	"github.com/questguide/questguide-backend/internal/model"
	"github.com/questguide/questguide-backend/internal/response"
	"github.com/questguide/questguide-backend/internal/validator"
)

// AuthHandler handles authentication and self-service profile endpoints.
type AuthHandler struct {
	authService AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Signup godoc
// POST /api/auth/signup
// Registers a student account and returns a token.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if fields := validator.Bind(c, &req); fields != nil {
		bindError(c, fields)
		return
	}

	res, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

// Login godoc
// POST /api/auth/login
// Authenticates with email and password. An optional role must match the account.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		bindError(c, fields)
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// Me godoc
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// UpdateMe godoc
// PATCH /api/auth/updateMe
// Updates the caller's profile. Email cannot be changed. A password change
// returns a fresh token because it invalidates the old ones.
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req model.UpdateMeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		bindError(c, fields)
		return
	}

	updated, token, err := h.authService.UpdateMe(c.Request.Context(), user, req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	data := gin.H{"user": updated}
	if token != "" {
		data["token"] = token
	}
	response.Success(c, http.StatusOK, data)
}

// Logout godoc
// POST /api/auth/logout
// Revokes the presented token.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.GetClaims(c)); err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}
