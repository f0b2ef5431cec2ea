package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/questguide/questguide-backend/internal/model"
	"github.com/questguide/questguide-backend/internal/response"
	"github.com/questguide/questguide-backend/internal/service"
)

const (
	// ContextKeyUser is the Gin context key for the authenticated user.
	ContextKeyUser = "user"
	// ContextKeyClaims is the Gin context key for JWT claims.
	ContextKeyClaims = "claims"
)

// Authenticator resolves a bearer token to a live account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, *service.Claims, error)
}

// Protect requires a valid bearer token in the Authorization header.
func Protect(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, auth, bearerToken(c))
	}
}

// ProtectQuery is Protect with a ?token= fallback, for WebSocket upgrades
// where browsers cannot set headers.
func ProtectQuery(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token = c.Query("token")
		}
		authenticate(c, auth, token)
	}
}

func authenticate(c *gin.Context, auth Authenticator, token string) {
	if token == "" {
		response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	user, claims, err := auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		if appErr := TokenError(err); appErr != nil {
			response.AbortWithError(c, appErr)
			return
		}
		_ = c.Error(err)
		c.Abort()
		return
	}

	c.Set(ContextKeyUser, user)
	c.Set(ContextKeyClaims, claims)
	c.Next()
}

// TokenError maps authentication failures to their API errors. It returns
// nil for anything else.
func TokenError(err error) *response.AppError {
	switch {
	case errors.Is(err, service.ErrTokenRevoked):
		return response.NewError(http.StatusUnauthorized, response.ErrTokenRevoked, "")
	case errors.Is(err, service.ErrUserGone):
		return response.NewError(http.StatusUnauthorized, response.ErrUserGone, "")
	case errors.Is(err, service.ErrPasswordChanged):
		return response.NewError(http.StatusUnauthorized, response.ErrPasswordChanged, "")
	case errors.Is(err, service.ErrTokenInvalid):
		return response.NewError(http.StatusUnauthorized, response.ErrTokenInvalid, "")
	}
	return nil
}

// RestrictTo allows only the given roles past. It must run after Protect.
func RestrictTo(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetUser(c)
		if user == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
	}
}

// GetUser retrieves the authenticated user from the Gin context.
func GetUser(c *gin.Context) *model.User {
	val, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil
	}
	user, _ := val.(*model.User)
	return user
}

// GetClaims retrieves the JWT claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, _ := val.(*service.Claims)
	return claims
}

func bearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
