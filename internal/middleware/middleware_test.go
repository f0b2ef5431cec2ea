package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/questguide/questguide-backend/internal/model"
	"github.com/questguide/questguide-backend/internal/response"
	"github.com/questguide/questguide-backend/internal/service"
	"github.com/rs/zerolog"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth struct {
	user *model.User
	err  error
}

func (s stubAuth) Authenticate(_ context.Context, token string) (*model.User, *service.Claims, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	if token != "good" {
		return nil, nil, service.ErrTokenInvalid
	}
	return s.user, &service.Claims{Role: s.user.Role}, nil
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) response.ErrCode {
	t.Helper()
	var body response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	if body.Error == nil {
		return ""
	}
	return body.Error.Code
}

func protectedRouter(auth Authenticator, roles ...model.Role) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler(zerolog.Nop()))
	chain := []gin.HandlerFunc{Protect(auth)}
	if len(roles) > 0 {
		chain = append(chain, RestrictTo(roles...))
	}
	chain = append(chain, func(c *gin.Context) {
		c.String(http.StatusOK, GetUser(c).Email)
	})
	r.GET("/me", chain...)
	return r
}

func TestProtect(t *testing.T) {
	student := &model.User{ID: uuid.New(), Email: "stu@x.com", Role: model.RoleStudent}

	tests := []struct {
		name   string
		auth   stubAuth
		header string
		status int
		code   response.ErrCode
	}{
		{"valid", stubAuth{user: student}, "Bearer good", http.StatusOK, ""},
		{"lowercase scheme", stubAuth{user: student}, "bearer good", http.StatusOK, ""},
		{"missing", stubAuth{user: student}, "", http.StatusUnauthorized, response.ErrTokenRequired},
		{"wrong scheme", stubAuth{user: student}, "Basic good", http.StatusUnauthorized, response.ErrTokenRequired},
		{"invalid", stubAuth{user: student}, "Bearer bad", http.StatusUnauthorized, response.ErrTokenInvalid},
		{"revoked", stubAuth{err: service.ErrTokenRevoked}, "Bearer good", http.StatusUnauthorized, response.ErrTokenRevoked},
		{"user gone", stubAuth{err: service.ErrUserGone}, "Bearer good", http.StatusUnauthorized, response.ErrUserGone},
		{"password changed", stubAuth{err: service.ErrPasswordChanged}, "Bearer good", http.StatusUnauthorized, response.ErrPasswordChanged},
		{"store down", stubAuth{err: errors.New("redis down")}, "Bearer good", http.StatusInternalServerError, response.ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			protectedRouter(tt.auth).ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.status, w.Body.String())
			}
			if tt.code != "" && errorCode(t, w) != tt.code {
				t.Errorf("code = %s, want %s", errorCode(t, w), tt.code)
			}
		})
	}
}

func TestRestrictTo(t *testing.T) {
	student := &model.User{ID: uuid.New(), Email: "stu@x.com", Role: model.RoleStudent}
	admin := &model.User{ID: uuid.New(), Email: "admin@x.com", Role: model.RoleAdmin}

	for _, tt := range []struct {
		user   *model.User
		status int
	}{{student, http.StatusForbidden}, {admin, http.StatusOK}} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()
		protectedRouter(stubAuth{user: tt.user}, model.RoleAdmin).ServeHTTP(w, req)

		if w.Code != tt.status {
			t.Errorf("%s: status = %d, want %d", tt.user.Role, w.Code, tt.status)
		}
		if tt.status == http.StatusForbidden && errorCode(t, w) != response.ErrForbidden {
			t.Errorf("code = %s, want FORBIDDEN", errorCode(t, w))
		}
	}
}

func TestProtectQueryFallback(t *testing.T) {
	r := gin.New()
	r.GET("/ws", ProtectQuery(stubAuth{user: &model.User{Email: "a@x.com"}}), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token=good", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
}

func TestErrorHandlerUsesClassifiers(t *testing.T) {
	errDomain := errors.New("domain failure")
	classify := func(err error) *response.AppError {
		if errors.Is(err, errDomain) {
			return response.NewError(http.StatusConflict, response.ErrEmailTaken, "")
		}
		return nil
	}

	var logs bytes.Buffer
	r := gin.New()
	r.Use(response.RequestIDMiddleware(), ErrorHandler(zerolog.New(&logs), classify))
	r.GET("/known", func(c *gin.Context) { _ = c.Error(errDomain) })
	r.GET("/unknown", func(c *gin.Context) { _ = c.Error(errors.New("secret detail")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/known", nil))
	if w.Code != http.StatusConflict || errorCode(t, w) != response.ErrEmailTaken {
		t.Errorf("known: %d %s", w.Code, w.Body.String())
	}
	if logs.Len() != 0 {
		t.Errorf("client error was logged: %s", logs.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/unknown", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("unknown: status %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "secret detail") {
		t.Error("internal error detail leaked to client")
	}
	if !strings.Contains(logs.String(), "secret detail") || !strings.Contains(logs.String(), "request_id") {
		t.Errorf("log = %s", logs.String())
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.POST("/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })
	hit := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := hit(); w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, w.Code)
		}
	}
	w := hit()
	if w.Code != http.StatusTooManyRequests || errorCode(t, w) != response.ErrRateLimitExceeded {
		t.Fatalf("third request: %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", w.Header().Get("Retry-After"))
	}

	now = now.Add(time.Minute)
	if w := hit(); w.Code != http.StatusOK {
		t.Errorf("after refill: status %d", w.Code)
	}

	now = now.Add(5 * time.Minute)
	rl.cleanup()
	if len(rl.visitors) != 0 {
		t.Errorf("idle visitors kept: %d", len(rl.visitors))
	}
}

func TestBrotli(t *testing.T) {
	big := strings.Repeat("questguide ", 200)
	r := gin.New()
	r.Use(Brotli())
	r.GET("/big", func(c *gin.Context) { c.String(http.StatusOK, big) })
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/big", nil)
	req.Header.Set("Accept-Encoding", "gzip, br;q=1.0")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Content-Encoding") != "br" {
		t.Fatalf("Content-Encoding = %q, want br", w.Header().Get("Content-Encoding"))
	}
	plain, err := io.ReadAll(brotli.NewReader(w.Body))
	if err != nil || string(plain) != big {
		t.Fatalf("decoded %d bytes, err %v", len(plain), err)
	}

	req = httptest.NewRequest(http.MethodGet, "/small", nil)
	req.Header.Set("Accept-Encoding", "br")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Content-Encoding") != "" || w.Body.String() != "ok" {
		t.Errorf("small body: encoding %q body %q", w.Header().Get("Content-Encoding"), w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/big", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Content-Encoding") != "" || w.Body.String() != big {
		t.Error("response compressed for a client without br")
	}
}
