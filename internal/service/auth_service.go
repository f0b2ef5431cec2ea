package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/questguide/questguide-backend/internal/config"
	"github.com/questguide/questguide-backend/internal/model"
	"github.com/questguide/questguide-backend/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Claims extends JWT standard claims with the account role.
type Claims struct {
	jwt.RegisteredClaims
	Role model.Role `json:"role"`
}

// AuthService handles credentials, tokens and self-service profile updates.
type AuthService struct {
	cfg    *config.Config
	users  UserStore
	tokens TokenStore
	log    zerolog.Logger
	now    func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, users UserStore, tokens TokenStore, log zerolog.Logger) *AuthService {
	return &AuthService{
		cfg:    cfg,
		users:  users,
		tokens: tokens,
		log:    log.With().Str("component", "auth_service").Logger(),
		now:    time.Now,
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Signup registers a student account and logs it in.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest) (*model.AuthResponse, error) {
	u, err := s.Register(ctx, req, model.RoleStudent)
	if err != nil {
		return nil, err
	}

	token, err := s.IssueToken(u)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{Token: token, User: u}, nil
}

// Register creates an active account with the given role without logging
// it in. Signup always registers students; the admin tooling uses other roles.
func (s *AuthService) Register(ctx context.Context, req model.SignupRequest, role model.Role) (*model.User, error) {
	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:  hash,
		Name:          strings.TrimSpace(req.Name),
		Role:          role,
		AccountStatus: model.AccountActive,
		Preferences:   model.DefaultPreferences(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info().Str("user_id", u.ID.String()).Str("role", string(role)).Msg("User registered")
	return u, nil
}

// Login verifies credentials, the optional expected role and the account
// status, then stamps last_login.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := s.CheckPassword(u.PasswordHash, req.Password); err != nil {
		return nil, err
	}
	if req.Role != "" && req.Role != u.Role {
		return nil, &RoleMismatchError{Role: u.Role}
	}
	if u.AccountStatus != model.AccountActive {
		return nil, ErrAccountInactive
	}

	now := s.now().UTC()
	if err := s.users.TouchLastLogin(ctx, u.ID, now); err != nil {
		return nil, fmt.Errorf("touch last login: %w", err)
	}
	u.LastLogin = &now

	token, err := s.IssueToken(u)
	if err != nil {
		return nil, err
	}
	return &model.AuthResponse{Token: token, User: u}, nil
}

// IssueToken signs an HS256 token for u.
func (s *AuthService) IssueToken(u *model.User) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		Role: u.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates the signature and expiry of a token.
func (s *AuthService) ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.IssuedAt == nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Authenticate resolves a bearer token to a live account. The token must be
// valid and unrevoked, its subject must still exist and the password must
// not have changed after it was issued.
func (s *AuthService) Authenticate(ctx context.Context, tokenStr string) (*model.User, *Claims, error) {
	claims, err := s.ParseToken(tokenStr)
	if err != nil {
		return nil, nil, err
	}

	revoked, err := s.tokens.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, nil, ErrTokenRevoked
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, nil, ErrTokenInvalid
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrUserGone
		}
		return nil, nil, fmt.Errorf("load user: %w", err)
	}
	if u.ChangedPasswordAfter(claims.IssuedAt.Time) {
		return nil, nil, ErrPasswordChanged
	}
	return u, claims, nil
}

// Logout revokes the presented token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if err := s.tokens.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// UpdateMe applies a self-service update of name and password in one write.
// A password change stamps password_changed_at, which invalidates older
// tokens, so a fresh token is returned in that case and "" otherwise.
func (s *AuthService) UpdateMe(ctx context.Context, u *model.User, req model.UpdateMeRequest) (*model.User, string, error) {
	if req.Email != nil {
		return nil, "", ErrEmailImmutable
	}

	updated := *u
	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.Password != nil {
		hash, err := s.HashPassword(*req.Password)
		if err != nil {
			return nil, "", fmt.Errorf("hash password: %w", err)
		}
		// One second back so a token issued in the same second is not rejected.
		changedAt := s.now().UTC().Add(-time.Second)
		updated.PasswordHash = hash
		updated.PasswordChangedAt = &changedAt
	}

	if err := s.users.UpdateAccount(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrUserGone
		}
		return nil, "", fmt.Errorf("update account: %w", err)
	}
	if req.Password == nil {
		return &updated, "", nil
	}

	token, err := s.IssueToken(&updated)
	if err != nil {
		return nil, "", err
	}
	s.log.Info().Str("user_id", updated.ID.String()).Msg("Password changed")
	return &updated, token, nil
}
