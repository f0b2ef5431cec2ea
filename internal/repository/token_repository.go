package repository

import (
	"context"
	"errors"
	"time"

	"github.com/questguide/questguide-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// TokenRepository keeps the revocation list of logged-out tokens in Redis.
// Entries expire together with the token they revoke.
type TokenRepository struct {
	rdb *redis.Client
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(rdb *redis.Client) *TokenRepository {
	return &TokenRepository{rdb: rdb}
}

// Revoke marks a token id as revoked for ttl. Non-positive ttls are no-ops
// since the token has already expired.
func (r *TokenRepository) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, config.CacheKey.RevokedTokenKey(jti), 1, ttl).Err()
}

// IsRevoked reports whether a token id has been revoked.
func (r *TokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := r.rdb.Get(ctx, config.CacheKey.RevokedTokenKey(jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
