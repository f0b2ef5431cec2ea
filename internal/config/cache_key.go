package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// RevokedTokenKey returns the cache key marking a token ID as logged out.
func (r *CacheKeyStruct) RevokedTokenKey(jti string) string {
	return fmt.Sprintf("auth:revoked:%s", jti)
}

// TestSubmissionsChannel returns the Redis PubSub channel carrying submission events for a test.
func (r *CacheKeyStruct) TestSubmissionsChannel(testID string) string {
	return fmt.Sprintf("tests:%s:submissions", testID)
}

var CacheKey = NewCacheKeyStruct()
