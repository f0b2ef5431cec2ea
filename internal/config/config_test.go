package config

import (
	"testing"
	"time"
)

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty allows all", "", nil},
		{"single", "http://localhost:5173", []string{"http://localhost:5173"}},
		{"trims and skips blanks", " https://a.example , ,https://b.example ", []string{"https://a.example", "https://b.example"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseOrigins(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("parseOrigins(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("origin[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("JWT_EXPIRY_HOURS", "")
	t.Setenv("RESULT_RETENTION_DAYS", "30")
	t.Setenv("LOGIN_RATE_LIMIT", "not-a-number")

	cfg := Load()

	if cfg.ServerPort != "5000" {
		t.Errorf("ServerPort = %q, want 5000", cfg.ServerPort)
	}
	if cfg.JWTExpiry != 30*24*time.Hour {
		t.Errorf("JWTExpiry = %v, want 720h", cfg.JWTExpiry)
	}
	if cfg.ResultRetention != 30*24*time.Hour {
		t.Errorf("ResultRetention = %v, want 720h", cfg.ResultRetention)
	}
	if cfg.LoginRateLimit != 30 {
		t.Errorf("LoginRateLimit = %d, want fallback 30", cfg.LoginRateLimit)
	}
}

func TestCacheKeys(t *testing.T) {
	if got := CacheKey.RevokedTokenKey("abc"); got != "auth:revoked:abc" {
		t.Errorf("RevokedTokenKey = %q", got)
	}
	if got := CacheKey.TestSubmissionsChannel("t1"); got != "tests:t1:submissions" {
		t.Errorf("TestSubmissionsChannel = %q", got)
	}
}
