package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		JWTSecret:        "0123456789abcdef0123456789abcdef",
		AdminJWTSecret:   "fedcba9876543210fedcba9876543210",
		BcryptCost:       12,
		LockoutThreshold: 5,
		AccessTokenTTL:   time.Hour,
		RefreshTokenTTL:  7 * 24 * time.Hour,
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing secret", func(c *Config) { c.JWTSecret = "" }},
		{"short secret", func(c *Config) { c.JWTSecret = "tooshort" }},
		{"short admin secret", func(c *Config) { c.AdminJWTSecret = "tooshort" }},
		{"bcrypt cost too low", func(c *Config) { c.BcryptCost = 4 }},
		{"bcrypt cost too high", func(c *Config) { c.BcryptCost = 31 }},
		{"zero lockout threshold", func(c *Config) { c.LockoutThreshold = 0 }},
		{"refresh shorter than access", func(c *Config) { c.RefreshTokenTTL = time.Minute }},
		{"bad encryption key", func(c *Config) { c.EncryptionKey = "abc" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION_GO", "30m")
	if d := getEnvDuration("TEST_DURATION_GO", time.Hour); d != 30*time.Minute {
		t.Errorf("go duration: got %v", d)
	}

	// Plain integers are milliseconds
	t.Setenv("TEST_DURATION_MS", "1500")
	if d := getEnvDuration("TEST_DURATION_MS", time.Hour); d != 1500*time.Millisecond {
		t.Errorf("millisecond duration: got %v", d)
	}

	if d := getEnvDuration("TEST_DURATION_UNSET", time.Hour); d != time.Hour {
		t.Errorf("default: got %v", d)
	}
}
