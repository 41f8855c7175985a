package config

import (
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(envMap(nil))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Port != 3000 {
		t.Errorf("expected port 3000, got %d", cfg.Port)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("expected 24h token TTL, got %v", cfg.TokenTTL)
	}
	if cfg.JWTSecret != devJWTSecret {
		t.Errorf("expected development secret, got %q", cfg.JWTSecret)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Errorf("expected 2 default origins, got %v", cfg.AllowedOrigins)
	}
	if cfg.CookieSecure {
		t.Error("cookies should not be Secure outside release mode")
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := load(envMap(map[string]string{
		"PORT":            "8080",
		"DATABASE_URL":    "postgres://u:p@db/votemate",
		"JWT_SECRET":      "s3cr3t",
		"TOKEN_TTL":       "2h",
		"ALLOWED_ORIGINS": "https://a.example, https://b.example,",
		"COOKIE_SECURE":   "true",
	}))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Port != 8080 || cfg.DatabaseURL != "postgres://u:p@db/votemate" || cfg.JWTSecret != "s3cr3t" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Errorf("expected 2h, got %v", cfg.TokenTTL)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins: %v", cfg.AllowedOrigins)
	}
	if !cfg.CookieSecure {
		t.Error("expected Secure cookies")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"PORT": "http"}},
		{"bad ttl", map[string]string{"TOKEN_TTL": "tomorrow"}},
		{"negative ttl", map[string]string{"TOKEN_TTL": "-1h"}},
		{"bad cookie flag", map[string]string{"COOKIE_SECURE": "sometimes"}},
		{"release without secret", map[string]string{"GIN_MODE": "release"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := load(envMap(tt.env)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
