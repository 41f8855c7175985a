package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const devJWTSecret = "vote-sec"

var defaultOrigins = []string{
	"http://localhost:5173",
	"https://myvotemate.vercel.app",
}

type Config struct {
	Port           int
	DatabaseURL    string
	JWTSecret      string
	TokenTTL       time.Duration
	AllowedOrigins []string
	CookieSecure   bool
	GinMode        string
}

// Release reports whether the server runs in gin release mode.
func (c Config) Release() bool {
	return c.GinMode == "release"
}

// Load reads configuration from the environment. Call godotenv.Load before it
// so that values from .env are visible.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:      3000,
		TokenTTL:  24 * time.Hour,
		GinMode:   getenv("GIN_MODE"),
		JWTSecret: getenv("JWT_SECRET"),
	}

	if portStr := getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 {
			return Config{}, fmt.Errorf("invalid PORT %q", portStr)
		}
		cfg.Port = port
	}

	cfg.DatabaseURL = getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		// Fallback for local dev if not set
		cfg.DatabaseURL = "host=localhost user=postgres password=postgres dbname=votemate port=5432 sslmode=disable TimeZone=UTC"
	}

	if cfg.JWTSecret == "" {
		if cfg.Release() {
			return Config{}, errors.New("JWT_SECRET is not set in the environment")
		}
		slog.Warn("JWT_SECRET not set, using development secret")
		cfg.JWTSecret = devJWTSecret
	}

	if ttl := getenv("TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid TOKEN_TTL %q", ttl)
		}
		cfg.TokenTTL = d
	}

	cfg.AllowedOrigins = defaultOrigins
	if origins := getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}

	cfg.CookieSecure = cfg.Release()
	if secure := getenv("COOKIE_SECURE"); secure != "" {
		b, err := strconv.ParseBool(secure)
		if err != nil {
			return Config{}, fmt.Errorf("invalid COOKIE_SECURE %q", secure)
		}
		cfg.CookieSecure = b
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
