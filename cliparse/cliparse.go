// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort       = 3318
	DefaultAdminEmail = "admin@blueballot.com"
	DefaultSessionTTL = 12 * time.Hour
	DefaultEnvFile    = ".env"

	minSecretLength   = 16
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt input limit
)

type Config struct {
	Port          int
	DatabaseURL   string
	DatabaseType  string
	SessionSecret string
	SessionTTL    time.Duration
	AdminEmail    string
	AdminPassword string
	CookieSecure  bool
	LogLevel      slog.Level
	LogFormat     string
	EnvFile       string
}

// ParseFlags reads flags, then fills anything unset from the environment.
// The env file (default .env) is loaded first when it exists; variables
// already set in the process environment win over it.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var ttl, logLevel, cookieSecure string

	fset := flag.NewFlagSet("blueballot", flag.ContinueOnError)

	// Network and storage (can be CLI args or env)
	fset.IntVar(&cfg.Port, "p", 0, "Server port")
	fset.StringVar(&cfg.DatabaseURL, "d", "", "Database URL (SQLite path or PostgreSQL DSN)")
	fset.StringVar(&cfg.DatabaseType, "t", "", "Database type (memory, sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fset.StringVar(&cfg.SessionSecret, "session-secret", "", "Session signing secret (prefer env)")
	fset.StringVar(&cfg.AdminPassword, "admin-password", "", "Bootstrap admin password (prefer env)")

	fset.StringVar(&ttl, "session-ttl", "", "Session lifetime, e.g. 12h")
	fset.StringVar(&cfg.AdminEmail, "admin-email", "", "Bootstrap admin email")
	fset.StringVar(&cookieSecure, "cookie-secure", "", "Mark the session cookie Secure (true/false)")
	fset.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fset.StringVar(&cfg.LogFormat, "log-format", "", "Log format (text or json)")
	fset.StringVar(&cfg.EnvFile, "env-file", DefaultEnvFile, "Env file to load if present")

	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.EnvFile != "" {
		if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", cfg.EnvFile, err)
		}
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("port %d out of range", cfg.Port)
	}

	cfg.DatabaseType = strings.ToLower(fallback(cfg.DatabaseType, "DATABASE_TYPE", "sqlite"))
	switch cfg.DatabaseType {
	case "memory", "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("unknown database type %q (want memory, sqlite or postgres)", cfg.DatabaseType)
	}
	cfg.DatabaseURL = fallback(cfg.DatabaseURL, "DATABASE_URL", "")
	if cfg.DatabaseURL == "" && cfg.DatabaseType != "memory" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	// Secrets - MUST be provided
	cfg.SessionSecret = fallback(cfg.SessionSecret, "SESSION_SECRET", "")
	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET required")
	}
	if len(cfg.SessionSecret) < minSecretLength {
		return Config{}, fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSecretLength)
	}

	cfg.AdminPassword = fallback(cfg.AdminPassword, "ADMIN_PASSWORD", "")
	if cfg.AdminPassword == "" {
		return Config{}, errors.New("ADMIN_PASSWORD required")
	}
	if len(cfg.AdminPassword) < minPasswordLength {
		return Config{}, fmt.Errorf("ADMIN_PASSWORD must be at least %d characters", minPasswordLength)
	}
	if len(cfg.AdminPassword) > maxPasswordLength {
		return Config{}, fmt.Errorf("ADMIN_PASSWORD must be at most %d bytes", maxPasswordLength)
	}
	cfg.AdminEmail = strings.ToLower(fallback(cfg.AdminEmail, "ADMIN_EMAIL", DefaultAdminEmail))

	cfg.SessionTTL = DefaultSessionTTL
	if ttl = fallback(ttl, "SESSION_TTL", ""); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid session TTL %q", ttl)
		}
		cfg.SessionTTL = d
	}

	if cookieSecure = fallback(cookieSecure, "COOKIE_SECURE", ""); cookieSecure != "" {
		b, err := strconv.ParseBool(cookieSecure)
		if err != nil {
			return Config{}, fmt.Errorf("invalid COOKIE_SECURE %q", cookieSecure)
		}
		cfg.CookieSecure = b
	}

	if logLevel = fallback(logLevel, "LOG_LEVEL", ""); logLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
			return Config{}, fmt.Errorf("invalid log level %q", logLevel)
		}
	}

	cfg.LogFormat = strings.ToLower(fallback(cfg.LogFormat, "LOG_FORMAT", "text"))
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return Config{}, fmt.Errorf("invalid log format %q (want text or json)", cfg.LogFormat)
	}

	return cfg, nil
}

// NewLogger builds the process logger for cfg.
func (c Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func fallback(v, env, def string) string {
	if v != "" {
		return v
	}
	if e := os.Getenv(env); e != "" {
		return e
	}
	return def
}
