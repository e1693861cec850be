// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	slog.SetDefault(cfg.NewLogger())

# Flags and Environment Variables

	-p               PORT            Server port (default 3318)
	-t               DATABASE_TYPE   memory, sqlite or postgres (default sqlite)
	-d               DATABASE_URL    SQLite path or PostgreSQL DSN
	-session-secret  SESSION_SECRET  Session signing secret, at least 16 bytes
	-session-ttl     SESSION_TTL     Session lifetime (default 12h)
	-admin-email     ADMIN_EMAIL     Bootstrap admin (default admin@blueballot.com)
	-admin-password  ADMIN_PASSWORD  Bootstrap admin password, at least 8 chars
	-cookie-secure   COOKIE_SECURE   Secure flag on the session cookie
	-log-level       LOG_LEVEL       debug, info, warn or error (default info)
	-log-format      LOG_FORMAT      text or json (default text)
	-env-file                        Env file loaded first (default .env)

CLI flags take precedence over environment variables. The env file never
overrides variables already set in the process, and a missing file is not
an error.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing and the database type isn't memory
  - SESSION_SECRET or ADMIN_PASSWORD is missing or too short
  - any value fails to parse
*/
package cliparse
