// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dialect Dialect) error {
	schema := sqliteSchema
	if dialect == DialectPostgres {
		schema = postgresSchema
	}

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// seq orders rows by insertion; id is the public identifier.

const postgresSchema = `
-- Users
CREATE TABLE IF NOT EXISTS users (
    seq BIGSERIAL PRIMARY KEY,
    id TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'voter' CHECK (role IN ('admin', 'voter')),
    name TEXT
);

-- Elections
CREATE TABLE IF NOT EXISTS elections (
    seq BIGSERIAL PRIMARY KEY,
    id TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    description TEXT,
    start_at TIMESTAMPTZ NOT NULL,
    end_at TIMESTAMPTZ NOT NULL,
    status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'scheduled', 'open', 'closed', 'archived')),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_elections_status ON elections(status);

-- Contests
CREATE TABLE IF NOT EXISTS contests (
    seq BIGSERIAL PRIMARY KEY,
    id TEXT NOT NULL UNIQUE,
    election_id TEXT NOT NULL REFERENCES elections(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    description TEXT,
    type TEXT NOT NULL DEFAULT 'single-choice' CHECK (type IN ('single-choice', 'multi-choice')),
    max_choices INTEGER
);

CREATE INDEX IF NOT EXISTS idx_contests_election_id ON contests(election_id);

-- Options
CREATE TABLE IF NOT EXISTS options (
    seq BIGSERIAL PRIMARY KEY,
    id TEXT NOT NULL UNIQUE,
    contest_id TEXT NOT NULL REFERENCES contests(id) ON DELETE CASCADE,
    label TEXT NOT NULL,
    description TEXT
);

CREATE INDEX IF NOT EXISTS idx_options_contest_id ON options(contest_id);

-- Eligible voters
CREATE TABLE IF NOT EXISTS eligible_voters (
    seq BIGSERIAL PRIMARY KEY,
    id TEXT NOT NULL UNIQUE,
    election_id TEXT NOT NULL REFERENCES elections(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    UNIQUE (election_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_eligible_voters_user_id ON eligible_voters(user_id);

-- Votes (one per user per contest)
CREATE TABLE IF NOT EXISTS votes (
    seq BIGSERIAL PRIMARY KEY,
    id TEXT NOT NULL UNIQUE,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    contest_id TEXT NOT NULL REFERENCES contests(id) ON DELETE CASCADE,
    option_ids JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, contest_id)
);

CREATE INDEX IF NOT EXISTS idx_votes_contest_id ON votes(contest_id);

-- Audit logs (append-only)
CREATE TABLE IF NOT EXISTS audit_logs (
    seq BIGSERIAL PRIMARY KEY,
    id TEXT NOT NULL UNIQUE,
    user_id TEXT REFERENCES users(id),
    action TEXT NOT NULL,
    entity_type TEXT,
    entity_id TEXT,
    details TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_audit_logs_user_id ON audit_logs(user_id);
CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs(entity_type, entity_id);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'voter' CHECK (role IN ('admin', 'voter')),
    name TEXT
);

CREATE TABLE IF NOT EXISTS elections (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    description TEXT,
    start_at TEXT NOT NULL,
    end_at TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'scheduled', 'open', 'closed', 'archived')),
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_elections_status ON elections(status);

CREATE TABLE IF NOT EXISTS contests (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    election_id TEXT NOT NULL REFERENCES elections(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    description TEXT,
    type TEXT NOT NULL DEFAULT 'single-choice' CHECK (type IN ('single-choice', 'multi-choice')),
    max_choices INTEGER
);

CREATE INDEX IF NOT EXISTS idx_contests_election_id ON contests(election_id);

CREATE TABLE IF NOT EXISTS options (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    contest_id TEXT NOT NULL REFERENCES contests(id) ON DELETE CASCADE,
    label TEXT NOT NULL,
    description TEXT
);

CREATE INDEX IF NOT EXISTS idx_options_contest_id ON options(contest_id);

CREATE TABLE IF NOT EXISTS eligible_voters (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    election_id TEXT NOT NULL REFERENCES elections(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    UNIQUE (election_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_eligible_voters_user_id ON eligible_voters(user_id);

CREATE TABLE IF NOT EXISTS votes (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    contest_id TEXT NOT NULL REFERENCES contests(id) ON DELETE CASCADE,
    option_ids TEXT NOT NULL,
    created_at TEXT NOT NULL,
    UNIQUE (user_id, contest_id)
);

CREATE INDEX IF NOT EXISTS idx_votes_contest_id ON votes(contest_id);

CREATE TABLE IF NOT EXISTS audit_logs (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    user_id TEXT REFERENCES users(id),
    action TEXT NOT NULL,
    entity_type TEXT,
    entity_id TEXT,
    details TEXT,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_logs_user_id ON audit_logs(user_id);
CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs(entity_type, entity_id);
`
