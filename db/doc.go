// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db defines the persistence contract and its implementations.

# Store

Store covers users, elections, contests, options, eligible voters, votes and
audit logs. Open picks a backend by name:

	store, err := db.Open(ctx, "sqlite", "blueballot.db")
	defer store.Close()

Backends:

  - memory: MemStore, process-local maps guarded by a RWMutex
  - sqlite: SQLStore on modernc.org/sqlite
  - postgres: SQLStore on github.com/lib/pq

Queries are written with ? placeholders and rebound to $n for PostgreSQL.

# Errors

	ErrNotFound          - get/update on a missing id (sql.ErrNoRows included)
	ErrConflict          - unique constraint violated (email, vote, eligibility)
	ErrInvalidReference  - foreign key points at a missing record

Match with errors.Is; store errors are wrapped with the failing operation.

# Schema Creation

CreateSchema initializes all required tables for a dialect:

	if err := db.CreateSchema(conn, db.DialectPostgres); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Relationships

	election 1──* contest 1──* option
	election 1──* eligible_voter *──1 user
	contest  1──* vote *──1 user
	audit_log *──? user

Deleting an election or contest cascades to everything below it.

# Invariants

  - votes: UNIQUE (user_id, contest_id)
  - eligible_voters: UNIQUE (election_id, user_id)
  - users: UNIQUE (email)
  - RecordVote writes the vote and its audit entry atomically
  - Lists return creation order; audit logs return newest first
*/
package db
