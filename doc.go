// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Blue Ballot API server.

Blue Ballot runs elections: administrators set up elections, contests and
options and decide who may vote; eligible voters cast one ballot per
contest; administrators read tallies and the audit trail.

# Starting the Server

	SESSION_SECRET=... ADMIN_PASSWORD=... go run . -d blueballot.db

Or against PostgreSQL:

	go run . -t postgres -d "postgres://..."

A throwaway in-memory instance:

	go run . -t memory -session-secret 0123456789abcdef -admin-password changeme1

On startup the admin account from ADMIN_EMAIL/ADMIN_PASSWORD is created if
it doesn't exist. SIGINT or SIGTERM drains in-flight requests and closes the
store.

# Architecture

  - handlers: HTTP request handlers (auth, elections, voting, results, admin)
  - router: Route definitions using Go 1.22+ routing
  - middleware: Sessions, CORS, logging, JSON helpers
  - voting: Eligibility checks, vote casting and tallies
  - audit: Append-only audit trail
  - auth: Password hashing and session tokens
  - bootstrap: Initial admin account
  - db: Store interface with memory, SQLite and PostgreSQL backends
  - models: Entity, request and response types
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
