// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Blue Ballot API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(store, cfg)

NewHandler wraps that mux with CORS and panic recovery and is what the
server listens with.

# Endpoints

Health:

	GET /health

Sessions:

	POST /auth/register - Create a voter account and sign in
	POST /auth/login    - Sign in
	POST /auth/logout   - Clear the session
	GET  /auth/me       - Current user (session)

Elections, contests and options (read: session, write: admin):

	GET|POST         /elections
	GET|PATCH|DELETE /elections/{id}
	GET|POST         /elections/{id}/contests
	GET|PATCH|DELETE /contests/{id}
	GET|POST         /contests/{id}/options
	DELETE           /options/{id}

Eligibility (admin):

	GET|POST /elections/{id}/eligible-voters
	DELETE   /elections/{id}/eligible-voters/{userId}

Voting (session):

	POST /votes
	GET  /contests/{id}/my-vote

Administration (admin):

	GET /contests/{id}/results
	GET /users
	GET /audit-logs

# Handler Initialization

The router builds the shared services once and injects them:

	auditLog := audit.NewLogger(store, slog.Default())
	engine := voting.NewEngine(store, auditLog, slog.Default())
	electionHandler := handlers.NewElectionHandler(store, auditLog, engine)

Every route is wrapped with middleware.WithLogging.
*/
package router
