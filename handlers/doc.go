// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Blue Ballot API.

# Handler Types

Each handler is a struct holding the services it needs:

  - AuthHandler: Registration, login, logout and the current session
  - ElectionHandler: Elections and the contests and options under them
  - EligibilityHandler: Which voters may take part in an election
  - VotingHandler: Casting a vote and reading back your own
  - ResultsHandler: Contest tallies
  - AdminHandler: User listing and the audit trail

Handlers are created via constructor functions:

	electionHandler := handlers.NewElectionHandler(store, auditLog, engine)

# Authorization

Handlers assume the router has already applied middleware.RequireAuth or
middleware.RequireAdmin and read the caller from the request context.
Admins may read every election. Voters may only read elections they are
eligible for; anything else answers 403, after a 404 for missing records.

# Voting Flow

	POST /votes                  → CastVote (one vote per voter per contest)
	GET  /contests/{id}/my-vote  → GetMyVote
	GET  /contests/{id}/results  → GetResults (admin)

The voter is always the session user. Check order and tally rules live in
package voting.

# Auditing

Every state change appends an audit entry. Votes are recorded together
with their entry in one transaction; for other changes a failed audit
write is logged and the response still succeeds.
*/
package handlers
