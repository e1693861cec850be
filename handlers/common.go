// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/blueballot/audit"
	"github.com/danielhkuo/blueballot/auth"
	"github.com/danielhkuo/blueballot/middleware"
	"github.com/danielhkuo/blueballot/voting"
)

// principal returns the caller attached by RequireAuth
func principal(r *http.Request) auth.Principal {
	p, _ := middleware.PrincipalFrom(r.Context())
	return p
}

// canView reports whether p may read electionID and everything under it.
// Admins see every election, voters only those they are eligible for.
func canView(ctx context.Context, engine *voting.Engine, p auth.Principal, electionID string) (bool, error) {
	if p.IsAdmin() {
		return true, nil
	}
	return engine.IsVoterEligible(ctx, electionID, p.UserID)
}

// recordAudit appends an audit entry after a committed change.
// Non-fatal: the change already happened, so a failure is only logged
func recordAudit(ctx context.Context, log *audit.Logger, e audit.Entry) {
	if _, err := log.Append(ctx, e); err != nil {
		slog.Error("failed to record audit log", "action", e.Action, "entity_id", e.EntityID, "error", err)
	}
}
