// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/danielhkuo/blueballot/audit"
	"github.com/danielhkuo/blueballot/auth"
	"github.com/danielhkuo/blueballot/cliparse"
	"github.com/danielhkuo/blueballot/db"
	"github.com/danielhkuo/blueballot/middleware"
	"github.com/danielhkuo/blueballot/models"
	"github.com/danielhkuo/blueballot/testutil"
	"github.com/danielhkuo/blueballot/voting"
)

// testEnv bundles a fresh store with the services handlers are built from.
type testEnv struct {
	store  *db.SQLStore
	cfg    cliparse.Config
	audit  *audit.Logger
	engine *voting.Engine
	tokens *auth.TokenIssuer
	authn  *middleware.Authenticator

	admin models.User
	voter models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	auditLog := audit.NewLogger(store, nil)
	tokens := auth.NewTokenIssuer(cfg.SessionSecret, cfg.SessionTTL)

	return &testEnv{
		store:  store,
		cfg:    cfg,
		audit:  auditLog,
		engine: voting.NewEngine(store, auditLog, nil),
		tokens: tokens,
		authn:  middleware.NewAuthenticator(tokens, store, false),
		admin:  testutil.CreateTestUser(t, store, "admin@example.com", models.RoleAdmin),
		voter:  testutil.CreateTestUser(t, store, "voter@example.com", models.RoleVoter),
	}
}

// asUser attaches u as the authenticated caller, as RequireAuth would
func asUser(r *http.Request, u models.User) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), u))
}

// auditActions lists the recorded actions, newest first
func auditActions(t *testing.T, store db.Store, filter models.AuditFilter) []string {
	t.Helper()

	logs, err := store.ListAuditLogs(context.Background(), filter)
	if err != nil {
		t.Fatalf("Failed to list audit logs: %v", err)
	}
	actions := make([]string, len(logs))
	for i, l := range logs {
		actions[i] = l.Action
	}
	return actions
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
