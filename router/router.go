// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"fmt"
	"log/slog"
	"net/http"

	gorillahandlers "github.com/gorilla/handlers"

	"github.com/danielhkuo/blueballot/audit"
	"github.com/danielhkuo/blueballot/auth"
	"github.com/danielhkuo/blueballot/cliparse"
	"github.com/danielhkuo/blueballot/db"
	"github.com/danielhkuo/blueballot/handlers"
	"github.com/danielhkuo/blueballot/middleware"
	"github.com/danielhkuo/blueballot/voting"
)

func NewRouter(store db.Store, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Shared services
	auditLog := audit.NewLogger(store, slog.Default())
	engine := voting.NewEngine(store, auditLog, slog.Default())
	tokens := auth.NewTokenIssuer(cfg.SessionSecret, cfg.SessionTTL)
	authn := middleware.NewAuthenticator(tokens, store, cfg.CookieSecure)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(store, auditLog, tokens, authn, cfg)
	electionHandler := handlers.NewElectionHandler(store, auditLog, engine)
	eligibilityHandler := handlers.NewEligibilityHandler(store, auditLog)
	votingHandler := handlers.NewVotingHandler(engine)
	resultsHandler := handlers.NewResultsHandler(engine)
	adminHandler := handlers.NewAdminHandler(store, auditLog)

	// Logging wraps the session gates
	public := middleware.WithLogging
	authed := func(h http.HandlerFunc) http.HandlerFunc { return middleware.WithLogging(authn.RequireAuth(h)) }
	admin := func(h http.HandlerFunc) http.HandlerFunc { return middleware.WithLogging(authn.RequireAdmin(h)) }

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			slog.Error("health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Sessions
	mux.HandleFunc("POST /auth/register", public(authHandler.Register))
	mux.HandleFunc("POST /auth/login", public(authHandler.Login))
	mux.HandleFunc("POST /auth/logout", public(authHandler.Logout))
	mux.HandleFunc("GET /auth/me", authed(authHandler.Me))

	// Elections (read: eligible voters and admins, write: admins)
	mux.HandleFunc("GET /elections", authed(electionHandler.ListElections))
	mux.HandleFunc("POST /elections", admin(electionHandler.CreateElection))
	mux.HandleFunc("GET /elections/{id}", authed(electionHandler.GetElection))
	mux.HandleFunc("PATCH /elections/{id}", admin(electionHandler.UpdateElection))
	mux.HandleFunc("DELETE /elections/{id}", admin(electionHandler.DeleteElection))

	// Contests and options
	mux.HandleFunc("GET /elections/{id}/contests", authed(electionHandler.ListContests))
	mux.HandleFunc("POST /elections/{id}/contests", admin(electionHandler.CreateContest))
	mux.HandleFunc("GET /contests/{id}", authed(electionHandler.GetContest))
	mux.HandleFunc("PATCH /contests/{id}", admin(electionHandler.UpdateContest))
	mux.HandleFunc("DELETE /contests/{id}", admin(electionHandler.DeleteContest))
	mux.HandleFunc("GET /contests/{id}/options", authed(electionHandler.ListOptions))
	mux.HandleFunc("POST /contests/{id}/options", admin(electionHandler.CreateOption))
	mux.HandleFunc("DELETE /options/{id}", admin(electionHandler.DeleteOption))

	// Eligibility (admin)
	mux.HandleFunc("GET /elections/{id}/eligible-voters", admin(eligibilityHandler.ListEligibleVoters))
	mux.HandleFunc("POST /elections/{id}/eligible-voters", admin(eligibilityHandler.AddEligibleVoter))
	mux.HandleFunc("DELETE /elections/{id}/eligible-voters/{userId}", admin(eligibilityHandler.RemoveEligibleVoter))

	// Voting
	mux.HandleFunc("POST /votes", authed(votingHandler.CastVote))
	mux.HandleFunc("GET /contests/{id}/my-vote", authed(votingHandler.GetMyVote))

	// Results and administration
	mux.HandleFunc("GET /contests/{id}/results", admin(resultsHandler.GetResults))
	mux.HandleFunc("GET /users", admin(adminHandler.ListUsers))
	mux.HandleFunc("GET /audit-logs", admin(adminHandler.ListAuditLogs))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("blueballot API v1"))
	})

	return mux
}

// NewHandler wraps the router with CORS and panic recovery for serving.
func NewHandler(store db.Store, cfg cliparse.Config) http.Handler {
	recovery := gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(recoveryLogger{}),
		gorillahandlers.PrintRecoveryStack(false),
	)
	return recovery(middleware.CORS(NewRouter(store, cfg)))
}

// recoveryLogger routes recovered panics into slog
type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	slog.Error("panic recovered", "panic", fmt.Sprint(v...))
}
