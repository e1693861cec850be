// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/blueballot/models"
)

// Actions
const (
	ActionAdminBootstrapped    = "admin_bootstrapped"
	ActionUserRegistered       = "user_registered"
	ActionUserLogin            = "user_login"
	ActionUserLogout           = "user_logout"
	ActionElectionCreated      = "election_created"
	ActionElectionUpdated      = "election_updated"
	ActionElectionDeleted      = "election_deleted"
	ActionContestCreated       = "contest_created"
	ActionContestUpdated       = "contest_updated"
	ActionContestDeleted       = "contest_deleted"
	ActionOptionCreated        = "option_created"
	ActionOptionDeleted        = "option_deleted"
	ActionEligibleVoterAdded   = "eligible_voter_added"
	ActionEligibleVoterRemoved = "eligible_voter_removed"
	ActionVoteCast             = "vote_cast"
)

// Entity types
const (
	EntityUser          = "user"
	EntityElection      = "election"
	EntityContest       = "contest"
	EntityOption        = "option"
	EntityEligibleVoter = "eligible_voter"
	EntityVote          = "vote"
)

// Store is the slice of db.Store the logger needs.
type Store interface {
	AppendAuditLog(ctx context.Context, entry models.AuditLog) (models.AuditLog, error)
	ListAuditLogs(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error)
}

// Entry describes one event to record. Empty strings are stored as NULL;
// Details, when non-nil, is stored as JSON.
type Entry struct {
	UserID     string
	Action     string
	EntityType string
	EntityID   string
	Details    any
}

// Logger appends and queries audit records.
type Logger struct {
	store Store
	now   func() time.Time
	log   *slog.Logger
}

func NewLogger(store Store, logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{store: store, now: time.Now, log: logger}
}

// Record converts an entry into the stored form without writing it. Used
// when the write has to happen inside another store operation.
func (l *Logger) Record(e Entry) (models.AuditLog, error) {
	if e.Action == "" {
		return models.AuditLog{}, fmt.Errorf("audit action is required")
	}
	rec := models.AuditLog{
		UserID:     optional(e.UserID),
		Action:     e.Action,
		EntityType: optional(e.EntityType),
		EntityID:   optional(e.EntityID),
		CreatedAt:  l.now().UTC(),
	}
	if e.Details != nil {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return models.AuditLog{}, fmt.Errorf("encode audit details: %w", err)
		}
		details := string(raw)
		rec.Details = &details
	}
	return rec, nil
}

// Append writes an entry. It only fails when the record can't be encoded or
// stored.
func (l *Logger) Append(ctx context.Context, e Entry) (models.AuditLog, error) {
	rec, err := l.Record(e)
	if err != nil {
		return models.AuditLog{}, err
	}
	stored, err := l.store.AppendAuditLog(ctx, rec)
	if err != nil {
		return models.AuditLog{}, fmt.Errorf("append audit log: %w", err)
	}
	l.log.Debug("audit recorded", "action", e.Action, "entity_type", e.EntityType, "entity_id", e.EntityID)
	return stored, nil
}

// Query returns matching records, newest first.
func (l *Logger) Query(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error) {
	logs, err := l.store.ListAuditLogs(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	return logs, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
