// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/blueballot/models"
)

// Eligible voters

func scanEligibleVoter(row rowScanner) (models.EligibleVoter, error) {
	var ev models.EligibleVoter
	err := row.Scan(&ev.ID, &ev.ElectionID, &ev.UserID)
	return ev, err
}

// AddEligibleVoter grants userID the right to vote in electionID. Granting
// twice fails with ErrConflict.
func (s *SQLStore) AddEligibleVoter(ctx context.Context, ev models.EligibleVoter) (models.EligibleVoter, error) {
	ev.ID = uuid.NewString()
	_, err := s.exec(ctx, s.db, `
		INSERT INTO eligible_voters (id, election_id, user_id)
		VALUES (?, ?, ?)
	`, ev.ID, ev.ElectionID, ev.UserID)
	if err != nil {
		return models.EligibleVoter{}, fmt.Errorf("insert eligible voter: %w", mapError(err))
	}
	return ev, nil
}

func (s *SQLStore) RemoveEligibleVoter(ctx context.Context, electionID, userID string) (bool, error) {
	return deleted(s.exec(ctx, s.db, `
		DELETE FROM eligible_voters WHERE election_id = ? AND user_id = ?
	`, electionID, userID))
}

func (s *SQLStore) ListEligibleVotersByElection(ctx context.Context, electionID string) ([]models.EligibleVoter, error) {
	rows, err := s.query(ctx, s.db, `
		SELECT id, election_id, user_id FROM eligible_voters WHERE election_id = ? ORDER BY seq
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("list eligible voters: %w", err)
	}
	return collect(rows, scanEligibleVoter)
}

func (s *SQLStore) ListEligibleElectionIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.query(ctx, s.db, `
		SELECT election_id FROM eligible_voters WHERE user_id = ? ORDER BY seq
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list eligible elections: %w", err)
	}
	return collect(rows, func(row rowScanner) (string, error) {
		var id string
		err := row.Scan(&id)
		return id, err
	})
}

func (s *SQLStore) IsVoterEligible(ctx context.Context, electionID, userID string) (bool, error) {
	return s.exists(ctx, `
		SELECT COUNT(*) FROM eligible_voters WHERE election_id = ? AND user_id = ?
	`, electionID, userID)
}

// exists runs a COUNT(*) query and reports whether it matched any row.
func (s *SQLStore) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var n int64
	if err := s.queryRow(ctx, s.db, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("count query: %w", err)
	}
	return n > 0, nil
}

// Votes

const voteColumns = `id, user_id, contest_id, option_ids, created_at`

func scanVote(row rowScanner) (models.Vote, error) {
	var v models.Vote
	var optionIDs []byte
	var createdAt dbTime
	if err := row.Scan(&v.ID, &v.UserID, &v.ContestID, &optionIDs, &createdAt); err != nil {
		return models.Vote{}, err
	}
	if err := json.Unmarshal(optionIDs, &v.OptionIDs); err != nil {
		return models.Vote{}, fmt.Errorf("decode option ids: %w", err)
	}
	v.CreatedAt = createdAt.Time
	return v, nil
}

// RecordVote writes the vote and its audit entry in one transaction.
func (s *SQLStore) RecordVote(ctx context.Context, v models.Vote, entry models.AuditLog) (models.Vote, error) {
	v.ID = uuid.NewString()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	v.CreatedAt = v.CreatedAt.UTC()
	if v.OptionIDs == nil {
		v.OptionIDs = []string{}
	}
	optionIDs, err := json.Marshal(v.OptionIDs)
	if err != nil {
		return models.Vote{}, fmt.Errorf("encode option ids: %w", err)
	}

	// The audit entry references the vote it records.
	if entry.EntityID == nil {
		entry.EntityID = &v.ID
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := s.exec(ctx, tx, `
			INSERT INTO votes (id, user_id, contest_id, option_ids, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, v.ID, v.UserID, v.ContestID, string(optionIDs), s.timeArg(v.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert vote: %w", mapError(err))
		}
		if _, err := s.appendAuditLog(ctx, tx, entry); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return models.Vote{}, err
	}
	return v, nil
}

func (s *SQLStore) GetVote(ctx context.Context, userID, contestID string) (models.Vote, error) {
	v, err := scanVote(s.queryRow(ctx, s.db, `
		SELECT `+voteColumns+` FROM votes WHERE user_id = ? AND contest_id = ?
	`, userID, contestID))
	if err != nil {
		return models.Vote{}, fmt.Errorf("get vote: %w", mapError(err))
	}
	return v, nil
}

func (s *SQLStore) HasVoted(ctx context.Context, userID, contestID string) (bool, error) {
	return s.exists(ctx, `
		SELECT COUNT(*) FROM votes WHERE user_id = ? AND contest_id = ?
	`, userID, contestID)
}

func (s *SQLStore) ListVotesByContest(ctx context.Context, contestID string) ([]models.Vote, error) {
	rows, err := s.query(ctx, s.db, `
		SELECT `+voteColumns+` FROM votes WHERE contest_id = ? ORDER BY seq
	`, contestID)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	return collect(rows, scanVote)
}

// Audit logs

const auditColumns = `id, user_id, action, entity_type, entity_id, details, created_at`

func scanAuditLog(row rowScanner) (models.AuditLog, error) {
	var l models.AuditLog
	var createdAt dbTime
	if err := row.Scan(&l.ID, &l.UserID, &l.Action, &l.EntityType, &l.EntityID, &l.Details, &createdAt); err != nil {
		return models.AuditLog{}, err
	}
	l.CreatedAt = createdAt.Time
	return l, nil
}

func (s *SQLStore) AppendAuditLog(ctx context.Context, entry models.AuditLog) (models.AuditLog, error) {
	return s.appendAuditLog(ctx, s.db, entry)
}

func (s *SQLStore) appendAuditLog(ctx context.Context, q querier, entry models.AuditLog) (models.AuditLog, error) {
	entry.ID = uuid.NewString()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()

	_, err := s.exec(ctx, q, `
		INSERT INTO audit_logs (id, user_id, action, entity_type, entity_id, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.UserID, entry.Action, entry.EntityType, entry.EntityID, entry.Details, s.timeArg(entry.CreatedAt))
	if err != nil {
		return models.AuditLog{}, fmt.Errorf("insert audit log: %w", mapError(err))
	}
	return entry, nil
}

func (s *SQLStore) ListAuditLogs(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error) {
	var where []string
	var args []any
	if filter.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.EntityType != "" {
		where = append(where, "entity_type = ?")
		args = append(args, filter.EntityType)
	}
	if filter.EntityID != "" {
		where = append(where, "entity_id = ?")
		args = append(args, filter.EntityID)
	}

	query := `SELECT ` + auditColumns + ` FROM audit_logs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY seq DESC`

	rows, err := s.query(ctx, s.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return collect(rows, scanAuditLog)
}
