// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/blueballot/models"
)

// Elections

const electionColumns = `id, title, description, start_at, end_at, status, created_at`

func scanElection(row rowScanner) (models.Election, error) {
	var e models.Election
	var startAt, endAt, createdAt dbTime
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &startAt, &endAt, &e.Status, &createdAt); err != nil {
		return models.Election{}, err
	}
	e.StartAt, e.EndAt, e.CreatedAt = startAt.Time, endAt.Time, createdAt.Time
	return e, nil
}

func (s *SQLStore) CreateElection(ctx context.Context, e models.Election) (models.Election, error) {
	e.ID = uuid.NewString()
	if e.Status == "" {
		e.Status = models.StatusDraft
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.StartAt, e.EndAt, e.CreatedAt = e.StartAt.UTC(), e.EndAt.UTC(), e.CreatedAt.UTC()

	_, err := s.exec(ctx, s.db, `
		INSERT INTO elections (id, title, description, start_at, end_at, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Title, e.Description, s.timeArg(e.StartAt), s.timeArg(e.EndAt), e.Status, s.timeArg(e.CreatedAt))
	if err != nil {
		return models.Election{}, fmt.Errorf("insert election: %w", mapError(err))
	}
	return e, nil
}

func (s *SQLStore) GetElection(ctx context.Context, id string) (models.Election, error) {
	return s.getElection(ctx, s.db, id)
}

func (s *SQLStore) getElection(ctx context.Context, q querier, id string) (models.Election, error) {
	e, err := scanElection(s.queryRow(ctx, q, `SELECT `+electionColumns+` FROM elections WHERE id = ?`, id))
	if err != nil {
		return models.Election{}, fmt.Errorf("get election: %w", mapError(err))
	}
	return e, nil
}

func (s *SQLStore) ListElections(ctx context.Context) ([]models.Election, error) {
	rows, err := s.query(ctx, s.db, `SELECT `+electionColumns+` FROM elections ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list elections: %w", err)
	}
	return collect(rows, scanElection)
}

func (s *SQLStore) UpdateElection(ctx context.Context, id string, u models.ElectionUpdate) (models.Election, error) {
	var updated models.Election
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := s.getElection(ctx, tx, id)
		if err != nil {
			return err
		}
		updated = u.Apply(current)
		_, err = s.exec(ctx, tx, `
			UPDATE elections
			SET title = ?, description = ?, start_at = ?, end_at = ?, status = ?
			WHERE id = ?
		`, updated.Title, updated.Description, s.timeArg(updated.StartAt), s.timeArg(updated.EndAt), updated.Status, id)
		if err != nil {
			return fmt.Errorf("update election: %w", mapError(err))
		}
		return nil
	})
	if err != nil {
		return models.Election{}, err
	}
	updated.StartAt, updated.EndAt = updated.StartAt.UTC(), updated.EndAt.UTC()
	return updated, nil
}

// DeleteElection removes the election; contests, options, votes and
// eligibility records go with it through ON DELETE CASCADE.
func (s *SQLStore) DeleteElection(ctx context.Context, id string) (bool, error) {
	return deleted(s.exec(ctx, s.db, `DELETE FROM elections WHERE id = ?`, id))
}

// Contests

const contestColumns = `id, election_id, title, description, type, max_choices`

func scanContest(row rowScanner) (models.Contest, error) {
	var c models.Contest
	err := row.Scan(&c.ID, &c.ElectionID, &c.Title, &c.Description, &c.Type, &c.MaxChoices)
	return c, err
}

func (s *SQLStore) CreateContest(ctx context.Context, c models.Contest) (models.Contest, error) {
	c.ID = uuid.NewString()
	if c.Type == "" {
		c.Type = models.ContestSingleChoice
	}
	_, err := s.exec(ctx, s.db, `
		INSERT INTO contests (id, election_id, title, description, type, max_choices)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.ID, c.ElectionID, c.Title, c.Description, c.Type, c.MaxChoices)
	if err != nil {
		return models.Contest{}, fmt.Errorf("insert contest: %w", mapError(err))
	}
	return c, nil
}

func (s *SQLStore) GetContest(ctx context.Context, id string) (models.Contest, error) {
	return s.getContest(ctx, s.db, id)
}

func (s *SQLStore) getContest(ctx context.Context, q querier, id string) (models.Contest, error) {
	c, err := scanContest(s.queryRow(ctx, q, `SELECT `+contestColumns+` FROM contests WHERE id = ?`, id))
	if err != nil {
		return models.Contest{}, fmt.Errorf("get contest: %w", mapError(err))
	}
	return c, nil
}

func (s *SQLStore) ListContestsByElection(ctx context.Context, electionID string) ([]models.Contest, error) {
	rows, err := s.query(ctx, s.db, `
		SELECT `+contestColumns+` FROM contests WHERE election_id = ? ORDER BY seq
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("list contests: %w", err)
	}
	return collect(rows, scanContest)
}

func (s *SQLStore) UpdateContest(ctx context.Context, id string, u models.ContestUpdate) (models.Contest, error) {
	var updated models.Contest
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := s.getContest(ctx, tx, id)
		if err != nil {
			return err
		}
		updated = u.Apply(current)
		_, err = s.exec(ctx, tx, `
			UPDATE contests
			SET title = ?, description = ?, type = ?, max_choices = ?
			WHERE id = ?
		`, updated.Title, updated.Description, updated.Type, updated.MaxChoices, id)
		if err != nil {
			return fmt.Errorf("update contest: %w", mapError(err))
		}
		return nil
	})
	if err != nil {
		return models.Contest{}, err
	}
	return updated, nil
}

func (s *SQLStore) DeleteContest(ctx context.Context, id string) (bool, error) {
	return deleted(s.exec(ctx, s.db, `DELETE FROM contests WHERE id = ?`, id))
}

// Options

const optionColumns = `id, contest_id, label, description`

func scanOption(row rowScanner) (models.Option, error) {
	var o models.Option
	err := row.Scan(&o.ID, &o.ContestID, &o.Label, &o.Description)
	return o, err
}

func (s *SQLStore) CreateOption(ctx context.Context, o models.Option) (models.Option, error) {
	o.ID = uuid.NewString()
	_, err := s.exec(ctx, s.db, `
		INSERT INTO options (id, contest_id, label, description)
		VALUES (?, ?, ?, ?)
	`, o.ID, o.ContestID, o.Label, o.Description)
	if err != nil {
		return models.Option{}, fmt.Errorf("insert option: %w", mapError(err))
	}
	return o, nil
}

func (s *SQLStore) GetOption(ctx context.Context, id string) (models.Option, error) {
	o, err := scanOption(s.queryRow(ctx, s.db, `SELECT `+optionColumns+` FROM options WHERE id = ?`, id))
	if err != nil {
		return models.Option{}, fmt.Errorf("get option: %w", mapError(err))
	}
	return o, nil
}

func (s *SQLStore) ListOptionsByContest(ctx context.Context, contestID string) ([]models.Option, error) {
	rows, err := s.query(ctx, s.db, `
		SELECT `+optionColumns+` FROM options WHERE contest_id = ? ORDER BY seq
	`, contestID)
	if err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	return collect(rows, scanOption)
}

func (s *SQLStore) DeleteOption(ctx context.Context, id string) (bool, error) {
	return deleted(s.exec(ctx, s.db, `DELETE FROM options WHERE id = ?`, id))
}
