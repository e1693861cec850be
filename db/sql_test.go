// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/blueballot/models"
)

func setupMockPostgres(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewSQLStore(mockDB, DialectPostgres), mock
}

func TestRebind(t *testing.T) {
	pg := NewSQLStore(nil, DialectPostgres)
	lite := NewSQLStore(nil, DialectSQLite)

	q := `SELECT id FROM votes WHERE user_id = ? AND contest_id = ?`
	assert.Equal(t, `SELECT id FROM votes WHERE user_id = $1 AND contest_id = $2`, pg.rebind(q))
	assert.Equal(t, q, lite.rebind(q))
}

func TestPostgresGetUser(t *testing.T) {
	s, mock := setupMockPostgres(t)

	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "name"}).
		AddRow("u1", "alice@example.com", "hash", models.RoleAdmin, nil)
	mock.ExpectQuery(`SELECT id, email, password_hash, role, name FROM users WHERE id = \$1`).
		WithArgs("u1").
		WillReturnRows(rows)

	u, err := s.GetUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Nil(t, u.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetUserNotFound(t *testing.T) {
	s, mock := setupMockPostgres(t)

	mock.ExpectQuery(`SELECT .* FROM users WHERE email = \$1`).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "name"}))

	_, err := s.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresConstraintMapping(t *testing.T) {
	tests := []struct {
		name     string
		code     pq.ErrorCode
		expected error
	}{
		{"unique violation", "23505", ErrConflict},
		{"foreign key violation", "23503", ErrInvalidReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := setupMockPostgres(t)

			mock.ExpectExec(`INSERT INTO users \(id, email, password_hash, role, name\)\s+VALUES \(\$1, \$2, \$3, \$4, \$5\)`).
				WithArgs(sqlmock.AnyArg(), "alice@example.com", "hash", models.RoleVoter, nil).
				WillReturnError(&pq.Error{Code: tt.code, Message: "constraint"})

			_, err := s.CreateUser(context.Background(), models.User{Email: "alice@example.com", PasswordHash: "hash", Role: models.RoleVoter})
			assert.ErrorIs(t, err, tt.expected)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresRecordVoteRollsBack(t *testing.T) {
	s, mock := setupMockPostgres(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO votes`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_logs`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := s.RecordVote(context.Background(),
		models.Vote{UserID: "u1", ContestID: "c1", OptionIDs: []string{"o1"}, CreatedAt: time.Now()},
		models.AuditLog{Action: "vote_cast"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecordVoteCommits(t *testing.T) {
	s, mock := setupMockPostgres(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO votes \(id, user_id, contest_id, option_ids, created_at\)`).
		WithArgs(sqlmock.AnyArg(), "u1", "c1", `["o1","o2"]`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_logs`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	v, err := s.RecordVote(context.Background(),
		models.Vote{UserID: "u1", ContestID: "c1", OptionIDs: []string{"o1", "o2"}},
		models.AuditLog{Action: "vote_cast"})
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBTimeScan(t *testing.T) {
	want := time.Date(2026, 5, 1, 9, 30, 0, 123, time.UTC)

	inputs := []any{
		want,
		want.Format(timeLayout),
		[]byte(want.Format(time.RFC3339Nano)),
	}
	for _, in := range inputs {
		var got dbTime
		require.NoError(t, got.Scan(in))
		assert.True(t, want.Equal(got.Time), "scan %T", in)
	}

	var got dbTime
	assert.Error(t, got.Scan(42))
	assert.Error(t, got.Scan("not a time"))
}
