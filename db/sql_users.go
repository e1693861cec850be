// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/danielhkuo/blueballot/models"
)

const userColumns = `id, email, password_hash, role, name`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Name)
	return u, err
}

// CreateUser inserts a user. Duplicate emails fail with ErrConflict.
func (s *SQLStore) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	u.ID = uuid.NewString()
	_, err := s.exec(ctx, s.db, `
		INSERT INTO users (id, email, password_hash, role, name)
		VALUES (?, ?, ?, ?, ?)
	`, u.ID, u.Email, u.PasswordHash, u.Role, u.Name)
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", mapError(err))
	}
	return u, nil
}

func (s *SQLStore) GetUser(ctx context.Context, id string) (models.User, error) {
	u, err := scanUser(s.queryRow(ctx, s.db, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", mapError(err))
	}
	return u, nil
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(s.queryRow(ctx, s.db, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		return models.User{}, fmt.Errorf("get user by email: %w", mapError(err))
	}
	return u, nil
}

func (s *SQLStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.query(ctx, s.db, `SELECT `+userColumns+` FROM users ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return collect(rows, scanUser)
}

// collect drains rows with scan and closes them.
func collect[T any](rows *sql.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
