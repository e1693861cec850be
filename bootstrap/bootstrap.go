// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package bootstrap creates the initial administrator account.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/danielhkuo/blueballot/audit"
	"github.com/danielhkuo/blueballot/auth"
	"github.com/danielhkuo/blueballot/db"
	"github.com/danielhkuo/blueballot/models"
)

// MinPasswordLength applies to the bootstrap password and to registrations.
const MinPasswordLength = 8

const adminName = "System Administrator"

type Store interface {
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	CreateUser(ctx context.Context, u models.User) (models.User, error)
}

// Admin makes sure an account with email exists. An existing account is
// left untouched, whatever its role or password; otherwise an admin is
// created and an admin_bootstrapped entry is recorded. The returned bool
// reports whether an account was created.
func Admin(ctx context.Context, store Store, auditLog *audit.Logger, email, password string) (models.User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return models.User{}, false, errors.New("admin email is required")
	}
	if password == "" {
		return models.User{}, false, errors.New("admin password is required (use -admin-password or ADMIN_PASSWORD env)")
	}
	if len(password) < MinPasswordLength {
		return models.User{}, false, fmt.Errorf("admin password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > auth.MaxPasswordLength {
		return models.User{}, false, fmt.Errorf("admin password must be at most %d bytes", auth.MaxPasswordLength)
	}

	existing, err := store.GetUserByEmail(ctx, email)
	if err == nil {
		slog.Info("admin user already exists", "email", email)
		return existing, false, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return models.User{}, false, fmt.Errorf("look up admin: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, false, err
	}
	name := adminName
	admin, err := store.CreateUser(ctx, models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Name:         &name,
	})
	if errors.Is(err, db.ErrConflict) {
		// Another instance won the race.
		existing, err := store.GetUserByEmail(ctx, email)
		if err != nil {
			return models.User{}, false, fmt.Errorf("look up admin: %w", err)
		}
		return existing, false, nil
	}
	if err != nil {
		return models.User{}, false, fmt.Errorf("create admin: %w", err)
	}

	if _, err := auditLog.Append(ctx, audit.Entry{
		UserID:     admin.ID,
		Action:     audit.ActionAdminBootstrapped,
		EntityType: audit.EntityUser,
		EntityID:   admin.ID,
	}); err != nil {
		// Non-fatal: the account exists either way
		slog.Warn("failed to audit admin bootstrap", "error", err)
	}

	slog.Info("admin user created", "email", email)
	return admin, true, nil
}
