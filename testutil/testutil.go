// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/blueballot/auth"
	"github.com/danielhkuo/blueballot/cliparse"
	"github.com/danielhkuo/blueballot/db"
	"github.com/danielhkuo/blueballot/models"
)

// TestPassword is the password of every user created by CreateTestUser
const TestPassword = "test-password"

// SetupTestStore opens a fresh in-memory SQLite store with the full schema.
// It is closed when the test ends.
func SetupTestStore(t *testing.T) *db.SQLStore {
	t.Helper()

	store, err := db.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseType:  db.BackendSQLite,
		DatabaseURL:   ":memory:",
		SessionSecret: "test-session-secret",
		SessionTTL:    time.Hour,
		AdminEmail:    "admin@blueballot.com",
		AdminPassword: "test-admin-password",
		LogFormat:     "text",
	}
}

// CreateTestUser inserts a user with TestPassword.
// role should be models.RoleAdmin or models.RoleVoter
func CreateTestUser(t *testing.T, store db.Store, email, role string) models.User {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	u, err := store.CreateUser(context.Background(), models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return u
}

// AuthHeader returns an Authorization header carrying a session for userID
func AuthHeader(t *testing.T, cfg cliparse.Config, userID string) map[string]string {
	t.Helper()

	token, _, err := auth.NewTokenIssuer(cfg.SessionSecret, cfg.SessionTTL).Issue(userID)
	if err != nil {
		t.Fatalf("Failed to issue session token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// CreateTestElection creates an election running from now for a day
// status should be one of the models.Status* values
func CreateTestElection(t *testing.T, store db.Store, status string) models.Election {
	t.Helper()

	now := time.Now().UTC()
	e, err := store.CreateElection(context.Background(), models.Election{
		Title:   "Test Election",
		StartAt: now,
		EndAt:   now.Add(24 * time.Hour),
		Status:  status,
	})
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}
	return e
}

// CreateTestContest adds a contest to an election. maxChoices is ignored
// for single-choice contests when zero.
func CreateTestContest(t *testing.T, store db.Store, electionID, contestType string, maxChoices int) models.Contest {
	t.Helper()

	c := models.Contest{ElectionID: electionID, Title: "Test Contest", Type: contestType}
	if maxChoices > 0 {
		c.MaxChoices = &maxChoices
	}
	c, err := store.CreateContest(context.Background(), c)
	if err != nil {
		t.Fatalf("Failed to create test contest: %v", err)
	}
	return c
}

// AddTestOption adds an option to a contest and returns it
func AddTestOption(t *testing.T, store db.Store, contestID, label string) models.Option {
	t.Helper()

	o, err := store.CreateOption(context.Background(), models.Option{ContestID: contestID, Label: label})
	if err != nil {
		t.Fatalf("Failed to create test option: %v", err)
	}
	return o
}

// MakeEligible lets userID vote in electionID
func MakeEligible(t *testing.T, store db.Store, electionID, userID string) {
	t.Helper()

	if _, err := store.AddEligibleVoter(context.Background(), models.EligibleVoter{
		ElectionID: electionID,
		UserID:     userID,
	}); err != nil {
		t.Fatalf("Failed to add eligible voter: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
