// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/blueballot/auth"
	"github.com/danielhkuo/blueballot/db"
	"github.com/danielhkuo/blueballot/models"
)

func newTestAuthenticator(t *testing.T) (*Authenticator, *auth.TokenIssuer, *db.MemStore) {
	t.Helper()
	store := db.NewMemStore()
	tokens := auth.NewTokenIssuer("middleware-test-secret", time.Hour)
	return NewAuthenticator(tokens, store, false), tokens, store
}

func createUser(t *testing.T, store *db.MemStore, email, role string) models.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), models.User{Email: email, PasswordHash: "x", Role: role})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return u
}

func issue(t *testing.T, tokens *auth.TokenIssuer, userID string) string {
	t.Helper()
	token, _, err := tokens.Issue(userID)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return token
}

func TestTokenFromRequest(t *testing.T) {
	testCases := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{"bearer header", "Bearer abc", "", "abc"},
		{"lowercase scheme", "bearer abc", "", "abc"},
		{"cookie", "", "from-cookie", "from-cookie"},
		{"header wins over cookie", "Bearer abc", "from-cookie", "abc"},
		{"basic auth ignored", "Basic dXNlcjpwYXNz", "", ""},
		{"nothing", "", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/auth/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tc.cookie})
			}
			if got := TokenFromRequest(req); got != tc.want {
				t.Errorf("TokenFromRequest() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	a, tokens, store := newTestAuthenticator(t)
	voter := createUser(t, store, "voter@example.com", models.RoleVoter)

	var seen models.User
	handler := a.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("no token", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest("GET", "/auth/me", nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer nope")
		w := httptest.NewRecorder()
		handler(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})

	t.Run("token for unknown user", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, tokens, "ghost"))
		w := httptest.NewRecorder()
		handler(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})

	t.Run("valid cookie", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/auth/me", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: issue(t, tokens, voter.ID)})
		w := httptest.NewRecorder()
		handler(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		if seen.ID != voter.ID {
			t.Errorf("Expected user %s in context, got %s", voter.ID, seen.ID)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	a, tokens, store := newTestAuthenticator(t)
	admin := createUser(t, store, "admin@example.com", models.RoleAdmin)
	voter := createUser(t, store, "voter@example.com", models.RoleVoter)

	handler := a.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		if !ok || !p.IsAdmin() {
			t.Error("Expected admin principal in context")
		}
		w.WriteHeader(http.StatusNoContent)
	})

	testCases := []struct {
		name   string
		token  string
		status int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"voter", issue(t, tokens, voter.ID), http.StatusForbidden},
		{"admin", issue(t, tokens, admin.ID), http.StatusNoContent},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/users", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			w := httptest.NewRecorder()
			handler(w, req)
			if w.Code != tc.status {
				t.Errorf("Expected %d, got %d", tc.status, w.Code)
			}
		})
	}
}

func TestSessionCookie(t *testing.T) {
	a, _, _ := newTestAuthenticator(t)

	w := httptest.NewRecorder()
	a.SetSession(w, "tok", time.Now().Add(time.Hour))
	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("Expected 1 cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != SessionCookieName || c.Value != "tok" || !c.HttpOnly {
		t.Errorf("Unexpected session cookie: %+v", c)
	}

	w = httptest.NewRecorder()
	a.ClearSession(w)
	cookies = w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("Expected an expired cookie, got %+v", cookies)
	}
}

func TestPrincipalFrom_Empty(t *testing.T) {
	p, ok := PrincipalFrom(context.Background())
	if ok || p.IsAdmin() {
		t.Errorf("Expected no principal, got %+v", p)
	}
}
