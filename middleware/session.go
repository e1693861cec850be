// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/blueballot/auth"
	"github.com/danielhkuo/blueballot/db"
	"github.com/danielhkuo/blueballot/models"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session"

type contextKey int

const userKey contextKey = iota

// UserLoader reloads the session's user on every request.
type UserLoader interface {
	GetUser(ctx context.Context, id string) (models.User, error)
}

// Authenticator resolves the caller from a session token and gates handlers
// on it.
type Authenticator struct {
	tokens *auth.TokenIssuer
	users  UserLoader
	secure bool
}

func NewAuthenticator(tokens *auth.TokenIssuer, users UserLoader, secureCookie bool) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, secure: secureCookie}
}

// TokenFromRequest returns the bearer token, falling back to the session
// cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// Authenticate verifies the request's token and loads its user. A token for
// a deleted user is ErrInvalidToken.
func (a *Authenticator) Authenticate(r *http.Request) (models.User, error) {
	claims, err := a.tokens.Parse(TokenFromRequest(r))
	if err != nil {
		return models.User{}, err
	}
	u, err := a.users.GetUser(r.Context(), claims.UserID)
	if errors.Is(err, db.ErrNotFound) {
		return models.User{}, auth.ErrInvalidToken
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// RequireAuth rejects unauthenticated requests with 401.
func (a *Authenticator) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := a.Authenticate(r)
		if errors.Is(err, auth.ErrInvalidToken) {
			ErrorResponse(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if err != nil {
			InternalError(w, "failed to load session user", err)
			return
		}
		next(w, r.WithContext(WithUser(r.Context(), u)))
	}
}

// RequireAdmin rejects unauthenticated requests with 401 and non-admins
// with 403.
func (a *Authenticator) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return a.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		p, _ := PrincipalFrom(r.Context())
		if !p.IsAdmin() {
			ErrorResponse(w, http.StatusForbidden, "admin access required")
			return
		}
		next(w, r)
	})
}

// SetSession writes the session cookie.
func (a *Authenticator) SetSession(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSession expires the session cookie.
func (a *Authenticator) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func WithUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFrom returns the user RequireAuth attached to ctx.
func UserFrom(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey).(models.User)
	return u, ok
}

// PrincipalFrom returns the authorization context of the caller. The zero
// Principal is returned outside RequireAuth.
func PrincipalFrom(ctx context.Context) (auth.Principal, bool) {
	u, ok := UserFrom(ctx)
	if !ok {
		return auth.Principal{}, false
	}
	return auth.PrincipalFor(u), true
}
