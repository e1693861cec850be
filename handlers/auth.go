// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/danielhkuo/blueballot/audit"
	"github.com/danielhkuo/blueballot/auth"
	"github.com/danielhkuo/blueballot/bootstrap"
	"github.com/danielhkuo/blueballot/cliparse"
	"github.com/danielhkuo/blueballot/db"
	"github.com/danielhkuo/blueballot/middleware"
	"github.com/danielhkuo/blueballot/models"
)

type AuthHandler struct {
	store  db.Store
	audit  *audit.Logger
	tokens *auth.TokenIssuer
	authn  *middleware.Authenticator
	cfg    cliparse.Config
}

func NewAuthHandler(store db.Store, auditLog *audit.Logger, tokens *auth.TokenIssuer, authn *middleware.Authenticator, cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{store: store, audit: auditLog, tokens: tokens, authn: authn, cfg: cfg}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Password) < bootstrap.MinPasswordLength {
		middleware.ErrorResponse(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	if len(req.Password) > auth.MaxPasswordLength {
		middleware.ErrorResponse(w, http.StatusBadRequest, "password must be at most 72 bytes")
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			req.Name = nil
		} else {
			req.Name = &name
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		middleware.InternalError(w, "failed to hash password", err)
		return
	}

	// Registration always creates voters; admins come from bootstrap
	user, err := h.store.CreateUser(r.Context(), models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleVoter,
		Name:         req.Name,
	})
	if errors.Is(err, db.ErrConflict) {
		middleware.ErrorResponse(w, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		middleware.InternalError(w, "failed to create user", err)
		return
	}

	recordAudit(r.Context(), h.audit, audit.Entry{
		UserID:     user.ID,
		Action:     audit.ActionUserRegistered,
		EntityType: audit.EntityUser,
		EntityID:   user.ID,
	})

	if !h.startSession(w, user) {
		return
	}
	slog.Info("user registered", "user_id", user.ID)
	middleware.JSONResponse(w, http.StatusCreated, user)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := h.store.GetUserByEmail(r.Context(), email)
	if errors.Is(err, db.ErrNotFound) {
		_ = auth.RejectUnknownUser(req.Password)
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		middleware.InternalError(w, "failed to load user", err)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		slog.Info("login failed", "user_id", user.ID)
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	recordAudit(r.Context(), h.audit, audit.Entry{
		UserID:     user.ID,
		Action:     audit.ActionUserLogin,
		EntityType: audit.EntityUser,
		EntityID:   user.ID,
		Details:    map[string]string{"ipHash": auth.HashIP(middleware.GetClientIP(r), h.cfg.SessionSecret)},
	})

	if !h.startSession(w, user) {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, user)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if user, err := h.authn.Authenticate(r); err == nil {
		recordAudit(r.Context(), h.audit, audit.Entry{
			UserID:     user.ID,
			Action:     audit.ActionUserLogout,
			EntityType: audit.EntityUser,
			EntityID:   user.ID,
		})
	}

	h.authn.ClearSession(w)
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, user)
}

// startSession issues a token and sets the cookie. The token is also
// returned in the Authorization response header for non-browser clients.
func (h *AuthHandler) startSession(w http.ResponseWriter, user models.User) bool {
	token, expires, err := h.tokens.Issue(user.ID)
	if err != nil {
		middleware.InternalError(w, "failed to issue session token", err)
		return false
	}
	h.authn.SetSession(w, token, expires)
	w.Header().Set("Authorization", "Bearer "+token)
	return true
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", errors.New("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", errors.New("email is invalid")
	}
	return email, nil
}
