// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/blueballot/audit"
	"github.com/danielhkuo/blueballot/db"
	"github.com/danielhkuo/blueballot/middleware"
	"github.com/danielhkuo/blueballot/models"
)

type AdminHandler struct {
	store db.Store
	audit *audit.Logger
}

func NewAdminHandler(store db.Store, auditLog *audit.Logger) *AdminHandler {
	return &AdminHandler{store: store, audit: auditLog}
}

// ListUsers handles GET /users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		middleware.InternalError(w, "failed to list users", err)
		return
	}
	// PasswordHash is never serialized
	middleware.JSONResponse(w, http.StatusOK, users)
}

// ListAuditLogs handles GET /audit-logs?userId=&entityType=&entityId=
func (h *AdminHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	logs, err := h.audit.Query(r.Context(), models.AuditFilter{
		UserID:     q.Get("userId"),
		EntityType: q.Get("entityType"),
		EntityID:   q.Get("entityId"),
	})
	if err != nil {
		middleware.InternalError(w, "failed to query audit logs", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, logs)
}
