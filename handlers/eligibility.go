// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/blueballot/audit"
	"github.com/danielhkuo/blueballot/db"
	"github.com/danielhkuo/blueballot/middleware"
	"github.com/danielhkuo/blueballot/models"
)

// EligibilityHandler manages who may vote in an election. Admin only.
type EligibilityHandler struct {
	store db.Store
	audit *audit.Logger
}

func NewEligibilityHandler(store db.Store, auditLog *audit.Logger) *EligibilityHandler {
	return &EligibilityHandler{store: store, audit: auditLog}
}

// ListEligibleVoters handles GET /elections/{id}/eligible-voters
func (h *EligibilityHandler) ListEligibleVoters(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	if _, err := h.store.GetElection(r.Context(), electionID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
			return
		}
		middleware.InternalError(w, "failed to load election", err)
		return
	}

	voters, err := h.store.ListEligibleVotersByElection(r.Context(), electionID)
	if err != nil {
		middleware.InternalError(w, "failed to list eligible voters", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, voters)
}

// AddEligibleVoter handles POST /elections/{id}/eligible-voters
func (h *EligibilityHandler) AddEligibleVoter(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	var req models.AddEligibleVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "userId is required")
		return
	}

	// The store reports a missing election or user as an invalid reference,
	// so look the election up first to tell the two apart.
	if _, err := h.store.GetElection(r.Context(), electionID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
			return
		}
		middleware.InternalError(w, "failed to load election", err)
		return
	}

	voter, err := h.store.AddEligibleVoter(r.Context(), models.EligibleVoter{
		ElectionID: electionID,
		UserID:     req.UserID,
	})
	if errors.Is(err, db.ErrInvalidReference) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "User not found")
		return
	}
	if errors.Is(err, db.ErrConflict) {
		middleware.ErrorResponse(w, http.StatusConflict, "User is already eligible for this election")
		return
	}
	if err != nil {
		middleware.InternalError(w, "failed to add eligible voter", err)
		return
	}

	recordAudit(r.Context(), h.audit, audit.Entry{
		UserID:     principal(r).UserID,
		Action:     audit.ActionEligibleVoterAdded,
		EntityType: audit.EntityEligibleVoter,
		EntityID:   voter.ID,
		Details:    map[string]string{"electionId": electionID, "userId": req.UserID},
	})
	slog.Info("eligible voter added", "election_id", electionID, "user_id", req.UserID)
	middleware.JSONResponse(w, http.StatusCreated, voter)
}

// RemoveEligibleVoter handles DELETE /elections/{id}/eligible-voters/{userId}
// Votes already cast stay counted
func (h *EligibilityHandler) RemoveEligibleVoter(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	userID := r.PathValue("userId")

	ok, err := h.store.RemoveEligibleVoter(r.Context(), electionID, userID)
	if err != nil {
		middleware.InternalError(w, "failed to remove eligible voter", err)
		return
	}
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Eligible voter not found")
		return
	}

	recordAudit(r.Context(), h.audit, audit.Entry{
		UserID:     principal(r).UserID,
		Action:     audit.ActionEligibleVoterRemoved,
		EntityType: audit.EntityEligibleVoter,
		EntityID:   userID,
		Details:    map[string]string{"electionId": electionID, "userId": userID},
	})
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}
