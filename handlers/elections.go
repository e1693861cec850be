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
	"github.com/danielhkuo/blueballot/voting"
)

// ElectionHandler serves elections and the contests and options under them.
type ElectionHandler struct {
	store  db.Store
	audit  *audit.Logger
	engine *voting.Engine
}

func NewElectionHandler(store db.Store, auditLog *audit.Logger, engine *voting.Engine) *ElectionHandler {
	return &ElectionHandler{store: store, audit: auditLog, engine: engine}
}

// ListElections handles GET /elections
// Voters only see the elections they are eligible for
func (h *ElectionHandler) ListElections(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	elections, err := h.store.ListElections(r.Context())
	if err != nil {
		middleware.InternalError(w, "failed to list elections", err)
		return
	}
	if p.IsAdmin() {
		middleware.JSONResponse(w, http.StatusOK, elections)
		return
	}

	ids, err := h.engine.EligibleElections(r.Context(), p.UserID)
	if err != nil {
		middleware.InternalError(w, "failed to list eligible elections", err)
		return
	}
	eligible := make(map[string]bool, len(ids))
	for _, id := range ids {
		eligible[id] = true
	}
	visible := make([]models.Election, 0, len(ids))
	for _, e := range elections {
		if eligible[e.ID] {
			visible = append(visible, e)
		}
	}
	middleware.JSONResponse(w, http.StatusOK, visible)
}

// CreateElection handles POST /elections
func (h *ElectionHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	election := models.Election{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartAt:     req.StartAt.UTC(),
		EndAt:       req.EndAt.UTC(),
		Status:      req.Status,
	}
	if election.Status == "" {
		election.Status = models.StatusDraft
	}
	if err := election.Validate(); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	election, err := h.store.CreateElection(r.Context(), election)
	if err != nil {
		middleware.InternalError(w, "failed to create election", err)
		return
	}

	recordAudit(r.Context(), h.audit, audit.Entry{
		UserID:     principal(r).UserID,
		Action:     audit.ActionElectionCreated,
		EntityType: audit.EntityElection,
		EntityID:   election.ID,
	})
	slog.Info("election created", "election_id", election.ID, "status", election.Status)
	middleware.JSONResponse(w, http.StatusCreated, election)
}

// GetElection handles GET /elections/{id}
func (h *ElectionHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	election, ok := h.loadElection(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, election)
}

// UpdateElection handles PATCH /elections/{id}
func (h *ElectionHandler) UpdateElection(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req models.ElectionUpdate
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	current, err := h.store.GetElection(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		middleware.InternalError(w, "failed to load election", err)
		return
	}
	if err := req.Apply(current).Validate(); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	election, err := h.store.UpdateElection(r.Context(), id, req)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		middleware.InternalError(w, "failed to update election", err)
		return
	}

	recordAudit(r.Context(), h.audit, audit.Entry{
		UserID:     principal(r).UserID,
		Action:     audit.ActionElectionUpdated,
		EntityType: audit.EntityElection,
		EntityID:   election.ID,
	})
	middleware.JSONResponse(w, http.StatusOK, election)
}

// DeleteElection handles DELETE /elections/{id}
// Contests, options, eligibility records and votes go with it
func (h *ElectionHandler) DeleteElection(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	ok, err := h.store.DeleteElection(r.Context(), id)
	if err != nil {
		middleware.InternalError(w, "failed to delete election", err)
		return
	}
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}

	recordAudit(r.Context(), h.audit, audit.Entry{
		UserID:     principal(r).UserID,
		Action:     audit.ActionElectionDeleted,
		EntityType: audit.EntityElection,
		EntityID:   id,
	})
	slog.Info("election deleted", "election_id", id)
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// ListContests handles GET /elections/{id}/contests
func (h *ElectionHandler) ListContests(w http.ResponseWriter, r *http.Request) {
	election, ok := h.loadElection(w, r, r.PathValue("id"))
	if !ok {
		return
	}

	contests, err := h.store.ListContestsByElection(r.Context(), election.ID)
	if err != nil {
		middleware.InternalError(w, "failed to list contests", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, contests)
}

// CreateContest handles POST /elections/{id}/contests
func (h *ElectionHandler) CreateContest(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")

	var req models.CreateContestRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	contest := models.Contest{
		ElectionID:  electionID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Type:        req.Type,
		MaxChoices:  req.MaxChoices,
	}
	if contest.Type == "" {
		contest.Type = models.ContestSingleChoice
	}
	if err := contest.Validate(); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	contest, err := h.store.CreateContest(r.Context(), contest)
	if errors.Is(err, db.ErrInvalidReference) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		middleware.InternalError(w, "failed to create contest", err)
		return
	}

	recordAudit(r.Context(), h.audit, audit.Entry{
		UserID:     principal(r).UserID,
		Action:     audit.ActionContestCreated,
		EntityType: audit.EntityContest,
		EntityID:   contest.ID,
		Details:    map[string]string{"electionId": electionID},
	})
	middleware.JSONResponse(w, http.StatusCreated, contest)
}

// GetContest handles GET /contests/{id}
func (h *ElectionHandler) GetContest(w http.ResponseWriter, r *http.Request) {
	contest, ok := h.loadContest(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, contest)
}

// UpdateContest handles PATCH /contests/{id}
func (h *ElectionHandler) UpdateContest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req models.ContestUpdate
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	current, err := h.store.GetContest(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Contest not found")
		return
	}
	if err != nil {
		middleware.InternalError(w, "failed to load contest", err)
		return
	}
	if err := req.Apply(current).Validate(); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	contest, err := h.store.UpdateContest(r.Context(), id, req)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Contest not found")
		return
	}
	if err != nil {
		middleware.InternalError(w, "failed to update contest", err)
		return
	}

	recordAudit(r.Context(), h.audit, audit.Entry{
		UserID:     principal(r).UserID,
		Action:     audit.ActionContestUpdated,
		EntityType: audit.EntityContest,
		EntityID:   contest.ID,
	})
	middleware.JSONResponse(w, http.StatusOK, contest)
}

// DeleteContest handles DELETE /contests/{id}
func (h *ElectionHandler) DeleteContest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	ok, err := h.store.DeleteContest(r.Context(), id)
	if err != nil {
		middleware.InternalError(w, "failed to delete contest", err)
		return
	}
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Contest not found")
		return
	}

	recordAudit(r.Context(), h.audit, audit.Entry{
		UserID:     principal(r).UserID,
		Action:     audit.ActionContestDeleted,
		EntityType: audit.EntityContest,
		EntityID:   id,
	})
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// ListOptions handles GET /contests/{id}/options
func (h *ElectionHandler) ListOptions(w http.ResponseWriter, r *http.Request) {
	contest, ok := h.loadContest(w, r, r.PathValue("id"))
	if !ok {
		return
	}

	options, err := h.store.ListOptionsByContest(r.Context(), contest.ID)
	if err != nil {
		middleware.InternalError(w, "failed to list options", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, options)
}

// CreateOption handles POST /contests/{id}/options
func (h *ElectionHandler) CreateOption(w http.ResponseWriter, r *http.Request) {
	contestID := r.PathValue("id")

	var req models.CreateOptionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	option := models.Option{
		ContestID:   contestID,
		Label:       strings.TrimSpace(req.Label),
		Description: req.Description,
	}
	if err := option.Validate(); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	option, err := h.store.CreateOption(r.Context(), option)
	if errors.Is(err, db.ErrInvalidReference) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Contest not found")
		return
	}
	if err != nil {
		middleware.InternalError(w, "failed to create option", err)
		return
	}

	recordAudit(r.Context(), h.audit, audit.Entry{
		UserID:     principal(r).UserID,
		Action:     audit.ActionOptionCreated,
		EntityType: audit.EntityOption,
		EntityID:   option.ID,
		Details:    map[string]string{"contestId": contestID},
	})
	middleware.JSONResponse(w, http.StatusCreated, option)
}

// DeleteOption handles DELETE /options/{id}
func (h *ElectionHandler) DeleteOption(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	ok, err := h.store.DeleteOption(r.Context(), id)
	if err != nil {
		middleware.InternalError(w, "failed to delete option", err)
		return
	}
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Option not found")
		return
	}

	recordAudit(r.Context(), h.audit, audit.Entry{
		UserID:     principal(r).UserID,
		Action:     audit.ActionOptionDeleted,
		EntityType: audit.EntityOption,
		EntityID:   id,
	})
	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// loadElection fetches an election the caller may see, writing 404 or 403
// otherwise.
func (h *ElectionHandler) loadElection(w http.ResponseWriter, r *http.Request, id string) (models.Election, bool) {
	election, err := h.store.GetElection(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return models.Election{}, false
	}
	if err != nil {
		middleware.InternalError(w, "failed to load election", err)
		return models.Election{}, false
	}
	if !h.authorize(w, r, election.ID) {
		return models.Election{}, false
	}
	return election, true
}

// loadContest fetches a contest whose election the caller may see.
func (h *ElectionHandler) loadContest(w http.ResponseWriter, r *http.Request, id string) (models.Contest, bool) {
	contest, err := h.store.GetContest(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Contest not found")
		return models.Contest{}, false
	}
	if err != nil {
		middleware.InternalError(w, "failed to load contest", err)
		return models.Contest{}, false
	}
	if !h.authorize(w, r, contest.ElectionID) {
		return models.Contest{}, false
	}
	return contest, true
}

func (h *ElectionHandler) authorize(w http.ResponseWriter, r *http.Request, electionID string) bool {
	ok, err := canView(r.Context(), h.engine, principal(r), electionID)
	if err != nil {
		middleware.InternalError(w, "failed to check eligibility", err)
		return false
	}
	if !ok {
		middleware.ErrorResponse(w, http.StatusForbidden, "Not eligible for this election")
		return false
	}
	return true
}
