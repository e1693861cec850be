// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/danielhkuo/blueballot/middleware"
	"github.com/danielhkuo/blueballot/models"
	"github.com/danielhkuo/blueballot/voting"
)

type VotingHandler struct {
	engine *voting.Engine
}

func NewVotingHandler(engine *voting.Engine) *VotingHandler {
	return &VotingHandler{engine: engine}
}

// CastVote handles POST /votes
// The voter is always the session user, never a body field
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.ContestID = strings.TrimSpace(req.ContestID)
	if req.ContestID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "contestId is required")
		return
	}

	vote, err := h.engine.CastVote(r.Context(), principal(r).UserID, req.ContestID, req.OptionIDs)
	switch {
	case err == nil:
		middleware.JSONResponse(w, http.StatusOK, vote)
	case errors.Is(err, voting.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Contest not found")
	case errors.Is(err, voting.ErrAlreadyVoted):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Already voted in this contest")
	case errors.Is(err, voting.ErrNotEligible):
		middleware.ErrorResponse(w, http.StatusForbidden, "Not eligible to vote in this election")
	case errors.Is(err, voting.ErrInvalidSelection):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		middleware.InternalError(w, "failed to cast vote", err)
	}
}

// GetMyVote handles GET /contests/{id}/my-vote
func (h *VotingHandler) GetMyVote(w http.ResponseWriter, r *http.Request) {
	vote, err := h.engine.GetVote(r.Context(), principal(r).UserID, r.PathValue("id"))
	if errors.Is(err, voting.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "No vote in this contest")
		return
	}
	if err != nil {
		middleware.InternalError(w, "failed to load vote", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, vote)
}
