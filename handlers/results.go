// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/blueballot/middleware"
	"github.com/danielhkuo/blueballot/voting"
)

type ResultsHandler struct {
	engine *voting.Engine
}

func NewResultsHandler(engine *voting.Engine) *ResultsHandler {
	return &ResultsHandler{engine: engine}
}

// GetResults handles GET /contests/{id}/results
// Tallies are computed on every request; nothing is cached
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	contestID := r.PathValue("id")

	tally, err := h.engine.TallyContest(r.Context(), contestID)
	if errors.Is(err, voting.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Contest not found")
		return
	}
	if err != nil {
		middleware.InternalError(w, "failed to tally contest", err)
		return
	}

	slog.Debug("contest tallied", "contest_id", contestID, "total_votes", tally.TotalVotes)
	middleware.JSONResponse(w, http.StatusOK, tally)
}
