package api

import (
	"context"
	"net/http"

	"github.com/erazemk/lostfound/internal/matching"
	"github.com/erazemk/lostfound/internal/model"
)

// MatchesHandler exposes the caller's matches and their decisions.
type MatchesHandler struct {
	Engine *matching.Engine
}

type decisionRequest struct {
	Notes string `json:"notes"`
}

// List handles GET /api/matches.
func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	matches, err := h.Engine.ListForUser(r.Context(), GetClaims(r.Context()).UserID)
	if err != nil {
		engineError(w, r, err)
		return
	}
	if matches == nil {
		matches = []model.Match{}
	}
	jsonResponse(w, http.StatusOK, matches)
}

// Get handles GET /api/matches/{id}.
func (h *MatchesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid match id")
		return
	}

	m, err := h.Engine.Get(r.Context(), id, GetClaims(r.Context()).UserID)
	if err != nil {
		engineError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, m)
}

// Confirm handles POST /api/matches/{id}/confirm.
func (h *MatchesHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Engine.Confirm)
}

// Reject handles POST /api/matches/{id}/reject.
func (h *MatchesHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Engine.Reject)
}

type decideFunc func(ctx context.Context, matchID, callerID int64, notes string) (*model.Match, error)

func (h *MatchesHandler) decide(w http.ResponseWriter, r *http.Request, fn decideFunc) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid match id")
		return
	}

	var req decisionRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := fn(r.Context(), id, GetClaims(r.Context()).UserID, req.Notes)
	if err != nil {
		engineError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, m)
}
