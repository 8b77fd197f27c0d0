// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"
)

// PlayerDependencies defines the interface for player lookups.
type PlayerDependencies interface {
	Profile(ctx context.Context, handle string) (Profile, error)
}

// PlayerHandler handles player profile requests.
type PlayerHandler struct {
	deps PlayerDependencies
}

// NewPlayerHandler creates a new player handler.
func NewPlayerHandler(deps PlayerDependencies) *PlayerHandler {
	return &PlayerHandler{deps: deps}
}

// HandleGetPlayer handles GET /players/{handle} requests.
func (h *PlayerHandler) HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	handle := strings.TrimPrefix(r.URL.Path, "/players/")
	if handle == "" || strings.Contains(handle, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	profile, err := h.deps.Profile(r.Context(), handle)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
