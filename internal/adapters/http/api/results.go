// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ResultsDependencies defines the interface for daily result lookups.
type ResultsDependencies interface {
	Results(ctx context.Context, day time.Time) ([]Result, error)
}

// ResultsHandler handles daily result requests.
type ResultsHandler struct {
	deps ResultsDependencies
	loc  *time.Location
}

// NewResultsHandler creates a new results handler reading dates in loc.
func NewResultsHandler(deps ResultsDependencies, loc *time.Location) *ResultsHandler {
	return &ResultsHandler{deps: deps, loc: loc}
}

// HandleGetResults handles GET /results/{YYYY-MM-DD} requests.
func (h *ResultsHandler) HandleGetResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	date := strings.TrimPrefix(r.URL.Path, "/results/")
	day, err := time.ParseInLocation(time.DateOnly, date, h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: date must be YYYY-MM-DD", ErrBadRequest))
		return
	}
	results, err := h.deps.Results(r.Context(), day)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
