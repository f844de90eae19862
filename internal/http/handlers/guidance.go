package handlers

import (
	"net/http"
	"strconv"
)

// GuidanceSearch exposes the specification store directly. A miss is an
// empty list, never an error.
func (a *App) GuidanceSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "q is required")
		return
	}
	category := r.URL.Query().Get("category")
	k := 5
	if v := r.URL.Query().Get("k"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 20 {
			k = n
		}
	}
	snippets, err := a.Guidance.Search(r.Context(), query, category, k)
	if err != nil {
		a.Logger.Error().Err(err).Str("query", query).Msg("guidance: search failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to search guidance")
		return
	}
	if snippets == nil {
		snippets = []string{}
	}
	a.json(w, http.StatusOK, map[string]any{"snippets": snippets})
}
