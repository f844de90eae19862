package handlers

import (
	"net/http"
	"time"
)

var startedAt = time.Now()

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"service":        "designdesk",
		"uptime_seconds": int64(time.Since(startedAt).Seconds()),
	})
}
