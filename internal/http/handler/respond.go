package handler

import (
	"encoding/json"
	"net/http"

	"fintra/internal/apperr"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status and a client-safe message. Server-side
// failures are logged with the request id; their detail stays in the log.
func writeError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		log.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"path":       r.URL.Path,
			"status":     status,
		}).WithError(err).Error("request failed")
	}
	writeJSON(w, status, map[string]any{"error": apperr.Message(err)})
}
