package handler

import (
	"context"
	"net/http"
	"time"

	"fintra/internal/db"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type HealthHandler struct {
	DB      *gorm.DB
	Timeout time.Duration
	Log     logrus.FieldLogger
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := r.Context(), context.CancelFunc(func() {})
	if h.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
	}
	defer cancel()

	if err := db.Ping(ctx, h.DB); err != nil {
		h.Log.WithError(err).Warn("health check failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"status":  "error",
			"message": "Database unavailable",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": "Database connected",
	})
}
