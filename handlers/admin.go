// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/ideaboard/auth"
	"github.com/danielhkuo/ideaboard/cliparse"
	"github.com/danielhkuo/ideaboard/counter"
	"github.com/danielhkuo/ideaboard/metrics"
	"github.com/danielhkuo/ideaboard/middleware"
	"github.com/danielhkuo/ideaboard/models"
)

type AdminHandler struct {
	db      *sql.DB
	cfg     cliparse.Config
	metrics *metrics.Metrics
}

func NewAdminHandler(db *sql.DB, cfg cliparse.Config, m *metrics.Metrics) *AdminHandler {
	return &AdminHandler{db: db, cfg: cfg, metrics: m}
}

// RebuildCounters handles POST /admin/rebuild-counters
func (h *AdminHandler) RebuildCounters(w http.ResponseWriter, r *http.Request) {
	if err := auth.CheckAdminKey(r.Header.Get("X-Admin-Key"), h.cfg.AdminKey); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	report, err := counter.Rebuild(r.Context(), h.db)
	if err != nil {
		middleware.WriteError(w, err, "rebuild counters")
		return
	}

	h.metrics.CountersFixed(string(models.KindIdea), report.IdeasFixed)
	h.metrics.CountersFixed(string(models.KindComment), report.CommentsFixed)
	slog.Info("counters rebuilt", "ideas_fixed", report.IdeasFixed, "comments_fixed", report.CommentsFixed)

	middleware.JSONResponse(w, http.StatusOK, models.RebuildResponse{
		IdeasFixed:    report.IdeasFixed,
		CommentsFixed: report.CommentsFixed,
	})
}
