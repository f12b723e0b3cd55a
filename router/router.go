// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/ideaboard/cliparse"
	"github.com/danielhkuo/ideaboard/handlers"
	"github.com/danielhkuo/ideaboard/ideas"
	"github.com/danielhkuo/ideaboard/identity"
	"github.com/danielhkuo/ideaboard/ledger"
	"github.com/danielhkuo/ideaboard/metrics"
	"github.com/danielhkuo/ideaboard/middleware"
	"github.com/danielhkuo/ideaboard/sessioncache"
)

// NewRouter wires every route. cache and m may be nil.
func NewRouter(db *sql.DB, cfg cliparse.Config, cache sessioncache.Cache, m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()

	resolver := identity.NewResolver(db, cache, cfg)
	resolver.SetMetrics(m)
	votes := ledger.New(db, cfg, resolver, m)
	store := ideas.NewStore(db, resolver)

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(resolver)
	ideaHandler := handlers.NewIdeaHandler(db, cfg, resolver, store, votes)
	voteHandler := handlers.NewVoteHandler(resolver, votes)
	adminHandler := handlers.NewAdminHandler(db, cfg, m)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", m.Handler())

	// Sessions
	mux.HandleFunc("GET /sessions/me", middleware.WithLogging(sessionHandler.GetMe))

	// Ideas and comments
	mux.HandleFunc("POST /ideas", middleware.WithLogging(ideaHandler.SubmitIdea))
	mux.HandleFunc("GET /ideas/{id}", middleware.WithLogging(ideaHandler.GetIdea))
	mux.HandleFunc("GET /ideas/{id}/thread", middleware.WithLogging(ideaHandler.GetThread))
	mux.HandleFunc("POST /ideas/{id}/comments", middleware.WithLogging(ideaHandler.CreateComment))
	mux.HandleFunc("DELETE /comments/{id}", middleware.WithLogging(ideaHandler.DeleteComment))

	// Voting
	mux.HandleFunc("POST /ideas/{id}/votes", middleware.WithLogging(voteHandler.CastIdeaVote))
	mux.HandleFunc("DELETE /ideas/{id}/votes", middleware.WithLogging(voteHandler.UnvoteIdea))
	mux.HandleFunc("POST /comments/{id}/votes", middleware.WithLogging(voteHandler.CastCommentVote))
	mux.HandleFunc("DELETE /comments/{id}/votes", middleware.WithLogging(voteHandler.UnvoteComment))

	// Maintenance
	mux.HandleFunc("POST /admin/rebuild-counters", middleware.WithLogging(adminHandler.RebuildCounters))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ideaboard API v1"))
	})

	return mux
}
