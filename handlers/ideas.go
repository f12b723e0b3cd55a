// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/ideaboard/auth"
	"github.com/danielhkuo/ideaboard/cliparse"
	"github.com/danielhkuo/ideaboard/ideas"
	"github.com/danielhkuo/ideaboard/identity"
	"github.com/danielhkuo/ideaboard/ledger"
	"github.com/danielhkuo/ideaboard/middleware"
	"github.com/danielhkuo/ideaboard/models"
	"github.com/danielhkuo/ideaboard/thread"
)

type IdeaHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	resolver *identity.Resolver
	store    *ideas.Store
	votes    *ledger.Ledger
}

func NewIdeaHandler(db *sql.DB, cfg cliparse.Config, resolver *identity.Resolver, store *ideas.Store, votes *ledger.Ledger) *IdeaHandler {
	return &IdeaHandler{db: db, cfg: cfg, resolver: resolver, store: store, votes: votes}
}

// SubmitIdea handles POST /ideas
func (h *IdeaHandler) SubmitIdea(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitIdeaRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := validateRequest(req); err != nil {
		middleware.WriteError(w, err, "submit idea")
		return
	}

	id, err := h.resolver.Resolve(w, r)
	if err != nil {
		middleware.WriteError(w, err, "resolve session")
		return
	}

	idea, err := h.store.SubmitIdea(r.Context(), id.SessionID, models.IdeaPayload{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		middleware.WriteError(w, err, "submit idea")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, idea)
}

// GetIdea handles GET /ideas/{id}
func (h *IdeaHandler) GetIdea(w http.ResponseWriter, r *http.Request) {
	ideaID := r.PathValue("id")

	idea, err := h.store.GetIdea(r.Context(), ideaID)
	if err != nil {
		middleware.WriteError(w, err, "load idea")
		return
	}

	resp := models.IdeaResponse{Idea: idea}

	// Only callers that already hold a session can have voted
	if c, err := r.Cookie(identity.CookieName); err == nil && auth.ValidateSessionToken(c.Value) == nil {
		vt, found, err := h.votes.Lookup(r.Context(), c.Value, ideaID, models.KindIdea)
		if err != nil {
			middleware.WriteError(w, err, "load vote")
			return
		}
		if found {
			resp.MyVote = &vt
		}
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// GetThread handles GET /ideas/{id}/thread
func (h *IdeaHandler) GetThread(w http.ResponseWriter, r *http.Request) {
	ideaID := r.PathValue("id")

	th, err := thread.GetThread(r.Context(), h.db, ideaID)
	if err != nil {
		middleware.WriteError(w, err, "load thread")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ThreadResponse{
		IdeaID:   ideaID,
		Comments: th.Comments(),
	})
}

// CreateComment handles POST /ideas/{id}/comments
func (h *IdeaHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	ideaID := r.PathValue("id")

	var req models.CreateCommentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := validateRequest(req); err != nil {
		middleware.WriteError(w, err, "create comment")
		return
	}

	id, err := h.resolver.Resolve(w, r)
	if err != nil {
		middleware.WriteError(w, err, "resolve session")
		return
	}

	author, err := models.NewAnonymousAuthor(id.SessionID, req.DisplayName)
	if err != nil {
		middleware.WriteError(w, err, "create comment")
		return
	}

	c, err := h.store.CreateComment(r.Context(), ideaID, req.ParentID, author, req.Content)
	if err != nil {
		middleware.WriteError(w, err, "create comment")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, c)
}

// DeleteComment handles DELETE /comments/{id}
func (h *IdeaHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := auth.CheckAdminKey(r.Header.Get("X-Admin-Key"), h.cfg.AdminKey); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	if err := h.store.DeleteComment(r.Context(), r.PathValue("id")); err != nil {
		middleware.WriteError(w, err, "delete comment")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
