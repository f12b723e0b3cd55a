// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/ideaboard/identity"
	"github.com/danielhkuo/ideaboard/ledger"
	"github.com/danielhkuo/ideaboard/middleware"
	"github.com/danielhkuo/ideaboard/models"
)

type VoteHandler struct {
	resolver *identity.Resolver
	votes    *ledger.Ledger
}

func NewVoteHandler(resolver *identity.Resolver, votes *ledger.Ledger) *VoteHandler {
	return &VoteHandler{resolver: resolver, votes: votes}
}

// CastIdeaVote handles POST /ideas/{id}/votes
func (h *VoteHandler) CastIdeaVote(w http.ResponseWriter, r *http.Request) {
	h.cast(w, r, models.KindIdea)
}

// UnvoteIdea handles DELETE /ideas/{id}/votes
func (h *VoteHandler) UnvoteIdea(w http.ResponseWriter, r *http.Request) {
	h.unvote(w, r, models.KindIdea)
}

// CastCommentVote handles POST /comments/{id}/votes
func (h *VoteHandler) CastCommentVote(w http.ResponseWriter, r *http.Request) {
	h.cast(w, r, models.KindComment)
}

// UnvoteComment handles DELETE /comments/{id}/votes
func (h *VoteHandler) UnvoteComment(w http.ResponseWriter, r *http.Request) {
	h.unvote(w, r, models.KindComment)
}

func (h *VoteHandler) cast(w http.ResponseWriter, r *http.Request, kind models.TargetKind) {
	targetID := r.PathValue("id")
	if targetID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := validateRequest(req); err != nil {
		middleware.WriteError(w, err, "cast vote")
		return
	}

	id, err := h.resolver.Resolve(w, r)
	if err != nil {
		middleware.WriteError(w, err, "resolve session")
		return
	}

	res, err := h.votes.CastVote(r.Context(), ledger.VoteRequest{
		SessionID:  id.SessionID,
		Address:    id.Address,
		TargetID:   targetID,
		TargetKind: kind,
		VoteType:   req.VoteType,
	})
	if err != nil {
		middleware.WriteError(w, err, "cast vote")
		return
	}

	status := http.StatusOK
	if res.Outcome == models.OutcomeAccepted {
		status = http.StatusCreated
	}
	middleware.JSONResponse(w, status, models.VoteResponse{
		Outcome:   res.Outcome,
		Delta:     res.Delta,
		VoteCount: res.VoteCount,
	})
}

func (h *VoteHandler) unvote(w http.ResponseWriter, r *http.Request, kind models.TargetKind) {
	targetID := r.PathValue("id")
	if targetID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	id, err := h.resolver.Resolve(w, r)
	if err != nil {
		middleware.WriteError(w, err, "resolve session")
		return
	}

	res, err := h.votes.Unvote(r.Context(), id.SessionID, targetID, kind)
	if err != nil {
		middleware.WriteError(w, err, "withdraw vote")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoteResponse{
		Outcome:   res.Outcome,
		Delta:     res.Delta,
		VoteCount: res.VoteCount,
	})
}
