// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/ideaboard/identity"
	"github.com/danielhkuo/ideaboard/middleware"
	"github.com/danielhkuo/ideaboard/models"
	"github.com/danielhkuo/ideaboard/reputation"
)

type SessionHandler struct {
	resolver *identity.Resolver
}

func NewSessionHandler(resolver *identity.Resolver) *SessionHandler {
	return &SessionHandler{resolver: resolver}
}

// GetMe handles GET /sessions/me
func (h *SessionHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	id, err := h.resolver.Resolve(w, r)
	if err != nil {
		middleware.WriteError(w, err, "resolve session")
		return
	}

	session, err := h.resolver.GetSession(r.Context(), id.SessionID)
	if err != nil {
		middleware.WriteError(w, err, "load session")
		return
	}

	status := http.StatusOK
	if id.IsNew {
		status = http.StatusCreated
	}

	middleware.JSONResponse(w, status, models.SessionResponse{
		Session:    session,
		Privileges: reputation.Privileges(session),
	})
}
