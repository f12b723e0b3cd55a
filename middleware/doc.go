// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status,
duration_ms).

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Credentials are allowed so browsers send the session cookie.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Errors

WriteError maps the models error kinds to status codes:

	ErrValidation          400
	ErrNotFound            404
	ErrConflict            409
	ErrRateLimited         429
	ErrStorageUnavailable  503
	anything else          500

# Client IP Extraction

	ip := middleware.GetClientIP(r)

The result is hashed before it is stored.
*/
package middleware
