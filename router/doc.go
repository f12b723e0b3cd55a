// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the idea board API.

# Route Registration

NewRouter builds the services and returns a configured http.ServeMux:

	mux := router.NewRouter(db, cfg, cache, metrics)

A nil cache disables session caching; nil metrics makes /metrics answer 404.

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Sessions:

	GET /sessions/me - Current session and privileges

Ideas and comments:

	POST   /ideas                - Submit idea
	GET    /ideas/{id}           - Idea and the caller's vote
	GET    /ideas/{id}/thread    - Nested comment thread
	POST   /ideas/{id}/comments  - Add comment or reply
	DELETE /comments/{id}        - Delete comment (admin)

Voting:

	POST   /ideas/{id}/votes
	DELETE /ideas/{id}/votes
	POST   /comments/{id}/votes
	DELETE /comments/{id}/votes

Maintenance (requires X-Admin-Key):

	POST /admin/rebuild-counters
*/
package router
