// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the idea board API.

# Handler Types

  - SessionHandler: the caller's session and privileges
  - IdeaHandler: ideas, comments, and threads
  - VoteHandler: votes on ideas and comments
  - AdminHandler: maintenance operations

Handlers are created via constructor functions:

	ideaHandler := handlers.NewIdeaHandler(db, cfg, resolver, store, votes)

# Sessions

Every mutating request resolves the caller through the idea_session cookie.
A missing or unknown cookie mints a new session and sets the cookie on the
response. Read-only endpoints never mint sessions.

# Voting

	POST   /ideas/{id}/votes     {"vote_type": "up"}
	DELETE /ideas/{id}/votes
	POST   /comments/{id}/votes  {"vote_type": "down"}
	DELETE /comments/{id}/votes

Responses carry the outcome, the delta applied, and the new counter:

	{"outcome": "changed", "delta": -2, "vote_count": 0}

A first vote answers 201; repeats, swings, and withdrawals answer 200.

# Validation

Request bodies are checked with go-playground/validator struct tags.
Failures answer 400 with the offending JSON field names.

# Admin

DELETE /comments/{id} and POST /admin/rebuild-counters require the
X-Admin-Key header.
*/
package handlers
