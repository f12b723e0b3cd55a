// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON (validated with go-playground/validator tags):

  - SubmitIdeaRequest: title, description, category
  - CastVoteRequest: vote_type
  - CreateCommentRequest: parent_id, display_name, content

# Response Types

  - VoteResponse: outcome, delta, vote_count
  - IdeaResponse: idea, my_vote
  - SessionResponse: session, privileges
  - ThreadResponse: idea_id, comments
  - RebuildResponse: ideas_fixed, comments_fixed
  - ErrorResponse: error, message

# Domain Types

  - Session: anonymous visitor identity and reputation counters
  - Idea: submitted item with a denormalized vote counter
  - Comment: nested comment with an Author variant
  - ThreadComment: comment annotated with its depth in a thread

# Authors

Author is a closed variant with two cases:

	author, err := models.NewAnonymousAuthor(sessionID, "Sam")
	author, err := models.NewRegisteredAuthor(userID)

A comment carries exactly one of them.

# Constants

Target kinds:

	KindIdea    = "idea"
	KindComment = "comment"

Vote types:

	VoteUp   = "up"
	VoteDown = "down"

Outcomes:

	OutcomeAccepted, OutcomeUnchanged, OutcomeChanged, OutcomeWithdrawn

# Errors

ErrValidation, ErrNotFound, ErrConflict, ErrRateLimited and
ErrStorageUnavailable are the error kinds every package wraps.
*/
package models
