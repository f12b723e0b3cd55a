// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the idea board API server.

Visitors submit ideas anonymously, vote on ideas and nested comments, and
earn reward upvotes for voting. Each visitor is an anonymous session held
in a cookie; each session has at most one vote per idea or comment.

# Starting the Server

	DATABASE_TYPE=postgres DATABASE_URL=postgres://... ADDRESS_SALT=... ADMIN_KEY=... go run .

Or with SQLite and flags:

	go run . -t sqlite -d ideaboard.db -address-salt dev -admin-key dev

# Configuration

Required settings:

  - DATABASE_URL (-d): database connection string
  - ADDRESS_SALT (-address-salt): secret for hashing client addresses
  - ADMIN_KEY (-admin-key): key for moderation and maintenance endpoints

Optional settings:

  - PORT (-p): server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - REDIS_URL (-redis): session cache; empty disables it
  - REWARD_EVERY: up-votes per reward upvote (default: 5)
  - IDLE_THRESHOLD: longest gap counted as active time (default: 30m)
  - ABUSE_THRESHOLD, ABUSE_WINDOW: address check (default: 3 in 60s)
  - SESSION_CACHE_TTL: cache entry lifetime (default: 10m)
  - -rebuild-counters: recompute vote counters from the ledger at startup
  - -log-json: structured JSON logs

A .env file in the working directory is loaded first if present.

# Architecture

  - handlers, router, middleware: HTTP surface
  - identity: anonymous sessions
  - ledger: one vote per session per target
  - counter: denormalized vote counters and rebuild
  - reputation: reward upvotes and privileges
  - thread: nested comment threads
  - ideas: idea and comment storage
  - sessioncache: Redis session cache
  - metrics: Prometheus collectors
  - db, models, auth, cliparse: shared plumbing

See package documentation for each component.
*/
package main
