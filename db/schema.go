// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Schema is valid for both PostgreSQL and SQLite.
// Times are unix milliseconds.
const Schema = `
-- Anonymous sessions
CREATE TABLE IF NOT EXISTS session (
    id TEXT PRIMARY KEY,
    has_submitted BOOLEAN NOT NULL DEFAULT FALSE,
    upvotes_given INTEGER NOT NULL DEFAULT 0,
    reward_upvotes_earned INTEGER NOT NULL DEFAULT 0,
    created_at BIGINT NOT NULL,
    last_active_at BIGINT NOT NULL,
    active_duration_ms BIGINT NOT NULL DEFAULT 0
);

-- Ideas
CREATE TABLE IF NOT EXISTS idea (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL,
    vote_count INTEGER NOT NULL DEFAULT 1,
    session_id TEXT NOT NULL,
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_idea_session_id ON idea(session_id);

-- Comments. parent_id is a weak reference: replies survive parent deletion.
CREATE TABLE IF NOT EXISTS comment (
    id TEXT PRIMARY KEY,
    idea_id TEXT NOT NULL REFERENCES idea(id) ON DELETE CASCADE,
    parent_id TEXT,
    user_id TEXT,
    session_id TEXT,
    display_name TEXT,
    content TEXT NOT NULL,
    vote_count INTEGER NOT NULL DEFAULT 1,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL,
    CHECK (
        (user_id IS NOT NULL AND session_id IS NULL AND display_name IS NULL) OR
        (user_id IS NULL AND session_id IS NOT NULL AND display_name IS NOT NULL)
    )
);

CREATE INDEX IF NOT EXISTS idx_comment_idea_id ON comment(idea_id);

-- Vote ledger. One row per voter per target.
CREATE TABLE IF NOT EXISTS vote (
    session_id TEXT NOT NULL,
    target_id TEXT NOT NULL,
    target_kind TEXT NOT NULL CHECK (target_kind IN ('idea', 'comment')),
    vote_type TEXT NOT NULL CHECK (vote_type IN ('up', 'down')),
    voter_address TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL,
    PRIMARY KEY (session_id, target_id, target_kind)
);

CREATE INDEX IF NOT EXISTS idx_vote_target ON vote(target_kind, target_id);
CREATE INDEX IF NOT EXISTS idx_vote_address ON vote(voter_address, created_at);

-- Up-vote credits already counted toward session reputation
CREATE TABLE IF NOT EXISTS upvote_credit (
    session_id TEXT NOT NULL,
    target_id TEXT NOT NULL,
    target_kind TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    PRIMARY KEY (session_id, target_id, target_kind)
);
`
