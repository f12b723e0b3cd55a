// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles connections, schema creation, transactions, and driver
error classification.

# Connecting

Open selects lib/pq for PostgreSQL or modernc.org/sqlite for SQLite:

	conn, err := db.Open(ctx, db.TypePostgres, "postgres://...")

SQLite connections are limited to a single open connection so every
transaction is serialized.

# Schema Creation

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same DDL runs on both databases; times are stored as unix milliseconds.

# Tables

  - session: anonymous visitor identity and reputation counters
  - idea: submitted ideas with a denormalized vote_count
  - comment: nested comments with a denormalized vote_count
  - vote: the vote ledger, one row per (session_id, target_id, target_kind)
  - upvote_credit: up-votes already counted toward reputation

# Relationships

	idea 1──* comment
	comment 0..1──* comment (parent_id, weak)
	session 1──* vote
	vote *──1 idea|comment (target_id, weak)

Ledger rows reference their targets by identifier only. Deleting a comment
leaves its votes and replies in place; readers ignore rows whose target is
gone.

# Transactions

	err := db.WithTx(ctx, conn, func(tx *sql.Tx) error {
		...
	})

# Errors

Classify maps driver failures onto the shared error kinds:

  - connection failures → models.ErrStorageUnavailable
  - serialization failures, deadlocks, SQLITE_BUSY → models.ErrConflict
*/
package db
