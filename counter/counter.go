// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package counter keeps the denormalized vote_count columns on ideas and
// comments in step with the vote ledger.
//
// The ledger is the source of truth: for every target,
// vote_count = 1 + Σ(+1 per up row, −1 per down row). ApplyDelta maintains
// that incrementally inside the ledger's transaction; Rebuild restores it
// from scratch.
package counter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/ideaboard/db"
	"github.com/danielhkuo/ideaboard/models"
)

// table maps a target kind to the table holding its counter.
func table(kind models.TargetKind) (string, error) {
	switch kind {
	case models.KindIdea:
		return "idea", nil
	case models.KindComment:
		return "comment", nil
	}
	return "", fmt.Errorf("%w: unknown target kind %q", models.ErrValidation, kind)
}

// ApplyDelta adds delta to the target's counter and returns the new value.
// It must run in the same transaction as the ledger change it mirrors,
// after that change. The single-row UPDATE is what serializes concurrent
// deltas on one target.
func ApplyDelta(ctx context.Context, q db.Querier, kind models.TargetKind, targetID string, delta int) (int, error) {
	tbl, err := table(kind)
	if err != nil {
		return 0, err
	}

	var count int
	err = q.QueryRowContext(ctx, `
		UPDATE `+tbl+`
		SET vote_count = vote_count + $1
		WHERE id = $2
		RETURNING vote_count
	`, delta, targetID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s %w", kind, models.ErrNotFound)
	}
	if err != nil {
		return 0, db.Classify(fmt.Errorf("apply delta to %s: %w", kind, err))
	}
	return count, nil
}

// Current reads a target's counter without changing it.
func Current(ctx context.Context, q db.Querier, kind models.TargetKind, targetID string) (int, error) {
	tbl, err := table(kind)
	if err != nil {
		return 0, err
	}

	var count int
	err = q.QueryRowContext(ctx, `SELECT vote_count FROM `+tbl+` WHERE id = $1`, targetID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s %w", kind, models.ErrNotFound)
	}
	if err != nil {
		return 0, db.Classify(fmt.Errorf("read %s counter: %w", kind, err))
	}
	return count, nil
}

// RebuildReport says how many counters had drifted from the ledger.
type RebuildReport struct {
	IdeasFixed    int
	CommentsFixed int
}

// Rebuild recomputes every idea and comment counter from the ledger and
// rewrites the ones that disagree. Ledger rows whose target no longer
// exists are ignored. Ideas and comments are rebuilt concurrently.
func Rebuild(ctx context.Context, conn *sql.DB) (RebuildReport, error) {
	var report RebuildReport

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := rebuildKind(ctx, conn, models.KindIdea)
		report.IdeasFixed = n
		return err
	})
	g.Go(func() error {
		n, err := rebuildKind(ctx, conn, models.KindComment)
		report.CommentsFixed = n
		return err
	})

	if err := g.Wait(); err != nil {
		return RebuildReport{}, err
	}
	return report, nil
}

func rebuildKind(ctx context.Context, conn *sql.DB, kind models.TargetKind) (int, error) {
	ids, err := drifted(ctx, conn, kind)
	if err != nil {
		return 0, err
	}

	fixed := 0
	for _, id := range ids {
		ok, err := rebuildTarget(ctx, conn, kind, id)
		if err != nil {
			return fixed, err
		}
		if ok {
			fixed++
		}
	}
	return fixed, nil
}

// ledgerSum is the ledger's net vote for the row of tbl in scope.
func ledgerSum(tbl string) string {
	return `COALESCE((
		SELECT SUM(CASE WHEN v.vote_type = 'up' THEN 1 ELSE -1 END)
		FROM vote v
		WHERE v.target_kind = $1 AND v.target_id = ` + tbl + `.id
	), 0)`
}

// drifted lists targets whose counter disagreed with the ledger when the
// scan ran. The list is only a candidate set; rebuildTarget rechecks each.
func drifted(ctx context.Context, conn *sql.DB, kind models.TargetKind) ([]string, error) {
	tbl, err := table(kind)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, `
		SELECT id FROM `+tbl+`
		WHERE vote_count <> $2 + `+ledgerSum(tbl),
		string(kind), models.InitialVoteCount)
	if err != nil {
		return nil, db.Classify(fmt.Errorf("scan %s counters: %w", kind, err))
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s counters: %w", kind, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Classify(fmt.Errorf("scan %s counters: %w", kind, err))
	}
	return ids, nil
}

// rebuildTarget rewrites one counter from the ledger in its own
// transaction. The counter row is locked before the ledger is summed, so
// under read committed the sum sees every vote whose delta has already
// been applied, and votes still in flight apply their delta on top of the
// rebuilt value. It reports whether the counter changed.
func rebuildTarget(ctx context.Context, conn *sql.DB, kind models.TargetKind, targetID string) (bool, error) {
	tbl, err := table(kind)
	if err != nil {
		return false, err
	}

	var changed bool
	err = db.WithTx(ctx, conn, func(tx *sql.Tx) error {
		// No-op write takes the same row lock ApplyDelta needs
		res, err := tx.ExecContext(ctx, `UPDATE `+tbl+` SET vote_count = vote_count WHERE id = $1`, targetID)
		if err != nil {
			return db.Classify(fmt.Errorf("lock %s counter: %w", kind, err))
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("lock %s counter: %w", kind, err)
		} else if n == 0 {
			// Deleted since the scan
			return nil
		}

		res, err = tx.ExecContext(ctx, `
			UPDATE `+tbl+`
			SET vote_count = $2 + `+ledgerSum(tbl)+`
			WHERE id = $3 AND vote_count <> $2 + `+ledgerSum(tbl),
			string(kind), models.InitialVoteCount, targetID)
		if err != nil {
			return db.Classify(fmt.Errorf("rebuild %s counter: %w", kind, err))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rebuild %s counter: %w", kind, err)
		}
		changed = n > 0
		return nil
	})
	return changed, err
}
