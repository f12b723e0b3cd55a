// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/ideaboard/cliparse"
	"github.com/danielhkuo/ideaboard/counter"
	"github.com/danielhkuo/ideaboard/db"
	"github.com/danielhkuo/ideaboard/metrics"
	"github.com/danielhkuo/ideaboard/models"
	"github.com/danielhkuo/ideaboard/reputation"
)

// maxAttempts bounds retries of a vote unit that lost a race
const maxAttempts = 3

// Invalidator drops cached session state. *identity.Resolver satisfies it.
type Invalidator interface {
	Invalidate(ctx context.Context, sessionID string)
}

// VoteRequest is one voter's intent on one target
type VoteRequest struct {
	SessionID  string
	Address    string // hashed network address, may be empty
	TargetID   string
	TargetKind models.TargetKind
	VoteType   models.VoteType
}

func (r VoteRequest) validate() error {
	if r.SessionID == "" {
		return fmt.Errorf("%w: session is required", models.ErrValidation)
	}
	if r.TargetID == "" {
		return fmt.Errorf("%w: target is required", models.ErrValidation)
	}
	if !r.TargetKind.Valid() {
		return fmt.Errorf("%w: unknown target kind %q", models.ErrValidation, r.TargetKind)
	}
	if !r.VoteType.Valid() {
		return fmt.Errorf("%w: vote type must be up or down", models.ErrValidation)
	}
	return nil
}

// VoteResult is the committed effect of a ledger operation
type VoteResult struct {
	Outcome   models.Outcome
	Delta     int
	VoteCount int
	Credit    reputation.Credit
}

type Ledger struct {
	db             *sql.DB
	tracker        *reputation.Tracker
	sessions       Invalidator
	metrics        *metrics.Metrics
	abuseThreshold int
	abuseWindow    time.Duration

	now func() time.Time
}

// New builds a ledger. sessions and m may be nil.
func New(conn *sql.DB, cfg cliparse.Config, sessions Invalidator, m *metrics.Metrics) *Ledger {
	return &Ledger{
		db:             conn,
		tracker:        reputation.NewTracker(cfg.RewardEvery),
		sessions:       sessions,
		metrics:        m,
		abuseThreshold: cfg.AbuseThreshold,
		abuseWindow:    cfg.AbuseWindow,
		now:            time.Now,
	}
}

// SetClock replaces the time source. Tests only.
func (l *Ledger) SetClock(now func() time.Time) {
	l.now = now
}

// CastVote records req in the ledger and applies its counter delta and
// reputation credit in one transaction.
func (l *Ledger) CastVote(ctx context.Context, req VoteRequest) (VoteResult, error) {
	if err := req.validate(); err != nil {
		return VoteResult{}, err
	}

	var res VoteResult
	err := l.retry(ctx, func() error {
		var err error
		res, err = l.castOnce(ctx, req)
		return err
	})
	if err != nil {
		l.reject(req.TargetKind, err)
		return VoteResult{}, err
	}

	l.committed(ctx, req.SessionID, req.TargetID, req.TargetKind, res)
	return res, nil
}

func (l *Ledger) castOnce(ctx context.Context, req VoteRequest) (VoteResult, error) {
	var res VoteResult
	err := db.WithTx(ctx, l.db, func(tx *sql.Tx) error {
		if err := requireSession(ctx, tx, req.SessionID); err != nil {
			return err
		}

		current, err := counter.Current(ctx, tx, req.TargetKind, req.TargetID)
		if err != nil {
			return err
		}

		existing, found, err := lookup(ctx, tx, req.SessionID, req.TargetID, req.TargetKind)
		if err != nil {
			return err
		}

		now := l.now()
		switch {
		case !found:
			if err := l.checkAddress(ctx, tx, req, now); err != nil {
				return err
			}
			if err := insertVote(ctx, tx, req, now); err != nil {
				return err
			}
			res.Outcome = models.OutcomeAccepted
			res.Delta = req.VoteType.Weight()

		case existing == req.VoteType:
			res.Outcome = models.OutcomeUnchanged
			res.VoteCount = current
			return nil

		default:
			if err := swingVote(ctx, tx, req, existing, now); err != nil {
				return err
			}
			res.Outcome = models.OutcomeChanged
			res.Delta = 2 * req.VoteType.Weight()
		}

		res.VoteCount, err = counter.ApplyDelta(ctx, tx, req.TargetKind, req.TargetID, res.Delta)
		if err != nil {
			return err
		}

		if req.VoteType == models.VoteUp {
			res.Credit, err = l.tracker.CreditUpvote(ctx, tx, req.SessionID, req.TargetID, req.TargetKind, now)
			if err != nil {
				return err
			}
		}
		return nil
	})
	return res, err
}

// Unvote withdraws the session's vote on a target. A missing vote is not an
// error.
func (l *Ledger) Unvote(ctx context.Context, sessionID, targetID string, kind models.TargetKind) (VoteResult, error) {
	if sessionID == "" || targetID == "" {
		return VoteResult{}, fmt.Errorf("%w: session and target are required", models.ErrValidation)
	}
	if !kind.Valid() {
		return VoteResult{}, fmt.Errorf("%w: unknown target kind %q", models.ErrValidation, kind)
	}

	var res VoteResult
	err := l.retry(ctx, func() error {
		res = VoteResult{}
		return db.WithTx(ctx, l.db, func(tx *sql.Tx) error {
			if err := requireSession(ctx, tx, sessionID); err != nil {
				return err
			}

			current, err := counter.Current(ctx, tx, kind, targetID)
			if err != nil {
				return err
			}

			var old string
			err = tx.QueryRowContext(ctx, `
				DELETE FROM vote
				WHERE session_id = $1 AND target_id = $2 AND target_kind = $3
				RETURNING vote_type
			`, sessionID, targetID, string(kind)).Scan(&old)
			if errors.Is(err, sql.ErrNoRows) {
				res.Outcome = models.OutcomeUnchanged
				res.VoteCount = current
				return nil
			}
			if err != nil {
				return db.Classify(fmt.Errorf("delete vote: %w", err))
			}

			res.Outcome = models.OutcomeWithdrawn
			res.Delta = -models.VoteType(old).Weight()
			res.VoteCount, err = counter.ApplyDelta(ctx, tx, kind, targetID, res.Delta)
			return err
		})
	})
	if err != nil {
		l.reject(kind, err)
		return VoteResult{}, err
	}

	l.committed(ctx, sessionID, targetID, kind, res)
	return res, nil
}

// Lookup returns the session's current vote on a target, if any.
func (l *Ledger) Lookup(ctx context.Context, sessionID, targetID string, kind models.TargetKind) (models.VoteType, bool, error) {
	return lookup(ctx, l.db, sessionID, targetID, kind)
}

// requireSession rejects votes from tokens that never became a session.
func requireSession(ctx context.Context, q db.Querier, sessionID string) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM session WHERE id = $1`, sessionID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("session %w", models.ErrNotFound)
	}
	if err != nil {
		return db.Classify(fmt.Errorf("check session: %w", err))
	}
	return nil
}

func lookup(ctx context.Context, q db.Querier, sessionID, targetID string, kind models.TargetKind) (models.VoteType, bool, error) {
	var vt string
	err := q.QueryRowContext(ctx, `
		SELECT vote_type FROM vote
		WHERE session_id = $1 AND target_id = $2 AND target_kind = $3
	`, sessionID, targetID, string(kind)).Scan(&vt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, db.Classify(fmt.Errorf("lookup vote: %w", err))
	}
	return models.VoteType(vt), true, nil
}

func insertVote(ctx context.Context, tx *sql.Tx, req VoteRequest, now time.Time) error {
	ms := db.Millis(now)
	res, err := tx.ExecContext(ctx, `
		INSERT INTO vote (session_id, target_id, target_kind, vote_type, voter_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT DO NOTHING
	`, req.SessionID, req.TargetID, string(req.TargetKind), string(req.VoteType), req.Address, ms, ms)
	if err != nil {
		return db.Classify(fmt.Errorf("insert vote: %w", err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("vote inserted concurrently: %w", models.ErrConflict)
	}
	return nil
}

func swingVote(ctx context.Context, tx *sql.Tx, req VoteRequest, old models.VoteType, now time.Time) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE vote SET vote_type = $1, updated_at = $2
		WHERE session_id = $3 AND target_id = $4 AND target_kind = $5 AND vote_type = $6
	`, string(req.VoteType), db.Millis(now), req.SessionID, req.TargetID, string(req.TargetKind), string(old))
	if err != nil {
		return db.Classify(fmt.Errorf("update vote: %w", err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("vote changed concurrently: %w", models.ErrConflict)
	}
	return nil
}

// checkAddress rejects a new vote when its address has voted on too many
// distinct targets under other sessions within the abuse window.
func (l *Ledger) checkAddress(ctx context.Context, tx *sql.Tx, req VoteRequest, now time.Time) error {
	if req.Address == "" || l.abuseThreshold <= 0 {
		return nil
	}

	var recent int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT target_kind || ':' || target_id) FROM vote
		WHERE voter_address = $1 AND session_id <> $2 AND created_at >= $3
	`, req.Address, req.SessionID, db.Millis(now.Add(-l.abuseWindow))).Scan(&recent)
	if err != nil {
		return db.Classify(fmt.Errorf("check voter address: %w", err))
	}

	if recent >= l.abuseThreshold {
		slog.Warn("Vote rejected by address check",
			"session_id", req.SessionID,
			"target_id", req.TargetID,
			"target_kind", req.TargetKind,
			"recent_targets", recent)
		return fmt.Errorf("%w: too many votes from this address", models.ErrRateLimited)
	}
	return nil
}

func (l *Ledger) retry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = op()
		if !errors.Is(err, models.ErrConflict) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if attempt < maxAttempts {
			l.metrics.ConflictRetry()
			slog.Debug("Retrying vote after conflict", "attempt", attempt, "error", err)
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", maxAttempts, err)
}

func (l *Ledger) committed(ctx context.Context, sessionID, targetID string, kind models.TargetKind, res VoteResult) {
	l.metrics.Vote(string(kind), string(res.Outcome))
	if res.Credit.Rewarded {
		l.metrics.Reward()
	}

	// Reputation changed, so the cached session is stale.
	if res.Credit.Counted && l.sessions != nil {
		l.sessions.Invalidate(ctx, sessionID)
	}

	if res.Outcome != models.OutcomeUnchanged {
		slog.Info("Vote recorded",
			"session_id", sessionID,
			"target_id", targetID,
			"target_kind", kind,
			"outcome", res.Outcome,
			"delta", res.Delta,
			"vote_count", res.VoteCount)
	}
}

func (l *Ledger) reject(kind models.TargetKind, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		l.metrics.Rejection(string(kind), "validation")
	case errors.Is(err, models.ErrNotFound):
		l.metrics.Rejection(string(kind), "not_found")
	case errors.Is(err, models.ErrRateLimited):
		l.metrics.Rejection(string(kind), "rate_limited")
	case errors.Is(err, models.ErrConflict):
		l.metrics.Rejection(string(kind), "conflict")
	default:
		l.metrics.Rejection(string(kind), "error")
	}
}
