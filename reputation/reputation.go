// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package reputation accrues session reputation from up-votes given.
//
// Every distinct (session, target) pair that receives an up-vote from the
// session counts once toward upvotes_given, no matter how often the vote is
// withdrawn, swung, or replayed. Every RewardEvery-th counted up-vote earns
// one reward upvote.
package reputation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/ideaboard/db"
	"github.com/danielhkuo/ideaboard/models"
)

type Tracker struct {
	rewardEvery int
}

func NewTracker(rewardEvery int) *Tracker {
	if rewardEvery < 1 {
		rewardEvery = 1
	}
	return &Tracker{rewardEvery: rewardEvery}
}

// Credit is the effect of one up-vote on its voter's reputation.
type Credit struct {
	Counted             bool // false when the target was already credited
	Rewarded            bool // this credit earned a reward upvote
	UpvotesGiven        int
	RewardUpvotesEarned int
}

// CreditUpvote counts an accepted up-vote toward the voter's reputation.
// Call it in the ledger transaction for Accepted and Changed outcomes whose
// new vote type is up.
func (t *Tracker) CreditUpvote(ctx context.Context, q db.Querier, sessionID, targetID string, kind models.TargetKind, at time.Time) (Credit, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO upvote_credit (session_id, target_id, target_kind, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
	`, sessionID, targetID, string(kind), db.Millis(at))
	if err != nil {
		return Credit{}, db.Classify(fmt.Errorf("record upvote credit: %w", err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Credit{}, nil
	}

	var c Credit
	err = q.QueryRowContext(ctx, `
		UPDATE session
		SET upvotes_given = upvotes_given + 1,
		    reward_upvotes_earned = reward_upvotes_earned +
		        CASE WHEN (upvotes_given + 1) % $1 = 0 THEN 1 ELSE 0 END
		WHERE id = $2
		RETURNING upvotes_given, reward_upvotes_earned
	`, t.rewardEvery, sessionID).Scan(&c.UpvotesGiven, &c.RewardUpvotesEarned)
	if errors.Is(err, sql.ErrNoRows) {
		return Credit{}, fmt.Errorf("session %w", models.ErrNotFound)
	}
	if err != nil {
		return Credit{}, db.Classify(fmt.Errorf("credit upvote: %w", err))
	}

	c.Counted = true
	c.Rewarded = c.UpvotesGiven%t.rewardEvery == 0
	return c, nil
}

// MarkSubmitted records that a session has submitted an idea.
func MarkSubmitted(ctx context.Context, q db.Querier, sessionID string) error {
	res, err := q.ExecContext(ctx, `UPDATE session SET has_submitted = TRUE WHERE id = $1`, sessionID)
	if err != nil {
		return db.Classify(fmt.Errorf("mark session submitted: %w", err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %w", models.ErrNotFound)
	}
	return nil
}

// Privileges derives what a session has unlocked.
func Privileges(s models.Session) models.Privileges {
	return models.Privileges{
		CanSkipChallenge: s.HasSubmitted || s.RewardUpvotesEarned >= 1,
	}
}
