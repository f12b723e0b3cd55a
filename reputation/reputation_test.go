// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reputation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/danielhkuo/ideaboard/models"
	"github.com/danielhkuo/ideaboard/testutil"
)

func TestCreditUpvote_RewardThreshold(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	ctx := context.Background()

	tracker := NewTracker(5)
	sessionID := testutil.CreateTestSession(t, conn)

	for i := 1; i <= 11; i++ {
		credit, err := tracker.CreditUpvote(ctx, conn, sessionID, fmt.Sprintf("idea-%d", i), models.KindIdea, time.Now())
		if err != nil {
			t.Fatalf("CreditUpvote #%d error = %v", i, err)
		}
		if !credit.Counted {
			t.Fatalf("CreditUpvote #%d was not counted", i)
		}
		if credit.UpvotesGiven != i {
			t.Errorf("After %d credits expected upvotes_given %d, got %d", i, i, credit.UpvotesGiven)
		}

		wantRewards := i / 5
		if credit.RewardUpvotesEarned != wantRewards {
			t.Errorf("After %d credits expected %d rewards, got %d", i, wantRewards, credit.RewardUpvotesEarned)
		}
		if credit.Rewarded != (i%5 == 0) {
			t.Errorf("Credit #%d Rewarded = %v", i, credit.Rewarded)
		}
	}
}

func TestCreditUpvote_Idempotent(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	ctx := context.Background()

	tracker := NewTracker(5)
	sessionID := testutil.CreateTestSession(t, conn)

	first, err := tracker.CreditUpvote(ctx, conn, sessionID, "idea-1", models.KindIdea, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !first.Counted {
		t.Fatal("Expected first credit to count")
	}

	replay, err := tracker.CreditUpvote(ctx, conn, sessionID, "idea-1", models.KindIdea, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if replay.Counted {
		t.Error("Replayed credit should not count")
	}

	// Same id, different kind, is a different target
	other, err := tracker.CreditUpvote(ctx, conn, sessionID, "idea-1", models.KindComment, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !other.Counted || other.UpvotesGiven != 2 {
		t.Errorf("Expected comment credit to count as second upvote, got %+v", other)
	}
}

func TestCreditUpvote_UnknownSession(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	_, err := NewTracker(5).CreditUpvote(context.Background(), conn, "ghost", "idea-1", models.KindIdea, time.Now())
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMarkSubmitted(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	ctx := context.Background()

	sessionID := testutil.CreateTestSession(t, conn)
	if err := MarkSubmitted(ctx, conn, sessionID); err != nil {
		t.Fatal(err)
	}

	var submitted bool
	if err := conn.QueryRow(`SELECT has_submitted FROM session WHERE id = $1`, sessionID).Scan(&submitted); err != nil {
		t.Fatal(err)
	}
	if !submitted {
		t.Error("Expected has_submitted to be set")
	}

	if err := MarkSubmitted(ctx, conn, "ghost"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestPrivileges(t *testing.T) {
	tests := []struct {
		name    string
		session models.Session
		want    bool
	}{
		{"fresh session", models.Session{}, false},
		{"submitted an idea", models.Session{HasSubmitted: true}, true},
		{"earned a reward", models.Session{UpvotesGiven: 5, RewardUpvotesEarned: 1}, true},
		{"upvotes without reward", models.Session{UpvotesGiven: 4}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Privileges(tt.session).CanSkipChallenge; got != tt.want {
				t.Errorf("CanSkipChallenge = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewTracker_ClampsInterval(t *testing.T) {
	if got := NewTracker(0).rewardEvery; got != 1 {
		t.Errorf("Expected interval clamped to 1, got %d", got)
	}
}
