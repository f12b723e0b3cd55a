// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ideas stores submitted ideas and their comments.
//
// Counters start at models.InitialVoteCount and are never written here
// afterwards. Deleting a comment leaves its replies and its votes in place.
package ideas

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/ideaboard/db"
	"github.com/danielhkuo/ideaboard/models"
	"github.com/danielhkuo/ideaboard/reputation"
	"github.com/danielhkuo/ideaboard/thread"
)

const maxContentLen = 2000

// Invalidator drops cached session state. *identity.Resolver satisfies it.
type Invalidator interface {
	Invalidate(ctx context.Context, sessionID string)
}

type Store struct {
	db       *sql.DB
	sessions Invalidator

	now func() time.Time
}

// NewStore builds a store. sessions may be nil.
func NewStore(conn *sql.DB, sessions Invalidator) *Store {
	return &Store{db: conn, sessions: sessions, now: time.Now}
}

// SubmitIdea creates an idea owned by sessionID and marks the session as a
// submitter.
func (s *Store) SubmitIdea(ctx context.Context, sessionID string, p models.IdeaPayload) (models.Idea, error) {
	p.Title = strings.TrimSpace(p.Title)
	p.Category = strings.TrimSpace(p.Category)
	if sessionID == "" {
		return models.Idea{}, fmt.Errorf("%w: session is required", models.ErrValidation)
	}
	if p.Title == "" || p.Category == "" {
		return models.Idea{}, fmt.Errorf("%w: title and category are required", models.ErrValidation)
	}

	idea := models.Idea{
		ID:          uuid.NewString(),
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		VoteCount:   models.InitialVoteCount,
		CreatedAt:   s.now().UTC().Truncate(time.Millisecond),
		SessionID:   sessionID,
	}

	err := db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := reputation.MarkSubmitted(ctx, tx, sessionID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO idea (id, title, description, category, vote_count, session_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, idea.ID, idea.Title, idea.Description, idea.Category, idea.VoteCount, sessionID, db.Millis(idea.CreatedAt))
		if err != nil {
			return db.Classify(fmt.Errorf("insert idea: %w", err))
		}
		return nil
	})
	if err != nil {
		return models.Idea{}, err
	}

	if s.sessions != nil {
		s.sessions.Invalidate(ctx, sessionID)
	}

	slog.Info("Idea submitted", "idea_id", idea.ID, "session_id", sessionID, "category", idea.Category)
	return idea, nil
}

// GetIdea reads one idea with its current counter.
func (s *Store) GetIdea(ctx context.Context, ideaID string) (models.Idea, error) {
	var (
		idea      models.Idea
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, category, vote_count, session_id, created_at
		FROM idea WHERE id = $1
	`, ideaID).Scan(&idea.ID, &idea.Title, &idea.Description, &idea.Category, &idea.VoteCount, &idea.SessionID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Idea{}, fmt.Errorf("idea %w", models.ErrNotFound)
	}
	if err != nil {
		return models.Idea{}, db.Classify(fmt.Errorf("load idea: %w", err))
	}
	idea.CreatedAt = db.FromMillis(createdAt)
	return idea, nil
}

// CreateComment adds a comment to an idea. parentID may be empty; otherwise
// it must name a comment on the same idea.
func (s *Store) CreateComment(ctx context.Context, ideaID, parentID string, author models.Author, content string) (models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" || len(content) > maxContentLen {
		return models.Comment{}, fmt.Errorf("%w: content must be 1-%d characters", models.ErrValidation, maxContentLen)
	}

	var userID, sessionID, displayName sql.NullString
	switch a := author.(type) {
	case models.AnonymousAuthor:
		sessionID = sql.NullString{String: a.SessionID, Valid: true}
		displayName = sql.NullString{String: a.DisplayName, Valid: true}
	case models.RegisteredAuthor:
		userID = sql.NullString{String: a.UserID, Valid: true}
	default:
		return models.Comment{}, fmt.Errorf("%w: author is required", models.ErrValidation)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	c := models.Comment{
		ID:        uuid.NewString(),
		IdeaID:    ideaID,
		Author:    author,
		Content:   content,
		VoteCount: models.InitialVoteCount,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM idea WHERE id = $1`, ideaID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("idea %w", models.ErrNotFound)
		}
		if err != nil {
			return db.Classify(fmt.Errorf("check idea: %w", err))
		}

		var parent sql.NullString
		if parentID != "" {
			p, err := thread.LoadComment(ctx, tx, parentID)
			if err != nil {
				return fmt.Errorf("parent %w", err)
			}
			if p.IdeaID != ideaID {
				return fmt.Errorf("%w: parent belongs to another idea", models.ErrValidation)
			}
			parent = sql.NullString{String: parentID, Valid: true}
			c.ParentID = &parentID
		}

		ms := db.Millis(now)
		_, err = tx.ExecContext(ctx, `
			INSERT INTO comment (id, idea_id, parent_id, user_id, session_id, display_name, content, vote_count, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, c.ID, ideaID, parent, userID, sessionID, displayName, content, c.VoteCount, ms, ms)
		if err != nil {
			return db.Classify(fmt.Errorf("insert comment: %w", err))
		}
		return nil
	})
	if err != nil {
		return models.Comment{}, err
	}

	slog.Info("Comment created", "comment_id", c.ID, "idea_id", ideaID, "reply", c.ParentID != nil)
	return c, nil
}

// DeleteComment removes one comment. Its replies become roots of the thread
// and its ledger rows are left for Rebuild to ignore.
func (s *Store) DeleteComment(ctx context.Context, commentID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comment WHERE id = $1`, commentID)
	if err != nil {
		return db.Classify(fmt.Errorf("delete comment: %w", err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("comment %w", models.ErrNotFound)
	}

	slog.Info("Comment deleted", "comment_id", commentID)
	return nil
}
