// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package thread assembles the nested comment thread of an idea.
//
// Siblings are ordered by vote_count descending, then created_at ascending,
// then id. The thread is walked depth-first with an explicit stack, so deep
// reply chains never grow the goroutine stack. A comment whose parent is not
// part of the same idea's thread (deleted, or never there) is shown as a
// root.
package thread

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/danielhkuo/ideaboard/db"
	"github.com/danielhkuo/ideaboard/models"
)

const commentColumns = `id, idea_id, parent_id, user_id, session_id, display_name, content, vote_count, created_at, updated_at`

// Thread is a loaded comment tree. It is safe to iterate more than once.
type Thread struct {
	roots    []models.Comment
	children map[string][]models.Comment
	size     int
}

// Len is the number of comments in the thread.
func (t *Thread) Len() int {
	return t.size
}

// All yields every comment in display order with its depth. Roots have
// depth 0.
func (t *Thread) All() iter.Seq[models.ThreadComment] {
	return func(yield func(models.ThreadComment) bool) {
		type frame struct {
			comment models.Comment
			depth   int
		}

		stack := make([]frame, 0, len(t.roots))
		for i := len(t.roots) - 1; i >= 0; i-- {
			stack = append(stack, frame{t.roots[i], 0})
		}

		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if !yield(models.ThreadComment{Comment: f.comment, Depth: f.depth}) {
				return
			}

			kids := t.children[f.comment.ID]
			for i := len(kids) - 1; i >= 0; i-- {
				stack = append(stack, frame{kids[i], f.depth + 1})
			}
		}
	}
}

// Comments collects All into a slice.
func (t *Thread) Comments() []models.ThreadComment {
	out := make([]models.ThreadComment, 0, t.size)
	for c := range t.All() {
		out = append(out, c)
	}
	return out
}

// GetThread loads the thread of ideaID.
func GetThread(ctx context.Context, q db.Querier, ideaID string) (*Thread, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM idea WHERE id = $1`, ideaID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("idea %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, db.Classify(fmt.Errorf("check idea: %w", err))
	}

	rows, err := q.QueryContext(ctx, `SELECT `+commentColumns+` FROM comment WHERE idea_id = $1`, ideaID)
	if err != nil {
		return nil, db.Classify(fmt.Errorf("query comments: %w", err))
	}
	defer rows.Close()

	var all []models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, db.Classify(fmt.Errorf("scan comment: %w", err))
		}
		all = append(all, c)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Classify(fmt.Errorf("iterate comments: %w", err))
	}

	return build(all), nil
}

func build(all []models.Comment) *Thread {
	present := make(map[string]bool, len(all))
	for _, c := range all {
		present[c.ID] = true
	}

	t := &Thread{children: make(map[string][]models.Comment), size: len(all)}
	for _, c := range all {
		if c.ParentID == nil || !present[*c.ParentID] {
			t.roots = append(t.roots, c)
			continue
		}
		t.children[*c.ParentID] = append(t.children[*c.ParentID], c)
	}

	slices.SortFunc(t.roots, compare)
	for _, kids := range t.children {
		slices.SortFunc(kids, compare)
	}
	return t
}

func compare(a, b models.Comment) int {
	if c := cmp.Compare(b.VoteCount, a.VoteCount); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// LoadComment reads one comment by ID.
func LoadComment(ctx context.Context, q db.Querier, commentID string) (models.Comment, error) {
	row := q.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comment WHERE id = $1`, commentID)
	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Comment{}, fmt.Errorf("comment %w", models.ErrNotFound)
	}
	if err != nil {
		return models.Comment{}, db.Classify(fmt.Errorf("load comment: %w", err))
	}
	return c, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanComment(s scanner) (models.Comment, error) {
	var (
		c                                 models.Comment
		parentID, userID, sessionID, name sql.NullString
		createdAt, updatedAt              int64
	)
	err := s.Scan(&c.ID, &c.IdeaID, &parentID, &userID, &sessionID, &name,
		&c.Content, &c.VoteCount, &createdAt, &updatedAt)
	if err != nil {
		return models.Comment{}, err
	}

	if parentID.Valid {
		c.ParentID = &parentID.String
	}
	if userID.Valid {
		c.Author = models.RegisteredAuthor{UserID: userID.String}
	} else {
		c.Author = models.AnonymousAuthor{SessionID: sessionID.String, DisplayName: name.String}
	}
	c.CreatedAt = db.FromMillis(createdAt)
	c.UpdatedAt = db.FromMillis(updatedAt)
	return c, nil
}
