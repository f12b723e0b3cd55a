// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package sessioncache caches session rows in front of the database.
//
// Invalidation rule: an entry is dropped exactly when login, logout, or an
// accepted vote or submission changes the session's reputation fields.
// Nothing else invalidates; entries otherwise expire by TTL, so
// last_active_at in a cached entry may lag by up to one TTL.
package sessioncache

import (
	"context"

	"github.com/danielhkuo/ideaboard/models"
)

// Cache stores sessions by id. A miss is (zero, false, nil).
type Cache interface {
	Get(ctx context.Context, sessionID string) (models.Session, bool, error)
	Set(ctx context.Context, s models.Session) error
	Invalidate(ctx context.Context, sessionID string) error
}

// Noop is used when no cache is configured. Every lookup misses.
type Noop struct{}

func (Noop) Get(context.Context, string) (models.Session, bool, error) {
	return models.Session{}, false, nil
}

func (Noop) Set(context.Context, models.Session) error { return nil }

func (Noop) Invalidate(context.Context, string) error { return nil }
