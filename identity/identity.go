// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/ideaboard/auth"
	"github.com/danielhkuo/ideaboard/cliparse"
	"github.com/danielhkuo/ideaboard/db"
	"github.com/danielhkuo/ideaboard/metrics"
	"github.com/danielhkuo/ideaboard/middleware"
	"github.com/danielhkuo/ideaboard/models"
	"github.com/danielhkuo/ideaboard/sessioncache"
)

// CookieName is the client-held session token
const CookieName = "idea_session"

const cookieMaxAge = 365 * 24 * 60 * 60

// maxAttempts bounds token collisions and lost touch races
const maxAttempts = 3

// Identity is who is making a request
type Identity struct {
	SessionID string
	Address   string // hashed network address, empty if unknown
	IsNew     bool
}

type Resolver struct {
	db            *sql.DB
	cache         sessioncache.Cache
	addressSalt   string
	trustProxy    bool
	idle          time.Duration
	secureCookies bool
	metrics       *metrics.Metrics

	now func() time.Time
}

func NewResolver(conn *sql.DB, cache sessioncache.Cache, cfg cliparse.Config) *Resolver {
	if cache == nil {
		cache = sessioncache.Noop{}
	}
	return &Resolver{
		db:            conn,
		cache:         cache,
		addressSalt:   cfg.AddressSalt,
		trustProxy:    cfg.TrustProxy,
		idle:          cfg.IdleThreshold,
		secureCookies: cfg.SecureCookies,
		now:           time.Now,
	}
}

// SetMetrics records session creation on m.
func (r *Resolver) SetMetrics(m *metrics.Metrics) {
	r.metrics = m
}

// SetClock replaces the time source. Tests only.
func (r *Resolver) SetClock(now func() time.Time) {
	r.now = now
}

// Resolve identifies the caller from the session cookie, minting and
// setting a new session when the cookie is absent or unknown.
func (r *Resolver) Resolve(w http.ResponseWriter, req *http.Request) (Identity, error) {
	var token string
	if c, err := req.Cookie(CookieName); err == nil {
		token = c.Value
	}

	session, isNew, err := r.EnsureSession(req.Context(), token)
	if err != nil {
		return Identity{}, err
	}

	if isNew {
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    session.ID,
			Path:     "/",
			MaxAge:   cookieMaxAge,
			HttpOnly: true,
			Secure:   r.secureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	}

	return Identity{
		SessionID: session.ID,
		Address:   auth.HashAddress(r.clientIP(req), r.addressSalt),
		IsNew:     isNew,
	}, nil
}

// clientIP honors forwarding headers only when TrustProxy is set.
func (r *Resolver) clientIP(req *http.Request) string {
	if r.trustProxy {
		return middleware.GetClientIP(req)
	}
	return middleware.RemoteIP(req)
}

// EnsureSession returns the session named by token, refreshing its
// activity, or creates a new one when token is empty, malformed, or
// unknown. The bool reports whether a session was created.
func (r *Resolver) EnsureSession(ctx context.Context, token string) (models.Session, bool, error) {
	if token != "" && auth.ValidateSessionToken(token) == nil {
		session, err := r.touch(ctx, token)
		if err == nil {
			return session, false, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return models.Session{}, false, err
		}
	}

	session, err := r.create(ctx)
	if err != nil {
		return models.Session{}, false, err
	}
	return session, true, nil
}

// GetSession reads a session through the cache.
func (r *Resolver) GetSession(ctx context.Context, sessionID string) (models.Session, error) {
	if cached, ok, err := r.cache.Get(ctx, sessionID); err != nil {
		slog.Warn("session cache read failed", "error", err)
	} else if ok {
		return cached, nil
	}

	session, err := LoadSession(ctx, r.db, sessionID)
	if err != nil {
		return models.Session{}, err
	}

	if err := r.cache.Set(ctx, session); err != nil {
		slog.Warn("session cache write failed", "error", err)
	}
	return session, nil
}

// Invalidate drops the cached copy of a session. Called on login, logout,
// and whenever reputation fields change.
func (r *Resolver) Invalidate(ctx context.Context, sessionID string) {
	if err := r.cache.Invalidate(ctx, sessionID); err != nil {
		slog.Warn("session cache invalidation failed", "session_id", sessionID, "error", err)
	}
}

func (r *Resolver) create(ctx context.Context) (models.Session, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		token, err := auth.GenerateSessionToken()
		if err != nil {
			return models.Session{}, err
		}

		now := r.now()
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO session (id, created_at, last_active_at)
			VALUES ($1, $2, $3)
		`, token, db.Millis(now), db.Millis(now))
		if db.IsUniqueViolation(err) {
			continue
		}
		if err != nil {
			return models.Session{}, db.Classify(fmt.Errorf("insert session: %w", err))
		}

		r.metrics.SessionCreated()
		slog.Info("session created")
		return models.Session{
			ID:           token,
			CreatedAt:    db.FromMillis(db.Millis(now)),
			LastActiveAt: db.FromMillis(db.Millis(now)),
		}, nil
	}
	return models.Session{}, fmt.Errorf("insert session: %w", models.ErrConflict)
}

// touch moves last_active_at forward and adds the elapsed time to
// active_duration_ms unless the gap exceeds the idle threshold. The
// update is conditional on the previous last_active_at so concurrent
// requests never count the same interval twice.
func (r *Resolver) touch(ctx context.Context, sessionID string) (models.Session, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		session, err := LoadSession(ctx, r.db, sessionID)
		if err != nil {
			return models.Session{}, err
		}

		prev := db.Millis(session.LastActiveAt)
		now := db.Millis(r.now())
		next, added := prev, int64(0)
		if now > prev {
			next = now
			if gap := now - prev; gap <= r.idle.Milliseconds() {
				added = gap
			}
		}

		res, err := r.db.ExecContext(ctx, `
			UPDATE session
			SET last_active_at = $1, active_duration_ms = active_duration_ms + $2
			WHERE id = $3 AND last_active_at = $4
		`, next, added, sessionID, prev)
		if err != nil {
			return models.Session{}, db.Classify(fmt.Errorf("touch session: %w", err))
		}
		if n, _ := res.RowsAffected(); n == 0 {
			continue
		}

		session.LastActiveAt = db.FromMillis(next)
		session.ActiveDurationMs += added
		return session, nil
	}

	// Another request keeps winning; its touch covers this one
	return LoadSession(ctx, r.db, sessionID)
}

// LoadSession reads a session row directly from the database.
func LoadSession(ctx context.Context, q db.Querier, sessionID string) (models.Session, error) {
	var s models.Session
	var createdAt, lastActiveAt int64
	err := q.QueryRowContext(ctx, `
		SELECT id, has_submitted, upvotes_given, reward_upvotes_earned,
		       created_at, last_active_at, active_duration_ms
		FROM session
		WHERE id = $1
	`, sessionID).Scan(
		&s.ID,
		&s.HasSubmitted,
		&s.UpvotesGiven,
		&s.RewardUpvotesEarned,
		&createdAt,
		&lastActiveAt,
		&s.ActiveDurationMs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, fmt.Errorf("session %w", models.ErrNotFound)
	}
	if err != nil {
		return models.Session{}, db.Classify(fmt.Errorf("load session: %w", err))
	}

	s.CreatedAt = db.FromMillis(createdAt)
	s.LastActiveAt = db.FromMillis(lastActiveAt)
	return s, nil
}
