// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/ideaboard/auth"
	"github.com/danielhkuo/ideaboard/cliparse"
	"github.com/danielhkuo/ideaboard/db"
)

// TestDBURL is an in-memory SQLite database private to each connection pool
const TestDBURL = ":memory:"

// SetupTestDB creates a fresh in-memory database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), db.TypeSQLite, TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(context.Background(), conn); err != nil {
		conn.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            3318,
		DatabaseURL:     TestDBURL,
		DatabaseType:    db.TypeSQLite,
		AddressSalt:     "test-address-salt",
		AdminKey:        "test-admin-key",
		RewardEvery:     cliparse.DefaultRewardEvery,
		IdleThreshold:   cliparse.DefaultIdleThreshold,
		AbuseThreshold:  cliparse.DefaultAbuseThreshold,
		AbuseWindow:     cliparse.DefaultAbuseWindow,
		SessionCacheTTL: cliparse.DefaultSessionCacheTTL,
		TrustProxy:      true,
	}
}

// CreateTestSession inserts a session and returns its token
func CreateTestSession(t *testing.T, conn *sql.DB) string {
	t.Helper()

	token, _ := auth.GenerateSessionToken()
	now := db.Millis(time.Now())
	_, err := conn.Exec(`
		INSERT INTO session (id, created_at, last_active_at)
		VALUES ($1, $2, $3)
	`, token, now, now)
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return token
}

// CreateTestIdea inserts an idea owned by sessionID and returns its ID
func CreateTestIdea(t *testing.T, conn *sql.DB, sessionID string) string {
	t.Helper()

	ideaID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO idea (id, title, description, category, session_id, created_at)
		VALUES ($1, 'Test Idea', 'An idea for testing', 'general', $2, $3)
	`, ideaID, sessionID, db.Millis(time.Now()))
	if err != nil {
		t.Fatalf("Failed to create test idea: %v", err)
	}

	return ideaID
}

// CreateTestComment inserts an anonymous comment with a fixed vote count
// and creation time, and returns its ID. parentID may be empty.
func CreateTestComment(t *testing.T, conn *sql.DB, ideaID, parentID string, voteCount int, createdAt time.Time) string {
	t.Helper()

	commentID := uuid.NewString()
	var parent sql.NullString
	if parentID != "" {
		parent = sql.NullString{String: parentID, Valid: true}
	}

	ms := db.Millis(createdAt)
	_, err := conn.Exec(`
		INSERT INTO comment (id, idea_id, parent_id, session_id, display_name, content, vote_count, created_at, updated_at)
		VALUES ($1, $2, $3, 'test-session', 'Tester', 'A test comment', $4, $5, $5)
	`, commentID, ideaID, parent, voteCount, ms)
	if err != nil {
		t.Fatalf("Failed to create test comment: %v", err)
	}

	return commentID
}

// VoteCount reads the denormalized counter of an idea or comment
func VoteCount(t *testing.T, conn *sql.DB, table, id string) int {
	t.Helper()

	var count int
	// table is always a literal from the test itself
	err := conn.QueryRow(`SELECT vote_count FROM `+table+` WHERE id = $1`, id).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to read vote_count from %s: %v", table, err)
	}
	return count
}

// LedgerRows counts vote ledger rows for a target
func LedgerRows(t *testing.T, conn *sql.DB, targetID string) int {
	t.Helper()

	var n int
	err := conn.QueryRow(`SELECT COUNT(*) FROM vote WHERE target_id = $1`, targetID).Scan(&n)
	if err != nil {
		t.Fatalf("Failed to count ledger rows: %v", err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// WithSession attaches a session cookie to a request
func WithSession(req *http.Request, sessionID string) *http.Request {
	req.AddCookie(&http.Cookie{Name: "idea_session", Value: sessionID})
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
