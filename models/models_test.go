// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestVoteTypeWeights(t *testing.T) {
	tests := []struct {
		vt       VoteType
		valid    bool
		weight   int
		opposite VoteType
	}{
		{VoteUp, true, 1, VoteDown},
		{VoteDown, true, -1, VoteUp},
	}

	for _, tt := range tests {
		if tt.vt.Valid() != tt.valid || tt.vt.Weight() != tt.weight || tt.vt.Opposite() != tt.opposite {
			t.Errorf("%s: got valid=%v weight=%d opposite=%s", tt.vt, tt.vt.Valid(), tt.vt.Weight(), tt.vt.Opposite())
		}
	}

	if VoteType("meh").Valid() {
		t.Error("Unknown vote type should be invalid")
	}
	if !KindIdea.Valid() || !KindComment.Valid() || TargetKind("poll").Valid() {
		t.Error("Unexpected target kind validity")
	}
}

func TestNewAnonymousAuthor(t *testing.T) {
	tests := []struct {
		name        string
		sessionID   string
		displayName string
		wantErr     bool
	}{
		{"valid", "sess", "Sam", false},
		{"trimmed", "sess", "  Sam  ", false},
		{"too short", "sess", "S", true},
		{"too long", "sess", strings.Repeat("x", 51), true},
		{"blank after trim", "sess", "   ", true},
		{"missing session", "", "Sam", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAnonymousAuthor(tt.sessionID, tt.displayName)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("Expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if a.DisplayName != "Sam" {
				t.Errorf("Expected trimmed name, got %q", a.DisplayName)
			}
		})
	}

	if _, err := NewRegisteredAuthor(""); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for empty user id, got %v", err)
	}
}

func TestCommentJSONHidesSession(t *testing.T) {
	parent := "c-0"
	c := ThreadComment{
		Comment: Comment{
			ID:        "c-1",
			IdeaID:    "i-1",
			ParentID:  &parent,
			Author:    AnonymousAuthor{SessionID: "secret-session", DisplayName: "Sam"},
			Content:   "hello",
			VoteCount: 3,
			CreatedAt: time.Unix(0, 0).UTC(),
			UpdatedAt: time.Unix(0, 0).UTC(),
		},
		Depth: 2,
	}

	raw, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(raw), "secret-session") {
		t.Errorf("Session leaked: %s", raw)
	}

	var got map[string]interface{}
	json.Unmarshal(raw, &got)
	if got["author_name"] != "Sam" || got["anonymous"] != true || got["depth"] != float64(2) || got["parent_id"] != "c-0" {
		t.Errorf("Unexpected encoding: %s", raw)
	}

	c.Author = RegisteredAuthor{UserID: "user-9"}
	raw, _ = json.Marshal(c.Comment)
	json.Unmarshal(raw, &got)
	if got["author_name"] != "user-9" || got["anonymous"] != false {
		t.Errorf("Unexpected registered encoding: %s", raw)
	}
}
