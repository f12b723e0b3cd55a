package models

import (
	"encoding/json"
	"time"
)

// Target kinds accepted by the vote ledger
type TargetKind string

const (
	KindIdea    TargetKind = "idea"
	KindComment TargetKind = "comment"
)

func (k TargetKind) Valid() bool {
	return k == KindIdea || k == KindComment
}

// Vote types
type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

func (v VoteType) Valid() bool {
	return v == VoteUp || v == VoteDown
}

// Weight is the counter contribution of a single ledger row
func (v VoteType) Weight() int {
	if v == VoteUp {
		return 1
	}
	return -1
}

// Opposite returns the other vote type
func (v VoteType) Opposite() VoteType {
	if v == VoteUp {
		return VoteDown
	}
	return VoteUp
}

// Vote outcomes reported by the ledger
type Outcome string

const (
	OutcomeAccepted  Outcome = "accepted"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeChanged   Outcome = "changed"
	OutcomeWithdrawn Outcome = "withdrawn"
)

// InitialVoteCount is the counter value of a fresh idea or comment
// (the author's implicit upvote).
const InitialVoteCount = 1

// Request types

type SubmitIdeaRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Category    string `json:"category" validate:"required,max=50"`
}

type CastVoteRequest struct {
	VoteType VoteType `json:"vote_type" validate:"required,oneof=up down"`
}

type CreateCommentRequest struct {
	ParentID    string `json:"parent_id,omitempty"`
	DisplayName string `json:"display_name" validate:"required,min=2,max=50"`
	Content     string `json:"content" validate:"required,max=2000"`
}

// Response types

type VoteResponse struct {
	Outcome   Outcome `json:"outcome"`
	Delta     int     `json:"delta"`
	VoteCount int     `json:"vote_count"`
}

type IdeaResponse struct {
	Idea   Idea      `json:"idea"`
	MyVote *VoteType `json:"my_vote,omitempty"`
}

type SessionResponse struct {
	Session    Session    `json:"session"`
	Privileges Privileges `json:"privileges"`
}

type ThreadResponse struct {
	IdeaID   string          `json:"idea_id"`
	Comments []ThreadComment `json:"comments"`
}

type RebuildResponse struct {
	IdeasFixed    int `json:"ideas_fixed"`
	CommentsFixed int `json:"comments_fixed"`
}

// Domain types

type Session struct {
	ID                  string    `json:"-"` // the session token
	HasSubmitted        bool      `json:"has_submitted"`
	UpvotesGiven        int       `json:"upvotes_given"`
	RewardUpvotesEarned int       `json:"reward_upvotes_earned"`
	CreatedAt           time.Time `json:"created_at"`
	LastActiveAt        time.Time `json:"last_active_at"`
	ActiveDurationMs    int64     `json:"active_duration_ms"`
}

type Privileges struct {
	CanSkipChallenge bool `json:"can_skip_challenge"`
}

type Idea struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	VoteCount   int       `json:"vote_count"`
	CreatedAt   time.Time `json:"created_at"`
	SessionID   string    `json:"-"` // Never expose in JSON
}

type IdeaPayload struct {
	Title       string
	Description string
	Category    string
}

type Comment struct {
	ID        string    `json:"id"`
	IdeaID    string    `json:"idea_id"`
	ParentID  *string   `json:"parent_id,omitempty"`
	Author    Author    `json:"-"`
	Content   string    `json:"content"`
	VoteCount int       `json:"vote_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type commentJSON struct {
	ID         string    `json:"id"`
	IdeaID     string    `json:"idea_id"`
	ParentID   *string   `json:"parent_id,omitempty"`
	AuthorName string    `json:"author_name"`
	Anonymous  bool      `json:"anonymous"`
	Content    string    `json:"content"`
	VoteCount  int       `json:"vote_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// flatten replaces the author with a display name so session
// identifiers never leave the server.
func (c Comment) flatten() commentJSON {
	out := commentJSON{
		ID:        c.ID,
		IdeaID:    c.IdeaID,
		ParentID:  c.ParentID,
		Content:   c.Content,
		VoteCount: c.VoteCount,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	switch a := c.Author.(type) {
	case AnonymousAuthor:
		out.AuthorName = a.DisplayName
		out.Anonymous = true
	case RegisteredAuthor:
		out.AuthorName = a.UserID
	}
	return out
}

func (c Comment) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.flatten())
}

type ThreadComment struct {
	Comment
	Depth int `json:"depth"`
}

func (tc ThreadComment) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		commentJSON
		Depth int `json:"depth"`
	}{tc.Comment.flatten(), tc.Depth})
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
