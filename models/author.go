// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"fmt"
	"strings"
)

// Author identifies who wrote a comment. The only implementations are
// AnonymousAuthor and RegisteredAuthor.
type Author interface {
	isAuthor()
}

// AnonymousAuthor is a visitor known only by session and a chosen name.
type AnonymousAuthor struct {
	SessionID   string
	DisplayName string
}

// RegisteredAuthor is an account holder.
type RegisteredAuthor struct {
	UserID string
}

func (AnonymousAuthor) isAuthor()  {}
func (RegisteredAuthor) isAuthor() {}

// NewAnonymousAuthor validates and builds an anonymous author.
func NewAnonymousAuthor(sessionID, displayName string) (AnonymousAuthor, error) {
	displayName = strings.TrimSpace(displayName)
	if sessionID == "" {
		return AnonymousAuthor{}, fmt.Errorf("%w: session id is required", ErrValidation)
	}
	if len(displayName) < 2 || len(displayName) > 50 {
		return AnonymousAuthor{}, fmt.Errorf("%w: display name must be 2-50 characters", ErrValidation)
	}
	return AnonymousAuthor{SessionID: sessionID, DisplayName: displayName}, nil
}

// NewRegisteredAuthor validates and builds a registered author.
func NewRegisteredAuthor(userID string) (RegisteredAuthor, error) {
	if userID == "" {
		return RegisteredAuthor{}, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	return RegisteredAuthor{UserID: userID}, nil
}
