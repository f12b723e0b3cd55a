// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
	ErrInvalidToken    = errors.New("invalid token format")
)

// sessionTokenBytes is the entropy of a session token (192 bits)
const sessionTokenBytes = 24

// GenerateSessionToken creates a random secure token identifying an
// anonymous session. It is handed to the client as a cookie.
func GenerateSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	// URL-safe base64 without padding
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ValidateSessionToken checks that a client-supplied token has the shape
// GenerateSessionToken produces. It says nothing about whether the
// session exists.
func ValidateSessionToken(token string) error {
	if len(token) != base64.RawURLEncoding.EncodedLen(sessionTokenBytes) {
		return ErrInvalidToken
	}
	if _, err := base64.RawURLEncoding.DecodeString(token); err != nil {
		return ErrInvalidToken
	}
	return nil
}

// CheckAdminKey compares a provided admin key with the configured one
// in constant time.
func CheckAdminKey(provided, expected string) error {
	if expected == "" || !hmac.Equal([]byte(provided), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// HashAddress creates a one-way hash of a network address for privacy.
// Includes salt to prevent rainbow table attacks. Empty addresses stay
// empty so callers can tell "unknown" apart from a real address.
func HashAddress(addr, salt string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(addr))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
