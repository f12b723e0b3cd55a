// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides token generation and hashing utilities.

# Session Tokens

Session tokens are random 24-byte (192-bit) secrets:

	token, err := auth.GenerateSessionToken()
	err = auth.ValidateSessionToken(token)

Tokens are URL-safe base64 encoded without padding and identify an
anonymous visitor across requests. ValidateSessionToken only checks the
format, so malformed cookies never reach the database.

# Admin Key

Moderation endpoints compare the X-Admin-Key header against the configured
key in constant time:

	err := auth.CheckAdminKey(r.Header.Get("X-Admin-Key"), cfg.AdminKey)

# Address Hashing

For privacy-preserving abuse detection:

	hash := auth.HashAddress(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
