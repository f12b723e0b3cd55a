// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - RedisURL: session cache; empty disables caching
  - AddressSalt: Secret for hashing voter addresses (required)
  - AdminKey: Secret for moderation endpoints (required)
  - RewardEvery: up-votes per reward upvote (default: 5)
  - IdleThreshold: longest gap counted as active time (default: 30m)
  - AbuseThreshold, AbuseWindow: address check (default: 3 per 60s)
  - SessionCacheTTL: cache entry lifetime (default: 10m)

# CLI Flags

	-p                Server port
	-d                Database URL
	-t                Database type
	-redis            Redis URL
	-address-salt     Address hashing salt
	-admin-key        Moderation key
	-env-file         Env file (default: .env)
	-secure-cookies   Mark session cookies Secure
	-rebuild-counters Rebuild vote counters at startup
	-log-json         JSON log output

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	REDIS_URL     → -redis
	ADDRESS_SALT  → -address-salt
	ADMIN_KEY     → -admin-key

Policy values are environment-only: REWARD_EVERY, IDLE_THRESHOLD,
ABUSE_THRESHOLD, ABUSE_WINDOW, SESSION_CACHE_TTL. Durations use
time.ParseDuration syntax ("30m", "60s").

CLI flags take precedence over environment variables, and the environment
takes precedence over the env file.

# Validation

ParseFlags returns an error if required values are missing or malformed:

  - DATABASE_URL must be provided
  - ADDRESS_SALT must be provided
  - ADMIN_KEY must be provided
  - REWARD_EVERY must be at least 1
*/
package cliparse
