package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	RedisURL     string
	AddressSalt  string
	AdminKey     string

	// Voting and reputation policy
	RewardEvery     int
	IdleThreshold   time.Duration
	AbuseThreshold  int
	AbuseWindow     time.Duration
	SessionCacheTTL time.Duration

	SecureCookies   bool
	TrustProxy      bool
	RebuildCounters bool
	LogJSON         bool
}

// Defaults used when neither a flag nor an env variable is set
const (
	DefaultPort            = 3318
	DefaultRewardEvery     = 5
	DefaultIdleThreshold   = 30 * time.Minute
	DefaultAbuseThreshold  = 3
	DefaultAbuseWindow     = 60 * time.Second
	DefaultSessionCacheTTL = 10 * time.Minute
)

// ParseFlags validates flags and fills the rest from the environment.
// A .env file (or the one named by -env-file) is loaded first; it never
// overrides variables already set.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile string

	fs := flag.NewFlagSet("ideaboard", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.RedisURL, "redis", "", "Redis URL for the session cache (optional)")
	fs.StringVar(&envFile, "env-file", ".env", "Env file to load before reading the environment")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AddressSalt, "address-salt", "", "Address hashing salt (prefer env)")
	fs.StringVar(&cfg.AdminKey, "admin-key", "", "Moderation key (prefer env)")

	fs.BoolVar(&cfg.SecureCookies, "secure-cookies", false, "Mark session cookies Secure")
	fs.BoolVar(&cfg.TrustProxy, "trust-proxy", false, "Take client addresses from X-Forwarded-For / X-Real-IP")
	fs.BoolVar(&cfg.RebuildCounters, "rebuild-counters", false, "Rebuild vote counters from the ledger at startup")
	fs.BoolVar(&cfg.LogJSON, "log-json", false, "Log as JSON")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := envInt("PORT", DefaultPort)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}

	// Secrets - MUST be provided
	if cfg.AddressSalt == "" {
		cfg.AddressSalt = os.Getenv("ADDRESS_SALT")
	}
	if cfg.AddressSalt == "" {
		return Config{}, errors.New("ADDRESS_SALT required")
	}

	if cfg.AdminKey == "" {
		cfg.AdminKey = os.Getenv("ADMIN_KEY")
	}
	if cfg.AdminKey == "" {
		return Config{}, errors.New("ADMIN_KEY required")
	}

	var err error
	if cfg.RewardEvery, err = envInt("REWARD_EVERY", DefaultRewardEvery); err != nil {
		return Config{}, err
	}
	if cfg.AbuseThreshold, err = envInt("ABUSE_THRESHOLD", DefaultAbuseThreshold); err != nil {
		return Config{}, err
	}
	if cfg.IdleThreshold, err = envDuration("IDLE_THRESHOLD", DefaultIdleThreshold); err != nil {
		return Config{}, err
	}
	if cfg.AbuseWindow, err = envDuration("ABUSE_WINDOW", DefaultAbuseWindow); err != nil {
		return Config{}, err
	}
	if cfg.SessionCacheTTL, err = envDuration("SESSION_CACHE_TTL", DefaultSessionCacheTTL); err != nil {
		return Config{}, err
	}

	if !cfg.TrustProxy {
		if cfg.TrustProxy, err = envBool("TRUST_PROXY"); err != nil {
			return Config{}, err
		}
	}

	if cfg.RewardEvery < 1 {
		return Config{}, errors.New("REWARD_EVERY must be at least 1")
	}

	return cfg, nil
}

func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return v, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return v, nil
}

func envBool(key string) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s env variable", key)
	}
	return v, nil
}
