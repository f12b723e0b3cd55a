package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/ideaboard/cliparse"
	"github.com/danielhkuo/ideaboard/counter"
	"github.com/danielhkuo/ideaboard/db"
	"github.com/danielhkuo/ideaboard/metrics"
	"github.com/danielhkuo/ideaboard/middleware"
	"github.com/danielhkuo/ideaboard/models"
	"github.com/danielhkuo/ideaboard/router"
	"github.com/danielhkuo/ideaboard/sessioncache"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	if cfg.LogJSON {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}

	ctx := context.Background()

	// Connect and verify
	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	if err := db.CreateSchema(ctx, dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	m := metrics.New()

	if cfg.RebuildCounters {
		report, err := counter.Rebuild(ctx, dbConn)
		if err != nil {
			slog.Error("counter rebuild failed", "error", err)
			os.Exit(1)
		}
		m.CountersFixed(string(models.KindIdea), report.IdeasFixed)
		m.CountersFixed(string(models.KindComment), report.CommentsFixed)
		slog.Info("Counters rebuilt", "ideas_fixed", report.IdeasFixed, "comments_fixed", report.CommentsFixed)
	}

	// Session cache is optional
	var cache sessioncache.Cache
	if cfg.RedisURL != "" {
		rc, err := sessioncache.NewRedisCache(cfg.RedisURL, cfg.SessionCacheTTL)
		if err != nil {
			slog.Error("invalid redis url", "error", err)
			os.Exit(1)
		}
		defer rc.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := rc.Ping(pingCtx); err != nil {
			slog.Warn("redis unreachable, serving sessions from the database", "error", err)
		}
		cancel()
		cache = rc
		slog.Info("Session cache enabled", "ttl", cfg.SessionCacheTTL)
	}

	mux := router.NewRouter(dbConn, cfg, cache, m)

	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}
}
