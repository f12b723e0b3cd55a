// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sessioncache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/danielhkuo/ideaboard/models"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	cache, err := NewRedisCache("redis://"+s.Addr(), time.Minute)
	if err != nil {
		t.Fatalf("failed to create redis cache: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache, s
}

func TestNewRedisCache(t *testing.T) {
	cache, _ := setupTestRedis(t)

	if err := cache.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestNewRedisCache_BadURL(t *testing.T) {
	if _, err := NewRedisCache("not-a-url", time.Minute); err == nil {
		t.Error("expected error for malformed url, got nil")
	}
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	s := miniredis.RunT(t)
	addr := s.Addr()
	s.Close()

	cache, err := NewRedisCache("redis://"+addr, time.Minute)
	if err != nil {
		t.Fatalf("expected lazy connect, got %v", err)
	}
	defer cache.Close()

	ctx := context.Background()
	if err := cache.Ping(ctx); err == nil {
		t.Error("expected ping to fail against a stopped server")
	}
	if _, _, err := cache.Get(ctx, "sess-1"); err == nil {
		t.Error("expected get to fail against a stopped server")
	}
}

func TestSetAndGet(t *testing.T) {
	cache, _ := setupTestRedis(t)
	ctx := context.Background()

	session := models.Session{
		ID:                  "sess-1",
		UpvotesGiven:        4,
		RewardUpvotesEarned: 0,
		CreatedAt:           time.UnixMilli(1_700_000_000_000).UTC(),
		LastActiveAt:        time.UnixMilli(1_700_000_060_000).UTC(),
		ActiveDurationMs:    60_000,
	}

	if err := cache.Set(ctx, session); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok, err := cache.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.ID != "sess-1" || got.UpvotesGiven != 4 || got.ActiveDurationMs != 60_000 {
		t.Errorf("unexpected cached session: %+v", got)
	}
	if !got.CreatedAt.Equal(session.CreatedAt) {
		t.Errorf("expected created_at %s, got %s", session.CreatedAt, got.CreatedAt)
	}
}

func TestGetMiss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	_, ok, err := cache.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("expected cache miss")
	}
}

func TestEntryExpires(t *testing.T) {
	cache, s := setupTestRedis(t)
	ctx := context.Background()

	if err := cache.Set(ctx, models.Session{ID: "short-lived"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	s.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx, "short-lived")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("expected entry to expire after TTL")
	}
}

func TestInvalidate(t *testing.T) {
	cache, _ := setupTestRedis(t)
	ctx := context.Background()

	if err := cache.Set(ctx, models.Session{ID: "a"}); err != nil {
		t.Fatalf("Set a failed: %v", err)
	}
	if err := cache.Set(ctx, models.Session{ID: "b"}); err != nil {
		t.Fatalf("Set b failed: %v", err)
	}

	if err := cache.Invalidate(ctx, "a"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}

	if _, ok, _ := cache.Get(ctx, "a"); ok {
		t.Error("expected a to be invalidated")
	}
	if _, ok, _ := cache.Get(ctx, "b"); !ok {
		t.Error("expected b to survive invalidation of a")
	}

	// Invalidating a missing entry is not an error
	if err := cache.Invalidate(ctx, "never-set"); err != nil {
		t.Errorf("Invalidate of missing key failed: %v", err)
	}
}

func TestGetCorruptEntry(t *testing.T) {
	cache, s := setupTestRedis(t)

	if err := s.Set("session:broken", "{not json"); err != nil {
		t.Fatal(err)
	}

	if _, _, err := cache.Get(context.Background(), "broken"); err == nil {
		t.Error("expected error for corrupt entry, got nil")
	}
}

func TestNoop(t *testing.T) {
	var c Cache = Noop{}
	ctx := context.Background()

	if err := c.Set(ctx, models.Session{ID: "x"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, ok, err := c.Get(ctx, "x"); ok || err != nil {
		t.Errorf("Noop.Get = (%v, %v), want miss", ok, err)
	}
	if err := c.Invalidate(ctx, "x"); err != nil {
		t.Errorf("Invalidate failed: %v", err)
	}
}
