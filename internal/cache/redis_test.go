package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/tipstream/harvester/pkg/config"
)

func TestDisabledCache(t *testing.T) {
	cache, err := New(&config.RedisConfig{Enabled: false})
	if err != nil {
		t.Fatalf("disabled cache should not error: %v", err)
	}
	if cache != nil {
		t.Fatal("disabled cache should be nil")
	}

	ctx := context.Background()

	// All operations on the nil cache must be safe no-ops.
	if _, err := cache.GetWatermark(ctx, "twitter", "p1"); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("expected ErrCacheDisabled, got %v", err)
	}
	if err := cache.SetWatermark(ctx, "twitter", "p1", "100"); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("expected ErrCacheDisabled, got %v", err)
	}
	if err := cache.Health(ctx); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("expected ErrCacheDisabled, got %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Errorf("closing nil cache should not error: %v", err)
	}
}

func TestInvalidRedisURL(t *testing.T) {
	_, err := New(&config.RedisConfig{URL: "not-a-url", Enabled: true})
	if err == nil {
		t.Error("expected error for invalid Redis URL")
	}
}

func TestWatermarkKey(t *testing.T) {
	key := watermarkKey("reddit", "9b1deb4d")
	expected := "harvest:watermark:reddit:9b1deb4d"
	if key != expected {
		t.Errorf("watermarkKey() = %q, want %q", key, expected)
	}
}
