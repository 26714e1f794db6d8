package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/kadirpekel/semhub/pkg/config"
)

func newTestCache(t *testing.T) *safeCache {
	t.Helper()
	srv := miniredis.RunT(t)
	return &safeCache{client: redis.NewClient(&redis.Options{Addr: srv.Addr()})}
}

func TestSafeCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Fatal("expected miss on unset key")
	}

	c.Set(ctx, "k", []byte("v"), time.Minute)
	val, ok := c.Get(ctx, "k")
	if !ok || string(val) != "v" {
		t.Fatalf("expected hit with value %q, got ok=%v val=%q", "v", ok, val)
	}
}

func TestFakeCacheAlwaysMisses(t *testing.T) {
	c := fakeCache{}
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), time.Minute)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expected fakeCache to never hit")
	}
}

func TestNewDisabledReturnsFakeCache(t *testing.T) {
	c := New(config.CacheConfig{Enabled: false, Address: "unused:6379"})
	if _, ok := c.(fakeCache); !ok {
		t.Fatalf("expected fakeCache when disabled, got %T", c)
	}
}
