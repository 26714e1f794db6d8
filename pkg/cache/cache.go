// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cache provides the KV cache used by the Searcher (whole search
// responses) and by the Ingest Pipeline (LLM-rewritten item descriptions).
// The Embedding Provider, the LLM Client and the Similarity Engine do not
// cache through it. Grounded on
// original_source/app/app/resources/cache.go's SafeCache/FakeCache pattern:
// a cache failure degrades to a miss rather than propagating, and caching
// can be switched off entirely (CacheConfig.Enabled=false) without any
// caller-side branching.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kadirpekel/semhub/pkg/apperror"
	"github.com/kadirpekel/semhub/pkg/config"
)

// Cache is the interface every caller depends on. A miss and a cache error
// are indistinguishable to the caller by design — both return ok=false.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Close() error
}

// New builds a Cache from config. When cfg.Enabled is false it returns a
// no-op cache (the Go equivalent of original_source's get_fake_cache), so
// callers never need an enabled/disabled branch of their own.
func New(cfg config.CacheConfig) Cache {
	if !cfg.Enabled {
		return fakeCache{}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Address})
	return &safeCache{client: client}
}

// fakeCache never stores anything; every Get misses.
type fakeCache struct{}

func (fakeCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (fakeCache) Set(context.Context, string, []byte, time.Duration) {}
func (fakeCache) Close() error                                { return nil }

// safeCache wraps a redis.Client so that transport errors degrade to a
// cache miss (Get) or a silently dropped write (Set) instead of failing the
// caller's request — matching SafeCache's try/except-and-log behavior.
type safeCache struct {
	client *redis.Client
}

func (c *safeCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			cacheErr := &apperror.CacheError{Operation: "get", Key: key, Err: err}
			slog.Warn(cacheErr.Error())
		}
		return nil, false
	}
	return val, true
}

func (c *safeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		cacheErr := &apperror.CacheError{Operation: "set", Key: key, Err: err}
		slog.Warn(cacheErr.Error())
	}
}

func (c *safeCache) Close() error {
	return c.client.Close()
}
