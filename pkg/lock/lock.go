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

// Package lock provides the Redis-backed temporal lock that guards the
// Ingest Pipeline's periodic maintenance/retention jobs (one worker runs
// them per collection, regardless of how many semhubd replicas are up).
//
// Grounded on original_source/app/app/utils/temporal_lock.go
// (RedisTemporalLock): get the "rtl:<name>" key, then set it with an
// expiry, returning whether it was free beforehand. The original's
// `rdb.setex(name, 1, expire)` passes redis-py's (name, time, value)
// parameters in the wrong order — it sets a 1-second TTL on a value equal
// to the intended expiry, not an `expire`-second TTL. That reads as a
// transposition bug rather than intended behavior (a 1-second maintenance
// lock would make the lock pointless), so this port implements the clearly
// intended semantics instead: set "rtl:<name>" only if it is absent, with
// TTL=expire.
package lock

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kadirpekel/semhub/pkg/config"
)

// TemporalLock reports whether the caller acquired exclusive ownership of
// name for the given duration.
type TemporalLock struct {
	client *redis.Client
}

// New builds a TemporalLock backed by the Redis address in cfg.
func New(cfg config.LockConfig) *TemporalLock {
	return &TemporalLock{client: redis.NewClient(&redis.Options{Addr: cfg.Address})}
}

// Acquire marks name held for expire if it is free (a single SET NX with
// that TTL) and reports whether it did so. A lock that is already held
// keeps its existing TTL.
func (l *TemporalLock) Acquire(ctx context.Context, name string, expire time.Duration) (bool, error) {
	return l.client.SetNX(ctx, "rtl:"+name, "1", expire).Result()
}

// Release clears name so the next Acquire call succeeds immediately,
// matching the original's __exit__ delete.
func (l *TemporalLock) Release(ctx context.Context, name string) error {
	return l.client.Del(ctx, "rtl:"+name).Err()
}

// Close releases the underlying Redis client.
func (l *TemporalLock) Close() error {
	return l.client.Close()
}

// WithLock runs fn only if name is currently free, releasing the lock
// afterward regardless of fn's outcome. It returns false if the lock was
// already held (fn was not run).
func WithLock(ctx context.Context, l *TemporalLock, name string, expire time.Duration, fn func(ctx context.Context) error) (ran bool, err error) {
	acquired, err := l.Acquire(ctx, name, expire)
	if err != nil {
		return false, err
	}
	if !acquired {
		return false, nil
	}
	defer func() {
		if releaseErr := l.Release(ctx, name); releaseErr != nil && err == nil {
			err = releaseErr
		}
	}()
	return true, fn(ctx)
}
