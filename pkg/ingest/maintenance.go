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

package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kadirpekel/semhub/pkg/embedders"
	"github.com/kadirpekel/semhub/pkg/indexer"
	"github.com/kadirpekel/semhub/pkg/lock"
	"github.com/kadirpekel/semhub/pkg/logger"
	"github.com/kadirpekel/semhub/pkg/store"
)

// Maintenance runs the periodic dirty-item sweep for one collection: batch
// embeds items flagged embeddings_dirty, reindexes items flagged
// index_dirty, then clears the matching flag per item as it succeeds.
type Maintenance struct {
	Store        *store.Store
	CollectionID int64
	Embedder     embedders.Provider
	Indexer      indexer.Indexer
	Lock         *lock.TemporalLock
	BatchSize    int
	LockTTL      time.Duration
}

// lockName is the distributed temporal-lock key guaranteeing at most one
// maintenance runner per collection per interval.
func (m *Maintenance) lockName() string {
	return fmt.Sprintf("maintenance:%d", m.CollectionID)
}

// Run executes one maintenance pass, guarded by the temporal lock: a
// concurrently-running replica simply skips this tick (ran=false).
func (m *Maintenance) Run(ctx context.Context) (ran bool, err error) {
	return lock.WithLock(ctx, m.Lock, m.lockName(), m.LockTTL, func(ctx context.Context) error {
		if err := m.processDirtyEmbeddings(ctx); err != nil {
			return fmt.Errorf("maintenance: embeddings: %w", err)
		}
		if err := m.processDirtyIndex(ctx); err != nil {
			return fmt.Errorf("maintenance: index: %w", err)
		}
		return nil
	})
}

func (m *Maintenance) processDirtyEmbeddings(ctx context.Context) error {
	items, err := m.Store.ListDirtyEmbeddings(ctx, m.CollectionID, m.BatchSize)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	descriptions := make([]string, len(items))
	for i, item := range items {
		descriptions[i] = item.Description
	}
	vectors, err := m.Embedder.EmbedBatch(ctx, descriptions)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}
	if len(vectors) != len(items) {
		return fmt.Errorf("embed batch: got %d vectors for %d items", len(vectors), len(items))
	}

	for i, item := range items {
		if err := m.Store.SetItemVector(ctx, item.ID, vectors[i]); err != nil {
			logger.GetLogger().Error("maintenance: set item vector failed", "item_id", item.ID, "error", err)
			continue
		}
	}
	return nil
}

func (m *Maintenance) processDirtyIndex(ctx context.Context) error {
	items, err := m.Store.ListDirtyIndex(ctx, m.CollectionID, m.BatchSize)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	externalIDs := make([]string, len(items))
	for i, item := range items {
		externalIDs[i] = item.ExternalID
	}
	if err := m.Indexer.IndexItems(ctx, externalIDs); err != nil {
		return fmt.Errorf("index items: %w", err)
	}

	for _, item := range items {
		if err := m.Store.ClearIndexDirty(ctx, item.ID); err != nil {
			logger.GetLogger().Error("maintenance: clear index dirty failed", "item_id", item.ID, "error", err)
		}
	}
	return nil
}

// Retention runs the periodic retention sweep per §6's Retention rules:
// prune old events, old search-history rows, and lone low-count events.
type Retention struct {
	Store                 *store.Store
	CollectionID          int64
	Lock                  *lock.TemporalLock
	LockTTL               time.Duration
	EventsAfter           time.Duration
	SearchHistoryAfter    time.Duration
	LoneEventsAfter       time.Duration
	LoneEventsMinCount    int
	MaxEventsPerPersonType int
}

func (r *Retention) lockName() string {
	return fmt.Sprintf("retention:%d", r.CollectionID)
}

// Run executes one retention pass, guarded by the temporal lock.
func (r *Retention) Run(ctx context.Context) (ran bool, err error) {
	return lock.WithLock(ctx, r.Lock, r.lockName(), r.LockTTL, func(ctx context.Context) error {
		now := time.Now()

		if _, err := r.Store.PruneEventsOlderThan(ctx, r.CollectionID, now.Add(-r.EventsAfter)); err != nil {
			return fmt.Errorf("retention: prune events: %w", err)
		}
		if _, err := r.Store.PruneSearchHistoryOlderThan(ctx, r.CollectionID, now.Add(-r.SearchHistoryAfter)); err != nil {
			return fmt.Errorf("retention: prune search history: %w", err)
		}
		if _, err := r.Store.PruneLoneEvents(ctx, r.CollectionID, now.Add(-r.LoneEventsAfter), r.LoneEventsMinCount); err != nil {
			return fmt.Errorf("retention: prune lone events: %w", err)
		}
		if _, err := r.Store.PruneExcessEventsPerPersonType(ctx, r.CollectionID, r.MaxEventsPerPersonType); err != nil {
			return fmt.Errorf("retention: prune excess events: %w", err)
		}
		return nil
	})
}

// Scheduler cron-schedules a collection's Maintenance and Retention jobs.
// Failures are logged and swallowed: the dirty flags/old rows simply
// remain for the next tick to retry, per §5's ordering guarantees.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler builds an empty, unstarted Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// ScheduleMaintenance runs m.Run every interval until the scheduler stops.
func (s *Scheduler) ScheduleMaintenance(spec string, m *Maintenance) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx := context.Background()
		if _, err := m.Run(ctx); err != nil {
			logger.GetLogger().Error("maintenance run failed", "collection_id", m.CollectionID, "error", err)
		}
	})
	return err
}

// ScheduleRetention runs r.Run every interval until the scheduler stops.
func (s *Scheduler) ScheduleRetention(spec string, r *Retention) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx := context.Background()
		if _, err := r.Run(ctx); err != nil {
			logger.GetLogger().Error("retention run failed", "collection_id", r.CollectionID, "error", err)
		}
	})
	return err
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the scheduler, waiting for any in-flight job to finish.
func (s *Scheduler) Stop() { <-s.cron.Stop().Done() }
