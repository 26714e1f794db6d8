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

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/kadirpekel/semhub/pkg/config"
	"github.com/kadirpekel/semhub/pkg/embedders"
	"github.com/kadirpekel/semhub/pkg/httpapi"
	"github.com/kadirpekel/semhub/pkg/ingest"
	"github.com/kadirpekel/semhub/pkg/store"
)

const gracefulShutdownTimeout = 10 * time.Second

// scheduleMaintenance builds one Maintenance/Retention pair per configured
// collection and registers them on a cron Scheduler, running at
// cfg.Maintenance.Interval/RetentionInterval respectively. Collections
// referenced only implicitly (never named in cfg.Collections) pick up
// maintenance lazily the first time httpapi builds their runtime, but have
// no scheduled sweep until they're named here — matching §4.12's
// per-collection job model, which presumes a known set of collections to
// sweep rather than discovering them at runtime.
func scheduleMaintenance(ctx context.Context, cfg *config.Config, st *store.Store, embReg *embedders.Registry, app *httpapi.App) (*ingest.Scheduler, error) {
	scheduler := ingest.NewScheduler()

	maintenanceSpec := "@every " + cfg.Maintenance.Interval
	retentionSpec := "@every " + cfg.Maintenance.RetentionInterval

	eventsAfter, err := config.ParseDuration(cfg.Maintenance.EventsCleanupAfter)
	if err != nil {
		return nil, fmt.Errorf("parse events_cleanup_after: %w", err)
	}
	searchHistoryAfter, err := config.ParseDuration(cfg.Maintenance.SearchHistoryCleanupAfter)
	if err != nil {
		return nil, fmt.Errorf("parse search_history_cleanup_after: %w", err)
	}
	loneEventsAfter, err := config.ParseDuration(cfg.Maintenance.EventsCleanupLoneEventsAfter)
	if err != nil {
		return nil, fmt.Errorf("parse events_cleanup_lone_events_after: %w", err)
	}
	lockTTL, err := config.ParseDuration(cfg.Maintenance.Interval)
	if err != nil {
		return nil, fmt.Errorf("parse maintenance interval: %w", err)
	}

	for name, collCfg := range cfg.Collections {
		orgName := collCfg.Organization
		if orgName == "" {
			orgName = cfg.Organization
		}
		org, err := st.GetOrCreateOrganization(ctx, orgName)
		if err != nil {
			return nil, fmt.Errorf("get or create organization for collection %q: %w", name, err)
		}

		dimension := 0
		var embedder embedders.Provider
		if collCfg.EmbeddingsModel != "" {
			var ok bool
			embedder, ok = embReg.Get(collCfg.EmbeddingsModel)
			if !ok {
				return nil, fmt.Errorf("collection %q references undefined embedder %q", name, collCfg.EmbeddingsModel)
			}
			dimension = embedder.GetDimension()
		}

		coll, err := st.GetOrCreateCollection(ctx, org.ID, name, collCfg.Indexer, collCfg.EmbeddingsModel, dimension, collCfg.Stemmers)
		if err != nil {
			return nil, fmt.Errorf("get or create collection %q: %w", name, err)
		}

		idx, err := app.BuildIndexerForScheduling(coll)
		if err != nil {
			return nil, fmt.Errorf("build indexer for collection %q: %w", name, err)
		}

		maintenance := &ingest.Maintenance{
			Store:        st,
			CollectionID: coll.ID,
			Embedder:     embedder,
			Indexer:      idx,
			Lock:         app.Lock,
			BatchSize:    cfg.Maintenance.BatchSize,
			LockTTL:      lockTTL,
		}
		if err := scheduler.ScheduleMaintenance(maintenanceSpec, maintenance); err != nil {
			return nil, fmt.Errorf("schedule maintenance for collection %q: %w", name, err)
		}

		retention := &ingest.Retention{
			Store:                  st,
			CollectionID:           coll.ID,
			Lock:                   app.Lock,
			LockTTL:                lockTTL,
			EventsAfter:            eventsAfter,
			SearchHistoryAfter:     searchHistoryAfter,
			LoneEventsAfter:        loneEventsAfter,
			LoneEventsMinCount:     cfg.Maintenance.EventsCleanupLoneEventsMinimum,
			MaxEventsPerPersonType: cfg.Maintenance.EventsCleanupMaxPerPersonType,
		}
		if err := scheduler.ScheduleRetention(retentionSpec, retention); err != nil {
			return nil, fmt.Errorf("schedule retention for collection %q: %w", name, err)
		}
	}

	return scheduler, nil
}
