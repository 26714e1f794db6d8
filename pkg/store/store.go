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

// Package store is the Postgres-backed persistence layer for every entity
// in the data model: Organization, Collection, Item, Items-Field, Person,
// Event, Search-History. Grounded on hector's
// pkg/agent/task_service_sql.go: plain database/sql, $N placeholders,
// CREATE TABLE IF NOT EXISTS applied at startup rather than a migration
// tool, context-bound Exec/Query calls throughout.
//
// Unlike the teacher (which supported postgres/mysql/sqlite behind one
// dialect switch), this store is Postgres-only: JSONB field maps and the
// per-dimension bytea vector columns are Postgres-specific, and the data
// model calls for neither MySQL nor SQLite support.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/kadirpekel/semhub/pkg/config"
)

// Store wraps a Postgres connection pool and implements the persistence
// operations needed by Ingest, Indexer, Searcher and the maintenance jobs.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres, applies the connection-pool settings and
// creates the schema if absent.
func Open(cfg config.StoreConfig) (*Store, error) {
	db, err := sql.Open("postgres", cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	if lifetime, err := config.ParseDuration(cfg.ConnMaxLifetime); err == nil {
		db.SetConnMaxLifetime(lifetime)
	} else {
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already-open *sql.DB, for tests (sqlmock) and callers that
// manage the connection pool themselves.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// ErrNotFound is returned by Get-style lookups that find no matching row.
var ErrNotFound = fmt.Errorf("not found")
