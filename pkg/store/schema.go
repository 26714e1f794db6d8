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

package store

// schemaSQL follows task_service_sql.go's CREATE TABLE IF NOT EXISTS style:
// plain database/sql, no migration tool, schema applied at startup.
//
// One vector column per supported embedding dimension (384/768/1536/3072),
// each a bytea-encoded little-endian float32 slice, so no pgvector
// extension is required at the driver level; cosine distance is computed in
// Go over the decoded column matching the item's collection dimension.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS organizations (
    id         BIGSERIAL PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS collections (
    id               BIGSERIAL PRIMARY KEY,
    organization_id  BIGINT NOT NULL REFERENCES organizations(id) ON DELETE CASCADE,
    name             TEXT NOT NULL,
    indexer          TEXT NOT NULL DEFAULT 'sql',
    embeddings_model TEXT NOT NULL DEFAULT '',
    dimension        INT NOT NULL DEFAULT 0,
    stemmers         JSONB NOT NULL DEFAULT '[]',
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE(organization_id, name)
);

CREATE TABLE IF NOT EXISTS items_fields (
    id            BIGSERIAL PRIMARY KEY,
    collection_id BIGINT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
    name          TEXT NOT NULL,
    label         TEXT NOT NULL,
    field_type    TEXT NOT NULL,
    ordinal       INT NOT NULL,
    UNIQUE(collection_id, name)
);

CREATE TABLE IF NOT EXISTS items (
    id               BIGSERIAL PRIMARY KEY,
    collection_id    BIGINT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
    external_id      TEXT NOT NULL,
    fields           JSONB NOT NULL DEFAULT '{}',
    scores           JSONB NOT NULL DEFAULT '{}',
    description      TEXT NOT NULL DEFAULT '',
    description_hash TEXT NOT NULL DEFAULT '',
    vector_384       BYTEA,
    vector_768       BYTEA,
    vector_1536      BYTEA,
    vector_3072      BYTEA,
    embeddings_dirty BOOLEAN NOT NULL DEFAULT true,
    index_dirty      BOOLEAN NOT NULL DEFAULT true,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE(collection_id, external_id)
);

CREATE INDEX IF NOT EXISTS idx_items_collection_dirty
    ON items(collection_id) WHERE embeddings_dirty OR index_dirty;

CREATE TABLE IF NOT EXISTS persons (
    id            BIGSERIAL PRIMARY KEY,
    collection_id BIGINT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
    external_id   TEXT NOT NULL,
    fields        JSONB NOT NULL DEFAULT '{}',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE(collection_id, external_id)
);

CREATE TABLE IF NOT EXISTS search_history (
    id                 BIGSERIAL PRIMARY KEY,
    collection_id      BIGINT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
    person_external_id TEXT NOT NULL,
    item_external_ids  JSONB NOT NULL DEFAULT '[]',
    request_config     JSONB NOT NULL DEFAULT '{}',
    created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_search_history_collection_created
    ON search_history(collection_id, created_at);

CREATE TABLE IF NOT EXISTS events (
    id                 BIGSERIAL PRIMARY KEY,
    collection_id      BIGINT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
    event_type         TEXT NOT NULL,
    person_external_id TEXT NOT NULL,
    item_external_id   TEXT NOT NULL,
    weight             DOUBLE PRECISION NOT NULL DEFAULT 1,
    search_history_id  BIGINT REFERENCES search_history(id) ON DELETE SET NULL,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_events_collection_person_type
    ON events(collection_id, person_external_id, event_type);
CREATE INDEX IF NOT EXISTS idx_events_collection_created
    ON events(collection_id, created_at);
`
