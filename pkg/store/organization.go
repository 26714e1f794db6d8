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

import (
	"context"
	"database/sql"
	"fmt"
)

// GetOrCreateOrganization returns the Organization named name, creating it
// if absent — Organizations have no explicit creation operation of their
// own, they come into being on first reference.
func (s *Store) GetOrCreateOrganization(ctx context.Context, name string) (*Organization, error) {
	org, err := s.GetOrganizationByName(ctx, name)
	if err == nil {
		return org, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	var o Organization
	row := s.db.QueryRowContext(ctx, `
INSERT INTO organizations (name) VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id, name, created_at`, name)
	if err := row.Scan(&o.ID, &o.Name, &o.CreatedAt); err != nil {
		return nil, fmt.Errorf("create organization: %w", err)
	}
	return &o, nil
}

// GetOrganizationByName looks up an Organization by its stable name.
func (s *Store) GetOrganizationByName(ctx context.Context, name string) (*Organization, error) {
	var o Organization
	row := s.db.QueryRowContext(ctx, `
SELECT id, name, created_at FROM organizations WHERE name = $1`, name)
	if err := row.Scan(&o.ID, &o.Name, &o.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return &o, nil
}
