/*
 * Copyright 2025 Ljyi.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package repository

import (
	"context"

	"github.com/Ljyi/osharp/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// CrudRepository defines the mutating operations for a generic entity type
// with key type K. Mutations return the number of rows the database reported
// as affected; driver errors propagate unchanged.
type CrudRepository[T any, K comparable] interface {
	// Insert stages the given entities for addition and persists them.
	// A nil entity is a ValidationError; zero entities is a no-op.
	Insert(ctx context.Context, entities ...*T) (int64, error)

	// Update persists the entity's current state by primary key.
	Update(ctx context.Context, entity *T) (int64, error)

	// Delete removes the given entities by primary key.
	Delete(ctx context.Context, entities ...*T) (int64, error)

	// DeleteByKey validates the key, then removes the matching row.
	// A missing row is a no-op returning 0.
	DeleteByKey(ctx context.Context, key K) (int64, error)

	// DeleteWhere materializes every row matching the filter and removes
	// them as one batch.
	DeleteWhere(ctx context.Context, filter *types.QueryFilter) (int64, error)

	// Upsert inserts the entities, updating the listed fields when a row
	// with the same conflict columns already exists.
	Upsert(ctx context.Context, fields []string, conflictColumns []string, entities ...*T) (int64, error)
}

// QueryRepository defines the read operations for a generic entity type.
type QueryRepository[T any, K comparable] interface {
	// Get validates the key and returns the matching entity, or (nil, nil)
	// when no row exists.
	Get(ctx context.Context, key K) (*T, error)

	// GetAll returns every entity.
	GetAll(ctx context.Context) ([]*T, error)

	// List returns the entities matching the filter; a nil filter matches
	// everything.
	List(ctx context.Context, filter *types.QueryFilter) ([]*T, error)

	// Exists reports whether a row matches the filter. When key is not the
	// unset value for its kind, rows whose id equals key are excluded, so
	// the check answers "does a different record already satisfy this
	// uniqueness criteria".
	Exists(ctx context.Context, filter *types.QueryFilter, key K) (bool, error)

	// Query returns a composable select over the entity set, eagerly
	// loading one relation per name. It runs against the base database,
	// outside any transaction open on the unit of work, so results are a
	// read-only snapshot.
	Query(relations ...string) *bun.SelectQuery

	// TrackQuery is Query bound to the unit of work's current handle:
	// inside an open transaction its rows can be mutated, passed to
	// Update, and committed together.
	TrackQuery(relations ...string) *bun.SelectQuery
}

// PageQueryRepository defines pagination over the entity type.
type PageQueryRepository[T any] interface {
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)
}

// Repository combines CRUD, read, and pagination operations, and exposes the
// Bun query builders for advanced use cases. Every statement runs through
// the repository's unit of work.
type Repository[T any, K comparable] interface {
	CrudRepository[T, K]
	QueryRepository[T, K]
	PageQueryRepository[T]
	UnitOfWork() *UnitOfWork
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}
