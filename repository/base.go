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
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Ljyi/osharp/types"
	"github.com/go-playground/validator/v10"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"
)

type baseRepositoryImpl[T any, K comparable] struct {
	uow      *UnitOfWork
	keys     KeyValidator[K]
	validate *validator.Validate
}

// Option configures a repository at construction time.
type Option[T any, K comparable] func(*baseRepositoryImpl[T, K])

// WithKeyValidator overrides the key validation strategy chosen by
// DefaultKeyValidator.
func WithKeyValidator[T any, K comparable](v KeyValidator[K]) Option[T, K] {
	return func(r *baseRepositoryImpl[T, K]) { r.keys = v }
}

// WithValidation enables struct-tag validation of entities before Insert and
// Update; failures are reported as ValidationError.
func WithValidation[T any, K comparable]() Option[T, K] {
	return func(r *baseRepositoryImpl[T, K]) {
		r.validate = validator.New(validator.WithRequiredStructEnabled())
	}
}

// NewRepository returns a generic repository bound to the given unit of work.
// The key validation strategy for K is fixed here, once.
func NewRepository[T any, K comparable](uow *UnitOfWork, opts ...Option[T, K]) Repository[T, K] {
	r := &baseRepositoryImpl[T, K]{
		uow:  uow,
		keys: DefaultKeyValidator[K](),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *baseRepositoryImpl[T, K]) UnitOfWork() *UnitOfWork { return r.uow }

func (r *baseRepositoryImpl[T, K]) Dialect() schema.Dialect { return r.uow.DB().Dialect() }

func (r *baseRepositoryImpl[T, K]) NewSelect() *bun.SelectQuery { return r.uow.Handle().NewSelect() }

func (r *baseRepositoryImpl[T, K]) NewInsert() *bun.InsertQuery { return r.uow.Handle().NewInsert() }

func (r *baseRepositoryImpl[T, K]) NewUpdate() *bun.UpdateQuery { return r.uow.Handle().NewUpdate() }

func (r *baseRepositoryImpl[T, K]) NewDelete() *bun.DeleteQuery { return r.uow.Handle().NewDelete() }

func (r *baseRepositoryImpl[T, K]) checkEntities(arg string, entities []*T) error {
	for _, entity := range entities {
		if entity == nil {
			return nilArgError(arg)
		}
		if r.validate != nil {
			if err := r.validate.Struct(entity); err != nil {
				return &ValidationError{Arg: arg, Reason: err.Error()}
			}
		}
	}
	return nil
}

func (r *baseRepositoryImpl[T, K]) Insert(ctx context.Context, entities ...*T) (int64, error) {
	if err := r.checkEntities("entities", entities); err != nil {
		return 0, err
	}
	if len(entities) == 0 {
		return 0, nil
	}
	res, err := r.uow.Handle().NewInsert().Model(&entities).Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *baseRepositoryImpl[T, K]) Update(ctx context.Context, entity *T) (int64, error) {
	if entity == nil {
		return 0, nilArgError("entity")
	}
	if err := r.checkEntities("entity", []*T{entity}); err != nil {
		return 0, err
	}
	res, err := r.uow.Handle().NewUpdate().Model(entity).WherePK().Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *baseRepositoryImpl[T, K]) Delete(ctx context.Context, entities ...*T) (int64, error) {
	for _, entity := range entities {
		if entity == nil {
			return 0, nilArgError("entities")
		}
	}
	if len(entities) == 0 {
		return 0, nil
	}
	res, err := r.uow.Handle().NewDelete().Model(&entities).WherePK().Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *baseRepositoryImpl[T, K]) DeleteByKey(ctx context.Context, key K) (int64, error) {
	if err := r.keys.Validate(key); err != nil {
		return 0, err
	}
	entity, err := r.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if entity == nil {
		// Deleting a key that matches nothing is a no-op, not an error.
		return 0, nil
	}
	return r.Delete(ctx, entity)
}

func (r *baseRepositoryImpl[T, K]) DeleteWhere(ctx context.Context, filter *types.QueryFilter) (int64, error) {
	if filter == nil {
		return 0, nilArgError("filter")
	}
	var entities []*T
	err := r.uow.Handle().NewSelect().Model(&entities).Where(filter.Schema, filter.Args...).Scan(ctx)
	if err != nil {
		return 0, err
	}
	return r.Delete(ctx, entities...)
}

func (r *baseRepositoryImpl[T, K]) Get(ctx context.Context, key K) (*T, error) {
	if err := r.keys.Validate(key); err != nil {
		return nil, err
	}
	var entity T
	err := r.uow.Handle().NewSelect().Model(&entity).Where("id = ?", key).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T, K]) GetAll(ctx context.Context) ([]*T, error) {
	var entities []*T
	err := r.uow.Handle().NewSelect().Model(&entities).Scan(ctx)
	return entities, err
}

func (r *baseRepositoryImpl[T, K]) List(ctx context.Context, filter *types.QueryFilter) ([]*T, error) {
	var entities []*T
	query := r.uow.Handle().NewSelect().Model(&entities)
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T, K]) Exists(ctx context.Context, filter *types.QueryFilter, key K) (bool, error) {
	if filter == nil {
		return false, nilArgError("filter")
	}
	query := r.uow.Handle().NewSelect().Model((*T)(nil)).Where(filter.Schema, filter.Args...)
	if !r.keys.IsUnset(key) {
		// Self-exclusion: the record being edited does not count as a
		// conflict with itself.
		query = query.Where("id != ?", key)
	}
	return query.Exists(ctx)
}

func (r *baseRepositoryImpl[T, K]) Query(relations ...string) *bun.SelectQuery {
	return applyRelations[T](r.uow.DB().NewSelect(), relations)
}

func (r *baseRepositoryImpl[T, K]) TrackQuery(relations ...string) *bun.SelectQuery {
	return applyRelations[T](r.uow.Handle().NewSelect(), relations)
}

func applyRelations[T any](query *bun.SelectQuery, relations []string) *bun.SelectQuery {
	query = query.Model((*T)(nil))
	for _, relation := range relations {
		query = query.Relation(relation)
	}
	return query
}

func (r *baseRepositoryImpl[T, K]) Page(ctx context.Context, pageRequest *types.PageRequest) (*types.Pagination[T], error) {
	var entities []*T
	query := r.uow.Handle().NewSelect().Model(&entities)
	if pageRequest.GetFilter() != nil {
		query = query.Where(pageRequest.GetFilter().Schema, pageRequest.GetFilter().Args...)
	}
	pagination := types.NewDefaultPagination[T](pageRequest.GetPage(), pageRequest.GetPageSize())
	total, err := query.Count(ctx)
	if err != nil || total == 0 {
		return pagination, err
	}
	err = query.
		Offset(pageRequest.GetOffset()).
		Limit(pageRequest.GetPageSize()).
		Order(pageRequest.GetOrders()...).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = entities
	return pagination, nil
}

func (r *baseRepositoryImpl[T, K]) Upsert(ctx context.Context, fields []string, conflictColumns []string, entities ...*T) (int64, error) {
	if err := r.checkEntities("entities", entities); err != nil {
		return 0, err
	}
	if len(fields) == 0 {
		return 0, &ValidationError{Arg: "fields", Reason: "must not be empty"}
	}
	if len(entities) == 0 {
		return 0, nil
	}

	db := r.uow.DB()
	insertQuery := r.uow.Handle().NewInsert()
	switch {
	case db.HasFeature(feature.InsertOnConflict):
		return r.upsertOnConflict(ctx, insertQuery, fields, conflictColumns, entities)
	case db.HasFeature(feature.InsertOnDuplicateKey):
		return r.upsertOnDuplicateKey(ctx, insertQuery, fields, entities)
	default:
		return r.upsertFallback(ctx, entities)
	}
}

// upsertOnConflict handles PostgreSQL and SQLite.
func (r *baseRepositoryImpl[T, K]) upsertOnConflict(ctx context.Context, insertQuery *bun.InsertQuery, fields []string, conflictColumns []string, entities []*T) (int64, error) {
	if len(conflictColumns) == 0 {
		conflictColumns = []string{"id"}
	}
	assignments := make([]string, 0, len(fields))
	for _, field := range fields {
		assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", field, field))
	}
	res, err := insertQuery.
		Model(&entities).
		On("CONFLICT (" + strings.Join(conflictColumns, ",") + ") DO UPDATE").
		Set(strings.Join(assignments, ", ")).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// upsertOnDuplicateKey handles MySQL.
func (r *baseRepositoryImpl[T, K]) upsertOnDuplicateKey(ctx context.Context, insertQuery *bun.InsertQuery, fields []string, entities []*T) (int64, error) {
	assignments := make([]string, 0, len(fields))
	for _, field := range fields {
		assignments = append(assignments, fmt.Sprintf("%s = VALUES(%s)", field, field))
	}
	res, err := insertQuery.
		Model(&entities).
		On("DUPLICATE KEY UPDATE " + strings.Join(assignments, ", ")).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// upsertFallback issues insert-then-update per entity for dialects without
// native upsert support.
func (r *baseRepositoryImpl[T, K]) upsertFallback(ctx context.Context, entities []*T) (int64, error) {
	var affected int64
	for _, entity := range entities {
		res, err := r.uow.Handle().NewInsert().Model(entity).Exec(ctx)
		if err != nil {
			res, updateErr := r.uow.Handle().NewUpdate().Model(entity).WherePK().Exec(ctx)
			if updateErr != nil {
				return affected, fmt.Errorf("upsert failed: insert error: %v, update error: %v", err, updateErr)
			}
			if n, raErr := res.RowsAffected(); raErr == nil {
				affected += n
			}
			continue
		}
		if n, raErr := res.RowsAffected(); raErr == nil {
			affected += n
		}
	}
	return affected, nil
}
