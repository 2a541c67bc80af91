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

package osharp

import (
	"context"
	"sync"

	"github.com/Ljyi/osharp/database"
	"github.com/Ljyi/osharp/repository"
	"github.com/Ljyi/osharp/types"
	"github.com/uptrace/bun"
)

// Service is the high-level facade over the generic repository for entity
// type T with key type K. The zero-configuration path binds lazily to the
// globally initialized database; per-request scoping goes through
// NewServiceWithUnitOfWork.
type Service[T any, K comparable] interface {
	// Get returns the entity with the given key, or nil when absent.
	Get(ctx context.Context, key K) (*T, error)

	// All returns all entities.
	All(ctx context.Context) ([]*T, error)

	// List returns entities that match the provided filter.
	List(ctx context.Context, filter *types.QueryFilter) ([]*T, error)

	// Exists reports whether a record other than key satisfies the filter.
	Exists(ctx context.Context, filter *types.QueryFilter, key K) (bool, error)

	// Page returns a paginated list of entities.
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)

	// Save inserts one or more new entities, returning rows affected.
	Save(ctx context.Context, entities ...*T) (int64, error)

	// SaveOrUpdate upserts entities based on fields and conflict columns.
	SaveOrUpdate(ctx context.Context, fields []string, conflictColumns []string, entities ...*T) (int64, error)

	// Update persists an existing entity by primary key.
	Update(ctx context.Context, entity *T) (int64, error)

	// Delete removes entities by primary key.
	Delete(ctx context.Context, entities ...*T) (int64, error)

	// DeleteByKey removes the entity with the given key; missing is a no-op.
	DeleteByKey(ctx context.Context, key K) (int64, error)

	// DeleteWhere removes every entity matching the filter.
	DeleteWhere(ctx context.Context, filter *types.QueryFilter) (int64, error)

	// Query returns an untracked, composable select with eager-loaded
	// relations; results are a read-only snapshot.
	Query(relations ...string) *bun.SelectQuery

	// TrackQuery returns a select bound to the unit-of-work scope, for rows
	// the caller intends to mutate and update in the same scope.
	TrackQuery(relations ...string) *bun.SelectQuery

	// RunInTx executes fn inside a transaction on the service's unit of
	// work; every repository operation issued within joins it.
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error

	// Repository exposes the underlying generic repository.
	Repository() repository.Repository[T, K]

	// SelectBuilder returns a Bun select query builder for the entity.
	SelectBuilder() *bun.SelectQuery

	// InsertBuilder returns a Bun insert query builder for the entity.
	InsertBuilder() *bun.InsertQuery

	// UpdateBuilder returns a Bun update query builder for the entity.
	UpdateBuilder() *bun.UpdateQuery

	// DeleteBuilder returns a Bun delete query builder for the entity.
	DeleteBuilder() *bun.DeleteQuery
}

type baseServiceImpl[T any, K comparable] struct {
	repo repository.Repository[T, K]
	opts []repository.Option[T, K]
	once sync.Once
}

// NewService returns a Service bound lazily to a unit of work over the
// global database connection.
func NewService[T any, K comparable](opts ...repository.Option[T, K]) Service[T, K] {
	return &baseServiceImpl[T, K]{opts: opts}
}

// NewServiceWithUnitOfWork returns a Service bound to an existing
// unit-of-work scope, typically one per request or transaction.
func NewServiceWithUnitOfWork[T any, K comparable](uow *repository.UnitOfWork, opts ...repository.Option[T, K]) Service[T, K] {
	s := &baseServiceImpl[T, K]{opts: opts}
	s.once.Do(func() {
		s.repo = repository.NewRepository[T, K](uow, opts...)
	})
	return s
}

func (s *baseServiceImpl[T, K]) baseRepo() repository.Repository[T, K] {
	s.once.Do(func() {
		uow := repository.NewUnitOfWork(database.GetDB())
		s.repo = repository.NewRepository[T, K](uow, s.opts...)
	})
	return s.repo
}

func (s *baseServiceImpl[T, K]) Get(ctx context.Context, key K) (*T, error) {
	return s.baseRepo().Get(ctx, key)
}

func (s *baseServiceImpl[T, K]) All(ctx context.Context) ([]*T, error) {
	return s.baseRepo().GetAll(ctx)
}

func (s *baseServiceImpl[T, K]) List(ctx context.Context, filter *types.QueryFilter) ([]*T, error) {
	return s.baseRepo().List(ctx, filter)
}

func (s *baseServiceImpl[T, K]) Exists(ctx context.Context, filter *types.QueryFilter, key K) (bool, error) {
	return s.baseRepo().Exists(ctx, filter, key)
}

func (s *baseServiceImpl[T, K]) Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error) {
	return s.baseRepo().Page(ctx, page)
}

func (s *baseServiceImpl[T, K]) Save(ctx context.Context, entities ...*T) (int64, error) {
	return s.baseRepo().Insert(ctx, entities...)
}

func (s *baseServiceImpl[T, K]) SaveOrUpdate(ctx context.Context, fields []string, conflictColumns []string, entities ...*T) (int64, error) {
	return s.baseRepo().Upsert(ctx, fields, conflictColumns, entities...)
}

func (s *baseServiceImpl[T, K]) Update(ctx context.Context, entity *T) (int64, error) {
	return s.baseRepo().Update(ctx, entity)
}

func (s *baseServiceImpl[T, K]) Delete(ctx context.Context, entities ...*T) (int64, error) {
	return s.baseRepo().Delete(ctx, entities...)
}

func (s *baseServiceImpl[T, K]) DeleteByKey(ctx context.Context, key K) (int64, error) {
	return s.baseRepo().DeleteByKey(ctx, key)
}

func (s *baseServiceImpl[T, K]) DeleteWhere(ctx context.Context, filter *types.QueryFilter) (int64, error) {
	return s.baseRepo().DeleteWhere(ctx, filter)
}

func (s *baseServiceImpl[T, K]) Query(relations ...string) *bun.SelectQuery {
	return s.baseRepo().Query(relations...)
}

func (s *baseServiceImpl[T, K]) TrackQuery(relations ...string) *bun.SelectQuery {
	return s.baseRepo().TrackQuery(relations...)
}

func (s *baseServiceImpl[T, K]) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.baseRepo().UnitOfWork().RunInTx(ctx, fn)
}

func (s *baseServiceImpl[T, K]) Repository() repository.Repository[T, K] {
	return s.baseRepo()
}

func (s *baseServiceImpl[T, K]) SelectBuilder() *bun.SelectQuery {
	return s.baseRepo().NewSelect()
}

func (s *baseServiceImpl[T, K]) InsertBuilder() *bun.InsertQuery {
	return s.baseRepo().NewInsert()
}

func (s *baseServiceImpl[T, K]) UpdateBuilder() *bun.UpdateQuery {
	return s.baseRepo().NewUpdate()
}

func (s *baseServiceImpl[T, K]) DeleteBuilder() *bun.DeleteQuery {
	return s.baseRepo().NewDelete()
}
