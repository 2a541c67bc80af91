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

package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Ljyi/osharp/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWorkHandle(t *testing.T) {
	db := newTestDB(t, (*User)(nil))
	uow := repository.NewUnitOfWork(db)
	ctx := context.Background()

	assert.False(t, uow.InTx())
	assert.Equal(t, db, uow.Handle())

	require.NoError(t, uow.Begin(ctx))
	assert.True(t, uow.InTx())
	assert.NotEqual(t, uow.DB(), uow.Handle())

	// No nested transactions.
	assert.Error(t, uow.Begin(ctx))

	require.NoError(t, uow.Commit())
	assert.False(t, uow.InTx())
	assert.Equal(t, db, uow.Handle())
}

func TestUnitOfWorkCommitWithoutBegin(t *testing.T) {
	db := newTestDB(t, (*User)(nil))
	uow := repository.NewUnitOfWork(db)

	assert.Error(t, uow.Commit())
	assert.Error(t, uow.Rollback())
}

func TestRunInTxCommits(t *testing.T) {
	db := newTestDB(t, (*User)(nil))
	uow := repository.NewUnitOfWork(db)
	repo := repository.NewRepository[User, int64](uow)
	ctx := context.Background()

	err := uow.RunInTx(ctx, func(ctx context.Context) error {
		_, err := repo.Insert(ctx, &User{Email: "tx@example.com"})
		return err
	})
	require.NoError(t, err)
	assert.False(t, uow.InTx())

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	db := newTestDB(t, (*User)(nil))
	uow := repository.NewUnitOfWork(db)
	repo := repository.NewRepository[User, int64](uow)
	ctx := context.Background()

	boom := errors.New("boom")
	err := uow.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := repo.Insert(ctx, &User{Email: "gone@example.com"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, uow.InTx())

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
