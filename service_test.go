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

package osharp_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/Ljyi/osharp"
	"github.com/Ljyi/osharp/database"
	"github.com/Ljyi/osharp/repository"
	"github.com/Ljyi/osharp/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type Customer struct {
	bun.BaseModel `bun:"table:customers,alias:c"`

	ID    int64  `bun:"id,pk,autoincrement"`
	Email string `bun:"email,notnull,unique"`
	Name  string `bun:"name,notnull"`
}

func TestMain(m *testing.M) {
	database.SetSQLLogSilent(true)
	database.RegisteredModel(database.NewModelAdapter((*Customer)(nil), 1))

	cfg := &database.Config{
		Connection: database.ConnectionConfig{
			Type:   "sqlite",
			DBName: "file:osharp_service?mode=memory&cache=shared",
		},
		Bootstrap: database.BootstrapConfig{CreateTablesOnStartup: true},
	}
	if _, err := database.InitDB(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "init database: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	_ = database.CloseDB()
	os.Exit(code)
}

func TestServiceCrudLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := osharp.NewService[Customer, int64]()

	customer := &Customer{Email: "svc-crud@example.com", Name: "first"}
	affected, err := svc.Save(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	require.NotZero(t, customer.ID)

	got, err := svc.Get(ctx, customer.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "first", got.Name)

	got.Name = "renamed"
	affected, err = svc.Update(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	got, err = svc.Get(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)

	affected, err = svc.DeleteByKey(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	got, err = svc.Get(ctx, customer.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestServiceListAndExists(t *testing.T) {
	ctx := context.Background()
	svc := osharp.NewService[Customer, int64]()

	a := &Customer{Email: "svc-list-a@example.com", Name: "listed"}
	b := &Customer{Email: "svc-list-b@example.com", Name: "listed"}
	_, err := svc.Save(ctx, a)
	require.NoError(t, err)
	_, err = svc.Save(ctx, b)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = svc.Delete(ctx, a, b) })

	listed, err := svc.List(ctx, types.NewQueryFilter("name = ?", "listed"))
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	// Excluding a's own key still finds b.
	exists, err := svc.Exists(ctx, types.NewQueryFilter("name = ?", "listed"), a.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.Exists(ctx, types.NewQueryFilter("email = ?", a.Email), a.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestServicePage(t *testing.T) {
	ctx := context.Background()
	svc := osharp.NewService[Customer, int64]()

	var saved []*Customer
	for i := 0; i < 7; i++ {
		c := &Customer{Email: fmt.Sprintf("svc-page-%d@example.com", i), Name: "paged"}
		_, err := svc.Save(ctx, c)
		require.NoError(t, err)
		saved = append(saved, c)
	}
	t.Cleanup(func() { _, _ = svc.Delete(ctx, saved...) })

	page, err := svc.Page(ctx, types.NewPageRequest(2, 3,
		types.NewQueryFilter("name = ?", "paged"), []string{"id ASC"}))
	require.NoError(t, err)
	assert.Equal(t, 7, page.Total)
	assert.Equal(t, 3, page.Pages())
	require.Len(t, page.Items, 3)
	assert.Equal(t, saved[3].ID, page.Items[0].ID)
}

func TestServiceRunInTxRollback(t *testing.T) {
	ctx := context.Background()
	uow := repository.NewUnitOfWork(database.GetDB())
	svc := osharp.NewServiceWithUnitOfWork[Customer, int64](uow)

	sentinel := fmt.Errorf("abort")
	err := svc.RunInTx(ctx, func(ctx context.Context) error {
		_, err := svc.Save(ctx, &Customer{Email: "svc-tx@example.com", Name: "tx"})
		require.NoError(t, err)
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	got, err := svc.List(ctx, types.NewQueryFilter("email = ?", "svc-tx@example.com"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestServiceBuilders(t *testing.T) {
	ctx := context.Background()
	svc := osharp.NewService[Customer, int64]()

	c := &Customer{Email: "svc-builder@example.com", Name: "builder"}
	_, err := svc.Save(ctx, c)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = svc.Delete(ctx, c) })

	count, err := svc.SelectBuilder().Where("email = ?", c.Email).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var names []string
	err = svc.Query().Column("name").Where("email = ?", c.Email).Scan(ctx, &names)
	require.NoError(t, err)
	assert.Equal(t, []string{"builder"}, names)
}
