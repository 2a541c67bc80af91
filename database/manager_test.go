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

package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func newSQLiteManager(t *testing.T) AbstractDatabaseManager {
	t.Helper()
	cfg := DefaultConnectionConfig()
	cfg.Type = "sqlite"
	cfg.DBName = "file:" + t.Name() + "?mode=memory&cache=shared"
	cfg.HealthCheckInterval = 0 // no background goroutine in tests

	manager := NewDatabaseManager(cfg)
	t.Cleanup(func() { _ = manager.Disconnect() })
	return manager
}

func TestManagerConnectAndPing(t *testing.T) {
	manager := newSQLiteManager(t)
	ctx := context.Background()

	require.NoError(t, manager.Connect(ctx))
	require.NotNil(t, manager.GetDB())
	require.NotNil(t, manager.GetSQLDB())
	assert.NoError(t, manager.Ping(ctx))

	// Connect is idempotent while connected.
	assert.NoError(t, manager.Connect(ctx))
}

func TestManagerHealthCheck(t *testing.T) {
	manager := newSQLiteManager(t)
	ctx := context.Background()
	require.NoError(t, manager.Connect(ctx))

	status := manager.HealthCheck(ctx)
	assert.True(t, status.Healthy)
	assert.True(t, status.Connected)
	assert.Empty(t, status.LastError)
	assert.False(t, status.LastCheckTime.IsZero())
}

func TestManagerDisconnect(t *testing.T) {
	manager := newSQLiteManager(t)
	ctx := context.Background()
	require.NoError(t, manager.Connect(ctx))
	require.NoError(t, manager.Disconnect())

	assert.Nil(t, manager.GetDB())
	assert.Error(t, manager.Ping(ctx))

	status := manager.HealthCheck(ctx)
	assert.False(t, status.Healthy)
}

func TestManagerStats(t *testing.T) {
	manager := newSQLiteManager(t)
	assert.Zero(t, manager.GetStats().OpenConns)

	require.NoError(t, manager.Connect(context.Background()))
	stats := manager.GetStats()
	assert.Equal(t, 100, stats.MaxOpenConns)
}

type widget struct {
	bun.BaseModel `bun:"table:widgets,alias:w"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull"`
}

func TestManagerCreateTables(t *testing.T) {
	RegisteredModel(NewModelAdapter((*widget)(nil), 10))

	manager := newSQLiteManager(t)
	ctx := context.Background()
	require.NoError(t, manager.Connect(ctx))
	require.NoError(t, manager.CreateTables(ctx))
	// Idempotent thanks to IF NOT EXISTS.
	require.NoError(t, manager.CreateTables(ctx))

	db := manager.GetDB()
	_, err := db.NewInsert().Model(&widget{Name: "gear"}).Exec(ctx)
	require.NoError(t, err)

	count, err := db.NewSelect().Model((*widget)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestManagerUnsupportedType(t *testing.T) {
	cfg := DefaultConnectionConfig()
	cfg.Type = "oracle"
	manager := NewDatabaseManager(cfg)

	err := manager.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type")
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.yaml")
	content := `
connection:
  type: sqlite
  dbname: "file:cfg?mode=memory&cache=shared"
  max_open_conns: 5
  slow_query_time: 1s
bootstrap:
  create_tables_on_startup: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Connection.Type)
	assert.Equal(t, 5, cfg.Connection.MaxOpenConns)
	assert.Equal(t, time.Second, cfg.Connection.SlowQueryTime)
	assert.True(t, cfg.Bootstrap.CreateTablesOnStartup)

	// Unset values fall back to defaults.
	assert.Equal(t, 10, cfg.Connection.MaxIdleConns)
	assert.Equal(t, 10*time.Second, cfg.Connection.ConnectTimeout)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestFactoryEnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_MAX_OPEN_CONNS", "42")

	cfg := DefaultConnectionConfig()
	cfg.Type = "postgres"
	cfg.Host = "localhost"
	cfg.Port = 5432

	factory := NewDatabaseFactory()
	_, err := factory.CreateFromConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 5433, cfg.Port)
	assert.Equal(t, 42, cfg.MaxOpenConns)
}

func TestFactoryRejectsUnknownType(t *testing.T) {
	factory := NewDatabaseFactory()
	_, err := factory.CreateFromConfig(&ConnectionConfig{Type: "mongodb"})
	assert.Error(t, err)

	_, err = factory.CreateFromConfig(nil)
	assert.Error(t, err)
}
