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
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/uptrace/bun"
	"gopkg.in/yaml.v3"
)

// AbstractDatabaseManager defines the operations for managing a database
// connection: lifecycle, health reporting, and schema bootstrap for the
// registered models.
type AbstractDatabaseManager interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Reconnect(ctx context.Context) error
	Ping(ctx context.Context) error
	HealthCheck(ctx context.Context) *HealthStatus
	GetDB() *bun.DB
	GetSQLDB() *sql.DB
	CreateTables(ctx context.Context) error
	GetStats() *DBStats
	SetLogger(logger Logger)
}

// AbstractDatabaseConfigProvider exposes configuration loading.
type AbstractDatabaseConfigProvider interface {
	ConfigLoader() *Config
}

// HealthStatus holds the result of a health check against the database.
type HealthStatus struct {
	Healthy       bool          `json:"healthy"`
	Connected     bool          `json:"connected"`
	ResponseTime  time.Duration `json:"response_time"`
	ActiveConns   int           `json:"active_conns"`
	IdleConns     int           `json:"idle_conns"`
	MaxOpenConns  int           `json:"max_open_conns"`
	LastError     string        `json:"last_error,omitempty"`
	LastCheckTime time.Time     `json:"last_check_time"`
}

// DBStats mirrors database/sql stats returned by the manager.
type DBStats struct {
	MaxOpenConns      int           `json:"max_open_conns"`
	OpenConns         int           `json:"open_conns"`
	InUse             int           `json:"in_use"`
	Idle              int           `json:"idle"`
	WaitCount         int64         `json:"wait_count"`
	WaitDuration      time.Duration `json:"wait_duration"`
	MaxIdleClosed     int64         `json:"max_idle_closed"`
	MaxIdleTimeClosed int64         `json:"max_idle_time_closed"`
	MaxLifetimeClosed int64         `json:"max_lifetime_closed"`
}

// ConnectionConfig describes how to connect to a database and tune its pool.
type ConnectionConfig struct {
	Type                string        `json:"type" yaml:"type"` // postgres, mysql, sqlite
	Host                string        `json:"host" yaml:"host"`
	Port                int           `json:"port" yaml:"port"`
	Username            string        `json:"username" yaml:"username"`
	Password            string        `json:"password" yaml:"password"`
	DBName              string        `json:"dbname" yaml:"dbname"`
	SSLMode             string        `json:"sslmode" yaml:"sslmode"`
	MaxIdleConns        int           `json:"max_idle_conns" yaml:"max_idle_conns"`
	MaxOpenConns        int           `json:"max_open_conns" yaml:"max_open_conns"`
	ConnMaxLifetime     time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime"`
	ConnMaxIdleTime     time.Duration `json:"conn_max_idle_time" yaml:"conn_max_idle_time"`
	ConnectTimeout      time.Duration `json:"connect_timeout" yaml:"connect_timeout"`
	ReadTimeout         time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout        time.Duration `json:"write_timeout" yaml:"write_timeout"`
	EnableReconnect     bool          `json:"enable_reconnect" yaml:"enable_reconnect"`
	ReconnectInterval   time.Duration `json:"reconnect_interval" yaml:"reconnect_interval"`
	MaxReconnectTries   int           `json:"max_reconnect_tries" yaml:"max_reconnect_tries"`
	HealthCheckInterval time.Duration `json:"health_check_interval" yaml:"health_check_interval"`
	EnableQueryLog      bool          `json:"enable_query_log" yaml:"enable_query_log"`
	SlowQueryTime       time.Duration `json:"slow_query_time" yaml:"slow_query_time"`
}

// UnmarshalYAML decodes a connection section, accepting human-readable
// duration strings ("30s", "1h") for the timeout and interval fields.
func (c *ConnectionConfig) UnmarshalYAML(node *yaml.Node) error {
	type rawConnectionConfig struct {
		Type                string `yaml:"type"`
		Host                string `yaml:"host"`
		Port                int    `yaml:"port"`
		Username            string `yaml:"username"`
		Password            string `yaml:"password"`
		DBName              string `yaml:"dbname"`
		SSLMode             string `yaml:"sslmode"`
		MaxIdleConns        int    `yaml:"max_idle_conns"`
		MaxOpenConns        int    `yaml:"max_open_conns"`
		ConnMaxLifetime     string `yaml:"conn_max_lifetime"`
		ConnMaxIdleTime     string `yaml:"conn_max_idle_time"`
		ConnectTimeout      string `yaml:"connect_timeout"`
		ReadTimeout         string `yaml:"read_timeout"`
		WriteTimeout        string `yaml:"write_timeout"`
		EnableReconnect     bool   `yaml:"enable_reconnect"`
		ReconnectInterval   string `yaml:"reconnect_interval"`
		MaxReconnectTries   int    `yaml:"max_reconnect_tries"`
		HealthCheckInterval string `yaml:"health_check_interval"`
		EnableQueryLog      bool   `yaml:"enable_query_log"`
		SlowQueryTime       string `yaml:"slow_query_time"`
	}

	var raw rawConnectionConfig
	if err := node.Decode(&raw); err != nil {
		return err
	}

	c.Type = raw.Type
	c.Host = raw.Host
	c.Port = raw.Port
	c.Username = raw.Username
	c.Password = raw.Password
	c.DBName = raw.DBName
	c.SSLMode = raw.SSLMode
	c.MaxIdleConns = raw.MaxIdleConns
	c.MaxOpenConns = raw.MaxOpenConns
	c.EnableReconnect = raw.EnableReconnect
	c.MaxReconnectTries = raw.MaxReconnectTries
	c.EnableQueryLog = raw.EnableQueryLog

	for _, d := range []struct {
		src  string
		dest *time.Duration
		name string
	}{
		{raw.ConnMaxLifetime, &c.ConnMaxLifetime, "conn_max_lifetime"},
		{raw.ConnMaxIdleTime, &c.ConnMaxIdleTime, "conn_max_idle_time"},
		{raw.ConnectTimeout, &c.ConnectTimeout, "connect_timeout"},
		{raw.ReadTimeout, &c.ReadTimeout, "read_timeout"},
		{raw.WriteTimeout, &c.WriteTimeout, "write_timeout"},
		{raw.ReconnectInterval, &c.ReconnectInterval, "reconnect_interval"},
		{raw.HealthCheckInterval, &c.HealthCheckInterval, "health_check_interval"},
		{raw.SlowQueryTime, &c.SlowQueryTime, "slow_query_time"},
	} {
		if d.src == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.src)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.name, err)
		}
		*d.dest = parsed
	}
	return nil
}

// BootstrapConfig controls schema bootstrap for registered models on startup.
// This is plain table creation, not a migration system.
type BootstrapConfig struct {
	CreateTablesOnStartup bool `json:"create_tables_on_startup" yaml:"create_tables_on_startup"`
}

// Config aggregates connection and bootstrap settings.
type Config struct {
	Connection ConnectionConfig `json:"connection" yaml:"connection"`
	Bootstrap  BootstrapConfig  `json:"bootstrap" yaml:"bootstrap"`
}

// DefaultConnectionConfig returns a connection config with sensible defaults.
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		MaxIdleConns:        10,
		MaxOpenConns:        100,
		ConnMaxLifetime:     time.Hour,
		ConnMaxIdleTime:     time.Minute * 30,
		ConnectTimeout:      time.Second * 10,
		ReadTimeout:         time.Second * 30,
		WriteTimeout:        time.Second * 30,
		EnableReconnect:     true,
		ReconnectInterval:   time.Second * 5,
		MaxReconnectTries:   3,
		HealthCheckInterval: time.Minute * 5,
		EnableQueryLog:      false,
		SlowQueryTime:       time.Second * 2,
	}
}

// LoadConfig reads a YAML configuration file. Zero-valued pool and timeout
// settings are filled from DefaultConnectionConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	applyConnectionDefaults(&cfg.Connection)
	return &cfg, nil
}

func applyConnectionDefaults(cfg *ConnectionConfig) {
	defaults := DefaultConnectionConfig()
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = defaults.MaxIdleConns
	}
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = defaults.MaxOpenConns
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = defaults.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime == 0 {
		cfg.ConnMaxIdleTime = defaults.ConnMaxIdleTime
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = defaults.ConnectTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = defaults.ReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.ReconnectInterval == 0 {
		cfg.ReconnectInterval = defaults.ReconnectInterval
	}
	if cfg.MaxReconnectTries == 0 {
		cfg.MaxReconnectTries = defaults.MaxReconnectTries
	}
	if cfg.SlowQueryTime == 0 {
		cfg.SlowQueryTime = defaults.SlowQueryTime
	}
}
