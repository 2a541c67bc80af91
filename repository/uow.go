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
	"fmt"

	"github.com/uptrace/bun"
)

// UnitOfWork owns the database handle for one coordinated scope of work,
// typically a request or a transaction. Repositories hold a non-owning
// reference to it and route every statement through Handle, so that all of
// them join the same transaction once Begin has been called.
//
// The transaction machinery itself belongs to Bun and database/sql; the unit
// of work only decides which handle is current. A unit of work must not be
// shared between goroutines.
type UnitOfWork struct {
	db *bun.DB
	tx *bun.Tx
}

// NewUnitOfWork wraps a Bun database into a fresh unit-of-work scope.
func NewUnitOfWork(db *bun.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// DB returns the base database, never the open transaction.
func (u *UnitOfWork) DB() *bun.DB { return u.db }

// Handle returns the current statement target: the open transaction if Begin
// has been called, otherwise the base database.
func (u *UnitOfWork) Handle() bun.IDB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

// InTx reports whether a transaction is currently open on this scope.
func (u *UnitOfWork) InTx() bool { return u.tx != nil }

// Begin opens a transaction on this scope. Nested transactions are not
// supported; a second Begin before Commit or Rollback is an error.
func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("unit of work already has an open transaction")
	}
	tx, err := u.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	u.tx = &tx
	return nil
}

// Commit flushes the open transaction and returns the scope to the base
// database.
func (u *UnitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("unit of work has no open transaction")
	}
	err := u.tx.Commit()
	u.tx = nil
	return err
}

// Rollback discards the open transaction and returns the scope to the base
// database.
func (u *UnitOfWork) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("unit of work has no open transaction")
	}
	err := u.tx.Rollback()
	u.tx = nil
	return err
}

// RunInTx executes fn inside a transaction on this scope, committing on nil
// and rolling back on error or panic.
func (u *UnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := u.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		if u.tx != nil {
			_ = u.Rollback()
		}
	}()
	if err := fn(ctx); err != nil {
		_ = u.Rollback()
		return err
	}
	return u.Commit()
}
