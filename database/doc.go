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

// Package database manages Bun connections for MySQL, PostgreSQL, and
// SQLite: configuration, pooling, health checks with optional reconnect,
// query logging hooks, a model registry with table bootstrap, and a
// classification of driver errors.
package database
