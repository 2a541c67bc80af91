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
	"testing"

	"github.com/Ljyi/osharp/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyValidatorInt(t *testing.T) {
	v := repository.DefaultKeyValidator[int64]()

	assert.True(t, v.IsUnset(0))
	assert.False(t, v.IsUnset(1))

	assert.NoError(t, v.Validate(1))
	assert.Error(t, v.Validate(0))
	assert.Error(t, v.Validate(-5))

	err := v.Validate(0)
	assert.True(t, repository.IsValidationError(err))
}

func TestDefaultKeyValidatorUint(t *testing.T) {
	v := repository.DefaultKeyValidator[uint32]()

	assert.True(t, v.IsUnset(0))
	assert.NoError(t, v.Validate(7))
	assert.Error(t, v.Validate(0))
}

func TestDefaultKeyValidatorString(t *testing.T) {
	v := repository.DefaultKeyValidator[string]()

	assert.True(t, v.IsUnset(""))
	assert.False(t, v.IsUnset("k"))

	assert.NoError(t, v.Validate("k"))
	err := v.Validate("")
	require.Error(t, err)
	assert.True(t, repository.IsValidationError(err))
}

func TestDefaultKeyValidatorUUID(t *testing.T) {
	v := repository.DefaultKeyValidator[uuid.UUID]()

	assert.True(t, v.IsUnset(uuid.Nil))
	assert.False(t, v.IsUnset(uuid.New()))

	assert.NoError(t, v.Validate(uuid.New()))
	err := v.Validate(uuid.Nil)
	require.Error(t, err)
	assert.True(t, repository.IsValidationError(err))
}

func TestDefaultKeyValidatorPointer(t *testing.T) {
	v := repository.DefaultKeyValidator[*int]()

	assert.True(t, v.IsUnset(nil))
	assert.Error(t, v.Validate(nil))

	n := 3
	assert.False(t, v.IsUnset(&n))
	assert.NoError(t, v.Validate(&n))
}

type compositeKey struct {
	Region string
	Seq    int
}

func TestDefaultKeyValidatorOtherKind(t *testing.T) {
	v := repository.DefaultKeyValidator[compositeKey]()

	// Unknown kinds only distinguish the zero value as unset.
	assert.True(t, v.IsUnset(compositeKey{}))
	assert.False(t, v.IsUnset(compositeKey{Region: "eu", Seq: 1}))
	assert.NoError(t, v.Validate(compositeKey{}))
}

func TestExplicitValidatorConstructors(t *testing.T) {
	assert.Error(t, repository.IntKeyValidator[int]().Validate(0))
	assert.Error(t, repository.StringKeyValidator[string]().Validate(""))
	assert.Error(t, repository.UUIDKeyValidator[uuid.UUID]().Validate(uuid.Nil))
	assert.NoError(t, repository.ZeroKeyValidator[int]().Validate(0))
	assert.True(t, repository.ZeroKeyValidator[int]().IsUnset(0))
}
