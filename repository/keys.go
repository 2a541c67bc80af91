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
	"fmt"
	"reflect"

	"github.com/google/uuid"
)

// KeyValidator is the per-key-kind strategy for deciding whether a key value
// is usable for a lookup. It is selected once when the repository is built,
// never per call.
//
// IsUnset reports whether the value is the "no key yet" default for its kind
// (0, "", uuid.Nil, nil). Validate returns a ValidationError for unset or
// otherwise illegal values.
type KeyValidator[K comparable] interface {
	IsUnset(key K) bool
	Validate(key K) error
}

// IntKeyValidator accepts strictly positive integer keys.
func IntKeyValidator[K comparable]() KeyValidator[K] { return intKeyValidator[K]{} }

// StringKeyValidator accepts non-empty string keys.
func StringKeyValidator[K comparable]() KeyValidator[K] { return stringKeyValidator[K]{} }

// UUIDKeyValidator accepts any key other than uuid.Nil.
func UUIDKeyValidator[K comparable]() KeyValidator[K] { return uuidKeyValidator[K]{} }

// ZeroKeyValidator accepts everything except the type's zero value; the zero
// value is treated as unset but not rejected. Used for key kinds the library
// has no stronger rule for.
func ZeroKeyValidator[K comparable]() KeyValidator[K] { return zeroKeyValidator[K]{} }

// DefaultKeyValidator picks a validator for K by inspecting its kind once:
// integers must be positive, strings non-empty, uuid.UUID non-nil, pointer
// and interface kinds non-nil. Any other kind only distinguishes the zero
// value as unset.
func DefaultKeyValidator[K comparable]() KeyValidator[K] {
	var zero K
	if _, ok := any(zero).(uuid.UUID); ok {
		return uuidKeyValidator[K]{}
	}
	switch reflect.TypeOf(&zero).Elem().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return intKeyValidator[K]{}
	case reflect.String:
		return stringKeyValidator[K]{}
	case reflect.Pointer, reflect.Interface:
		return nillableKeyValidator[K]{}
	default:
		return zeroKeyValidator[K]{}
	}
}

type intKeyValidator[K comparable] struct{}

func (intKeyValidator[K]) IsUnset(key K) bool {
	return reflect.ValueOf(key).IsZero()
}

func (v intKeyValidator[K]) Validate(key K) error {
	rv := reflect.ValueOf(key)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() <= 0 {
			return &ValidationError{Arg: "key", Reason: fmt.Sprintf("integer key must be positive, got %d", rv.Int())}
		}
	default:
		if rv.IsZero() {
			return &ValidationError{Arg: "key", Reason: "integer key must not be zero"}
		}
	}
	return nil
}

type stringKeyValidator[K comparable] struct{}

func (stringKeyValidator[K]) IsUnset(key K) bool {
	return reflect.ValueOf(key).String() == ""
}

func (v stringKeyValidator[K]) Validate(key K) error {
	if v.IsUnset(key) {
		return &ValidationError{Arg: "key", Reason: "string key must not be empty"}
	}
	return nil
}

type uuidKeyValidator[K comparable] struct{}

func (uuidKeyValidator[K]) IsUnset(key K) bool {
	id, ok := any(key).(uuid.UUID)
	return ok && id == uuid.Nil
}

func (v uuidKeyValidator[K]) Validate(key K) error {
	if v.IsUnset(key) {
		return &ValidationError{Arg: "key", Reason: "uuid key must not be the nil uuid"}
	}
	return nil
}

type nillableKeyValidator[K comparable] struct{}

func (nillableKeyValidator[K]) IsUnset(key K) bool {
	rv := reflect.ValueOf(key)
	return !rv.IsValid() || rv.IsNil()
}

func (v nillableKeyValidator[K]) Validate(key K) error {
	if v.IsUnset(key) {
		return nilArgError("key")
	}
	return nil
}

type zeroKeyValidator[K comparable] struct{}

func (zeroKeyValidator[K]) IsUnset(key K) bool {
	var zero K
	return key == zero
}

func (zeroKeyValidator[K]) Validate(key K) error { return nil }
