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

package utils

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerReturnsSameInstance(t *testing.T) {
	a := NewLogger("SHARED")
	b := NewLogger("SHARED")
	assert.Same(t, a, b)

	other := NewLogger("OTHER")
	assert.NotSame(t, a, other)
}

func TestSetLoggerLevel(t *testing.T) {
	logger := NewLogger("LEVELED")
	SetLoggerLevel("LEVELED", "debug")
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	SetLoggerLevel("LEVELED", "not-a-level")
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestEnvLevel(t *testing.T) {
	t.Setenv("OSHARP_LOG_LEVEL", "warn")
	assert.Equal(t, logrus.WarnLevel, envLevel("ANY"))

	t.Setenv("OSHARP_SCOPED_LOG_LEVEL", "error")
	assert.Equal(t, logrus.ErrorLevel, envLevel("SCOPED"))
}

func TestPrefixFormatter(t *testing.T) {
	logger := NewLogger("FMT")
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.WithField("attempt", 2).Warn("retrying")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, "WARNING")
	assert.Contains(t, out, "[FMT]")
	assert.Contains(t, out, "retrying")
	assert.Contains(t, out, "attempt=2")
}
