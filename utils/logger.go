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

// Package utils holds small shared helpers; today that is the named logger
// registry used by the rest of the library.
package utils

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger is an alias so that callers do not import logrus directly.
type Logger = logrus.Logger

var (
	registryMu sync.RWMutex
	registry   = map[string]*logrus.Logger{}
)

// NewLogger returns the named logger, creating it on first use. The level is
// taken from OSHARP_LOG_LEVEL (or OSHARP_<NAME>_LOG_LEVEL for a single
// logger), defaulting to info.
func NewLogger(name string) *Logger {
	registryMu.RLock()
	logger, ok := registry[name]
	registryMu.RUnlock()
	if ok {
		return logger
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if logger, ok = registry[name]; ok {
		return logger
	}

	logger = logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(envLevel(name))
	logger.SetFormatter(&prefixFormatter{prefix: name})
	registry[name] = logger
	return logger
}

// SetLoggerLevel changes the level of the named logger at runtime. Unknown
// level strings fall back to info.
func SetLoggerLevel(name string, level string) {
	logger := NewLogger(name)
	logger.SetLevel(parseLevel(level))
}

func envLevel(name string) logrus.Level {
	if v := os.Getenv("OSHARP_" + strings.ToUpper(name) + "_LOG_LEVEL"); v != "" {
		return parseLevel(v)
	}
	if v := os.Getenv("OSHARP_LOG_LEVEL"); v != "" {
		return parseLevel(v)
	}
	return logrus.InfoLevel
}

func parseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}

// prefixFormatter renders "time LEVEL [NAME] message key=value".
type prefixFormatter struct {
	prefix string
}

func (f *prefixFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder
	b.WriteString(entry.Time.Format(time.RFC3339))
	b.WriteString(fmt.Sprintf(" %-7s", strings.ToUpper(entry.Level.String())))
	b.WriteString("[" + f.prefix + "] ")
	b.WriteString(entry.Message)
	for key, value := range entry.Data {
		b.WriteString(fmt.Sprintf(" %s=%v", key, value))
	}
	b.WriteString("\n")
	return []byte(b.String()), nil
}
