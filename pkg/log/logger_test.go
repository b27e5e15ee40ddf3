// Structured logging tests
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(prefix string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := New(prefix)
	logger.SetWriter(&buf)
	logger.SetColorize(false)
	return logger, &buf
}

func TestLoggerBasic(t *testing.T) {
	logger, buf := newTestLogger("test")
	logger.SetLevel(DEBUG)

	logger.Info("hello %s", "world")

	output := buf.String()
	assert.Contains(t, output, "[INFO ]")
	assert.Contains(t, output, "test:")
	assert.Contains(t, output, "hello world")
}

func TestLoggerMessageWithoutArgsIsNotFormatted(t *testing.T) {
	logger, buf := newTestLogger("test")

	logger.Info("100% done")

	assert.Contains(t, buf.String(), "100% done")
	assert.NotContains(t, buf.String(), "%!")
}

func TestLoggerLevels(t *testing.T) {
	logger, buf := newTestLogger("test")

	logger.SetLevel(INFO)
	logger.Debug("debug message")
	assert.Zero(t, buf.Len(), "expected DEBUG to be filtered")

	logger.Info("info message")
	assert.Contains(t, buf.String(), "info message")
	buf.Reset()

	logger.Warn("warn message")
	assert.Contains(t, buf.String(), "[WARN ]")
	buf.Reset()

	logger.Error("error message")
	assert.Contains(t, buf.String(), "[ERROR]")
	assert.Equal(t, INFO, logger.GetLevel())
}

func TestLoggerJSON(t *testing.T) {
	logger, buf := newTestLogger("test")
	logger.SetFormat(FormatJSON)
	logger.SetLevel(DEBUG)

	logger.Info("json test")

	var entry JSONLogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "test", entry.Logger)
	assert.Equal(t, "json test", entry.Message)
	assert.Empty(t, entry.Fields)
}

func TestLoggerWithFields(t *testing.T) {
	logger, buf := newTestLogger("test")

	logger.WithFields(Fields{"b": 2, "a": "one"}).WithField("c", true).Info("with fields")

	assert.Contains(t, buf.String(), "with fields {a=one, b=2, c=true}")
}

func TestLoggerWithFieldsJSON(t *testing.T) {
	logger, buf := newTestLogger("test")
	logger.SetFormat(FormatJSON)

	logger.WithError(errors.New("boom")).WithField("labware_id", "plate").Warn("failed")

	var entry JSONLogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry.Level)
	assert.Equal(t, "boom", entry.Fields["error"])
	assert.Equal(t, "plate", entry.Fields["labware_id"])
	assert.NotContains(t, entry.Fields, "logger")
}

func TestWithPrefixSharesOutput(t *testing.T) {
	logger, buf := newTestLogger("root")
	child := logger.WithPrefix("motion")

	logger.SetLevel(WARN)
	child.Info("dropped")
	child.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "motion: kept")
	assert.Equal(t, "motion", child.Prefix())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"warning", WARN},
		{"Error", ERROR},
		{"bogus", INFO},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestConfigureFromEnv(t *testing.T) {
	t.Setenv("OT_LOG_LEVEL", "error")
	t.Setenv("OT_LOG_FORMAT", "json")

	logger, buf := newTestLogger("env")
	ConfigureFromEnv(logger)

	logger.Warn("filtered")
	logger.Error("shown")

	assert.Equal(t, ERROR, logger.GetLevel())
	var entry JSONLogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry.Message)
}
