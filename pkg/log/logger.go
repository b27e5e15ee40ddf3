// Structured logging for the motion planning core
//
// Component loggers built on logrus with support for:
// - Log levels (DEBUG, INFO, WARN, ERROR)
// - Structured fields (key-value pairs)
// - Text and JSON output
// - Per-component loggers with prefixes
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	// DEBUG level for detailed debugging information
	DEBUG LogLevel = iota

	// INFO level for general informational messages
	INFO

	// WARN level for warning messages
	WARN

	// ERROR level for error messages
	ERROR
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) logrus() logrus.Level {
	switch l {
	case DEBUG:
		return logrus.DebugLevel
	case WARN:
		return logrus.WarnLevel
	case ERROR:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func fromLogrus(l logrus.Level) LogLevel {
	switch {
	case l >= logrus.DebugLevel:
		return DEBUG
	case l == logrus.InfoLevel:
		return INFO
	case l == logrus.WarnLevel:
		return WARN
	default:
		return ERROR
	}
}

// ParseLevel parses a string into a LogLevel
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// OutputFormat specifies the output format for log messages
type OutputFormat int

const (
	// FormatText outputs human-readable text format
	FormatText OutputFormat = iota
	// FormatJSON outputs machine-readable JSON format
	FormatJSON
)

// ParseFormat parses "text" or "json"; anything else is text.
func ParseFormat(s string) OutputFormat {
	if strings.EqualFold(s, "json") {
		return FormatJSON
	}
	return FormatText
}

// Fields is a map of structured logging fields
type Fields map[string]interface{}

// componentKey carries the logger prefix on every entry.
const componentKey = "logger"

// Logger is a component logger. Loggers derived with WithPrefix share the
// underlying logrus instance, so level and output changes apply to all of them.
type Logger struct {
	prefix string
	base   *logrus.Logger
}

// Entry represents a single log entry with fields
type Entry struct {
	entry *logrus.Entry
}

// JSONLogEntry is the structure for JSON formatted log entries
type JSONLogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Logger    string                 `json:"logger"`
	Message   string                 `json:"message"`
	Caller    string                 `json:"caller,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

var defaultLogger *Logger

// New creates a new logger with the given prefix
func New(prefix string) *Logger {
	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetLevel(logrus.InfoLevel)
	base.SetFormatter(&textFormatter{colorize: os.Getenv("NO_COLOR") == ""})
	return &Logger{prefix: prefix, base: base}
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level LogLevel) {
	l.base.SetLevel(level.logrus())
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	return fromLogrus(l.base.GetLevel())
}

// SetWriter sets the output writer (e.g., for testing)
func (l *Logger) SetWriter(w io.Writer) {
	l.base.SetOutput(w)
}

// SetColorize enables or disables colorized text output
func (l *Logger) SetColorize(enable bool) {
	if tf, ok := l.base.Formatter.(*textFormatter); ok {
		tf.colorize = enable
	}
}

// SetFormat sets the output format (FormatText or FormatJSON)
func (l *Logger) SetFormat(format OutputFormat) {
	colorize := false
	if tf, ok := l.base.Formatter.(*textFormatter); ok {
		colorize = tf.colorize
	}
	if format == FormatJSON {
		l.base.SetFormatter(&jsonFormatter{})
		return
	}
	l.base.SetFormatter(&textFormatter{colorize: colorize})
}

// SetCaller enables or disables caller info in log output
func (l *Logger) SetCaller(enable bool) {
	l.base.SetReportCaller(enable)
}

func (l *Logger) entry() *logrus.Entry {
	return l.base.WithField(componentKey, l.prefix)
}

// WithField returns an Entry with the given field
func (l *Logger) WithField(key string, value interface{}) *Entry {
	return &Entry{entry: l.entry().WithField(key, value)}
}

// WithFields returns an Entry with the given fields
func (l *Logger) WithFields(fields Fields) *Entry {
	return &Entry{entry: l.entry().WithFields(logrus.Fields(fields))}
}

// WithError returns an Entry with the error field set
func (l *Logger) WithError(err error) *Entry {
	return l.WithField("error", err.Error())
}

// Debug logs a message at DEBUG level
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(logrus.DebugLevel, msg, args)
}

// Info logs a message at INFO level
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(logrus.InfoLevel, msg, args)
}

// Warn logs a message at WARN level
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(logrus.WarnLevel, msg, args)
}

// Error logs a message at ERROR level
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(logrus.ErrorLevel, msg, args)
}

func (l *Logger) log(level logrus.Level, msg string, args []interface{}) {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.entry().Log(level, msg)
}

// WithPrefix returns a logger sharing this logger's output with a new prefix
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{prefix: prefix, base: l.base}
}

// Prefix returns the component prefix.
func (l *Logger) Prefix() string {
	return l.prefix
}

// Entry methods - log with fields

// WithField adds a field to the entry
func (e *Entry) WithField(key string, value interface{}) *Entry {
	return &Entry{entry: e.entry.WithField(key, value)}
}

// WithFields adds multiple fields to the entry
func (e *Entry) WithFields(fields Fields) *Entry {
	return &Entry{entry: e.entry.WithFields(logrus.Fields(fields))}
}

// WithError adds an error field to the entry
func (e *Entry) WithError(err error) *Entry {
	return e.WithField("error", err.Error())
}

// Debug logs at DEBUG level with fields
func (e *Entry) Debug(msg string) { e.entry.Debug(msg) }

// Info logs at INFO level with fields
func (e *Entry) Info(msg string) { e.entry.Info(msg) }

// Warn logs at WARN level with fields
func (e *Entry) Warn(msg string) { e.entry.Warn(msg) }

// Error logs at ERROR level with fields
func (e *Entry) Error(msg string) { e.entry.Error(msg) }

// Debugf logs formatted message at DEBUG level with fields
func (e *Entry) Debugf(format string, args ...interface{}) { e.entry.Debugf(format, args...) }

// Infof logs formatted message at INFO level with fields
func (e *Entry) Infof(format string, args ...interface{}) { e.entry.Infof(format, args...) }

// Warnf logs formatted message at WARN level with fields
func (e *Entry) Warnf(format string, args ...interface{}) { e.entry.Warnf(format, args...) }

// Errorf logs formatted message at ERROR level with fields
func (e *Entry) Errorf(format string, args ...interface{}) { e.entry.Errorf(format, args...) }

// Package-level functions using default logger

// SetDefaultLogger sets the global default logger
func SetDefaultLogger(logger *Logger) {
	defaultLogger = logger
}

// GetLogger returns a component logger derived from the default logger
func GetLogger(prefix string) *Logger {
	if defaultLogger == nil {
		defaultLogger = New("opentrons")
	}
	return defaultLogger.WithPrefix(prefix)
}

// Debug logs at DEBUG level using default logger
func Debug(msg string, args ...interface{}) {
	GetLogger("").Debug(msg, args...)
}

// Info logs at INFO level using default logger
func Info(msg string, args ...interface{}) {
	GetLogger("").Info(msg, args...)
}

// Warn logs at WARN level using default logger
func Warn(msg string, args ...interface{}) {
	GetLogger("").Warn(msg, args...)
}

// Error logs at ERROR level using default logger
func Error(msg string, args ...interface{}) {
	GetLogger("").Error(msg, args...)
}

func init() {
	defaultLogger = New("opentrons")
	ConfigureFromEnv(defaultLogger)
}

// ConfigureFromEnv applies environment-based configuration to the logger.
// Environment variables:
//   - OT_LOG_LEVEL: DEBUG, INFO, WARN, ERROR
//   - OT_LOG_FORMAT: text, json
//   - OT_LOG_CALLER: any non-empty value enables caller info
//   - NO_COLOR: any non-empty value disables colors
func ConfigureFromEnv(l *Logger) {
	if levelStr := os.Getenv("OT_LOG_LEVEL"); levelStr != "" {
		l.SetLevel(ParseLevel(levelStr))
	}
	if formatStr := os.Getenv("OT_LOG_FORMAT"); formatStr != "" {
		l.SetFormat(ParseFormat(formatStr))
	}
	if os.Getenv("OT_LOG_CALLER") != "" {
		l.SetCaller(true)
	}
	if os.Getenv("NO_COLOR") != "" {
		l.SetColorize(false)
	}
}

// ANSI color codes for terminal output
var ansiColors = map[LogLevel]string{
	DEBUG: "\x1b[36m", // Cyan
	INFO:  "\x1b[32m", // Green
	WARN:  "\x1b[33m", // Yellow
	ERROR: "\x1b[31m", // Red
}

const ansiReset = "\x1b[0m"

// textFormatter renders "timestamp [LEVEL] prefix: message {k=v, ...}".
type textFormatter struct {
	colorize bool
}

func (f *textFormatter) Format(e *logrus.Entry) ([]byte, error) {
	level := fromLogrus(e.Level)
	var buf bytes.Buffer

	buf.WriteString(e.Time.Format("2006-01-02 15:04:05.000"))
	fmt.Fprintf(&buf, " [%-5s] ", level.String())

	prefix, _ := e.Data[componentKey].(string)
	if f.colorize {
		buf.WriteString(ansiColors[level])
	}
	buf.WriteString(prefix)
	if f.colorize {
		buf.WriteString(ansiReset)
	}
	buf.WriteString(": ")
	buf.WriteString(e.Message)

	if e.HasCaller() {
		fmt.Fprintf(&buf, " (%s:%d)", filepath.Base(e.Caller.File), e.Caller.Line)
	}

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		if k != componentKey {
			keys = append(keys, k)
		}
	}
	if len(keys) > 0 {
		sort.Strings(keys)
		buf.WriteString(" {")
		for i, k := range keys {
			if i > 0 {
				buf.WriteString(", ")
			}
			fmt.Fprintf(&buf, "%s=%v", k, e.Data[k])
		}
		buf.WriteString("}")
	}

	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

type jsonFormatter struct{}

func (jsonFormatter) Format(e *logrus.Entry) ([]byte, error) {
	entry := JSONLogEntry{
		Timestamp: e.Time.Format(time.RFC3339Nano),
		Level:     fromLogrus(e.Level).String(),
		Message:   e.Message,
	}
	entry.Logger, _ = e.Data[componentKey].(string)
	if e.HasCaller() {
		entry.Caller = fmt.Sprintf("%s:%d", filepath.Base(e.Caller.File), e.Caller.Line)
	}
	for k, v := range e.Data {
		if k == componentKey {
			continue
		}
		if entry.Fields == nil {
			entry.Fields = make(map[string]interface{}, len(e.Data))
		}
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		entry.Fields[k] = v
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal log entry: %w", err)
	}
	return append(data, '\n'), nil
}
