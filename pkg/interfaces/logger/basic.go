package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	masker "github.com/goliatone/go-masker"
)

// SensitiveKeys lists field keys whose values are masked before printing.
var SensitiveKeys = []string{
	"credential", "password", "token", "session_token",
	"account_key", "connection_string", "secret", "api_key",
}

func init() {
	for _, key := range SensitiveKeys {
		masker.Default.RegisterMaskField(key, "preserveEnds(2,2)")
	}
}

// BasicLogger prints level-prefixed key=value lines.
type BasicLogger struct {
	mu     *sync.Mutex
	out    io.Writer
	level  Level
	fields []Field
}

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var _ Logger = (*BasicLogger)(nil)

// New returns a basic logger writing to stdout at info level.
func New() *BasicLogger {
	return NewWithWriter(os.Stdout, LevelInfo)
}

// NewWithWriter returns a basic logger writing to out.
func NewWithWriter(out io.Writer, level Level) *BasicLogger {
	if out == nil {
		out = io.Discard
	}
	return &BasicLogger{mu: &sync.Mutex{}, out: out, level: level}
}

// ParseLevel maps a textual level to a Level, defaulting to info.
func ParseLevel(raw string) Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l *BasicLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	next := &BasicLogger{mu: l.mu, out: l.out, level: l.level}
	next.fields = append(append([]Field(nil), l.fields...), fields...)
	return next
}

func (l *BasicLogger) Debug(msg string, fields ...Field) { l.log(LevelDebug, "DEBUG", msg, fields) }
func (l *BasicLogger) Info(msg string, fields ...Field)  { l.log(LevelInfo, "INFO", msg, fields) }
func (l *BasicLogger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, "WARN", msg, fields) }
func (l *BasicLogger) Error(msg string, fields ...Field) { l.log(LevelError, "ERROR", msg, fields) }

func (l *BasicLogger) log(level Level, label, msg string, fields []Field) {
	if level < l.level {
		return
	}
	line := fmt.Sprintf("[%s] %s", label, msg)
	if rendered := formatFields(append(append([]Field(nil), l.fields...), fields...)); rendered != "" {
		line += " " + rendered
	}
	l.mu.Lock()
	fmt.Fprintln(l.out, line)
	l.mu.Unlock()
}

func formatFields(fields []Field) string {
	if len(fields) == 0 {
		return ""
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s=%s", f.Key, renderValue(f)))
	}
	return strings.Join(parts, " ")
}

func renderValue(f Field) string {
	value := fmt.Sprint(f.Value)
	if !isSensitive(f.Key) || value == "" {
		return value
	}
	if masked, err := masker.Default.String("preserveEnds(2,2)", value); err == nil {
		return masked
	}
	return strings.Repeat("*", len(value))
}

func isSensitive(key string) bool {
	key = strings.ToLower(key)
	for _, candidate := range SensitiveKeys {
		if key == candidate {
			return true
		}
	}
	return false
}
