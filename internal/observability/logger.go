package observability

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// LogLevel represents log severity
type LogLevel int32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a LOG_LEVEL value to a LogLevel, defaulting to info
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return LevelInfo
}

// sink is the output and threshold shared by a logger and everything
// derived from it.
type sink struct {
	mu    sync.Mutex
	out   io.Writer
	level atomic.Int32
}

type field struct {
	key   string
	value interface{}
}

// Logger writes one line per entry:
//
//	2006/01/02 15:04:05 [LEVEL] service file:line message key=value ...
//
// Fields are kept sorted by key. Loggers returned by WithField, WithFields
// and WithContext share their parent's output and level.
type Logger struct {
	sink        *sink
	serviceName string
	fields      []field
}

var (
	defaultLogger *Logger
	loggerOnce    sync.Once
)

// NewLogger creates a logger writing to stdout
func NewLogger(serviceName string, minLevel LogLevel) *Logger {
	s := &sink{out: os.Stdout}
	s.level.Store(int32(minLevel))
	return &Logger{sink: s, serviceName: serviceName}
}

// GetLogger returns the default logger instance
func GetLogger() *Logger {
	loggerOnce.Do(func() {
		serviceName := os.Getenv("SERVICE_NAME")
		if serviceName == "" {
			serviceName = "gallery-server"
		}
		defaultLogger = NewLogger(serviceName, ParseLevel(os.Getenv("LOG_LEVEL")))
	})
	return defaultLogger
}

// SetOutput sets the output destination
func (l *Logger) SetOutput(w io.Writer) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.out = w
}

// SetLevel changes the minimum level for this logger and every logger
// sharing its output.
func (l *Logger) SetLevel(level LogLevel) {
	l.sink.level.Store(int32(level))
}

// Enabled reports whether entries at level would be written
func (l *Logger) Enabled(level LogLevel) bool {
	return level >= LogLevel(l.sink.level.Load())
}

// WithField returns a new logger with the field added
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.with([]field{{key, value}})
}

// WithFields returns a new logger with the fields added
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	extra := make([]field, 0, len(fields))
	for k, v := range fields {
		extra = append(extra, field{k, v})
	}
	return l.with(extra)
}

// WithContext returns a new logger carrying the trace and span ids of ctx
func (l *Logger) WithContext(ctx context.Context) *Logger {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return l
	}
	return l.with([]field{
		{"trace_id", sc.TraceID().String()},
		{"span_id", sc.SpanID().String()},
	})
}

func (l *Logger) with(extra []field) *Logger {
	merged := make([]field, 0, len(l.fields)+len(extra))
	for _, f := range l.fields {
		if !hasKey(extra, f.key) {
			merged = append(merged, f)
		}
	}
	merged = append(merged, extra...)
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].key < merged[j].key })

	return &Logger{sink: l.sink, serviceName: l.serviceName, fields: merged}
}

func hasKey(fields []field, key string) bool {
	for _, f := range fields {
		if f.key == key {
			return true
		}
	}
	return false
}

func (l *Logger) Debug(msg string) { l.log(LevelDebug, msg) }
func (l *Logger) Info(msg string) { l.log(LevelInfo, msg) }
func (l *Logger) Warn(msg string) { l.log(LevelWarn, msg) }
func (l *Logger) Error(msg string) { l.log(LevelError, msg) }

func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.Enabled(LevelDebug) {
		l.log(LevelDebug, fmt.Sprintf(format, args...))
	}
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(LevelInfo, fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(LevelWarn, fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(LevelError, fmt.Sprintf(format, args...))
}

// log must be called directly from a Logger method so the caller depth
// points at user code.
func (l *Logger) log(level LogLevel, msg string) {
	if !l.Enabled(level) {
		return
	}

	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "???"
	}
	if idx := strings.LastIndex(file, "/"); idx >= 0 {
		file = file[idx+1:]
	}

	var b strings.Builder
	b.WriteString(time.Now().Format("2006/01/02 15:04:05"))
	fmt.Fprintf(&b, " [%s] %s %s:%d %s", level, l.serviceName, file, line, msg)
	for _, f := range l.fields {
		b.WriteByte(' ')
		b.WriteString(f.key)
		b.WriteByte('=')
		b.WriteString(formatValue(f.value))
	}
	b.WriteByte('\n')

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	io.WriteString(l.sink.out, b.String())
}

// formatValue quotes values that would otherwise break key=value parsing
func formatValue(v interface{}) string {
	s := fmt.Sprint(v)
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

// Package-level helpers writing through the default logger. They call log
// directly to keep caller depth consistent.

func Info(msg string) { GetLogger().log(LevelInfo, msg) }
func Infof(format string, args ...interface{}) { GetLogger().log(LevelInfo, fmt.Sprintf(format, args...)) }
func Warn(msg string) { GetLogger().log(LevelWarn, msg) }
func Warnf(format string, args ...interface{}) { GetLogger().log(LevelWarn, fmt.Sprintf(format, args...)) }
func Errorf(format string, args ...interface{}) { GetLogger().log(LevelError, fmt.Sprintf(format, args...)) }
func WithField(key string, value interface{}) *Logger { return GetLogger().WithField(key, value) }
func WithContext(ctx context.Context) *Logger { return GetLogger().WithContext(ctx) }
