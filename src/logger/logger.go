package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Logger defines the interface for logging throughout the application.
// Different implementations can be used for different contexts (console, silent, structured, etc.)
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// New returns the logger selected by opts.Format: "console" for plain
// prefixed lines, "text" or "json" for slog output.
func New(w io.Writer, opts Options) Logger {
	if strings.EqualFold(opts.Format, "console") {
		return NewConsoleLogger(w, parseLevel(opts.Level) <= slog.LevelDebug)
	}
	return NewSlogLogger(w, opts)
}

// ConsoleLogger writes human-readable "[LEVEL] message" lines.
type ConsoleLogger struct {
	w     io.Writer
	debug bool
	mu    sync.Mutex
}

// NewConsoleLogger creates a console logger writing to w (stderr when nil).
// Debug lines are printed only when debug is true.
func NewConsoleLogger(w io.Writer, debug bool) *ConsoleLogger {
	if w == nil {
		w = os.Stderr
	}
	return &ConsoleLogger{w: w, debug: debug}
}

func (c *ConsoleLogger) Info(msg string, args ...interface{}) {
	c.write("INFO", msg, args)
}

func (c *ConsoleLogger) Error(msg string, args ...interface{}) {
	c.write("ERROR", msg, args)
}

func (c *ConsoleLogger) Debug(msg string, args ...interface{}) {
	if !c.debug {
		return
	}
	c.write("DEBUG", msg, args)
}

func (c *ConsoleLogger) write(level, msg string, args []interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "[%s] %s\n", level, fmt.Sprintf(msg, args...))
}

// SilentLogger discards all log messages.
// Used when no logger is supplied and in tests.
type SilentLogger struct{}

func NewSilentLogger() *SilentLogger {
	return &SilentLogger{}
}

func (s *SilentLogger) Info(msg string, args ...interface{})  {}
func (s *SilentLogger) Error(msg string, args ...interface{}) {}
func (s *SilentLogger) Debug(msg string, args ...interface{}) {}

// SlogLogger routes printf-style messages into a log/slog handler.
type SlogLogger struct {
	logger *slog.Logger
}

// Options selects the slog handler.
type Options struct {
	// Format is "json", "text" or "console".
	Format string
	// Level is "debug", "info" or "error".
	Level string
}

// NewSlogLogger creates a structured logger writing to w.
func NewSlogLogger(w io.Writer, opts Options) *SlogLogger {
	handlerOpts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "text") {
		handler = slog.NewTextHandler(w, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(w, handlerOpts)
	}
	return &SlogLogger{logger: slog.New(handler)}
}

func (l *SlogLogger) Info(msg string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(msg, args...))
}

func (l *SlogLogger) Error(msg string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(msg, args...))
}

func (l *SlogLogger) Debug(msg string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(msg, args...))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Entry is a single message captured by a Recorder.
type Entry struct {
	Level   string
	Message string
}

// Recorder keeps every message in memory. Used by tests.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Info(msg string, args ...interface{})  { r.record("info", msg, args) }
func (r *Recorder) Error(msg string, args ...interface{}) { r.record("error", msg, args) }
func (r *Recorder) Debug(msg string, args ...interface{}) { r.record("debug", msg, args) }

func (r *Recorder) record(level, msg string, args []interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: fmt.Sprintf(msg, args...)})
}

// Entries returns a copy of the recorded messages.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Count returns how many messages were recorded at level.
func (r *Recorder) Count(level string) int {
	count := 0
	for _, entry := range r.Entries() {
		if entry.Level == level {
			count++
		}
	}
	return count
}
