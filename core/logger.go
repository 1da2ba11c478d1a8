package core

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Logger provides debug logging for the Logo Objects SDK.
// Debug and Info are only written when debug is enabled; Warn and Error
// always are. A nil *Logger discards everything.
type Logger struct {
	enabled bool
	prefix  string
	out     *log.Logger
}

// NewLogger creates a logger writing to stderr.
func NewLogger(enabled bool) *Logger {
	return NewLoggerTo(os.Stderr, enabled)
}

// NewLoggerTo creates a logger writing to w.
func NewLoggerTo(w io.Writer, enabled bool) *Logger {
	return &Logger{
		enabled: enabled,
		prefix:  "logo-objects-go",
		out:     log.New(w, "", 0),
	}
}

func (l *Logger) write(level, message string, args []any) {
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	l.out.Printf("[%s] [%s] [%s] %s",
		time.Now().Format(time.RFC3339),
		l.prefix,
		level,
		message,
	)
}

// Debug logs a debug message (only if debug is enabled).
func (l *Logger) Debug(message string, args ...any) {
	if l.Enabled() {
		l.write("DEBUG", message, args)
	}
}

// Info logs an info message (only if debug is enabled).
func (l *Logger) Info(message string, args ...any) {
	if l.Enabled() {
		l.write("INFO", message, args)
	}
}

// Warn logs a warning message (always logged).
func (l *Logger) Warn(message string, args ...any) {
	if l != nil {
		l.write("WARN", message, args)
	}
}

// Error logs an error message (always logged).
func (l *Logger) Error(message string, args ...any) {
	if l != nil {
		l.write("ERROR", message, args)
	}
}

// Request logs a completed request.
func (l *Logger) Request(method, url string, status int, duration time.Duration) {
	l.Debug("%s %s -> %d in %dms", method, url, status, duration.Milliseconds())
}

// Retry logs a retry decision.
func (l *Logger) Retry(info RetryInfo, maxAttempts int) {
	if !l.Enabled() {
		return
	}
	reason := fmt.Sprintf("status %d", info.HTTPStatus)
	if info.Err != nil {
		reason = info.Err.Error()
	}
	l.Debug("Retry %d/%d in %dms: %s %s (%s)",
		info.Attempt, maxAttempts, info.Delay.Milliseconds(), info.Method, info.RequestURL, reason)
}

// RateLimit logs a 429 response. It is a warning, so it is written even
// when debug logging is off.
func (l *Logger) RateLimit(url string, retryAfter int) {
	l.Warn("Rate limited on %s, retry after %ds", url, retryAfter)
}

// Token logs token operations without exposing the token itself.
func (l *Logger) Token(operation string) {
	l.Debug("Token %s", operation)
}

// Enabled returns whether debug logging is enabled.
func (l *Logger) Enabled() bool {
	return l != nil && l.enabled
}
