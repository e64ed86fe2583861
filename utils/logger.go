package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// Level is the minimum severity a Logger emits.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a LOG_LEVEL value to a Level. Unknown values mean info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Logger provides leveled logging throughout the application. Components
// prefix their messages with a "[component]" tag.
type Logger struct {
	out   *log.Logger
	err   *log.Logger
	level atomic.Int32
}

// NewLogger creates a new Logger writing to stdout/stderr at info level.
func NewLogger() *Logger {
	return NewLoggerTo(os.Stdout, os.Stderr)
}

// NewLoggerTo creates a Logger writing info/warn/debug to out and errors to errOut.
func NewLoggerTo(out, errOut io.Writer) *Logger {
	l := &Logger{
		out: log.New(out, "", 0),
		err: log.New(errOut, "", 0),
	}
	l.level.Store(int32(LevelInfo))
	return l
}

// NewDiscardLogger returns a Logger that drops everything. Used by tests.
func NewDiscardLogger() *Logger {
	return NewLoggerTo(io.Discard, io.Discard)
}

// SetLevel changes the minimum emitted severity.
func (l *Logger) SetLevel(level Level) {
	l.level.Store(int32(level))
}

func (l *Logger) enabled(level Level) bool {
	return Level(l.level.Load()) <= level
}

func (l *Logger) write(dst *log.Logger, tag, format string, args []any) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	dst.Printf(fmt.Sprintf("[%s] %s %s\n", ts, tag, format), args...)
}

func (l *Logger) Info(format string, args ...any) {
	if l.enabled(LevelInfo) {
		l.write(l.out, "\033[32mINFO\033[0m ", format, args)
	}
}

func (l *Logger) Warn(format string, args ...any) {
	if l.enabled(LevelWarn) {
		l.write(l.out, "\033[33mWARN\033[0m ", format, args)
	}
}

func (l *Logger) Error(format string, args ...any) {
	if l.enabled(LevelError) {
		l.write(l.err, "\033[31mERROR\033[0m", format, args)
	}
}

func (l *Logger) Debug(format string, args ...any) {
	if l.enabled(LevelDebug) {
		l.write(l.out, "\033[36mDEBUG\033[0m", format, args)
	}
}
