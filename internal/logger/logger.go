package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogFilePath is the default log file, relative to the working directory.
const LogFilePath = "logs/terminal.txt"

// MaxLines caps the lines kept in memory for the in-window terminal.
const MaxLines = 500

// Logger stores lines of text in memory and appends them to a file on disk. It is the
// sink behind the process-wide slog logger, so structured records and terminal echo end up
// in the same place.
type Logger struct {
	mu    sync.Mutex
	lines []string
	path  string
	file  *os.File
	level slog.LevelVar
	slog  *slog.Logger
}

// New returns a Logger appending to path (memory only when path is empty) and logging
// records at or above level. The log directory is created if needed.
func New(path string, level slog.Level) *Logger {
	l := &Logger{path: path, lines: make([]string, 0, 64)}
	if path != "" {
		_ = os.MkdirAll(filepath.Dir(path), 0755)
	}
	l.level.Set(level)
	l.slog = slog.New(slog.NewTextHandler(l, &slog.HandlerOptions{Level: &l.level}))
	return l
}

// Slog returns the structured logger writing into l.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// SetLevel changes the minimum level of records written by Slog.
func (l *Logger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// Write implements io.Writer for the slog handler: every line is kept and appended to the file.
func (l *Logger) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(bytes.TrimRight(p, "\n"), []byte("\n")) {
		l.append(string(line))
	}
	return len(p), nil
}

// Log appends a plain line prefixed with [timestamp], e.g. terminal input.
func (l *Logger) Log(line string) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	l.append("[" + ts + "] " + line)
}

func (l *Logger) append(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
	if over := len(l.lines) - MaxLines; over > 0 {
		l.lines = append(l.lines[:0], l.lines[over:]...)
	}
	if l.path == "" {
		return
	}
	if l.file == nil {
		f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return
		}
		l.file = f
	}
	_, _ = l.file.WriteString(line + "\n")
}

// Lines returns a copy of all stored lines.
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Tail returns a copy of the last n stored lines.
func (l *Logger) Tail(n int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > len(l.lines) {
		n = len(l.lines)
	}
	out := make([]string, n)
	copy(out, l.lines[len(l.lines)-n:])
	return out
}

// Close closes the log file, if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// ParseLevel maps debug, info, warn and error (any case) to a slog level. Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
