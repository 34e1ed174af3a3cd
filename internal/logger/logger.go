package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level orders log messages by severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

// Logger writes printf-style messages to the terminal and, optionally, to a
// log file. Debug output only reaches the terminal in verbose mode but is
// always written to the file.
type Logger struct {
	Verbose bool

	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	fileLog *os.File
	quiet   bool
}

// New creates a Logger writing to stdout and stderr.
func New(verbose bool) *Logger {
	return NewWithWriters(verbose, os.Stdout, os.Stderr)
}

// NewWithWriters creates a Logger writing to out, and errors to errOut.
func NewWithWriters(verbose bool, out, errOut io.Writer) *Logger {
	return &Logger{Verbose: verbose, out: out, errOut: errOut}
}

// SetFileLog appends every message to the file at path.
func (l *Logger) SetFileLog(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	if l.fileLog != nil {
		l.fileLog.Close()
	}
	l.fileLog = f
	return nil
}

// OpenLogFile creates dir if needed and logs to a timestamped file named
// after prefix inside it. It returns the file path.
func (l *Logger) OpenLogFile(dir, prefix string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.log", prefix, time.Now().Format("2006-01-02_15-04-05")))
	if err := l.SetFileLog(path); err != nil {
		return "", err
	}
	return path, nil
}

// SetQuiet suppresses non-error terminal output while a progress bar owns
// the line. Verbose mode ignores it.
func (l *Logger) SetQuiet(quiet bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.quiet = quiet
}

// Close closes the log file if open.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileLog == nil {
		return nil
	}
	err := l.fileLog.Close()
	l.fileLog = nil
	return err
}

func (l *Logger) Debug(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...any) { l.log(LevelError, format, args...) }

func (l *Logger) log(level Level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)

	if l.fileLog != nil {
		fmt.Fprintf(l.fileLog, "%s [%s] %s\n", time.Now().Format(time.RFC3339), level, msg)
	}

	switch {
	case level == LevelError:
		fmt.Fprintf(l.errOut, "[ERROR] %s\n", msg)
	case level == LevelDebug && !l.Verbose:
	case l.quiet && !l.Verbose:
	case level == LevelInfo:
		fmt.Fprintln(l.out, msg)
	default:
		fmt.Fprintf(l.out, "[%s] %s\n", level, msg)
	}
}
