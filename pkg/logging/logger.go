// Package logging provides the diagnostic log sink for pagehand components.
// All logs are appended to a date-stamped file in ~/.pagehand/logs/; when
// debug mode is enabled every line is mirrored to stderr as well. Stdout is
// never written to, since it carries the MCP protocol stream.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level identifies the severity of a log line.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var (
	// logDir is the directory where log files are stored
	logDir string

	// initOnce ensures directory initialization happens once
	initOnce sync.Once

	// initErr stores any error from directory initialization
	initErr error
)

// initLogDirectory ensures the log directory exists
func initLogDirectory() error {
	initOnce.Do(func() {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			initErr = fmt.Errorf("failed to get home directory: %w", err)
			return
		}

		logDir = filepath.Join(homeDir, ".pagehand", "logs")
		if err := os.MkdirAll(logDir, 0750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
			return
		}
	})
	return initErr
}

// Logger is an append-only, timestamped, leveled log sink backed by one
// date-stamped file per process-day.
//
// All log methods write unconditionally to the file; when debug is enabled
// they also mirror to stderr.
type Logger struct {
	sessionID string
	file      *os.File
	logger    *log.Logger
	mu        sync.Mutex
	debug     bool
	logPath   string
	closeOnce sync.Once
}

// New creates a logger writing to ~/.pagehand/logs/pagehand-<date>.log.
//
// If the log directory cannot be created or the log file cannot be opened,
// it returns a fallback logger that writes to stderr along with the error.
// Callers can check the error to detect fallback mode.
func New(debug bool) (*Logger, error) {
	if err := initLogDirectory(); err != nil {
		return newFallbackLogger(debug, err), err
	}

	logFileName := fmt.Sprintf("pagehand-%s.log", time.Now().Format("2006-01-02"))
	logPath := filepath.Join(logDir, logFileName)

	// Open in append mode so repeated runs on the same day share one file
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		wrapped := fmt.Errorf("failed to open log file: %w", err)
		return newFallbackLogger(debug, wrapped), wrapped
	}

	l := &Logger{
		sessionID: uuid.New().String(),
		file:      file,
		logger:    log.New(file, "", 0), // timestamps are formatted by us
		debug:     debug,
		logPath:   logPath,
	}
	l.Infof("session %s started", l.sessionID)
	return l, nil
}

// NewWithWriter creates a logger writing to the given file handle. It is
// used by tests; nil file falls back to stderr.
func NewWithWriter(file *os.File, debug bool) *Logger {
	if file == nil {
		return newFallbackLogger(debug, nil)
	}
	return &Logger{
		sessionID: uuid.New().String(),
		file:      file,
		logger:    log.New(file, "", 0),
		debug:     debug,
	}
}

// newFallbackLogger creates a logger that writes to stderr when file logging fails
func newFallbackLogger(debug bool, err error) *Logger {
	logger := log.New(os.Stderr, "", 0)
	if err != nil {
		logger.Printf("WARNING: failed to initialize file logging: %v", err)
		logger.Printf("falling back to stderr logging")
	}

	return &Logger{
		sessionID: uuid.New().String(),
		file:      nil, // no file, using stderr
		logger:    logger,
		debug:     debug,
	}
}

// formatLine creates a log line in the form "[ISO-timestamp] [LEVEL] message".
func formatLine(level Level, message string) string {
	timestamp := time.Now().Format(time.RFC3339)
	return fmt.Sprintf("[%s] [%s] %s", timestamp, level, message)
}

func (l *Logger) write(level Level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := formatLine(level, fmt.Sprintf(format, v...))
	l.logger.Println(entry)
	if l.debug && l.file != nil {
		fmt.Fprintln(os.Stderr, entry)
	}
}

// Debugf logs a debug-level message
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.write(LevelDebug, format, v...)
}

// Infof logs an info-level message
func (l *Logger) Infof(format string, v ...interface{}) {
	l.write(LevelInfo, format, v...)
}

// Warnf logs a warning-level message
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.write(LevelWarn, format, v...)
}

// Errorf logs an error-level message
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.write(LevelError, format, v...)
}

// SessionID returns the unique id for this process's logging session
func (l *Logger) SessionID() string {
	return l.sessionID
}

// LogPath returns the path to the log file, empty in fallback mode
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}
