package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogLevel defines log level
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

const (
	defaultPrefix  = "gsearch"
	defaultMaxDays = 7
	dayLayout      = "2006-01-02"
)

var levelNames = [...]string{DEBUG: "DEBUG", INFO: "INFO", WARN: "WARN", ERROR: "ERROR"}

func (l LogLevel) String() string {
	if l < DEBUG || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel maps the log.level config value to a LogLevel; anything
// unrecognised is INFO.
func ParseLevel(s string) LogLevel {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "WARNING" {
		return WARN
	}
	for lvl, n := range levelNames {
		if n == name {
			return LogLevel(lvl)
		}
	}
	return INFO
}

// Config logger configuration
type Config struct {
	LogDir     string   // Log directory
	Prefix     string   // File name prefix, "gsearch" if empty
	Level      LogLevel // Minimum level written
	MaxDays    int      // Days of logs kept, today included
	ConsoleOut bool     // Echo to stderr as well
}

// Logger writes leveled lines to <dir>/<prefix>-<day>.log. Files older
// than the retention window are pruned whenever a new day starts.
type Logger struct {
	mu      sync.Mutex
	level   LogLevel
	dir     string
	prefix  string
	keep    int
	file    *os.File
	day     string
	console io.Writer
	now     func() time.Time
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Init sets up the process-wide logger used by the package functions
func Init(cfg Config) error {
	var err error
	once.Do(func() {
		defaultLogger, err = NewLogger(cfg)
	})
	return err
}

// NewLogger creates a logger and opens today's file
func NewLogger(cfg Config) (*Logger, error) {
	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	l := &Logger{
		level:  cfg.Level,
		dir:    cfg.LogDir,
		prefix: cfg.Prefix,
		keep:   cfg.MaxDays,
		now:    time.Now,
	}
	if strings.TrimSpace(l.prefix) == "" {
		l.prefix = defaultPrefix
	}
	if l.keep <= 0 {
		l.keep = defaultMaxDays
	}
	// stdout belongs to rendered answers
	if cfg.ConsoleOut {
		l.console = os.Stderr
	}

	if err := l.openDay(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Logger) path(day string) string {
	return filepath.Join(l.dir, l.prefix+"-"+day+".log")
}

// openDay switches to the file for the current day. Callers hold mu or
// own l exclusively.
func (l *Logger) openDay() error {
	day := l.now().Format(dayLayout)
	if l.file != nil && l.day == day {
		return nil
	}

	f, err := os.OpenFile(l.path(day), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	if l.file != nil {
		l.file.Close()
	}
	l.file, l.day = f, day

	go l.prune(l.now())
	return nil
}

// prune removes day files dated before the retention window ending at
// now. Files whose suffix is not a date are left alone.
func (l *Logger) prune(now time.Time) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return
	}

	today, _ := time.Parse(dayLayout, now.Format(dayLayout))
	cutoff := today.AddDate(0, 0, -(l.keep - 1))

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, l.prefix+"-") || !strings.HasSuffix(name, ".log") {
			continue
		}
		day, err := time.Parse(dayLayout, strings.TrimSuffix(strings.TrimPrefix(name, l.prefix+"-"), ".log"))
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			os.Remove(filepath.Join(l.dir, name))
		}
	}
}

// SetLevel changes the minimum level at runtime
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

func (l *Logger) write(level LogLevel, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}
	if err := l.openDay(); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return
	}

	line := fmt.Sprintf("[%s] [%s] %s\n", l.now().Format("2006-01-02 15:04:05"), level, fmt.Sprintf(format, args...))
	if l.file != nil {
		io.WriteString(l.file, line)
	}
	if l.console != nil {
		io.WriteString(l.console, line)
	}
}

func (l *Logger) Debug(format string, args ...any) { l.write(DEBUG, format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.write(INFO, format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.write(WARN, format, args...) }
func (l *Logger) Error(format string, args ...any) { l.write(ERROR, format, args...) }

// Close closes the current file; it is safe to call twice
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

// GetWriter adapts the logger to an io.Writer at a fixed level, for
// http.Server.ErrorLog
func (l *Logger) GetWriter(level LogLevel) io.Writer {
	return levelWriter{l: l, level: level}
}

type levelWriter struct {
	l     *Logger
	level LogLevel
}

func (w levelWriter) Write(p []byte) (int, error) {
	if msg := strings.TrimSpace(string(p)); msg != "" {
		w.l.write(w.level, "%s", msg)
	}
	return len(p), nil
}

// package functions are no-ops until Init succeeds

func logDefault(level LogLevel, format string, args ...any) {
	if defaultLogger != nil {
		defaultLogger.write(level, format, args...)
	}
}

func Debug(format string, args ...any) { logDefault(DEBUG, format, args...) }
func Info(format string, args ...any)  { logDefault(INFO, format, args...) }
func Warn(format string, args ...any)  { logDefault(WARN, format, args...) }
func Error(format string, args ...any) { logDefault(ERROR, format, args...) }

// Close closes the default logger
func Close() error {
	if defaultLogger == nil {
		return nil
	}
	return defaultLogger.Close()
}

// GetDefault returns the default logger, nil before Init
func GetDefault() *Logger {
	return defaultLogger
}
