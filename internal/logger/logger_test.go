package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLogger(t *testing.T, cfg Config) (*Logger, string) {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "gsearch-logger-test")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	if cfg.LogDir == "" {
		cfg.LogDir = tmpDir
	} else {
		cfg.LogDir = filepath.Join(tmpDir, cfg.LogDir)
	}

	logger, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return logger, cfg.LogDir
}

func readToday(t *testing.T, dir, prefix string) string {
	t.Helper()
	today := time.Now().Format("2006-01-02")
	content, err := os.ReadFile(filepath.Join(dir, prefix+"-"+today+".log"))
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	return string(content)
}

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARN, "WARN"},
		{ERROR, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", DEBUG},
		{"DEBUG", DEBUG},
		{" info ", INFO},
		{"warn", WARN},
		{"warning", WARN},
		{"error", ERROR},
		{"", INFO},
		{"verbose", INFO},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, dir := newTestLogger(t, Config{Level: INFO, MaxDays: 7})
	defer logger.Close()

	if logger.level != INFO {
		t.Errorf("Expected level INFO, got %v", logger.level)
	}
	if logger.keep != 7 {
		t.Errorf("Expected keep 7, got %d", logger.keep)
	}
	if logger.dir != dir {
		t.Errorf("Expected dir %s, got %s", dir, logger.dir)
	}
	if logger.prefix != "gsearch" {
		t.Errorf("Expected default prefix gsearch, got %s", logger.prefix)
	}
	if logger.console != nil {
		t.Error("Console output should be disabled")
	}
}

func TestNewLogger_DefaultMaxDays(t *testing.T) {
	logger, _ := newTestLogger(t, Config{Level: INFO})
	defer logger.Close()

	if logger.keep != 7 {
		t.Errorf("Expected default keep 7, got %d", logger.keep)
	}
}

func TestNewLogger_CreateLogDir(t *testing.T) {
	logger, dir := newTestLogger(t, Config{LogDir: filepath.Join("logs", "subdir"), Level: INFO})
	defer logger.Close()

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Error("Log directory was not created")
	}
}

func TestLogger_LogLevels(t *testing.T) {
	logger, dir := newTestLogger(t, Config{Level: DEBUG})

	logger.Debug("debug message %d", 1)
	logger.Info("info message %s", "test")
	logger.Warn("warn message")
	logger.Error("error message")
	logger.Close()

	logContent := readToday(t, dir, "gsearch")
	for _, want := range []string{
		"[DEBUG] debug message 1",
		"[INFO] info message test",
		"[WARN] warn message",
		"[ERROR] error message",
	} {
		if !strings.Contains(logContent, want) {
			t.Errorf("Log should contain %q", want)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	logger, dir := newTestLogger(t, Config{Level: WARN})

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")
	logger.Close()

	logContent := readToday(t, dir, "gsearch")
	if strings.Contains(logContent, "[DEBUG]") {
		t.Error("DEBUG messages should be filtered out")
	}
	if strings.Contains(logContent, "[INFO]") {
		t.Error("INFO messages should be filtered out")
	}
	if !strings.Contains(logContent, "[WARN]") {
		t.Error("WARN messages should be logged")
	}
	if !strings.Contains(logContent, "[ERROR]") {
		t.Error("ERROR messages should be logged")
	}
}

func TestLogger_SetLevel(t *testing.T) {
	logger, dir := newTestLogger(t, Config{Level: ERROR})

	logger.Info("hidden")
	logger.SetLevel(DEBUG)
	logger.Debug("visible")
	logger.Close()

	logContent := readToday(t, dir, "gsearch")
	if strings.Contains(logContent, "hidden") {
		t.Error("INFO message before SetLevel should be filtered out")
	}
	if !strings.Contains(logContent, "[DEBUG] visible") {
		t.Error("DEBUG message after SetLevel should be logged")
	}
}

func TestLogger_CustomPrefix(t *testing.T) {
	logger, dir := newTestLogger(t, Config{Level: INFO, Prefix: "web"})

	logger.Info("served")
	logger.Close()

	if !strings.Contains(readToday(t, dir, "web"), "[INFO] served") {
		t.Error("Log with custom prefix should contain message")
	}
}

func TestLogger_ConsoleEcho(t *testing.T) {
	logger, _ := newTestLogger(t, Config{Level: INFO})
	defer logger.Close()

	var buf bytes.Buffer
	logger.console = &buf

	logger.Warn("search failed: %s", "timeout")

	if !strings.Contains(buf.String(), "[WARN] search failed: timeout") {
		t.Errorf("Console should receive log line, got %q", buf.String())
	}
}

func TestLogger_GetWriter(t *testing.T) {
	logger, dir := newTestLogger(t, Config{Level: INFO})

	writer := logger.GetWriter(ERROR)
	if writer == nil {
		t.Fatal("GetWriter should return a writer")
	}

	n, err := writer.Write([]byte("http: TLS handshake error\n"))
	if err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if n != 26 {
		t.Errorf("Expected to write 26 bytes, wrote %d", n)
	}
	logger.Close()

	if !strings.Contains(readToday(t, dir, "gsearch"), "[ERROR] http: TLS handshake error") {
		t.Error("Writer output should be logged at ERROR")
	}
}

func TestLogger_Prune(t *testing.T) {
	dir, err := os.MkdirTemp("", "gsearch-logger-prune")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	// no open file, so no background prune races this one
	logger := &Logger{dir: dir, prefix: "gsearch", keep: 2}

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	for _, name := range []string{
		"gsearch-2025-03-10.log",
		"gsearch-2025-03-09.log",
		"gsearch-2025-03-08.log",
		"gsearch-2024-12-31.log",
		"gsearch-notes.log",
		"web-2020-01-01.log",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	logger.prune(now)

	tests := []struct {
		name string
		kept bool
	}{
		{"gsearch-2025-03-10.log", true},
		{"gsearch-2025-03-09.log", true},
		{"gsearch-2025-03-08.log", false},
		{"gsearch-2024-12-31.log", false},
		{"gsearch-notes.log", true},
		{"web-2020-01-01.log", true},
	}
	for _, tt := range tests {
		_, err := os.Stat(filepath.Join(dir, tt.name))
		if kept := err == nil; kept != tt.kept {
			t.Errorf("%s kept = %v, want %v", tt.name, kept, tt.kept)
		}
	}
}

func TestLogger_DayRollover(t *testing.T) {
	logger, dir := newTestLogger(t, Config{Level: INFO})

	day := time.Date(2030, 6, 1, 23, 59, 0, 0, time.Local)
	logger.now = func() time.Time { return day }
	logger.Info("before midnight")

	day = day.Add(2 * time.Minute)
	logger.Info("after midnight")
	logger.Close()

	first, err := os.ReadFile(filepath.Join(dir, "gsearch-2030-06-01.log"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(filepath.Join(dir, "gsearch-2030-06-02.log"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(first), "before midnight") || strings.Contains(string(first), "after midnight") {
		t.Errorf("unexpected first day content %q", first)
	}
	if !strings.Contains(string(second), "after midnight") {
		t.Errorf("unexpected second day content %q", second)
	}
}

func TestLogger_Close(t *testing.T) {
	logger, _ := newTestLogger(t, Config{Level: INFO})

	if err := logger.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Second Close returned error: %v", err)
	}
}

func TestPackageLevelFunctions_WithNilLogger(t *testing.T) {
	savedLogger := defaultLogger
	defaultLogger = nil
	defer func() { defaultLogger = savedLogger }()

	// must not panic
	Debug("test")
	Info("test")
	Warn("test")
	Error("test")

	if err := Close(); err != nil {
		t.Errorf("Close with nil logger returned error: %v", err)
	}
}

func TestGetDefault(t *testing.T) {
	savedLogger := defaultLogger
	defaultLogger = nil
	defer func() { defaultLogger = savedLogger }()

	if GetDefault() != nil {
		t.Error("GetDefault should return nil when no logger is initialized")
	}
}
