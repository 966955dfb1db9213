package logger

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/dbsmedya/gofresh/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestEncoding(t *testing.T) {
	tests := []struct {
		format   string
		expected string
	}{
		{"json", "json"},
		{"text", "console"},
		{"", "console"},
	}

	for _, tt := range tests {
		if got := encoding(tt.format); got != tt.expected {
			t.Errorf("encoding(%q) = %q, expected %q", tt.format, got, tt.expected)
		}
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		output   string
		expected []string
	}{
		{"stdout", []string{"stdout"}},
		{"", []string{"stdout"}},
		{"stderr", []string{"stderr"}},
		{"/var/log/gofresh.log", []string{"stdout", "/var/log/gofresh.log"}},
	}

	for _, tt := range tests {
		if got := outputPaths(tt.output); !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("outputPaths(%q) = %v, expected %v", tt.output, got, tt.expected)
		}
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LoggingConfig
	}{
		{"json to stdout", config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}},
		{"text to stderr", config.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"}},
		{"json to file", config.LoggingConfig{Level: "warn", Format: "json", Output: filepath.Join(t.TempDir(), "gofresh.log")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(&tt.cfg)
			if err != nil {
				t.Fatalf("New() failed: %v", err)
			}
			if logger == nil {
				t.Fatal("New() returned nil logger without error")
			}
			logger.Info("probe")
			_ = logger.Sync()
		})
	}
}

func TestNew_UnwritableFile(t *testing.T) {
	cfg := config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: filepath.Join(t.TempDir(), "missing", "gofresh.log"),
	}

	if _, err := New(&cfg); err == nil {
		t.Error("New() should fail when the log file cannot be opened")
	}
}

func TestNewDefault(t *testing.T) {
	logger := NewDefault()
	if logger == nil {
		t.Fatal("NewDefault() returned nil")
	}

	logger.Info("default logger probe")
	_ = logger.Sync()
}

func TestContextMethods(t *testing.T) {
	tests := []struct {
		name   string
		derive func(*Logger) *Logger
	}{
		{"WithTable", func(l *Logger) *Logger { return l.WithTable("shop.orders") }},
		{"WithColumn", func(l *Logger) *Logger { return l.WithColumn("created_at") }},
		{"WithTrigger", func(l *Logger) *Logger { return l.WithTrigger("MANUAL") }},
		{"chained", func(l *Logger) *Logger {
			return l.WithTable("shop.orders").WithColumn("status").WithTrigger("SYSTEM")
		}},
	}

	base, err := New(&config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			derived := tt.derive(base)
			if derived == nil {
				t.Fatalf("%s returned nil", tt.name)
			}
			if derived == base {
				t.Errorf("%s should return a new logger instance", tt.name)
			}
			derived.Info("probe")
		})
	}

	_ = base.Sync()
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	logger, err := New(&config.LoggingConfig{Level: "info", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	logger.Info("reconciled analysis job")
	logger.Warn("schema lookup failed")
	logger.Debug("suppressed at info level")
	logger.WithTable("shop.orders").WithTrigger("MANUAL").Info("contextual line")
	_ = logger.Sync()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	got := string(content)
	for _, want := range []string{
		"reconciled analysis job",
		`"level":"warn"`,
		`"table":"shop.orders"`,
		`"trigger":"MANUAL"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("log file should contain %q, got:\n%s", want, got)
		}
	}

	if strings.Contains(got, "suppressed at info level") {
		t.Error("debug line should be filtered at info level")
	}
}

func TestSync(t *testing.T) {
	logger, err := New(&config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	// Sync on stdout may legitimately fail on some platforms.
	_ = logger.Sync()
}
