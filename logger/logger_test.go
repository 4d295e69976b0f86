package logger

import (
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
	}{
		{name: "JSON output mode", jsonOutput: true},
		{name: "Console output mode", jsonOutput: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset global logger
			Logger = nil
			JSONOutput = false

			if err := Initialize(tt.jsonOutput); err != nil {
				t.Fatalf("Initialize() error = %v", err)
			}

			if Logger == nil {
				t.Error("Initialize() did not set global Logger")
			}
			if JSONOutput != tt.jsonOutput {
				t.Errorf("Initialize() JSONOutput = %v, want %v", JSONOutput, tt.jsonOutput)
			}

			Cleanup()
		})
	}
}

func TestPackageLevelHelpersWithNilLogger(t *testing.T) {
	// Helpers must not panic even if Initialize was never called
	saved := Logger
	Logger = nil
	defer func() { Logger = saved }()

	Info("info")
	Infof("info %d", 1)
	Infow("info", "key", "value")
	Warn("warn")
	Warnf("warn %d", 1)
	Warnw("warn", "key", "value")
	Error("error")
	Errorf("error %d", 1)
	Errorw("error", "key", "value")
	Debugw("debug", "key", "value")
	Cleanup()
}

func TestAbbreviateName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"server", "server"},
		{"bot.engine", "b.engine"},
		{"server.client.ws", "s.client.ws"},
	}
	for _, tt := range tests {
		if got := abbreviateName(tt.in); got != tt.want {
			t.Errorf("abbreviateName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMinimalEncoderEncodeEntry(t *testing.T) {
	enc := newMinimalEncoder()

	entry := zapcore.Entry{
		Level:      zapcore.InfoLevel,
		Message:    "Client connected",
		LoggerName: "server",
	}
	fields := []zapcore.Field{
		{Key: "client_id", Type: zapcore.StringType, String: "ws-7f2a"},
		{Key: "entries", Type: zapcore.Int64Type, Integer: 42},
	}

	buf, err := enc.EncodeEntry(entry, fields)
	if err != nil {
		t.Fatalf("EncodeEntry() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{"Client connected", "server", "ws-7f2a", "42"} {
		if !strings.Contains(out, want) {
			t.Errorf("EncodeEntry() output missing %q: %s", want, out)
		}
	}
}

func TestMinimalEncoderWarnLevel(t *testing.T) {
	enc := newMinimalEncoder()

	entry := zapcore.Entry{
		Level:   zapcore.WarnLevel,
		Message: "snapshot export failed",
	}
	buf, err := enc.EncodeEntry(entry, nil)
	if err != nil {
		t.Fatalf("EncodeEntry() error = %v", err)
	}
	if !strings.Contains(buf.String(), "WARN") {
		t.Errorf("warn entry should carry WARN marker: %s", buf.String())
	}
}
