package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":      zapcore.InfoLevel,
		"debug": zapcore.DebugLevel,
		"warn":  zapcore.WarnLevel,
		"ERROR": zapcore.ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNewLoggerWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "signer.log")
	logger, err := NewLoggerWithFile("warn", path)
	if err != nil {
		t.Fatal(err)
	}
	sugar := logger.Sugar()
	sugar.Infow("hidden_event")
	sugar.Warnw("visible_event", "key", "value")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "hidden_event") {
		t.Errorf("info entry written at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"visible_event"`) || !strings.Contains(out, `"key":"value"`) {
		t.Errorf("missing warn entry: %s", out)
	}
}

func TestFixedClock(t *testing.T) {
	at := time.Unix(1693472232, 0)
	var c Clock = FixedClock(at)
	if !c.Now().Equal(at) {
		t.Fatalf("got %v", c.Now())
	}
}
