package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.Info("hello", "source", "pile-10k")

	output := buf.String()
	if !strings.Contains(output, `"source":"pile-10k"`) {
		t.Fatalf("expected source attr in JSON output, got: %s", output)
	}
	if !strings.Contains(output, `"level":"INFO"`) {
		t.Fatalf("expected level INFO in output, got: %s", output)
	}
}

func TestJSONLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelWarn)
	log.Info("should not appear")
	log.Debug("also should not appear")
	if buf.Len() > 0 {
		t.Fatalf("expected no output for info/debug at warn level, got: %s", buf.String())
	}
	log.Warn("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Fatalf("expected warn message in output, got: %s", buf.String())
	}
}

func TestDiscardAndOrDiscard(t *testing.T) {
	t.Parallel()
	// Should not panic.
	Discard().Error("dropped", "k", 1)
	OrDiscard(nil).Info("dropped")

	var buf bytes.Buffer
	l := Text(&buf, slog.LevelInfo)
	OrDiscard(l).Info("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("OrDiscard replaced a non-nil logger: %q", buf.String())
	}
}

func TestFromFlags(t *testing.T) {
	t.Parallel()

	var jsonBuf bytes.Buffer
	FromFlags(&jsonBuf, "json", "info", false).Info("msg")
	if !strings.HasPrefix(jsonBuf.String(), "{") {
		t.Fatalf("json format: got %q", jsonBuf.String())
	}

	var textBuf bytes.Buffer
	FromFlags(&textBuf, "text", "error", true).Debug("dbg")
	if !strings.Contains(textBuf.String(), "level=DEBUG") {
		t.Fatalf("debug flag should force debug level, got %q", textBuf.String())
	}

	var prettyBuf bytes.Buffer
	FromFlags(&prettyBuf, "", "warn", false).Info("hidden")
	if prettyBuf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", prettyBuf.String())
	}
}

func TestWith(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.With("component", "mixer").Info("child message")

	output := buf.String()
	if !strings.Contains(output, `"component":"mixer"`) {
		t.Fatalf("expected component attr in output, got: %s", output)
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)

	ctx := WithContext(context.Background(), log)
	FromContext(ctx).Info("roundtrip test")
	if !strings.Contains(buf.String(), "roundtrip test") {
		t.Fatalf("expected message via context logger, got: %s", buf.String())
	}
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext with no logger returned nil")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{" warning ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tc := range tests {
		if got := ParseLevel(tc.input); got != tc.expected {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tc.input, tc.expected, got)
		}
	}
}

func TestPrettyHandlerEnabled(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected info to be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("expected error to be enabled at warn level")
	}
}

func TestPrettyNoColorForBuffers(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, nil)).Info("plain")
	if strings.Contains(buf.String(), "\033[") {
		t.Fatalf("expected no ANSI codes for a non-terminal writer, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "INFO  plain") {
		t.Fatalf("expected padded level before message, got %q", buf.String())
	}
}

func TestPrettyHandlerGroups(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)

	slog.New(h.WithGroup("a").WithGroup("b")).Info("nested", "key", "val")
	if !strings.Contains(buf.String(), "a.b.key=val") {
		t.Fatalf("expected 'a.b.key=val' in output, got: %s", buf.String())
	}
	if h.WithGroup("") != h {
		t.Fatal("WithGroup empty string should return same handler")
	}
}

func TestPrettyHandlerWithAttrsDoesNotAlias(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)
	base := h.WithAttrs([]slog.Attr{slog.String("source", "a")})
	_ = base.WithAttrs([]slog.Attr{slog.String("extra", "x")})

	slog.New(base).Info("line")
	if strings.Contains(buf.String(), "extra=x") {
		t.Fatalf("derived handler leaked attrs into parent: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "source=a") {
		t.Fatalf("expected source=a, got: %s", buf.String())
	}
}

func TestPrettyQuoting(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, nil))
	logger.Info("test", "msg", "hello world", "key", "simple")

	output := buf.String()
	if !strings.Contains(output, `msg="hello world"`) {
		t.Fatalf("expected quoted string with spaces, got: %s", output)
	}
	if !strings.Contains(output, "key=simple") {
		t.Fatalf("expected unquoted simple string, got: %s", output)
	}
}
