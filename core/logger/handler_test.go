package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func renderLine(t *testing.T, format logFormat, ctx context.Context, component, event string, attrs ...slog.Attr) string {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelDebug,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	LogEvent(ctx, slog.New(handler).With("component", component), slog.LevelInfo, event, attrs...)
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected log line")
	}
	return line
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	ctx := WithRID(context.Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	line := renderLine(t, formatKV, ctx, "conv", "conv.transition",
		slog.String("next_state", "birth_date"),
		slog.String("status", "ok"),
		slog.String("state", "user_name"),
	)
	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=conv", "event=conv.transition", "status=ok", "rid=rid-123",
		"update_id=42", "user_id=7", "chat_id=9", "state=user_name", "next_state=birth_date"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	ctx := WithRID(context.Background(), "rid-json")

	line := renderLine(t, formatJSON, ctx, "tg.sender", "send.fail",
		slog.String("status", "fail"),
		slog.String("err", "boom"),
		slog.String("recipient", "operator"),
	)
	if !strings.HasPrefix(line, "{") {
		t.Fatalf("expected JSON, got %s", line)
	}
	prefixes := []string{`{"ts":`, `"level":"INFO"`, `"component":"tg.sender"`, `"event":"send.fail"`,
		`"status":"fail"`, `"rid":"rid-json"`, `"recipient":"operator"`, `"err":"boom"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	rawRID := "123:456:789"
	ctx := WithRID(context.Background(), rawRID)

	kv := renderLine(t, formatKV, ctx, "app", "rid.test")
	if !strings.Contains(kv, "rid="+CompactRID(rawRID)) {
		t.Fatalf("expected compact rid, got %s", kv)
	}
	if strings.Contains(kv, "rid_full=") {
		t.Fatalf("rid_full should be omitted in KV output, got %s", kv)
	}

	js := renderLine(t, formatJSON, ctx, "app", "rid.test")
	if !strings.Contains(js, `"rid_full":"`+rawRID+`"`) {
		t.Fatalf("expected rid_full in JSON output, got %s", js)
	}
	if !strings.Contains(js, `"ts_unix_nano"`) {
		t.Fatalf("expected ts_unix_nano in JSON output, got %s", js)
	}
}

func TestStructuredHandlerNormalizesValues(t *testing.T) {
	line := renderLine(t, formatKV, context.Background(), "", "normalize",
		slog.String("outcome", "exploded"),
		slog.String("payload", ""),
		slog.Duration("duration", 1500000),
		slog.Group("journal", slog.String("table", "listing_submissions")),
	)
	if strings.Contains(line, "outcome=") {
		t.Fatalf("unknown outcome should be dropped, got %s", line)
	}
	if strings.Contains(line, "payload=") {
		t.Fatalf("empty strings should be pruned, got %s", line)
	}
	if !strings.Contains(line, "duration_ms=2") {
		t.Fatalf("expected duration rounded to ms, got %s", line)
	}
	if !strings.Contains(line, "component=app") {
		t.Fatalf("expected default component, got %s", line)
	}
	if !strings.Contains(line, "journal.table=listing_submissions") {
		t.Fatalf("expected flattened group key, got %s", line)
	}
}

func TestSanitizeLimit(t *testing.T) {
	got := SanitizeLimit("Ан\x00ар​\tok", 4)
	if got != "Анар" {
		t.Fatalf("SanitizeLimit = %q", got)
	}
}
