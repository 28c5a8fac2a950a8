package privacylog

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}
	return payload
}

func TestSanitizeArgsFingerprintsIdentifiers(t *testing.T) {
	args := SanitizeArgs(
		"session_id", "05abcdef",
		"mnemonic", "abandon abandon abandon abandon",
		"kind", "private",
	)
	if len(args) != 6 {
		t.Fatalf("unexpected args length: %d", len(args))
	}
	if args[0] != "session_id_fp" {
		t.Fatalf("unexpected key: %v", args[0])
	}
	if got := args[1].(string); !strings.HasPrefix(got, "fp_") || got != FingerprintID("05abcdef") {
		t.Fatalf("unexpected fingerprint value: %q", got)
	}
	if args[3] != redactedValue {
		t.Fatalf("mnemonic should be redacted, got %v", args[3])
	}
	if args[4] != "kind" || args[5] != "private" {
		t.Fatalf("plain key should pass through, got %v=%v", args[4], args[5])
	}
}

func TestSanitizingHandlerRedactsRecoveryMaterial(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(WrapHandler(slog.NewJSONHandler(&buf, nil)))
	logger.Info("restore",
		"recovery_phrase", "cactus chimney civil",
		"seed_hex", "00ff",
		"identity_id", "lk1abc",
		"rpc_token", "t0k",
		"status", "ok",
	)
	payload := decodeLine(t, &buf)
	for _, key := range []string{"recovery_phrase", "seed_hex", "rpc_token"} {
		if got, _ := payload[key].(string); got != redactedValue {
			t.Fatalf("%s should be redacted, got %q", key, got)
		}
	}
	if _, ok := payload["identity_id"]; ok {
		t.Fatal("identity_id should not be logged in clear")
	}
	if _, ok := payload["identity_id_fp"]; !ok {
		t.Fatal("identity_id_fp should be present")
	}
	if payload["status"] != "ok" {
		t.Fatalf("unexpected status %v", payload["status"])
	}
	if strings.Contains(buf.String(), "cactus") {
		t.Fatalf("phrase leaked into log: %s", buf.String())
	}
}

func TestSanitizingHandlerCoversWithAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(WrapHandler(slog.NewJSONHandler(&buf, nil))).
		With("passphrase", "hunter2").
		With(slog.Group("req", slog.String("public_key", "05aa"), slog.Int("size", 3)))
	logger.Info("encode")
	out := buf.String()
	if strings.Contains(out, "hunter2") || strings.Contains(out, "05aa") {
		t.Fatalf("sensitive values leaked: %s", out)
	}
	if !strings.Contains(out, "public_key_fp") || !strings.Contains(out, `"size":3`) {
		t.Fatalf("expected sanitized group, got %s", out)
	}
}

func TestSanitizingHandlerImplementsSlogHandlerContract(t *testing.T) {
	var buf bytes.Buffer
	h := WrapHandler(slog.NewJSONHandler(&buf, nil))
	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("expected handler enabled for info")
	}
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug should follow the wrapped handler level")
	}
	rec := slog.NewRecord(time.Now().UTC(), slog.LevelInfo, "msg", 0)
	rec.AddAttrs(slog.String("thread_id", "t1"))
	if err := h.Handle(context.Background(), rec); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if !strings.Contains(buf.String(), "thread_id_fp") {
		t.Fatalf("expected sanitized thread_id key, got %s", buf.String())
	}
	if WrapHandler(nil) != nil {
		t.Fatal("wrapping nil should return nil")
	}
}
