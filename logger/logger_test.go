package logger

import (
	"strings"
	"testing"
)

func TestSanitizeRedactsCredentials(t *testing.T) {
	out := sanitize([]interface{}{
		"user_id", 7,
		"senha_nova", "hunter2",
		"id_token", "abc.def.ghi",
		"email", "ana@example.com",
	})
	if len(out) != 8 {
		t.Fatalf("expected 8 entries, got %d", len(out))
	}
	if out[1] != 7 {
		t.Fatalf("user_id should pass through, got %v", out[1])
	}
	if out[3] != "[REDACTED]" || out[5] != "[REDACTED]" {
		t.Fatalf("credentials not redacted: %v", out)
	}
	email, _ := out[7].(string)
	if !strings.HasPrefix(email, "hash:") || strings.Contains(email, "ana") {
		t.Fatalf("email not hashed: %v", out[7])
	}
}

func TestSanitizeOddLength(t *testing.T) {
	out := sanitize([]interface{}{"key", "v", "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected output: %v", out)
	}
}

func TestNewTestModeIsNop(t *testing.T) {
	l, err := New("test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("ignored", "k", "v")
	l.With("component", "x").Warn("ignored")
}
