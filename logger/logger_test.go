package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactsSecretKeys(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core))

	l.Info("webhook", "svix_signature", "v1,abc", "session_token", "eyJ...", "path", "/api/webhook")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["svix_signature"] != "[REDACTED]" {
		t.Errorf("signature not redacted: %v", fields["svix_signature"])
	}
	if fields["session_token"] != "[REDACTED]" {
		t.Errorf("token not redacted: %v", fields["session_token"])
	}
	if fields["path"] != "/api/webhook" {
		t.Errorf("path = %v", fields["path"])
	}
}

func TestWithAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	l := FromZap(zap.New(core)).With("component", "guard")

	l.Info("dropped")
	l.Log(zapcore.ErrorLevel, "kept", "status", 500)

	if logs.Len() != 1 {
		t.Fatalf("got %d entries, want 1", logs.Len())
	}
	e := logs.All()[0]
	if e.Message != "kept" || e.ContextMap()["component"] != "guard" {
		t.Errorf("entry = %+v", e)
	}
}

func TestOddKeyValues(t *testing.T) {
	out := sanitizeKVs([]interface{}{"a", 1, "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Errorf("sanitizeKVs = %v", out)
	}
}
