package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observed(t *testing.T) (*Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return &Logger{SugaredLogger: zap.New(core).Sugar(), redact: true, salt: "s"}, logs
}

func TestRedactsSecretKeys(t *testing.T) {
	l, logs := observed(t)
	l.Info("token acquired", "access_token", "abc", "Authorization", "Bearer xyz", "path", "/api/quizzes/start")

	entry := logs.All()[0]
	fields := entry.ContextMap()
	if fields["access_token"] != "[REDACTED]" {
		t.Fatalf("access_token = %v, want redacted", fields["access_token"])
	}
	if fields["Authorization"] != "[REDACTED]" {
		t.Fatalf("Authorization = %v, want redacted", fields["Authorization"])
	}
	if fields["path"] != "/api/quizzes/start" {
		t.Fatalf("path = %v, want untouched", fields["path"])
	}
}

func TestHashesIdentifiers(t *testing.T) {
	l, logs := observed(t)
	l.Info("plans loaded", "user_id", "user-123")

	got, _ := logs.All()[0].ContextMap()["user_id"].(string)
	if got == "user-123" || len(got) != len("hash:")+12 {
		t.Fatalf("user_id = %q, want salted hash", got)
	}

	l.Info("plans loaded", "user_id", "user-123")
	again, _ := logs.All()[1].ContextMap()["user_id"].(string)
	if again != got {
		t.Fatalf("hash is not stable: %q vs %q", got, again)
	}
}

func TestRedactsJWTLookingValues(t *testing.T) {
	l, logs := observed(t)
	l.Warn("odd value", "detail", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig")
	if v := logs.All()[0].ContextMap()["detail"]; v != "[REDACTED]" {
		t.Fatalf("detail = %v, want redacted", v)
	}
}

func TestWithKeepsRedaction(t *testing.T) {
	l, logs := observed(t)
	l.With("refresh_token", "r").Info("child")
	if v := logs.All()[0].ContextMap()["refresh_token"]; v != "[REDACTED]" {
		t.Fatalf("refresh_token = %v, want redacted", v)
	}
}

func TestNewWithoutSinksIsNop(t *testing.T) {
	l, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("dropped")
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(Options{Level: "loud", Console: true}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
