package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/learnhub/internal/llm"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "usage.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.db")
	for i := 0; i < 2; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		s.Close()
	}
}

func TestAppendAndQueryLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.UsageRepo()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	records := []llm.UsageRecord{
		{Provider: "azure", Model: "gpt-4o", Purpose: "tutor-chat", InputTokens: 100, OutputTokens: 40, LatencyMs: 900, Success: true, ResponseBody: "first"},
		{Provider: "azure", Model: "gpt-4o", Purpose: "tutor-chat", InputTokens: 50, OutputTokens: 10, LatencyMs: 300, Success: false, ErrorMessage: "boom"},
		{Provider: "mock", Model: "mock", Purpose: "smoke", Success: true},
	}
	for _, rec := range records {
		if err := repo.AppendLLMRequest(ctx, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Purpose != "smoke" {
		t.Errorf("expected newest first, got %q", events[0].Purpose)
	}
	if !events[2].Timestamp.Equal(base.Add(time.Minute)) {
		t.Errorf("timestamp = %v", events[2].Timestamp)
	}

	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1, Purpose: "tutor-chat"})
	if err != nil {
		t.Fatalf("query limited: %v", err)
	}
	if len(limited) != 1 || limited[0].ErrorMessage != "boom" {
		t.Fatalf("unexpected limited result: %+v", limited)
	}

	e, err := repo.GetLLMEvent(ctx, events[2].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil || e.ResponseBody != "first" || !e.Success {
		t.Fatalf("unexpected event: %+v", e)
	}

	missing, err := repo.GetLLMEvent(ctx, 999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for missing event")
	}
}

func TestUsageAggregates(t *testing.T) {
	s := openTestStore(t)
	repo := s.UsageRepo()
	ctx := context.Background()

	for _, rec := range []llm.UsageRecord{
		{Provider: "azure", Model: "gpt-4o", Purpose: "tutor-chat", InputTokens: 100, OutputTokens: 40, LatencyMs: 1000, Success: true},
		{Provider: "azure", Model: "gpt-4o", Purpose: "tutor-chat", InputTokens: 20, OutputTokens: 10, LatencyMs: 500, Success: true},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "smoke", InputTokens: 5, OutputTokens: 5, LatencyMs: 100, Success: true},
	} {
		if err := repo.AppendLLMRequest(ctx, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("got %d purposes, want 2", len(byPurpose))
	}
	chat := byPurpose[0]
	if chat.Purpose != "tutor-chat" || chat.Calls != 2 || chat.InputTokens != 120 || chat.OutputTokens != 50 || chat.AvgLatencyMs != 750 {
		t.Fatalf("unexpected tutor-chat usage: %+v", chat)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("by model: %v", err)
	}
	if len(byModel) != 2 || byModel[0].Model != "gpt-4o" || byModel[0].Calls != 2 {
		t.Fatalf("unexpected model usage: %+v", byModel)
	}
}
