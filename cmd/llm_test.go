package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/learnhub/internal/store"
)

func TestPrintEvents(t *testing.T) {
	var buf bytes.Buffer
	printEvents(&buf, nil)
	if !strings.Contains(buf.String(), "No model calls recorded.") {
		t.Errorf("unexpected empty output %q", buf.String())
	}

	buf.Reset()
	printEvents(&buf, []store.LLMEvent{
		{ID: 7, Timestamp: time.Now(), Purpose: "tutor-chat", Model: "gpt-4o-mini", InputTokens: 120, OutputTokens: 40, LatencyMs: 900, Success: true},
		{ID: 8, Timestamp: time.Now(), Purpose: "tutor-chat", Model: "gpt-4o-mini", ErrorMessage: "boom"},
	})
	out := buf.String()
	for _, want := range []string{"tutor-chat", "gpt-4o-mini", "120", "✓", "✗"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestPrintEventShowsMissingBodies(t *testing.T) {
	var buf bytes.Buffer
	printEvent(&buf, store.LLMEvent{ID: 3, Model: "m", ErrorMessage: "rate limited", RequestBody: "[user]\nhi"})
	out := buf.String()
	if !strings.Contains(out, "rate limited") || !strings.Contains(out, "[user]") || !strings.Contains(out, "(not captured)") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	printStats(&buf,
		[]store.PurposeUsage{{Purpose: "tutor-chat", Calls: 2, InputTokens: 1_000_000, OutputTokens: 100_000}},
		[]store.ModelUsage{
			{Model: "gpt-4o-mini-2024-07-18", Calls: 1, InputTokens: 1_000_000, OutputTokens: 100_000},
			{Model: "my-deployment", Calls: 1},
		},
	)
	out := buf.String()
	// 1M in at 0.15 + 0.1M out at 0.6
	if !strings.Contains(out, "$0.21") {
		t.Errorf("expected cost in %q", out)
	}
	if !strings.Contains(out, "TOTAL (partial)") || !strings.Contains(out, "No pricing for: my-deployment") {
		t.Errorf("expected unknown model note in %q", out)
	}
}
