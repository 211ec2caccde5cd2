package plandetails

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/learnhub/internal/api"
)

func plan() api.LessonPlan {
	return api.LessonPlan{
		ID:            "p1",
		Subject:       "Math",
		Topic:         "Algebra",
		Description:   "Linear and quadratic equations.",
		Level:         "GCSE",
		SubtopicCount: 2,
		Subtopics: []api.Subtopic{
			{ID: "s1", Title: "Linear equations", LessonID: "l1"},
			{ID: "s2", Title: "Quadratics"},
		},
	}
}

func TestStartOrOpenLabels(t *testing.T) {
	s := New(Props{Plan: plan()})
	view := s.View(100, 40)

	if !strings.Contains(view, "Linear equations") || !strings.Contains(view, "Open") {
		t.Error("generated subtopic should offer Open")
	}
	if !strings.Contains(view, "Start") {
		t.Error("ungenerated subtopic should offer Start")
	}
	if !strings.Contains(view, "Linear and quadratic equations.") {
		t.Error("expected description")
	}
}

func TestLocalGeneratedFlagWins(t *testing.T) {
	s := New(Props{Plan: plan(), Generated: map[string]bool{"s2": true}})
	if !s.IsGenerated(plan().Subtopics[1]) {
		t.Error("cached generated flag should win")
	}
}

func TestStartSelectedSubtopic(t *testing.T) {
	var started string
	s := New(Props{Plan: plan(), OnStart: func(id string) tea.Cmd { started = id; return nil }})

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	if started != "s2" {
		t.Errorf("expected s2 started, got %q", started)
	}
}

func TestStartIgnoredWhileGenerating(t *testing.T) {
	calls := 0
	s := New(Props{
		Plan:       plan(),
		Generating: map[string]bool{"s2": true},
		OnStart:    func(string) tea.Cmd { calls++; return nil },
	})

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if calls != 0 {
		t.Error("start should be ignored while a lesson is generating")
	}
	if !strings.Contains(s.View(100, 40), "generating lesson...") {
		t.Error("expected generating indicator")
	}
}

func TestEscGoesBack(t *testing.T) {
	back := false
	s := New(Props{Plan: plan(), OnBack: func() tea.Cmd { back = true; return nil }})
	s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if !back {
		t.Error("expected esc to go back")
	}
}
