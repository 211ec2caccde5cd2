package dashboard

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/learnhub/internal/api"
)

type openedMsg string

func plans() []api.LessonPlan {
	return []api.LessonPlan{
		{ID: "p1", Subject: "Math", Topic: "Algebra", Status: "active", SubtopicCount: 4},
		{ID: "p2", Subject: "Physics", Topic: "Optics", Status: "draft", SubtopicCount: 2},
	}
}

func TestOpenSelectedPlan(t *testing.T) {
	s := New(Props{
		Plans:  plans(),
		Loaded: true,
		OnOpen: func(id string) tea.Cmd { return func() tea.Msg { return openedMsg(id) } },
	})

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command from Enter")
	}
	if got := cmd(); got != openedMsg("p2") {
		t.Errorf("expected open p2, got %v", got)
	}
}

func TestOpenIgnoredWhileAnotherPlanOpens(t *testing.T) {
	s := New(Props{
		Plans:   plans(),
		Loaded:  true,
		Opening: "p2",
		OnOpen:  func(id string) tea.Cmd { return func() tea.Msg { return openedMsg(id) } },
	})

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Error("expected no command while a plan is opening")
	}
	if !strings.Contains(s.View(100, 30), "opening...") {
		t.Error("expected opening indicator in view")
	}
}

func TestNewAndRefreshKeys(t *testing.T) {
	var newCalls, refreshCalls int
	s := New(Props{
		Loaded:    true,
		OnNew:     func() tea.Cmd { newCalls++; return nil },
		OnRefresh: func() tea.Cmd { refreshCalls++; return nil },
	})

	s.Update(tea.KeyPressMsg{Code: 'n', Text: "n"})
	s.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	if newCalls != 1 || refreshCalls != 1 {
		t.Errorf("expected 1 new and 1 refresh, got %d and %d", newCalls, refreshCalls)
	}

	s.SetProps(Props{Loaded: true, Loading: true, OnRefresh: s.props.OnRefresh})
	s.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	if refreshCalls != 1 {
		t.Error("refresh should be ignored while loading")
	}
}

func TestViewStates(t *testing.T) {
	s := New(Props{Loading: true})
	if !strings.Contains(s.View(100, 30), "Loading your plans") {
		t.Error("expected loading placeholder before first load")
	}

	s.SetProps(Props{Loaded: true})
	if !strings.Contains(s.View(100, 30), "No plans yet") {
		t.Error("expected empty hint")
	}

	s.SetProps(Props{Loaded: true, Plans: plans()})
	view := s.View(100, 30)
	for _, want := range []string{"Math - Algebra", "active • 4 subtopics", "Physics - Optics"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view", want)
		}
	}
}

func TestSetPropsKeepsCursor(t *testing.T) {
	s := New(Props{Plans: plans(), Loaded: true})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})

	s.SetProps(Props{Plans: plans(), Loaded: true, Loading: true})

	p, ok := s.SelectedPlan()
	if !ok || p.ID != "p2" {
		t.Errorf("expected cursor to stay on p2, got %+v", p)
	}
}
