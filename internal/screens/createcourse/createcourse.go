// Package createcourse is the form for requesting a new plan.
package createcourse

import (
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/learnhub/internal/api"
	"github.com/abhisek/learnhub/internal/screen"
	"github.com/abhisek/learnhub/internal/ui/components"
	"github.com/abhisek/learnhub/internal/ui/layout"
	"github.com/abhisek/learnhub/internal/ui/theme"
)

var (
	Subjects = []string{"Math", "Physics", "Chemistry", "Biology", "Computer Science"}
	Levels   = []string{"GCSE", "A-Level", "Undergraduate"}
)

const defaultLevel = "GCSE"

type Props struct {
	Creating bool
	OnSubmit func(api.CreatePlanRequest) tea.Cmd
	OnCancel func() tea.Cmd
}

type field int

const (
	fieldSubject field = iota
	fieldLevel
	fieldTopic
	fieldTopics
	fieldFocus
	fieldSubmit
	fieldCount
)

// Screen holds the draft form. Nothing leaves it until submit.
type Screen struct {
	props Props

	focus      field
	subject    components.OptionPicker
	level      components.OptionPicker
	topicInput components.TextInput
	topics     []string
	topicSel   int
	learnFocus components.TextInput
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

func New(props Props) *Screen {
	s := &Screen{
		props:      props,
		subject:    components.NewOptionPicker(Subjects, false),
		level:      components.NewOptionPicker(Levels, false).Choose(defaultLevel),
		topicInput: components.NewTextInput("e.g. Quadratic equations", 120),
		learnFocus: components.NewTextInput("e.g. exam-style questions, step-by-step explanations", 200),
	}
	s.topicInput.Blur()
	s.learnFocus.Blur()
	return s
}

func (s *Screen) SetProps(p Props) { s.props = p }

func (s *Screen) Init() tea.Cmd { return nil }

func (s *Screen) Title() string { return "Create a Course" }

func (s *Screen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Tab", Description: "Next field"}}
	switch s.focus {
	case fieldSubject, fieldLevel:
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Choose"})
	case fieldTopic:
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Add topic"})
	case fieldTopics:
		hints = append(hints, layout.KeyHint{Key: "Del", Description: "Remove topic"})
	case fieldSubmit:
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Generate course"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Cancel"})
}

// Request is the plan request the form would submit now.
func (s *Screen) Request() api.CreatePlanRequest {
	return api.CreatePlanRequest{
		Subject: s.subject.Value(),
		Level:   s.level.Value(),
		Topic:   BuildTopic(s.topics, s.learnFocus.Trimmed()),
	}
}

// CanSubmit is false until a subject and at least one topic are present.
func (s *Screen) CanSubmit() bool {
	return s.subject.Value() != "" && len(s.topics) > 0 && !s.props.Creating
}

// BuildTopic joins the topics and the optional focus into the single
// topic string the API takes.
func BuildTopic(topics []string, focus string) string {
	parts := slices.Clone(topics)
	if focus != "" {
		parts = append(parts, "Focus on: "+focus)
	}
	return strings.Join(parts, "; ")
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, s.updateInputs(msg)
	}

	switch kmsg.String() {
	case "tab":
		return s, s.setFocus((s.focus + 1) % fieldCount)
	case "shift+tab":
		return s, s.setFocus((s.focus + fieldCount - 1) % fieldCount)
	case "ctrl+s":
		return s, s.submit()
	case "esc":
		if s.props.OnCancel != nil && !s.props.Creating {
			return s, s.props.OnCancel()
		}
		return s, nil
	}

	switch s.focus {
	case fieldSubject:
		s.subject, _ = s.subject.Update(msg)
	case fieldLevel:
		s.level, _ = s.level.Update(msg)
	case fieldTopic:
		if kmsg.String() == "enter" {
			s.addTopic()
			return s, nil
		}
		return s, s.updateInputs(msg)
	case fieldTopics:
		switch kmsg.String() {
		case "up", "k":
			if s.topicSel > 0 {
				s.topicSel--
			}
		case "down", "j":
			if s.topicSel < len(s.topics)-1 {
				s.topicSel++
			}
		case "delete", "backspace", "x":
			s.removeTopic(s.topicSel)
		}
	case fieldFocus:
		if kmsg.String() == "enter" {
			return s, s.setFocus(fieldSubmit)
		}
		return s, s.updateInputs(msg)
	case fieldSubmit:
		if kmsg.String() == "enter" {
			return s, s.submit()
		}
	}
	return s, nil
}

func (s *Screen) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch s.focus {
	case fieldTopic:
		s.topicInput, cmd = s.topicInput.Update(msg)
	case fieldFocus:
		s.learnFocus, cmd = s.learnFocus.Update(msg)
	}
	return cmd
}

func (s *Screen) setFocus(f field) tea.Cmd {
	s.focus = f
	s.topicInput.Blur()
	s.learnFocus.Blur()
	switch f {
	case fieldTopic:
		return s.topicInput.Focus()
	case fieldFocus:
		return s.learnFocus.Focus()
	}
	return nil
}

func (s *Screen) addTopic() {
	t := s.topicInput.Trimmed()
	if t == "" || slices.Contains(s.topics, t) {
		return
	}
	s.topics = append(s.topics, t)
	s.topicInput.Reset()
}

func (s *Screen) removeTopic(i int) {
	if i < 0 || i >= len(s.topics) {
		return
	}
	s.topics = slices.Delete(s.topics, i, i+1)
	if s.topicSel >= len(s.topics) && s.topicSel > 0 {
		s.topicSel--
	}
}

func (s *Screen) submit() tea.Cmd {
	if !s.CanSubmit() || s.props.OnSubmit == nil {
		return nil
	}
	return s.props.OnSubmit(s.Request())
}

func (s *Screen) View(width, height int) string {
	cw := components.ContentWidth(width)

	section := func(f field, label, body string) string {
		title := theme.Label.Render(label)
		return components.Card(title+"\n"+body, cw, s.focus == f)
	}

	var topics string
	if len(s.topics) == 0 {
		topics = theme.Hint.Render("No topics yet")
	}
	for i, t := range s.topics {
		line := "  • " + t
		if s.focus == fieldTopics && i == s.topicSel {
			line = theme.Selected.Render("▸ • " + t)
		}
		topics += line + "\n"
	}

	btn := components.Button{
		Label:     "Generate Course",
		BusyLabel: "Generating course...",
		Active:    s.focus == fieldSubmit,
		Disabled:  s.subject.Value() == "" || len(s.topics) == 0,
		Busy:      s.props.Creating,
	}

	parts := []string{
		theme.Title.Render("Create a Course"),
		section(fieldSubject, "Subject", s.subject.View(s.focus == fieldSubject)),
		section(fieldLevel, "Level", s.level.View(s.focus == fieldLevel)),
		section(fieldTopic, "Add a topic", s.topicInput.View()),
		section(fieldTopics, "Topics", strings.TrimRight(topics, "\n")),
		section(fieldFocus, "Learning focus (optional)", s.learnFocus.View()),
		btn.View(),
	}
	out := lipgloss.NewStyle().Padding(0, 2).Render(strings.Join(parts, "\n"))

	// Keep the focused section on screen.
	return layout.ClipFrom(out, height, s.focusLine(out))
}

func (s *Screen) focusLine(rendered string) int {
	// Rough position: each field's card sits in order.
	lines := strings.Count(rendered, "\n") + 1
	return lines * (int(s.focus) + 1) / int(fieldCount)
}
