// Package plandetails shows one plan and its subtopics.
package plandetails

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/learnhub/internal/api"
	"github.com/abhisek/learnhub/internal/screen"
	"github.com/abhisek/learnhub/internal/ui/components"
	"github.com/abhisek/learnhub/internal/ui/layout"
	"github.com/abhisek/learnhub/internal/ui/theme"
)

type Props struct {
	Plan api.LessonPlan

	// Generated and Generating are keyed by subtopic id.
	Generated  map[string]bool
	Generating map[string]bool

	OnStart func(subtopicID string) tea.Cmd
	OnBack  func() tea.Cmd
}

type Screen struct {
	props Props
	menu  components.Menu
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

func New(props Props) *Screen {
	s := &Screen{}
	s.SetProps(props)
	return s
}

func (s *Screen) SetProps(p Props) {
	s.props = p
	busy := len(p.Generating) > 0
	items := make([]components.MenuItem, 0, len(p.Plan.Subtopics))
	for i, sub := range p.Plan.Subtopics {
		id := sub.ID
		items = append(items, components.MenuItem{
			Label:    fmt.Sprintf("%d. %s", i+1, sub.Title),
			Detail:   s.actionLabel(sub),
			Disabled: id == "",
			Action: func() tea.Cmd {
				if p.OnStart == nil || busy {
					return nil
				}
				return p.OnStart(id)
			},
		})
	}
	if s.menu.Items == nil {
		s.menu = components.NewMenu(items)
	} else {
		s.menu = s.menu.SetItems(items)
	}
}

// actionLabel is what Enter does for sub.
func (s *Screen) actionLabel(sub api.Subtopic) string {
	switch {
	case s.props.Generating[sub.ID]:
		return "generating lesson..."
	case s.IsGenerated(sub):
		return "Open"
	default:
		return "Start"
	}
}

// IsGenerated prefers the locally cached flag over the server's.
func (s *Screen) IsGenerated(sub api.Subtopic) bool {
	if g, ok := s.props.Generated[sub.ID]; ok {
		return g
	}
	return sub.Generated()
}

func (s *Screen) Init() tea.Cmd { return nil }

func (s *Screen) Title() string { return s.props.Plan.Title() }

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start / Open"},
		{Key: "Esc", Description: "Dashboard"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "esc" {
		if s.props.OnBack != nil {
			return s, s.props.OnBack()
		}
		return s, nil
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *Screen) View(width, height int) string {
	cw := components.ContentWidth(width)
	p := s.props.Plan

	var b strings.Builder
	b.WriteString(theme.Title.Render(p.Title()))
	b.WriteString("\n")

	var meta []string
	if p.Level != "" {
		meta = append(meta, p.Level)
	}
	if p.Status != "" {
		meta = append(meta, p.Status)
	}
	meta = append(meta, fmt.Sprintf("%d subtopics", p.SubtopicCount))
	b.WriteString(theme.Subtitle.Render(strings.Join(meta, " • ")))
	b.WriteString("\n")

	if p.Description != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(cw).Foreground(theme.Text).Render(p.Description))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.Label.Render("Subtopics"))
	b.WriteString("\n")
	if len(p.Subtopics) == 0 {
		b.WriteString(theme.Hint.Render("This plan has no subtopics yet."))
	} else {
		b.WriteString(s.menu.View())
	}

	header := strings.Count(b.String(), "\n") - len(p.Subtopics)
	out := lipgloss.NewStyle().Padding(1, 2).Render(b.String())
	return layout.ClipFrom(out, height, header+s.menu.Selected+1)
}
