// Package result shows a marked quiz attempt.
package result

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/learnhub/internal/api"
	"github.com/abhisek/learnhub/internal/markdown"
	"github.com/abhisek/learnhub/internal/screen"
	"github.com/abhisek/learnhub/internal/ui/components"
	"github.com/abhisek/learnhub/internal/ui/layout"
	"github.com/abhisek/learnhub/internal/ui/theme"
)

type Props struct {
	Result        *api.QuizResult
	StartingTutor bool

	OnTutor     func(concept string) tea.Cmd
	OnDashboard func() tea.Cmd
}

type Screen struct {
	props  Props
	menu   components.Menu
	scroll int
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

func New(props Props) *Screen {
	s := &Screen{}
	s.SetProps(props)
	return s
}

func (s *Screen) SetProps(p Props) {
	if s.props.Result != p.Result {
		s.scroll = 0
		s.menu = components.Menu{}
	}
	s.props = p

	var items []components.MenuItem
	if r := p.Result; r != nil && r.TriggerTutor {
		for _, c := range r.WeakConcepts {
			concept := c
			label := "Chat with AI Tutor about " + truncate(concept, 50)
			if p.StartingTutor {
				label = "Starting tutor..."
			}
			items = append(items, components.MenuItem{
				Label:    label,
				Disabled: p.StartingTutor,
				Action: func() tea.Cmd {
					if p.OnTutor == nil {
						return nil
					}
					return p.OnTutor(concept)
				},
			})
		}
	}
	items = append(items, components.MenuItem{
		Label: "Return to Dashboard",
		Action: func() tea.Cmd {
			if p.OnDashboard == nil {
				return nil
			}
			return p.OnDashboard()
		},
	})

	if s.menu.Items == nil {
		s.menu = components.NewMenu(items)
	} else {
		s.menu = s.menu.SetItems(items)
	}
}

func (s *Screen) Init() tea.Cmd { return nil }

func (s *Screen) Title() string { return "Quiz Complete" }

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Choose"},
		{Key: "Enter", Description: "Select"},
		{Key: "PgUp/PgDn", Description: "Scroll"},
		{Key: "Esc", Description: "Dashboard"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "pgup":
			s.scroll = max(0, s.scroll-10)
			return s, nil
		case "pgdown":
			s.scroll += 10
			return s, nil
		case "esc":
			if s.props.OnDashboard != nil {
				return s, s.props.OnDashboard()
			}
			return s, nil
		}
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

// Verdict is the marking label for a response.
func Verdict(r api.MarkedResponse) string {
	switch {
	case r.Correct == nil:
		return "Partially marked"
	case *r.Correct:
		return "Correct"
	default:
		return "Incorrect"
	}
}

func verdictStyle(r api.MarkedResponse) lipgloss.Style {
	switch {
	case r.Correct == nil:
		return theme.Partial
	case *r.Correct:
		return theme.Correct
	default:
		return theme.Incorrect
	}
}

func (s *Screen) View(width, height int) string {
	r := s.props.Result
	if r == nil {
		return layout.RenderLoading(width, "Marking your answers...")
	}
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(components.Center(theme.Title.Render("Quiz Complete"), cw))
	b.WriteString("\n\n")
	pct := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).
		Render(fmt.Sprintf("%g%%", r.Score.Percentage))
	b.WriteString(components.Center(pct, cw))
	b.WriteString("\n")
	b.WriteString(components.Center(theme.Subtitle.Render(
		fmt.Sprintf("%g / %g marks", r.Score.MarksAwarded, r.Score.MaxMarks)), cw))
	b.WriteString("\n")
	if r.MasteryLevel != "" {
		b.WriteString(components.Center(theme.Hint.Render("Mastery level: ")+theme.Label.Render(r.MasteryLevel), cw))
		b.WriteString("\n")
	}
	if r.Feedback != "" {
		b.WriteString("\n")
		b.WriteString(markdown.Render(r.Feedback, cw))
	}

	if r.TriggerTutor {
		var rec strings.Builder
		rec.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.Accent).Render("Recommended: AI Tutor"))
		rec.WriteString("\n")
		if len(r.WeakConcepts) > 0 {
			rec.WriteString("It looks like you struggled with:\n")
			for _, c := range r.WeakConcepts {
				rec.WriteString("  • " + c + "\n")
			}
		}
		b.WriteString("\n")
		b.WriteString(components.Card(strings.TrimRight(rec.String(), "\n"), cw, false))
	}

	b.WriteString("\n\n")
	b.WriteString(s.menu.View())

	if len(r.Responses) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Label.Render("Question Feedback"))
		b.WriteString("\n")
		for i, resp := range r.Responses {
			b.WriteString(components.Card(s.responseView(i, resp, cw-4), cw, false))
			b.WriteString("\n")
		}
	}

	out := lipgloss.NewStyle().Padding(0, 2).Render(b.String())
	lines := strings.Count(out, "\n") + 1
	if maxScroll := lines - height; s.scroll > maxScroll {
		s.scroll = max(0, maxScroll)
	}
	return layout.ClipFrom(out, height, s.scroll+height-1)
}

func (s *Screen) responseView(i int, r api.MarkedResponse, w int) string {
	var b strings.Builder
	b.WriteString(theme.Label.Render(fmt.Sprintf("Question %d", i+1)))
	b.WriteString("  ")
	b.WriteString(verdictStyle(r).Render(Verdict(r)))
	b.WriteString("\n")
	if r.QuestionText != "" {
		b.WriteString(markdown.Render(r.QuestionText, w))
	}

	b.WriteString(theme.Subtitle.Render("Your answer"))
	b.WriteString("\n")
	answer := r.UserAnswer
	if strings.TrimSpace(answer) == "" {
		answer = "_No answer provided_"
	}
	b.WriteString(markdown.Render(answer, w))

	b.WriteString(theme.Hint.Render(fmt.Sprintf("Marks: %g / %g", r.MarksAwarded, r.MaxMarks)))
	b.WriteString("\n")

	if r.Feedback != "" {
		b.WriteString(theme.Subtitle.Render("Feedback"))
		b.WriteString("\n")
		b.WriteString(markdown.Render(r.Feedback, w))
	}
	if r.ModelAnswer != "" {
		b.WriteString(theme.Subtitle.Render("Model answer"))
		b.WriteString("\n")
		b.WriteString(markdown.Render(r.ModelAnswer, w))
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
