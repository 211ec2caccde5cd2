// Package lesson is the section carousel for an active lesson.
package lesson

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
	Lesson *api.ActiveLesson

	// Expanding is keyed by section id.
	Expanding  map[string]bool
	Completing bool

	OnExpand   func(sectionID string) tea.Cmd
	OnComplete func() tea.Cmd
	OnBack     func() tea.Cmd
}

type Screen struct {
	props Props

	index    int
	deepDive bool // deep dive overlay open
	scroll   int

	// waiting is the section whose deep dive should open once it arrives.
	waiting string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

func New(props Props) *Screen {
	s := &Screen{}
	s.SetProps(props)
	return s
}

func (s *Screen) SetProps(p Props) {
	if s.props.Lesson != p.Lesson {
		s.index, s.scroll, s.deepDive, s.waiting = 0, 0, false, ""
	}
	s.props = p

	if s.waiting != "" && !p.Expanding[s.waiting] {
		if sec, ok := s.current(); ok && sec.ID == s.waiting && sec.Expanded != "" {
			s.deepDive = true
			s.scroll = 0
		}
		s.waiting = ""
	}
}

// Index is the carousel position.
func (s *Screen) Index() int { return s.index }

// DeepDiveOpen reports whether the deep dive is showing.
func (s *Screen) DeepDiveOpen() bool { return s.deepDive }

func (s *Screen) sections() []api.LessonSection {
	if s.props.Lesson == nil {
		return nil
	}
	return s.props.Lesson.Sections
}

func (s *Screen) current() (api.LessonSection, bool) {
	secs := s.sections()
	if s.index < 0 || s.index >= len(secs) {
		return api.LessonSection{}, false
	}
	return secs[s.index], true
}

// OnLastSection reports whether completion is offered.
func (s *Screen) OnLastSection() bool {
	n := len(s.sections())
	return n == 0 || s.index == n-1
}

func (s *Screen) Init() tea.Cmd { return nil }

func (s *Screen) Title() string {
	if s.props.Lesson == nil {
		return "Lesson"
	}
	return s.props.Lesson.Subtopic
}

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.deepDive {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Scroll"},
			{Key: "Esc", Description: "Close deep dive"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "←→", Description: "Section"},
		{Key: "↑↓", Description: "Scroll"},
		{Key: "d", Description: "Deep dive"},
	}
	if s.OnLastSection() {
		hints = append(hints, layout.KeyHint{Key: "c", Description: "Complete & quiz"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Dashboard"})
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if s.scroll > 0 {
			s.scroll--
		}
		return s, nil
	case "down", "j":
		s.scroll++
		return s, nil
	case "pgup":
		s.scroll = max(0, s.scroll-10)
		return s, nil
	case "pgdown":
		s.scroll += 10
		return s, nil
	}

	if s.deepDive {
		switch kmsg.String() {
		case "esc", "d", "q":
			s.deepDive = false
			s.scroll = 0
		}
		return s, nil
	}

	switch kmsg.String() {
	case "left", "h":
		if s.index > 0 {
			s.index--
			s.scroll = 0
		}
	case "right", "l":
		if s.index < len(s.sections())-1 {
			s.index++
			s.scroll = 0
		}
	case "d":
		return s, s.deepDiveCmd()
	case "c", "enter":
		if s.OnLastSection() && !s.props.Completing && s.props.OnComplete != nil {
			return s, s.props.OnComplete()
		}
	case "esc":
		if s.props.OnBack != nil {
			return s, s.props.OnBack()
		}
	}
	return s, nil
}

func (s *Screen) deepDiveCmd() tea.Cmd {
	sec, ok := s.current()
	if !ok {
		return nil
	}
	if sec.Expanded != "" {
		s.deepDive = true
		s.scroll = 0
		return nil
	}
	if s.props.Expanding[sec.ID] || s.props.OnExpand == nil {
		return nil
	}
	s.waiting = sec.ID
	return s.props.OnExpand(sec.ID)
}

func (s *Screen) View(width, height int) string {
	l := s.props.Lesson
	if l == nil {
		return layout.RenderLoading(width, "Loading lesson...")
	}
	cw := components.ContentWidth(width)

	sec, ok := s.current()
	if s.deepDive && ok {
		body := theme.Title.Render("Deep Dive: "+sec.Title) + "\n\n" +
			markdown.Render(sec.Expanded, cw)
		return s.scrolled(body, height)
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render(l.Subtopic))
	b.WriteString("\n")
	if l.Introduction != "" {
		b.WriteString(markdown.Render(l.Introduction, cw))
	}

	total := len(l.Sections)
	if total == 0 {
		b.WriteString(theme.Hint.Render("This lesson has no sections."))
		b.WriteString("\n\n")
		b.WriteString(s.completeButton().View())
		return s.scrolled(b.String(), height)
	}

	b.WriteString(components.NewSteps("Section %d of %d", s.index+1, total, cw).View())
	b.WriteString("\n\n")

	var card strings.Builder
	num := lipgloss.NewStyle().Foreground(theme.BgDark).Background(theme.Primary).Bold(true).
		Render(fmt.Sprintf(" %d ", s.index+1))
	card.WriteString(num + " " + theme.Label.Render(sec.Title))
	card.WriteString(theme.Hint.Render(fmt.Sprintf("   %d / %d", s.index+1, total)))
	card.WriteString("\n")
	card.WriteString(markdown.Render(sec.Content, cw-4))

	if len(sec.KeyPoints) > 0 {
		card.WriteString(theme.Label.Render("Key Takeaways"))
		card.WriteString("\n")
		for _, kp := range sec.KeyPoints {
			card.WriteString("  • " + strings.TrimSpace(markdown.Render(kp, cw-8)) + "\n")
		}
	}

	card.WriteString("\n")
	switch {
	case sec.Expanded != "":
		card.WriteString(theme.Hint.Render("d  View detailed explanation"))
	case s.props.Expanding[sec.ID]:
		card.WriteString(theme.Hint.Render("⟳ Generating deep dive..."))
	default:
		card.WriteString(theme.Hint.Render("d  Get AI deep dive"))
	}
	b.WriteString(components.Card(card.String(), cw, true))
	b.WriteString("\n")

	nav := []string{}
	if s.index > 0 {
		nav = append(nav, "← Previous")
	}
	if s.index < total-1 {
		nav = append(nav, "Next →")
	}
	b.WriteString(theme.Subtitle.Render(strings.Join(nav, "    ")))

	if s.OnLastSection() {
		b.WriteString("\n\n")
		b.WriteString(s.completeButton().View())
	}

	return s.scrolled(b.String(), height)
}

func (s *Screen) completeButton() components.Button {
	return components.Button{
		Label:     "Complete Lesson & Start Quiz",
		BusyLabel: "Preparing quiz...",
		Active:    true,
		Busy:      s.props.Completing,
	}
}

func (s *Screen) scrolled(body string, height int) string {
	out := lipgloss.NewStyle().Padding(0, 2).Render(body)
	lines := strings.Count(out, "\n") + 1
	if maxScroll := lines - height; s.scroll > maxScroll {
		s.scroll = max(0, maxScroll)
	}
	return layout.ClipFrom(out, height, s.scroll+height-1)
}
