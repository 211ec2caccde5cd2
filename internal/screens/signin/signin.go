// Package signin is the screen shown while no account is active.
package signin

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/learnhub/internal/screen"
	"github.com/abhisek/learnhub/internal/ui/components"
	"github.com/abhisek/learnhub/internal/ui/layout"
	"github.com/abhisek/learnhub/internal/ui/theme"
)

const tickInterval = 120 * time.Millisecond

var spinnerFrames = []string{"◐", "◓", "◑", "◒"}

type tickMsg time.Time

type Props struct {
	// Signing is true while the browser round trip is in flight.
	Signing bool
	Err     string

	OnSignIn func() tea.Cmd
}

type Screen struct {
	props     Props
	tickCount int
	ticking   bool
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

func New(props Props) *Screen {
	return &Screen{props: props}
}

// SetProps returns a tick command when signing starts so the spinner runs.
func (s *Screen) SetProps(p Props) tea.Cmd {
	s.props = p
	if p.Signing && !s.ticking {
		s.ticking = true
		return tick()
	}
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (s *Screen) Title() string { return "Sign in" }

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.props.Signing {
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Sign in"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *Screen) Init() tea.Cmd { return nil }

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if !s.props.Signing {
			s.ticking = false
			return s, nil
		}
		s.tickCount++
		return s, tick()

	case tea.KeyMsg:
		if msg.String() == "enter" && !s.props.Signing && s.props.OnSignIn != nil {
			return s, s.props.OnSignIn()
		}
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	var sections []string

	sections = append(sections, RenderBanner(width), "")
	sections = append(sections, lipgloss.NewStyle().
		Foreground(theme.Text).
		Bold(true).
		Render("Welcome to Learning.AI"))
	sections = append(sections, theme.Subtitle.Render(
		"Sign in to access your courses, lessons and quizzes."), "")

	btn := components.Button{
		Label:     "Sign in with your organisation account",
		BusyLabel: "Signing in... " + spinnerFrames[s.tickCount%len(spinnerFrames)],
		Active:    true,
		Busy:      s.props.Signing,
	}
	sections = append(sections, btn.View())

	if s.props.Signing {
		sections = append(sections, "", theme.Hint.Render("Complete sign-in in your browser."))
	}
	if s.props.Err != "" {
		sections = append(sections, "", theme.ErrorBanner.Render(s.props.Err))
	}

	content := strings.Join(sections, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
