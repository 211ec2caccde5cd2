// Package tutor is the chat view for a tutor session.
package tutor

import (
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
	Concept    string
	Transcript []api.TutorMessage
	Sending    bool
	Ending     bool

	OnSend func(text string) tea.Cmd
	OnEnd  func() tea.Cmd

	// OnBack leaves the session open and returns to the dashboard.
	OnBack func() tea.Cmd
}

type Screen struct {
	props Props
	input components.TextInput

	// scrollBack is how many lines above the bottom the transcript shows.
	scrollBack int
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

func New(props Props) *Screen {
	return &Screen{
		props: props,
		input: components.NewTextInput("Ask a question...", 2000),
	}
}

func (s *Screen) SetProps(p Props) {
	if len(p.Transcript) != len(s.props.Transcript) {
		s.scrollBack = 0
	}
	s.props = p
}

func (s *Screen) Init() tea.Cmd { return s.input.Focus() }

func (s *Screen) Title() string { return "AI Tutor" }

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "PgUp/PgDn", Description: "Scroll"},
		{Key: "Ctrl+D", Description: "End session"},
		{Key: "Esc", Description: "Dashboard"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter":
			return s, s.send()
		case "ctrl+d":
			if s.props.OnEnd != nil && !s.props.Ending {
				return s, s.props.OnEnd()
			}
			return s, nil
		case "esc":
			if s.props.OnBack != nil {
				return s, s.props.OnBack()
			}
			return s, nil
		case "pgup":
			s.scrollBack += 5
			return s, nil
		case "pgdown":
			s.scrollBack = max(0, s.scrollBack-5)
			return s, nil
		}
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *Screen) send() tea.Cmd {
	text := s.input.Trimmed()
	if text == "" || s.props.Sending || s.props.OnSend == nil {
		return nil
	}
	s.input.Reset()
	return s.props.OnSend(text)
}

// Draft is the unsent input.
func (s *Screen) Draft() string { return s.input.Value() }

func (s *Screen) View(width, height int) string {
	cw := components.ContentWidth(width)
	bubbleW := cw * 4 / 5

	head := theme.Title.Render("AI Tutor")
	if s.props.Concept != "" {
		head += theme.Subtitle.Render("  " + s.props.Concept)
	}
	if s.props.Ending {
		head += theme.Hint.Render("   ending session...")
	}

	var msgs []string
	for _, m := range s.props.Transcript {
		if m.Role == api.Learner {
			bubble := theme.UserBubble.Width(min(bubbleW, lipgloss.Width(m.Text)+2)).Render(m.Text)
			msgs = append(msgs, lipgloss.PlaceHorizontal(cw, lipgloss.Right, bubble))
			continue
		}
		body := strings.TrimSpace(markdown.Render(m.Text, bubbleW-2))
		msgs = append(msgs, theme.AssistantBubble.Width(bubbleW).Render(body))
	}
	if s.props.Sending {
		msgs = append(msgs, theme.Hint.Render("Tutor is typing..."))
	}
	transcript := strings.Join(msgs, "\n")

	field := components.Card(s.input.View(), cw, true)

	avail := height - lipgloss.Height(head) - lipgloss.Height(field) - 2
	lines := strings.Split(transcript, "\n")
	if avail < 1 {
		avail = 1
	}
	if s.scrollBack > len(lines)-avail {
		s.scrollBack = max(0, len(lines)-avail)
	}
	end := len(lines) - s.scrollBack
	start := max(0, end-avail)
	transcript = strings.Join(lines[start:end], "\n")

	out := head + "\n\n" + lipgloss.NewStyle().Height(avail).Render(transcript) + "\n" + field
	return lipgloss.NewStyle().Padding(0, 2).Render(layout.Clip(out, height))
}
