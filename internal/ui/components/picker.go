package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/learnhub/internal/ui/theme"
)

// OptionPicker is a radio-style selector: the cursor moves with the arrow
// keys and Enter or Space chooses the option under it.
type OptionPicker struct {
	Options  []string
	Selected int // cursor
	Chosen   int // -1 until something is chosen
	Lettered bool
}

// NewOptionPicker creates a picker with nothing chosen.
func NewOptionPicker(options []string, lettered bool) OptionPicker {
	return OptionPicker{
		Options:  options,
		Chosen:   -1,
		Lettered: lettered,
	}
}

// Init returns nil.
func (m OptionPicker) Init() tea.Cmd {
	return nil
}

// Update handles keyboard navigation and selection.
func (m OptionPicker) Update(msg tea.Msg) (OptionPicker, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case "enter", "space", " ":
		if m.Selected < len(m.Options) {
			m.Chosen = m.Selected
		}
	}

	return m, nil
}

// Value is the chosen option, or "".
func (m OptionPicker) Value() string {
	if m.Chosen < 0 || m.Chosen >= len(m.Options) {
		return ""
	}
	return m.Options[m.Chosen]
}

// Choose selects the option equal to v, if present.
func (m OptionPicker) Choose(v string) OptionPicker {
	for i, opt := range m.Options {
		if opt == v {
			m.Chosen, m.Selected = i, i
		}
	}
	return m
}

// View renders the options. The cursor is only drawn when focused.
func (m OptionPicker) View(focused bool) string {
	var b strings.Builder
	for i, opt := range m.Options {
		mark := "○"
		if i == m.Chosen {
			mark = "●"
		}
		prefix := "  "
		if focused && i == m.Selected {
			prefix = "▸ "
		}

		line := fmt.Sprintf("%s%s %s", prefix, mark, opt)
		if m.Lettered {
			line = fmt.Sprintf("%s%s %c)  %s", prefix, mark, 'A'+rune(i%26), opt)
		}

		switch {
		case focused && i == m.Selected:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(line))
		case i == m.Chosen:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Render(line))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
