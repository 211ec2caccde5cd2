package components

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/learnhub/internal/ui/theme"
)

// Button is a styled button component. A busy or disabled button ignores
// presses.
type Button struct {
	Label     string
	BusyLabel string
	Active    bool
	Disabled  bool
	Busy      bool
	OnPress   func() tea.Cmd
}

// NewButton creates a new button.
func NewButton(label string, active bool, onPress func() tea.Cmd) Button {
	return Button{
		Label:   label,
		Active:  active,
		OnPress: onPress,
	}
}

// Pressable reports whether Enter would fire OnPress.
func (b Button) Pressable() bool {
	return b.Active && !b.Disabled && !b.Busy && b.OnPress != nil
}

// Update handles key events.
func (b Button) Update(msg tea.Msg) (Button, tea.Cmd) {
	if !b.Pressable() {
		return b, nil
	}

	if kmsg, ok := msg.(tea.KeyMsg); ok {
		if kmsg.String() == "enter" {
			return b, b.OnPress()
		}
	}

	return b, nil
}

// View renders the button.
func (b Button) View() string {
	if b.Busy {
		label := b.BusyLabel
		if label == "" {
			label = "Loading..."
		}
		return theme.ButtonInactive.Render("⟳ " + label)
	}
	if b.Disabled {
		return theme.ButtonInactive.Render(b.Label)
	}
	if b.Active {
		return theme.ButtonActive.Render("▸ " + b.Label)
	}
	return theme.ButtonInactive.Foreground(theme.Text).Render(b.Label)
}
