// Package screen is the contract between the platform flow and its views.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/learnhub/internal/ui/layout"
)

// Screen is one view of the platform flow. Views render from props handed
// to them by the flow and report intents through the commands they return.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the body between the header and footer.
	View(width, height int) string

	// Title names the view in the header.
	Title() string
}

// KeyHintProvider is implemented by views that list their own key bindings
// in the footer.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}
