// Package theme holds the LearnHub palette and the shared lipgloss styles.
package theme

import "charm.land/lipgloss/v2"

var (
	Primary   = lipgloss.Color("#6366F1") // indigo, brand
	Secondary = lipgloss.Color("#0EA5E9") // sky, tutor and progress
	Accent    = lipgloss.Color("#F59E0B") // amber, recommendations
	Success   = lipgloss.Color("#10B981")
	Warning   = lipgloss.Color("#FBBF24")
	Error     = lipgloss.Color("#EF4444")
	Text      = lipgloss.Color("#F1F5F9")
	TextDim   = lipgloss.Color("#94A3B8")
	BgDark    = lipgloss.Color("#0B1120")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")
)

var (
	Title    = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	Subtitle = lipgloss.NewStyle().Foreground(TextDim)
	Body     = lipgloss.NewStyle().Foreground(Text)
	Hint     = lipgloss.NewStyle().Foreground(TextDim).Italic(true)
	Label    = lipgloss.NewStyle().Bold(true).Foreground(Secondary)
)

var (
	Card        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Border).Padding(0, 1)
	FocusedCard = Card.BorderForeground(Primary)

	// Panel frames the chat assistant beside the main view.
	Panel = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Secondary)

	ErrorBanner = lipgloss.NewStyle().
			Foreground(Error).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Error).
			Padding(0, 1)
)

// Marking and selection.
var (
	Selected  = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	Disabled  = lipgloss.NewStyle().Foreground(TextDim)
	Correct   = lipgloss.NewStyle().Bold(true).Foreground(Success)
	Incorrect = lipgloss.NewStyle().Bold(true).Foreground(Error)
	Partial   = lipgloss.NewStyle().Bold(true).Foreground(Warning)
)

// Learner messages sit on the brand colour, tutor replies on a card.
var (
	UserBubble      = lipgloss.NewStyle().Foreground(Text).Background(Primary).Padding(0, 1)
	AssistantBubble = lipgloss.NewStyle().Foreground(Text).Background(BgCard).Padding(0, 1)
)

var (
	ProgressFilled = lipgloss.NewStyle().Background(Secondary)
	ProgressEmpty  = lipgloss.NewStyle().Background(Border)

	ButtonActive   = lipgloss.NewStyle().Bold(true).Foreground(Text).Background(Primary).Padding(0, 2)
	ButtonInactive = lipgloss.NewStyle().
			Foreground(TextDim).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2)
)
