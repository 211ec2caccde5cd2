// Package layout frames views and splits the terminal between the main view
// and the chat panel.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/learnhub/internal/ui/theme"
)

const (
	MinWidth  = 60
	MinHeight = 20

	// Below this width an open chat panel covers the main view.
	CompactWidth = 100
)

// Chat panel share of the terminal width, in percent.
const (
	PanelCollapsedPercent = 40
	PanelExpandedPercent  = 66
)

// KeyHint is one key binding shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// SplitWidths divides width between the main view and the chat panel.
func SplitWidths(width int, open, expanded bool) (main, panel int) {
	switch {
	case !open:
		return width, 0
	case width < CompactWidth:
		return 0, width
	}
	pct := PanelCollapsedPercent
	if expanded {
		pct = PanelExpandedPercent
	}
	panel = width * pct / 100
	return width - panel, panel
}

func RenderMinSizeMessage(width, height int) string {
	body := fmt.Sprintf("The window is too small for LearnHub.\n\nNeeds %d x %d, have %d x %d.",
		MinWidth, MinHeight, width, height)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Align(lipgloss.Center).Render(body))
}

var bar = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(theme.Border)

// RenderHeader shows the brand on the left, the view title centred and the
// signed-in learner, if any, on the right.
func RenderHeader(title, account string, width int) string {
	inner := max(0, width-4)
	brand := theme.Title.Render(" LearnHub")
	center := lipgloss.NewStyle().Foreground(theme.Text).Render(title)
	who := ""
	if account != "" {
		who = lipgloss.NewStyle().Foreground(theme.Success).Render("● "+account) + " "
	}

	half := (inner - lipgloss.Width(center)) / 2
	left := brand + strings.Repeat(" ", max(1, half-lipgloss.Width(brand)))
	rest := inner - lipgloss.Width(left) - lipgloss.Width(center) - lipgloss.Width(who)
	return bar.Width(width).Render(left + center + strings.Repeat(" ", max(1, rest)) + who)
}

// RenderFooter lists the key hints, dropping those that do not fit.
func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Bold(true).Foreground(theme.Text)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	room := max(0, width-4)
	var parts []string
	used := 0
	for _, h := range hints {
		part := key.Render(h.Key) + " " + desc.Render(h.Description)
		w := lipgloss.Width(part)
		if len(parts) > 0 {
			w += 3
		}
		if used+w > room {
			break
		}
		parts = append(parts, part)
		used += w
	}
	return bar.Width(width).Render(" " + strings.Join(parts, "   "))
}

// RenderFrame stacks header, content and footer, giving the content
// whatever height is left.
func RenderFrame(header, content, footer string, width, height int) string {
	h := max(0, height-lipgloss.Height(header)-lipgloss.Height(footer))
	body := lipgloss.NewStyle().Width(width).Height(h).MaxHeight(h).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// RenderLoading is the placeholder shown while a view waits for data.
func RenderLoading(width int, what string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n\n" + what)
}

func RenderErrorBanner(width int, errMsg string) string {
	return theme.ErrorBanner.
		Width(max(10, width-2)).
		Render("Error: " + errMsg + "   " + theme.Hint.Render("(ctrl+x to dismiss)"))
}

// Clip cuts s to at most height lines.
func Clip(s string, height int) string {
	return ClipFrom(s, height, 0)
}

// ClipFrom shows the height-line window of s that contains line focus.
func ClipFrom(s string, height, focus int) string {
	if height <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= height {
		return s
	}
	start := min(max(0, focus-height+1), len(lines)-height)
	return strings.Join(lines[start:start+height], "\n")
}
