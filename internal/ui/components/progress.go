package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/learnhub/internal/ui/theme"
)

// Steps shows how far through a fixed number of steps the learner is, such
// as lesson sections or answered questions.
type Steps struct {
	Label string
	Done  int
	Total int
	Width int
}

// NewSteps formats label with done and total, e.g. "Section %d of %d".
func NewSteps(label string, done, total, width int) Steps {
	return Steps{Label: fmt.Sprintf(label, done, total), Done: done, Total: total, Width: width}
}

// Fraction is Done/Total clamped to [0, 1]; zero when there are no steps.
func (s Steps) Fraction() float64 {
	if s.Total <= 0 {
		return 0
	}
	return min(1, max(0, float64(s.Done)/float64(s.Total)))
}

// View renders the label followed by one segment per step, or by a
// continuous bar when the segments would not fit.
func (s Steps) View() string {
	label := ""
	if s.Label != "" {
		label = lipgloss.NewStyle().Foreground(theme.Text).Render(s.Label) + "  "
	}
	room := max(4, s.Width-lipgloss.Width(label))

	if s.Total > 0 && s.Total*2 <= room {
		segs := make([]string, s.Total)
		for i := range segs {
			if i < s.Done {
				segs[i] = theme.ProgressFilled.Render(" ")
			} else {
				segs[i] = theme.ProgressEmpty.Render(" ")
			}
		}
		return label + strings.Join(segs, " ")
	}

	filled := int(float64(room) * s.Fraction())
	return label + theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", room-filled))
}
