// Package dashboard lists the learner's plans.
package dashboard

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/learnhub/internal/api"
	"github.com/abhisek/learnhub/internal/screen"
	"github.com/abhisek/learnhub/internal/ui/components"
	"github.com/abhisek/learnhub/internal/ui/layout"
	"github.com/abhisek/learnhub/internal/ui/theme"
)

// Props is everything the dashboard shows and can ask for.
type Props struct {
	Plans   []api.LessonPlan
	Loaded  bool
	Loading bool

	// Opening is the plan whose details are being fetched.
	Opening string

	OnOpen    func(planID string) tea.Cmd
	OnNew     func() tea.Cmd
	OnRefresh func() tea.Cmd
}

// Screen is the plan grid.
type Screen struct {
	props Props
	menu  components.Menu
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

func New(props Props) *Screen {
	s := &Screen{}
	s.SetProps(props)
	return s
}

// SetProps replaces the props and keeps the cursor.
func (s *Screen) SetProps(p Props) {
	s.props = p
	items := make([]components.MenuItem, 0, len(p.Plans))
	for _, plan := range p.Plans {
		id := plan.ID
		detail := fmt.Sprintf("%s • %d subtopics", orDash(plan.Status), plan.SubtopicCount)
		if id == p.Opening {
			detail = "opening..."
		}
		items = append(items, components.MenuItem{
			Label:    plan.Title(),
			Detail:   detail,
			Disabled: id == "",
			Action: func() tea.Cmd {
				if p.OnOpen == nil || p.Opening != "" {
					return nil
				}
				return p.OnOpen(id)
			},
		})
	}
	if s.menu.Items == nil {
		s.menu = components.NewMenu(items)
	} else {
		s.menu = s.menu.SetItems(items)
	}
}

func (s *Screen) Init() tea.Cmd { return nil }

func (s *Screen) Title() string { return "Your Plans" }

func (s *Screen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "View details"},
		{Key: "n", Description: "New plan"},
		{Key: "r", Description: "Refresh"},
	}
	return hints
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "n":
			if s.props.OnNew != nil {
				return s, s.props.OnNew()
			}
			return s, nil
		case "r":
			if s.props.OnRefresh != nil && !s.props.Loading {
				return s, s.props.OnRefresh()
			}
			return s, nil
		}
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *Screen) View(width, height int) string {
	cw := components.ContentWidth(width)

	heading := theme.Title.Render("Your Plans")
	if s.props.Loading {
		heading += theme.Hint.Render("   refreshing...")
	}

	var body string
	switch {
	case !s.props.Loaded && s.props.Loading:
		body = layout.RenderLoading(cw, "Loading your plans...")
	case len(s.props.Plans) == 0:
		body = theme.Hint.Render("No plans yet. Press n to create your first course, or r to reload.")
	default:
		body = s.menu.View()
	}

	content := heading + "\n\n" + body
	out := lipgloss.NewStyle().Padding(1, 2).Render(content)
	return layout.ClipFrom(out, height, s.menu.Selected+4)
}

// SelectedPlan is the plan under the cursor, if any.
func (s *Screen) SelectedPlan() (api.LessonPlan, bool) {
	if s.menu.Selected < 0 || s.menu.Selected >= len(s.props.Plans) {
		return api.LessonPlan{}, false
	}
	return s.props.Plans[s.menu.Selected], true
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
