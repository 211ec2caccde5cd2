package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/learnhub/internal/ui/theme"
)

// MenuItem is one selectable row, such as a course or a weak concept.
type MenuItem struct {
	Label string

	// Detail is shown dimmed after the label, e.g. a status.
	Detail   string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list with a cursor that skips disabled rows.
type Menu struct {
	Items    []MenuItem
	Selected int
}

func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.move(1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

// SetItems swaps the rows, keeping the cursor index within range.
func (m Menu) SetItems(items []MenuItem) Menu {
	m.Items = items
	m.Selected = max(0, min(m.Selected, len(items)-1))
	return m
}

// move steps the cursor by delta to the next enabled row, if there is one.
func (m *Menu) move(delta int) {
	for i := m.Selected + delta; i >= 0 && i < len(m.Items); i += delta {
		if !m.Items[i].Disabled {
			m.Selected = i
			return
		}
	}
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch kmsg.String() {
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "home", "g":
		m.Selected = -1
		m.move(1)
		m.Selected = max(0, m.Selected)
	case "end", "G":
		m.Selected = len(m.Items)
		m.move(-1)
		m.Selected = min(m.Selected, len(m.Items)-1)
	case "enter":
		if m.Selected < 0 || m.Selected >= len(m.Items) {
			return m, nil
		}
		if item := m.Items[m.Selected]; item.Action != nil && !item.Disabled {
			return m, item.Action()
		}
	}
	return m, nil
}

func (m Menu) View() string {
	var b strings.Builder
	for i, item := range m.Items {
		row := "    " + item.Label
		switch {
		case item.Disabled:
			row = theme.Disabled.Render(row)
		case i == m.Selected:
			row = theme.Selected.Render("  ▸ " + item.Label)
		default:
			row = theme.Body.Render(row)
		}
		if item.Detail != "" {
			row += "  " + theme.Hint.Render(item.Detail)
		}
		b.WriteString(row + "\n")
	}
	return b.String()
}
