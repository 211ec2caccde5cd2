package components

import (
	"strings"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
)

// TextArea wraps bubbles/textarea for multi-line answers and messages.
type TextArea struct {
	Model textarea.Model
}

// NewTextArea creates a blurred multi-line input without line numbers.
func NewTextArea(placeholder string, height int) TextArea {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.SetHeight(height)
	ta.Blur()
	return TextArea{Model: ta}
}

func (t TextArea) Update(msg tea.Msg) (TextArea, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func (t TextArea) View() string { return t.Model.View() }

func (t TextArea) Value() string { return t.Model.Value() }

// Trimmed is Value without surrounding whitespace.
func (t TextArea) Trimmed() string { return strings.TrimSpace(t.Model.Value()) }

func (t *TextArea) SetWidth(w int) { t.Model.SetWidth(w) }

func (t *TextArea) Focus() tea.Cmd { return t.Model.Focus() }

func (t *TextArea) Blur() { t.Model.Blur() }

func (t *TextArea) Reset() { t.Model.Reset() }
