// Package quiz renders a quiz and collects one answer per question.
package quiz

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

type Props struct {
	Quiz       *api.Quiz
	Submitting bool
	OnSubmit   func([]api.QuizAnswer) tea.Cmd
	OnBack     func() tea.Cmd
}

// field is the editor for one question. Exactly one of the three is used,
// depending on the question type.
type field struct {
	picker components.OptionPicker
	short  components.TextInput
	long   components.TextArea
}

type Screen struct {
	props  Props
	fields []field
	focus  int // len(fields) is the submit button
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

func New(props Props) *Screen {
	s := &Screen{}
	s.SetProps(props)
	return s
}

func (s *Screen) SetProps(p Props) {
	reset := s.props.Quiz != p.Quiz
	s.props = p
	if reset {
		s.buildFields()
	}
}

func (s *Screen) questions() []api.QuizQuestion {
	if s.props.Quiz == nil {
		return nil
	}
	return s.props.Quiz.Questions
}

func (s *Screen) buildFields() {
	qs := s.questions()
	s.fields = make([]field, len(qs))
	s.focus = 0
	for i, q := range qs {
		switch q.Type {
		case api.MultipleChoice:
			s.fields[i].picker = components.NewOptionPicker(q.Options, true)
		case api.LongAnswer:
			s.fields[i].long = components.NewTextArea("Explain your reasoning clearly...", 5)
		default:
			s.fields[i].short = components.NewTextInput("Type your answer...", 500)
			s.fields[i].short.Blur()
		}
	}
	s.setFocus(0)
}

// Answers is the current draft, one entry per question in question order.
// Unanswered questions are "".
func (s *Screen) Answers() []string {
	qs := s.questions()
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = s.answer(i, q)
	}
	return out
}

func (s *Screen) answer(i int, q api.QuizQuestion) string {
	f := s.fields[i]
	switch q.Type {
	case api.MultipleChoice:
		return f.picker.Value()
	case api.LongAnswer:
		return f.long.Trimmed()
	default:
		return f.short.Trimmed()
	}
}

// Answered counts questions with a non-empty answer.
func (s *Screen) Answered() int {
	n := 0
	for _, a := range s.Answers() {
		if a != "" {
			n++
		}
	}
	return n
}

// BuildResponses pairs each question with the answer at the same index.
// It returns exactly one answer per question, with "" for anything
// unanswered, so repeated or blank ids never share a draft.
func BuildResponses(questions []api.QuizQuestion, answers []string) []api.QuizAnswer {
	out := make([]api.QuizAnswer, len(questions))
	for i, q := range questions {
		out[i].QuestionID = q.ID
		if i < len(answers) {
			out[i].UserAnswer = answers[i]
		}
	}
	return out
}

func (s *Screen) Init() tea.Cmd { return nil }

func (s *Screen) Title() string { return "Concept Check" }

func (s *Screen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Tab", Description: "Next question"}}
	if s.focus < len(s.fields) && s.questions()[s.focus].Type == api.MultipleChoice {
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Choose"})
	}
	return append(hints,
		layout.KeyHint{Key: "Ctrl+S", Description: "Submit"},
		layout.KeyHint{Key: "Esc", Description: "Dashboard"},
	)
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, s.updateField(msg)
	}

	n := len(s.fields) + 1
	switch kmsg.String() {
	case "tab":
		return s, s.setFocus((s.focus + 1) % n)
	case "shift+tab":
		return s, s.setFocus((s.focus + n - 1) % n)
	case "ctrl+s":
		return s, s.submit()
	case "esc":
		if s.props.OnBack != nil && !s.props.Submitting {
			return s, s.props.OnBack()
		}
		return s, nil
	}

	if s.focus == len(s.fields) {
		if kmsg.String() == "enter" {
			return s, s.submit()
		}
		return s, nil
	}
	return s, s.updateField(msg)
}

func (s *Screen) updateField(msg tea.Msg) tea.Cmd {
	if s.focus >= len(s.fields) {
		return nil
	}
	var cmd tea.Cmd
	f := &s.fields[s.focus]
	switch s.questions()[s.focus].Type {
	case api.MultipleChoice:
		f.picker, cmd = f.picker.Update(msg)
	case api.LongAnswer:
		f.long, cmd = f.long.Update(msg)
	default:
		f.short, cmd = f.short.Update(msg)
	}
	return cmd
}

func (s *Screen) setFocus(i int) tea.Cmd {
	for j := range s.fields {
		s.fields[j].short.Blur()
		s.fields[j].long.Blur()
	}
	s.focus = i
	if i >= len(s.fields) {
		return nil
	}
	switch s.questions()[i].Type {
	case api.LongAnswer:
		return s.fields[i].long.Focus()
	case api.MultipleChoice:
		return nil
	default:
		return s.fields[i].short.Focus()
	}
}

func (s *Screen) submit() tea.Cmd {
	if s.props.Submitting || s.props.OnSubmit == nil || s.props.Quiz == nil {
		return nil
	}
	return s.props.OnSubmit(BuildResponses(s.questions(), s.Answers()))
}

func (s *Screen) View(width, height int) string {
	qs := s.questions()
	if s.props.Quiz == nil {
		return layout.RenderLoading(width, "Loading quiz...")
	}
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(theme.Title.Render("Concept Check"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render("Answer all questions before submitting"))
	b.WriteString("\n")
	b.WriteString(components.NewSteps("%d / %d answered", s.Answered(), len(qs), cw).View())
	b.WriteString("\n\n")

	focusLine := 0
	for i, q := range qs {
		if i == s.focus {
			focusLine = strings.Count(b.String(), "\n")
		}
		b.WriteString(components.Card(s.questionView(i, q, cw-4), cw, i == s.focus))
		b.WriteString("\n")
	}

	if s.focus == len(s.fields) {
		focusLine = strings.Count(b.String(), "\n")
	}
	btn := components.Button{
		Label:     "Submit Quiz",
		BusyLabel: "Submitting answers...",
		Active:    s.focus == len(s.fields),
		Busy:      s.props.Submitting,
	}
	b.WriteString(btn.View())

	out := lipgloss.NewStyle().Padding(0, 2).Render(b.String())
	return layout.ClipFrom(out, height, focusLine+8)
}

func (s *Screen) questionView(i int, q api.QuizQuestion, w int) string {
	var b strings.Builder

	num := lipgloss.NewStyle().Foreground(theme.BgDark).Background(theme.Primary).Bold(true).
		Render(fmt.Sprintf(" %d ", i+1))
	meta := []string{num, components.Badge(strings.ToUpper(q.Type.Label()), theme.Subtitle)}
	if q.Difficulty != "" {
		meta = append(meta, components.Badge(q.Difficulty, theme.Subtitle))
	}
	if q.MaxMarks > 0 {
		meta = append(meta, theme.Hint.Render(marks(q.MaxMarks)))
	}
	b.WriteString(strings.Join(meta, " "))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Width(w).Bold(true).Foreground(theme.Text).Render(q.Prompt))
	b.WriteString("\n")

	f := &s.fields[i]
	switch q.Type {
	case api.MultipleChoice:
		b.WriteString(f.picker.View(i == s.focus))
	case api.LongAnswer:
		f.long.SetWidth(w)
		b.WriteString(f.long.View())
	default:
		b.WriteString(f.short.View())
	}
	return strings.TrimRight(b.String(), "\n")
}

func marks(m float64) string {
	unit := "marks"
	if m == 1 {
		unit = "mark"
	}
	return fmt.Sprintf("%g %s", m, unit)
}
