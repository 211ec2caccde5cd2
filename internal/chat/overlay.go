// Package chat is the AI tutor side panel available on every screen, and
// the client for the chat proxy behind it.
package chat

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/learnhub/internal/logger"
	"github.com/abhisek/learnhub/internal/markdown"
	"github.com/abhisek/learnhub/internal/ui/components"
	"github.com/abhisek/learnhub/internal/ui/layout"
	"github.com/abhisek/learnhub/internal/ui/theme"
)

const (
	Greeting = "Hi! I'm your AI tutor. Ask me anything about what you're studying, " +
		"or attach a picture of a problem with /attach <path>."
	Apology = "Sorry, I encountered an error. Please try again."
)

// LayoutMsg is emitted whenever the panel opens, closes or changes size so
// the host can re-split the screen.
type LayoutMsg struct {
	Open     bool
	Expanded bool
}

type replyMsg struct {
	gen     int
	content string
	err     error
}

// Options configures an Overlay.
type Options struct {
	Sender  Sender
	Logger  *logger.Logger
	Context context.Context
	Timeout time.Duration
}

// Overlay is the chat panel. It keeps its conversation for the whole
// process, across open and close.
type Overlay struct {
	sender  Sender
	log     *logger.Logger
	ctx     context.Context
	timeout time.Duration

	open     bool
	expanded bool
	focused  bool

	history []Message
	pending bool
	notice  string

	image     string
	imageName string

	// gen is bumped on clear so replies to a discarded conversation are dropped.
	gen int

	input      components.TextInput
	scrollBack int
}

func NewOverlay(opts Options) *Overlay {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	return &Overlay{
		sender:  opts.Sender,
		log:     opts.Logger.With("component", "chat_overlay"),
		ctx:     opts.Context,
		timeout: opts.Timeout,
		history: []Message{{Role: RoleAssistant, Content: Greeting}},
		input:   components.NewTextInput("Ask the AI tutor...", 4000),
	}
}

func (o *Overlay) Open() bool     { return o.open }
func (o *Overlay) Expanded() bool { return o.expanded }
func (o *Overlay) Focused() bool  { return o.focused }
func (o *Overlay) Pending() bool  { return o.pending }
func (o *Overlay) Notice() string { return o.notice }

// History returns a copy of the conversation, greeting included.
func (o *Overlay) History() []Message {
	return append([]Message(nil), o.history...)
}

// Attached reports the name of the image waiting to be sent, if any.
func (o *Overlay) Attached() string { return o.imageName }

// Update handles a message and reports whether the overlay consumed it.
// Keys reach the overlay first; anything it does not consume belongs to the
// main view.
func (o *Overlay) Update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case replyMsg:
		o.receive(msg)
		return nil, true

	case tea.KeyMsg:
		if msg.String() == "ctrl+t" {
			return o.toggle(), true
		}
		if !o.focused {
			return nil, false
		}
		switch msg.String() {
		case "esc":
			return o.Close(), true
		case "ctrl+e":
			o.expanded = !o.expanded
			return o.layout(), true
		case "ctrl+l":
			o.clear()
			return nil, true
		case "pgup":
			o.scrollBack += 5
			return nil, true
		case "pgdown":
			o.scrollBack = max(0, o.scrollBack-5)
			return nil, true
		case "enter":
			return o.submit(), true
		}
		var cmd tea.Cmd
		o.input, cmd = o.input.Update(msg)
		return cmd, true
	}

	if o.focused {
		var cmd tea.Cmd
		o.input, cmd = o.input.Update(msg)
		return cmd, false
	}
	return nil, false
}

// toggle opens a closed panel, or moves focus between panel and main view.
func (o *Overlay) toggle() tea.Cmd {
	if !o.open {
		o.open = true
		o.focused = true
		return tea.Batch(o.input.Focus(), o.layout())
	}
	if o.focused {
		o.focused = false
		o.input.Blur()
		return nil
	}
	o.focused = true
	return o.input.Focus()
}

// Close hides and collapses the panel. The conversation is kept.
func (o *Overlay) Close() tea.Cmd {
	if !o.open {
		return nil
	}
	o.open = false
	o.expanded = false
	o.focused = false
	o.input.Blur()
	return o.layout()
}

func (o *Overlay) layout() tea.Cmd {
	m := LayoutMsg{Open: o.open, Expanded: o.expanded}
	return func() tea.Msg { return m }
}

func (o *Overlay) clear() {
	o.gen++
	o.history = []Message{{Role: RoleAssistant, Content: Greeting}}
	o.pending = false
	o.notice = ""
	o.image, o.imageName = "", ""
	o.scrollBack = 0
}

func (o *Overlay) submit() tea.Cmd {
	text := o.input.Trimmed()

	if arg, ok := strings.CutPrefix(text, "/attach"); ok && (arg == "" || arg[0] == ' ') {
		o.input.Reset()
		o.attach(arg)
		return nil
	}
	if text == "/detach" {
		o.input.Reset()
		o.image, o.imageName = "", ""
		o.notice = "Image removed."
		return nil
	}

	if o.pending || o.sender == nil || (text == "" && o.image == "") {
		return nil
	}
	if text == "" {
		text = "Can you help me with this?"
	}

	o.history = append(o.history, Message{Role: RoleUser, Content: text, Image: o.image})
	o.input.Reset()
	o.image, o.imageName = "", ""
	o.notice = ""
	o.pending = true
	o.scrollBack = 0

	sender, ctx, timeout, gen := o.sender, o.ctx, o.timeout, o.gen
	history := o.outbound()
	return func() tea.Msg {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		content, err := sender.Send(ctx, history)
		return replyMsg{gen: gen, content: content, err: err}
	}
}

// outbound is the history sent to the proxy: every turn, greeting included.
func (o *Overlay) outbound() []Message {
	return append([]Message(nil), o.history...)
}

func (o *Overlay) attach(arg string) {
	path := strings.TrimSpace(arg)
	data, err := LoadImage(path)
	if err != nil {
		o.notice = err.Error()
		o.log.Warn("attach failed", "error", err)
		return
	}
	o.image = data
	o.imageName = filepath.Base(path)
	o.notice = "Attached " + o.imageName + ". It will be sent with your next message."
}

func (o *Overlay) receive(msg replyMsg) {
	if msg.gen != o.gen {
		return
	}
	o.pending = false
	content := strings.TrimSpace(msg.content)
	if msg.err != nil || content == "" {
		if msg.err != nil {
			o.log.Error("chat request failed", "error", msg.err)
		}
		content = Apology
	}
	o.history = append(o.history, Message{Role: RoleAssistant, Content: content})
	o.scrollBack = 0
}

// KeyHints lists the panel's keys while it has focus.
func (o *Overlay) KeyHints() []layout.KeyHint {
	if !o.focused {
		if o.open {
			return []layout.KeyHint{{Key: "Ctrl+T", Description: "Focus tutor"}}
		}
		return []layout.KeyHint{{Key: "Ctrl+T", Description: "AI Tutor"}}
	}
	expand := "Expand"
	if o.expanded {
		expand = "Collapse"
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Ctrl+E", Description: expand},
		{Key: "Ctrl+L", Description: "Clear"},
		{Key: "Ctrl+T", Description: "Back to page"},
		{Key: "Esc", Description: "Close"},
	}
}

func (o *Overlay) View(width, height int) string {
	if !o.open || width <= 0 || height <= 0 {
		return ""
	}
	inner := max(10, width-2)

	head := theme.Title.Render("AI Tutor") + "\n" + theme.Subtitle.Render("Always here to help")

	bubbleW := max(8, inner-2)
	var msgs []string
	for _, m := range o.history {
		if m.Role == RoleUser {
			text := m.Content
			if m.Image != "" {
				text = "[image] " + text
			}
			bubble := theme.UserBubble.Width(min(bubbleW, lipgloss.Width(text)+2)).Render(text)
			msgs = append(msgs, lipgloss.PlaceHorizontal(inner, lipgloss.Right, bubble))
			continue
		}
		body := strings.TrimSpace(markdown.Render(m.Content, bubbleW-2))
		msgs = append(msgs, theme.AssistantBubble.Width(bubbleW).Render(body))
	}
	if o.pending {
		msgs = append(msgs, theme.Hint.Render("Thinking..."))
	}

	var foot []string
	if o.notice != "" {
		foot = append(foot, theme.Hint.Render(o.notice))
	}
	if o.imageName != "" {
		foot = append(foot, theme.Label.Render("Image: ")+o.imageName)
	}
	foot = append(foot, components.Card(o.input.View(), inner, o.focused))
	footer := strings.Join(foot, "\n")

	avail := max(1, height-2-lipgloss.Height(head)-lipgloss.Height(footer)-2)
	lines := strings.Split(strings.Join(msgs, "\n\n"), "\n")
	o.scrollBack = min(o.scrollBack, max(0, len(lines)-avail))
	end := len(lines) - o.scrollBack
	start := max(0, end-avail)
	transcript := lipgloss.NewStyle().Height(avail).Render(strings.Join(lines[start:end], "\n"))

	body := head + "\n\n" + transcript + "\n" + footer
	style := theme.Panel.Width(width).Height(height)
	if !o.focused {
		style = style.BorderForeground(theme.Border)
	}
	return style.Render(layout.Clip(body, height-2))
}
