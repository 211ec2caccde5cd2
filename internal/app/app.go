// Package app is the root Bubble Tea model. It gates the platform flow
// behind sign-in and lays the chat overlay beside whatever is showing.
package app

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/learnhub/internal/chat"
	"github.com/abhisek/learnhub/internal/identity"
	"github.com/abhisek/learnhub/internal/logger"
	"github.com/abhisek/learnhub/internal/platform"
	"github.com/abhisek/learnhub/internal/screens/signin"
	"github.com/abhisek/learnhub/internal/ui/layout"
)

const sessionExpired = "Your session has expired. Please sign in again."

type phase int

const (
	resolving phase = iota
	signedOut
	signedIn
)

type resolvedMsg struct {
	account identity.Account
	err     error
}

type signedInMsg struct {
	account identity.Account
	err     error
}

type signedOutMsg struct{ err error }

// Options wires the model to its collaborators.
type Options struct {
	Session identity.Session
	API     platform.API
	Chat    *chat.Overlay
	Logger  *logger.Logger

	// Context bounds sign-in and every API call.
	Context context.Context
}

// Model is the root model.
type Model struct {
	session identity.Session
	api     platform.API
	log     *logger.Logger
	ctx     context.Context

	phase    phase
	account  identity.Account
	signin   *signin.Screen
	signing  bool
	signErr  string
	platform *platform.Controller
	overlay  *chat.Overlay

	panelOpen     bool
	panelExpanded bool

	width  int
	height int
}

func New(opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Chat == nil {
		opts.Chat = chat.NewOverlay(chat.Options{Logger: opts.Logger, Context: opts.Context})
	}
	m := &Model{
		session: opts.Session,
		api:     opts.API,
		log:     opts.Logger.With("component", "app"),
		ctx:     opts.Context,
		overlay: opts.Chat,
	}
	m.signin = signin.New(m.signinProps())
	return m
}

func (m *Model) Init() tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		acct, err := session.Resolve(ctx)
		return resolvedMsg{account: acct, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+o":
			if m.phase == signedIn && !m.overlay.Focused() {
				return m, m.signOut()
			}
		}

	case chat.LayoutMsg:
		m.panelOpen, m.panelExpanded = msg.Open, msg.Expanded
		return m, nil

	case resolvedMsg:
		if msg.err != nil {
			if !errors.Is(msg.err, identity.ErrNoAccount) {
				m.log.Warn("resolve sign-in redirect", "error", msg.err)
				m.signErr = "Sign-in failed: " + msg.err.Error()
			}
			return m, m.showSignIn()
		}
		return m, m.startPlatform(msg.account)

	case signedInMsg:
		m.signing = false
		if msg.err != nil {
			m.log.Warn("sign-in failed", "error", msg.err)
			m.signErr = "Sign-in failed: " + msg.err.Error()
			return m, m.showSignIn()
		}
		return m, m.startPlatform(msg.account)

	case signedOutMsg:
		if msg.err != nil {
			m.log.Warn("sign-out", "error", msg.err)
		}
		m.signErr = ""
		return m, m.showSignIn()

	case platform.SignInRequiredMsg:
		m.log.Warn("session lost", "error", msg.Err)
		m.signErr = sessionExpired
		return m, m.showSignIn()
	}

	if cmd, handled := m.overlay.Update(msg); handled {
		return m, cmd
	}

	switch m.phase {
	case signedOut:
		_, cmd := m.signin.Update(msg)
		return m, cmd
	case signedIn:
		return m, m.platform.Update(msg)
	}
	return m, nil
}

func (m *Model) signinProps() signin.Props {
	return signin.Props{
		Signing:  m.signing,
		Err:      m.signErr,
		OnSignIn: m.startSignIn,
	}
}

func (m *Model) showSignIn() tea.Cmd {
	m.phase = signedOut
	m.platform = nil
	m.account = identity.Account{}
	return m.signin.SetProps(m.signinProps())
}

func (m *Model) startSignIn() tea.Cmd {
	if m.signing {
		return nil
	}
	m.signing = true
	m.signErr = ""
	session, ctx := m.session, m.ctx
	return tea.Batch(
		m.signin.SetProps(m.signinProps()),
		func() tea.Msg {
			acct, err := session.SignIn(ctx)
			return signedInMsg{account: acct, err: err}
		},
	)
}

func (m *Model) signOut() tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		return signedOutMsg{err: session.SignOut(ctx)}
	}
}

func (m *Model) startPlatform(acct identity.Account) tea.Cmd {
	m.phase = signedIn
	m.account = acct
	m.signErr = ""
	m.platform = platform.New(platform.Options{
		API:     m.api,
		UserID:  acct.ID,
		Logger:  m.log,
		Context: m.ctx,
	})
	m.log.Info("signed in", "user_id", acct.ID)
	return m.platform.Init()
}

// Phase names the current gate for tests and logs.
func (m *Model) Phase() string {
	switch m.phase {
	case signedOut:
		return "signed_out"
	case signedIn:
		return "signed_in"
	}
	return "resolving"
}

// Platform is the flow controller, or nil while signed out.
func (m *Model) Platform() *platform.Controller { return m.platform }

func (m *Model) title() string {
	switch m.phase {
	case signedOut:
		return m.signin.Title()
	case signedIn:
		return m.platform.Title()
	}
	return ""
}

func (m *Model) hints() []layout.KeyHint {
	if m.overlay.Focused() {
		return append(m.overlay.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	}
	var hints []layout.KeyHint
	switch m.phase {
	case signedOut:
		hints = m.signin.KeyHints()
		return append(hints, m.overlay.KeyHints()...)
	case signedIn:
		hints = m.platform.KeyHints()
		hints = append(hints, m.overlay.KeyHints()...)
		hints = append(hints, layout.KeyHint{Key: "Ctrl+O", Description: "Sign out"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

func (m *Model) mainView(width, height int) string {
	switch m.phase {
	case signedOut:
		return m.signin.View(width, height)
	case signedIn:
		return m.platform.View(width, height)
	}
	return layout.RenderLoading(width, "Checking your sign-in...")
}

func (m *Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	v.SetContent(m.render())
	return v
}

func (m *Model) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	header := layout.RenderHeader(m.title(), m.account.DisplayName(), m.width)
	footer := layout.RenderFooter(m.hints(), m.width)
	contentHeight := max(0, m.height-lipgloss.Height(header)-lipgloss.Height(footer))

	mainW, panelW := layout.SplitWidths(m.width, m.panelOpen, m.panelExpanded)
	var content string
	switch {
	case panelW == 0:
		content = m.mainView(mainW, contentHeight)
	case mainW == 0:
		content = m.overlay.View(panelW, contentHeight)
	default:
		main := lipgloss.NewStyle().Width(mainW).MaxWidth(mainW).Render(m.mainView(mainW, contentHeight))
		content = lipgloss.JoinHorizontal(lipgloss.Top, main, m.overlay.View(panelW, contentHeight))
	}

	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the program and blocks until it exits.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
