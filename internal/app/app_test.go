package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/learnhub/internal/api"
	"github.com/abhisek/learnhub/internal/chat"
	"github.com/abhisek/learnhub/internal/identity"
	"github.com/abhisek/learnhub/internal/platform"
)

type fakeSession struct {
	resolved   identity.Account
	resolveErr error
	signIn     identity.Account
	signInErr  error
	signOuts   int
}

func (f *fakeSession) Resolve(context.Context) (identity.Account, error) {
	return f.resolved, f.resolveErr
}

func (f *fakeSession) ActiveAccount() (identity.Account, bool) {
	return f.resolved, f.resolved.ID != ""
}

func (f *fakeSession) SignIn(context.Context) (identity.Account, error) {
	return f.signIn, f.signInErr
}

func (f *fakeSession) SignOut(context.Context) error {
	f.signOuts++
	return nil
}

func (f *fakeSession) AcquireTokenSilent(context.Context, []string) (string, error) {
	return "token", nil
}

// stubAPI serves a one-plan dashboard, or the plans listed for the user
// in byUser; listErr replaces it when set.
type stubAPI struct {
	listErr error
	byUser  map[string][]api.LessonPlan
	userIDs []string
}

var errUnused = errors.New("not used in app tests")

func (s *stubAPI) ListPlans(_ context.Context, userID string) ([]api.LessonPlan, error) {
	s.userIDs = append(s.userIDs, userID)
	if s.listErr != nil {
		return nil, s.listErr
	}
	if plans, ok := s.byUser[userID]; ok {
		return plans, nil
	}
	return []api.LessonPlan{{ID: "p1", Subject: "Math", Topic: "Quadratics"}}, nil
}

func (s *stubAPI) CreatePlan(context.Context, string, api.CreatePlanRequest) (api.LessonPlan, error) {
	return api.LessonPlan{}, errUnused
}

func (s *stubAPI) GetPlan(context.Context, string, string) (api.LessonPlan, error) {
	return api.LessonPlan{}, errUnused
}

func (s *stubAPI) MarkGenerated(context.Context, string, string, string, string) error {
	return errUnused
}

func (s *stubAPI) StartLesson(context.Context, string, string, string) (api.ActiveLesson, error) {
	return api.ActiveLesson{}, errUnused
}

func (s *stubAPI) ExpandSection(context.Context, string, string, string) (string, error) {
	return "", errUnused
}

func (s *stubAPI) CompleteLesson(context.Context, string, string, int) (api.CompleteResult, error) {
	return api.CompleteResult{}, errUnused
}

func (s *stubAPI) StartQuiz(context.Context, string, api.StartQuizRequest) (api.Quiz, error) {
	return api.Quiz{}, errUnused
}

func (s *stubAPI) SubmitQuiz(context.Context, string, string, []api.QuizAnswer) (api.QuizResult, error) {
	return api.QuizResult{}, errUnused
}

func (s *stubAPI) StartTutor(context.Context, string, api.StartTutorRequest) (api.TutorSession, error) {
	return api.TutorSession{}, errUnused
}

func (s *stubAPI) TutorMessage(context.Context, string, string, string) (string, error) {
	return "", errUnused
}

func (s *stubAPI) EndTutor(context.Context, string, string) error { return errUnused }

var _ platform.API = (*stubAPI)(nil)

// drive runs cmd and feeds every resulting message back into m. Tick
// messages are not followed so spinners cannot loop forever.
func drive(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 200 {
			t.Fatal("too many messages")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := run(c)
		switch msg := msg.(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			_, next := m.Update(msg)
			queue = append(queue, next)
		}
	}
}

// run executes cmd, giving up on slow commands such as ticks.
func run(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

func newModel(s *fakeSession, a *stubAPI) *Model {
	m := New(Options{Session: s, API: a})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func TestResolvedAccountSkipsSignIn(t *testing.T) {
	s := &fakeSession{resolved: identity.Account{ID: "u1", Name: "Ada"}}
	a := &stubAPI{}
	m := newModel(s, a)

	drive(t, m, m.Init())

	if m.Phase() != "signed_in" {
		t.Fatalf("expected signed in, got %s", m.Phase())
	}
	if m.Platform().State() != platform.Dashboard {
		t.Errorf("expected dashboard, got %s", m.Platform().State())
	}
	if len(a.userIDs) != 1 || a.userIDs[0] != "u1" {
		t.Errorf("dashboard should load for the account id, got %v", a.userIDs)
	}
	if !strings.Contains(m.render(), "Ada") {
		t.Error("header should show the account")
	}
}

func TestNoAccountShowsSignIn(t *testing.T) {
	s := &fakeSession{
		resolveErr: identity.ErrNoAccount,
		signIn:     identity.Account{ID: "u2", Username: "bo@example.com"},
	}
	m := newModel(s, &stubAPI{})

	drive(t, m, m.Init())
	if m.Phase() != "signed_out" {
		t.Fatalf("expected sign-in screen, got %s", m.Phase())
	}
	if strings.Contains(m.render(), "Sign-in failed") {
		t.Error("no account is not an error")
	}

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	drive(t, m, cmd)

	if m.Phase() != "signed_in" {
		t.Fatalf("expected signed in after sign-in, got %s", m.Phase())
	}
}

func TestSignInFailureStaysOnSignIn(t *testing.T) {
	s := &fakeSession{resolveErr: identity.ErrNoAccount, signInErr: errors.New("access_denied")}
	m := newModel(s, &stubAPI{})
	drive(t, m, m.Init())

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	drive(t, m, cmd)

	if m.Phase() != "signed_out" {
		t.Fatalf("expected to stay signed out, got %s", m.Phase())
	}
	if !strings.Contains(m.render(), "access_denied") {
		t.Error("expected sign-in error on screen")
	}
}

func TestAuthErrorReturnsToSignIn(t *testing.T) {
	s := &fakeSession{resolved: identity.Account{ID: "u1"}}
	a := &stubAPI{listErr: &api.AuthError{Err: identity.ErrInteractionRequired}}
	m := newModel(s, a)

	drive(t, m, m.Init())

	if m.Phase() != "signed_out" {
		t.Fatalf("expected sign-in after auth failure, got %s", m.Phase())
	}
	if m.Platform() != nil {
		t.Error("platform state must be dropped")
	}
	if !strings.Contains(m.render(), sessionExpired) {
		t.Error("expected expired-session message")
	}
}

func TestSignOut(t *testing.T) {
	s := &fakeSession{resolved: identity.Account{ID: "u1"}}
	m := newModel(s, &stubAPI{})
	drive(t, m, m.Init())

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'o', Mod: tea.ModCtrl})
	drive(t, m, cmd)

	if s.signOuts != 1 || m.Phase() != "signed_out" {
		t.Errorf("expected sign out, got %d calls, phase %s", s.signOuts, m.Phase())
	}
}

func TestLateResultFromPreviousAccountIgnored(t *testing.T) {
	tests := []struct {
		name    string
		listErr error
	}{
		{name: "plans"},
		{name: "auth failure", listErr: &api.AuthError{Err: identity.ErrInteractionRequired}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &stubAPI{byUser: map[string][]api.LessonPlan{
				"ada": {{ID: "ada-1", Subject: "History", Topic: "Rome"}, {ID: "ada-2", Subject: "Art", Topic: "Colour"}},
				"bo":  {{ID: "bo-1", Subject: "Physics", Topic: "Optics"}},
			}}
			m := newModel(&fakeSession{}, a)

			_, adaInit := m.Update(resolvedMsg{account: identity.Account{ID: "ada", Name: "Ada"}})
			if adaInit == nil {
				t.Fatal("signing in should load the dashboard")
			}

			m.Update(signedOutMsg{})
			_, cmd := m.Update(signedInMsg{account: identity.Account{ID: "bo", Name: "Bo"}})
			drive(t, m, cmd)
			bo := m.Platform()
			if bo == nil || bo.State() != platform.Dashboard {
				t.Fatal("expected Bo's dashboard")
			}

			a.listErr = tt.listErr
			drive(t, m, adaInit)

			if got := a.userIDs[len(a.userIDs)-1]; got != "ada" {
				t.Fatalf("expected the held load to run for ada, ran for %s", got)
			}
			if m.Phase() != "signed_in" || m.Platform() != bo {
				t.Fatalf("Bo's session must survive, phase %s", m.Phase())
			}
			if plans := bo.Plans(); len(plans) != 1 || plans[0].ID != "bo-1" {
				t.Errorf("Bo's plans were replaced: %v", plans)
			}
			if bo.Err() != "" {
				t.Errorf("unexpected error banner: %s", bo.Err())
			}
		})
	}
}

func TestOverlaySplitsLayout(t *testing.T) {
	s := &fakeSession{resolved: identity.Account{ID: "u1"}}
	m := newModel(s, &stubAPI{})
	drive(t, m, m.Init())

	_, cmd := m.Update(tea.KeyPressMsg{Code: 't', Mod: tea.ModCtrl})
	drive(t, m, cmd)

	if !m.panelOpen || m.panelExpanded {
		t.Fatalf("expected open collapsed panel, got open=%v expanded=%v", m.panelOpen, m.panelExpanded)
	}
	view := m.render()
	if !strings.Contains(view, "Always here to help") || !strings.Contains(view, "Quadratics") {
		t.Error("expected panel beside the dashboard")
	}

	// while the panel has focus, keys do not reach the dashboard
	before := m.Platform().State()
	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.Platform().State() != before {
		t.Error("focused overlay must swallow keys")
	}

	_, cmd = m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	drive(t, m, cmd)
	if m.panelOpen {
		t.Error("esc closes the panel")
	}
}

func TestOverlayWorksWhileSignedOut(t *testing.T) {
	s := &fakeSession{resolveErr: identity.ErrNoAccount}
	overlay := chat.NewOverlay(chat.Options{})
	m := New(Options{Session: s, API: &stubAPI{}, Chat: overlay})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	drive(t, m, m.Init())

	_, cmd := m.Update(tea.KeyPressMsg{Code: 't', Mod: tea.ModCtrl})
	drive(t, m, cmd)

	if !overlay.Open() {
		t.Error("overlay is independent of sign-in")
	}
}
