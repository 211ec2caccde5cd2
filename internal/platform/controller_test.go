package platform

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learnhub/internal/api"
)

// fakeAPI serves canned responses and records what the flow asked for.
type fakeAPI struct {
	plans    []api.LessonPlan
	plan     api.LessonPlan
	lesson   api.ActiveLesson
	expanded string
	next     string
	quiz     api.Quiz
	result   api.QuizResult
	session  api.TutorSession
	reply    string

	listErr, createErr, getErr, startErr, markErr error
	expandErr, completeErr, quizErr, submitErr     error
	tutorErr, messageErr, endErr                   error

	listCalls     int
	created       []api.CreatePlanRequest
	marked        []string
	completedMins []int
	quizReqs      []api.StartQuizRequest
	submitted     [][]api.QuizAnswer
	tutorReqs     []api.StartTutorRequest
	messages      []string
	ended         []string
}

func (f *fakeAPI) ListPlans(context.Context, string) ([]api.LessonPlan, error) {
	f.listCalls++
	return f.plans, f.listErr
}

func (f *fakeAPI) CreatePlan(_ context.Context, _ string, req api.CreatePlanRequest) (api.LessonPlan, error) {
	f.created = append(f.created, req)
	return api.LessonPlan{ID: "new", Subject: req.Subject, Topic: req.Topic}, f.createErr
}

func (f *fakeAPI) GetPlan(context.Context, string, string) (api.LessonPlan, error) {
	return f.plan, f.getErr
}

func (f *fakeAPI) MarkGenerated(_ context.Context, _, planID, subtopicID, lessonID string) error {
	f.marked = append(f.marked, planID+"/"+subtopicID+"/"+lessonID)
	return f.markErr
}

func (f *fakeAPI) StartLesson(context.Context, string, string, string) (api.ActiveLesson, error) {
	return f.lesson, f.startErr
}

func (f *fakeAPI) ExpandSection(context.Context, string, string, string) (string, error) {
	return f.expanded, f.expandErr
}

func (f *fakeAPI) CompleteLesson(_ context.Context, _, _ string, mins int) (api.CompleteResult, error) {
	f.completedMins = append(f.completedMins, mins)
	return api.CompleteResult{NextAction: f.next}, f.completeErr
}

func (f *fakeAPI) StartQuiz(_ context.Context, _ string, req api.StartQuizRequest) (api.Quiz, error) {
	f.quizReqs = append(f.quizReqs, req)
	return f.quiz, f.quizErr
}

func (f *fakeAPI) SubmitQuiz(_ context.Context, _, _ string, answers []api.QuizAnswer) (api.QuizResult, error) {
	f.submitted = append(f.submitted, answers)
	return f.result, f.submitErr
}

func (f *fakeAPI) StartTutor(_ context.Context, _ string, req api.StartTutorRequest) (api.TutorSession, error) {
	f.tutorReqs = append(f.tutorReqs, req)
	return f.session, f.tutorErr
}

func (f *fakeAPI) TutorMessage(_ context.Context, _, _, message string) (string, error) {
	f.messages = append(f.messages, message)
	return f.reply, f.messageErr
}

func (f *fakeAPI) EndTutor(_ context.Context, _, sessionID string) error {
	f.ended = append(f.ended, sessionID)
	return f.endErr
}

func newFake() *fakeAPI {
	return &fakeAPI{
		plans: []api.LessonPlan{{ID: "p1", Subject: "Math", Topic: "Algebra", SubtopicCount: 2}},
		plan: api.LessonPlan{
			ID: "p1", Subject: "Math", Topic: "Algebra",
			Subtopics: []api.Subtopic{
				{ID: "s1", Title: "Linear", LessonID: "l0"},
				{ID: "s2", Title: "Quadratics"},
			},
		},
		lesson: api.ActiveLesson{
			LessonID: "l2",
			Subtopic: "Quadratics",
			Sections: []api.LessonSection{{ID: "a", Title: "Factorising"}, {ID: "b", Title: "Formula"}},
		},
		expanded: "Deeper.",
		next:     "quiz",
		quiz: api.Quiz{ID: "q1", Questions: []api.QuizQuestion{
			{ID: "x", Type: api.ShortAnswer}, {ID: "y", Type: api.ShortAnswer},
		}},
		result:  api.QuizResult{Score: api.Score{Percentage: 50}, TriggerTutor: true, WeakConcepts: []string{"factorising"}},
		session: api.TutorSession{SessionID: "t1", Message: "Let's look at it together."},
		reply:   "Try splitting the middle term.",
	}
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newController(f *fakeAPI) (*Controller, *clock) {
	clk := &clock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	return New(Options{API: f, UserID: "u1", Now: clk.now}), clk
}

// run executes cmd and flattens batches. Commands that do not finish
// promptly (cursor blink ticks) are abandoned.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, run(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// settle feeds every message produced by cmd back into the controller
// until nothing is left, returning messages meant for the root model.
func settle(c *Controller, cmd tea.Cmd) []tea.Msg {
	var external []tea.Msg
	queue := run(cmd)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		if _, ok := msg.(SignInRequiredMsg); ok {
			external = append(external, msg)
			continue
		}
		queue = append(queue, run(c.Update(msg))...)
	}
	return external
}

func loaded(t *testing.T, f *fakeAPI) (*Controller, *clock) {
	t.Helper()
	c, clk := newController(f)
	settle(c, c.Init())
	require.Equal(t, Dashboard, c.State())
	return c, clk
}

func TestInitLoadsDashboard(t *testing.T) {
	f := newFake()
	c, _ := loaded(t, f)

	assert.Equal(t, 1, f.listCalls)
	assert.Len(t, c.Plans(), 1)
	assert.Empty(t, c.Err())
}

func TestFullFlow(t *testing.T) {
	f := newFake()
	c, clk := loaded(t, f)

	settle(c, c.OpenPlan("p1"))
	require.Equal(t, PlanDetails, c.State())
	assert.True(t, c.generated["s1"])
	assert.False(t, c.generated["s2"])

	settle(c, c.StartSubtopic("s2"))
	require.Equal(t, Lesson, c.State())
	assert.Equal(t, []string{"p1/s2/l2"}, f.marked)
	assert.True(t, c.generated["s2"])

	settle(c, c.ExpandSection("b"))
	assert.Equal(t, "Deeper.", c.lesson.Sections[1].Expanded)
	assert.Equal(t, Lesson, c.State())

	clk.t = clk.t.Add(7*time.Minute + 40*time.Second)
	settle(c, c.CompleteLesson())
	require.Equal(t, Quiz, c.State())
	assert.Equal(t, []int{7}, f.completedMins)
	require.Len(t, f.quizReqs, 1)
	assert.Equal(t, api.StartQuizRequest{LessonID: "l2", SubtopicID: "s2", Difficulty: "mixed", QuestionCount: 3}, f.quizReqs[0])

	answers := []api.QuizAnswer{{QuestionID: "x", UserAnswer: "1"}, {QuestionID: "y", UserAnswer: ""}}
	settle(c, c.SubmitQuiz(answers))
	require.Equal(t, Result, c.State())
	assert.Equal(t, [][]api.QuizAnswer{answers}, f.submitted)

	settle(c, c.StartTutor("factorising"))
	require.Equal(t, Tutor, c.State())
	require.Len(t, f.tutorReqs, 1)
	assert.Equal(t, "quiz_struggle", f.tutorReqs[0].Trigger)
	assert.Equal(t, "I'm struggling with factorising", f.tutorReqs[0].InitialMessage)
	assert.Equal(t, []api.TutorMessage{
		{Role: api.Learner, Text: "I'm struggling with factorising"},
		{Role: api.Tutor, Text: "Let's look at it together."},
	}, c.tutor.Transcript)

	settle(c, c.SendTutorMessage("how?"))
	assert.Equal(t, []string{"how?"}, f.messages)
	assert.Len(t, c.tutor.Transcript, 4)
	assert.Equal(t, "Try splitting the middle term.", c.tutor.Transcript[3].Text)

	before := f.listCalls
	settle(c, c.EndTutor())
	require.Equal(t, Dashboard, c.State())
	assert.Equal(t, []string{"t1"}, f.ended)
	assert.Equal(t, before+1, f.listCalls)
}

func TestGeneratedSubtopicIsNotMarkedAgain(t *testing.T) {
	f := newFake()
	c, _ := loaded(t, f)
	settle(c, c.OpenPlan("p1"))

	settle(c, c.StartSubtopic("s1"))
	require.Equal(t, Lesson, c.State())
	assert.Empty(t, f.marked)

	settle(c, c.BackToDashboard())
	settle(c, c.OpenPlan("p1"))
	settle(c, c.StartSubtopic("s2"))
	settle(c, c.BackToDashboard())
	settle(c, c.OpenPlan("p1"))
	f.plan.Subtopics[1].LessonID = "l2"
	settle(c, c.StartSubtopic("s2"))

	assert.Equal(t, []string{"p1/s2/l2"}, f.marked)
}

func TestMarkGeneratedFailureIsOnlyLogged(t *testing.T) {
	f := newFake()
	f.markErr = errors.New("boom")
	c, _ := loaded(t, f)
	settle(c, c.OpenPlan("p1"))

	settle(c, c.StartSubtopic("s2"))

	assert.Equal(t, Lesson, c.State())
	assert.Empty(t, c.Err())
}

func TestStaleLessonIsDropped(t *testing.T) {
	f := newFake()
	c, _ := loaded(t, f)
	settle(c, c.OpenPlan("p1"))

	pending := c.StartSubtopic("s2")
	require.NotNil(t, pending)
	require.True(t, c.loading.generating["s2"])

	settle(c, c.BackToDashboard())
	require.Equal(t, Dashboard, c.State())

	settle(c, pending)
	assert.Equal(t, Dashboard, c.State())
	assert.Nil(t, c.lesson)
	assert.False(t, c.loading.generating["s2"])
	assert.Empty(t, f.marked)
}

func TestDuplicateIntentIgnoredWhileLoading(t *testing.T) {
	f := newFake()
	c, _ := loaded(t, f)

	first := c.OpenPlan("p1")
	require.NotNil(t, first)
	assert.Nil(t, c.OpenPlan("p1"))

	settle(c, first)
	require.Equal(t, PlanDetails, c.State())
	assert.Empty(t, c.loading.openingPlan)
}

func TestResultForAnotherControllerDropped(t *testing.T) {
	old, _ := newController(newFake())
	pending := old.Init()

	f := newFake()
	f.plans = []api.LessonPlan{{ID: "mine"}}
	c, _ := loaded(t, f)

	stale := newFake()
	stale.listErr = &api.AuthError{Err: errors.New("expired")}
	old.api = stale
	external := settle(c, pending)

	assert.Empty(t, external, "a replaced controller cannot request sign-in")
	require.Len(t, c.Plans(), 1)
	assert.Equal(t, "mine", c.Plans()[0].ID)
	assert.Empty(t, c.Err())
}

func TestBackToDashboardSupersedesPendingLoad(t *testing.T) {
	f := newFake()
	c, _ := newController(f)
	first := c.Init()
	require.NotNil(t, first)

	settle(c, c.NewCourse())
	require.Equal(t, CreateCourse, c.State())

	f.plans = []api.LessonPlan{{ID: "fresh"}}
	second := c.BackToDashboard()
	require.NotNil(t, second, "a pending load must not swallow the intent")

	settle(c, second)
	assert.Equal(t, Dashboard, c.State())
	assert.Equal(t, "fresh", c.Plans()[0].ID)
	assert.Zero(t, c.loading.dashboard)

	f.plans = []api.LessonPlan{{ID: "late"}}
	settle(c, first)
	assert.Equal(t, "fresh", c.Plans()[0].ID, "the superseded load is stale")
}

func TestFailedSubmitStaysInQuiz(t *testing.T) {
	f := newFake()
	c, _ := loaded(t, f)
	settle(c, c.OpenPlan("p1"))
	settle(c, c.StartSubtopic("s2"))
	settle(c, c.CompleteLesson())
	require.Equal(t, Quiz, c.State())

	f.submitErr = &api.APIError{Status: 500, Body: "marking failed"}
	settle(c, c.SubmitQuiz(nil))

	assert.Equal(t, Quiz, c.State())
	assert.Contains(t, c.Err(), "marking failed")
	assert.False(t, c.loading.submitting)

	f.submitErr = nil
	settle(c, c.SubmitQuiz(nil))
	assert.Equal(t, Result, c.State())
	assert.Empty(t, c.Err())
}

func TestCompleteWithoutQuizReturnsToDashboard(t *testing.T) {
	f := newFake()
	f.next = "next_lesson"
	c, _ := loaded(t, f)
	settle(c, c.OpenPlan("p1"))
	settle(c, c.StartSubtopic("s2"))

	settle(c, c.CompleteLesson())

	assert.Equal(t, Dashboard, c.State())
	assert.Empty(t, f.quizReqs)
	assert.Equal(t, []int{1}, f.completedMins)
}

func TestAuthErrorRequestsSignIn(t *testing.T) {
	f := newFake()
	c, _ := loaded(t, f)

	f.getErr = &api.AuthError{Err: errors.New("interaction required")}
	out := settle(c, c.OpenPlan("p1"))

	require.Len(t, out, 1)
	assert.IsType(t, SignInRequiredMsg{}, out[0])
	assert.Equal(t, Dashboard, c.State())
	assert.NotEmpty(t, c.Err())
}

func TestCreateCourse(t *testing.T) {
	f := newFake()
	c, _ := loaded(t, f)

	settle(c, c.NewCourse())
	require.Equal(t, CreateCourse, c.State())

	req := api.CreatePlanRequest{Subject: "Physics", Topic: "Optics", Level: "GCSE"}
	settle(c, c.CreateCourse(req))

	assert.Equal(t, Dashboard, c.State())
	assert.Equal(t, []api.CreatePlanRequest{req}, f.created)
}

func TestCreateCourseFailureStaysOnForm(t *testing.T) {
	f := newFake()
	f.createErr = errors.New("generation failed")
	c, _ := loaded(t, f)
	settle(c, c.NewCourse())

	settle(c, c.CreateCourse(api.CreatePlanRequest{Subject: "Physics", Topic: "Optics"}))

	assert.Equal(t, CreateCourse, c.State())
	assert.Contains(t, c.Err(), "generation failed")
	assert.False(t, c.loading.creating)
}

func TestCreatedPlanShownWhenRefreshFails(t *testing.T) {
	f := newFake()
	c, _ := loaded(t, f)
	settle(c, c.NewCourse())

	f.listErr = errors.New("list down")
	settle(c, c.CreateCourse(api.CreatePlanRequest{Subject: "Physics", Topic: "Optics"}))

	assert.Equal(t, Dashboard, c.State())
	require.Len(t, c.Plans(), 2)
	assert.Equal(t, "new", c.Plans()[0].ID)
	assert.Contains(t, c.Err(), "list down")
}

func TestBackToDashboardFailureKeepsState(t *testing.T) {
	f := newFake()
	c, _ := loaded(t, f)
	settle(c, c.OpenPlan("p1"))

	f.listErr = errors.New("offline")
	settle(c, c.BackToDashboard())

	assert.Equal(t, PlanDetails, c.State())
	assert.Contains(t, c.Err(), "offline")
}

func TestDismissError(t *testing.T) {
	f := newFake()
	f.getErr = errors.New("nope")
	c, _ := loaded(t, f)
	settle(c, c.OpenPlan("p1"))
	require.NotEmpty(t, c.Err())

	c.Update(tea.KeyPressMsg{Code: 'x', Mod: tea.ModCtrl})
	assert.Empty(t, c.Err())
}

func TestTutorReplyFallbackAndStaleSession(t *testing.T) {
	f := newFake()
	f.reply = ""
	c, _ := loaded(t, f)
	settle(c, c.StartTutor("ratios"))
	require.Equal(t, Tutor, c.State())

	settle(c, c.SendTutorMessage("hello"))
	last := c.tutor.Transcript[len(c.tutor.Transcript)-1]
	assert.Equal(t, api.TutorMessage{Role: api.Tutor, Text: "I received your message."}, last)

	n := len(c.tutor.Transcript)
	c.Update(tutorReplyMsg{sessionID: "old", reply: "late"})
	assert.Len(t, c.tutor.Transcript, n)
}

func TestTutorMessageAppendedBeforeReply(t *testing.T) {
	f := newFake()
	c, _ := loaded(t, f)
	settle(c, c.StartTutor("ratios"))

	pending := c.SendTutorMessage("why?")
	require.NotNil(t, pending)
	assert.Equal(t, api.TutorMessage{Role: api.Learner, Text: "why?"}, c.tutor.Transcript[len(c.tutor.Transcript)-1])
	assert.Nil(t, c.SendTutorMessage("again"), "send is disabled while a reply is pending")

	f.messageErr = errors.New("tutor down")
	settle(c, pending)
	assert.Contains(t, c.Err(), "tutor down")
	assert.False(t, c.loading.tutorSending)
}

func TestDeepDiveForOtherLessonDropped(t *testing.T) {
	f := newFake()
	c, _ := loaded(t, f)
	settle(c, c.OpenPlan("p1"))
	settle(c, c.StartSubtopic("s2"))

	c.Update(sectionExpandedMsg{lessonID: "other", sectionID: "a", content: "x"})
	assert.Empty(t, c.lesson.Sections[0].Expanded)
}

func TestStudyMinutesAtLeastOne(t *testing.T) {
	f := newFake()
	c, clk := loaded(t, f)
	settle(c, c.OpenPlan("p1"))
	settle(c, c.StartSubtopic("s2"))

	clk.t = clk.t.Add(20 * time.Second)
	assert.Equal(t, 1, c.studyMinutes())
	clk.t = clk.t.Add(3 * time.Minute)
	assert.Equal(t, 3, c.studyMinutes())
}

func TestKeysDriveTheActiveView(t *testing.T) {
	f := newFake()
	c, _ := loaded(t, f)

	// Enter on the dashboard opens the highlighted plan.
	settle(c, c.Update(tea.KeyPressMsg{Code: tea.KeyEnter}))
	require.Equal(t, PlanDetails, c.State())

	// Esc goes back through a refresh.
	settle(c, c.Update(tea.KeyPressMsg{Code: tea.KeyEscape}))
	assert.Equal(t, Dashboard, c.State())
}

func TestStateNames(t *testing.T) {
	assert.Equal(t, "PLAN_DETAILS", PlanDetails.String())
	assert.Equal(t, "UNKNOWN", State(42).String())
}
