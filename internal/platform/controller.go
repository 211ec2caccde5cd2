// Package platform drives the learning flow: it owns every piece of
// server-derived state, talks to the platform API and decides which view
// is shown.
package platform

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/learnhub/internal/api"
	"github.com/abhisek/learnhub/internal/logger"
	"github.com/abhisek/learnhub/internal/router"
	"github.com/abhisek/learnhub/internal/ui/layout"
)

const (
	quizDifficulty    = "mixed"
	quizQuestionCount = 3

	tutorTrigger       = "quiz_struggle"
	tutorReplyFallback = "I received your message."

	maxErrorLen = 240
)

// API is the part of the platform client the flow uses. *api.Client
// implements it.
type API interface {
	ListPlans(ctx context.Context, userID string) ([]api.LessonPlan, error)
	CreatePlan(ctx context.Context, userID string, req api.CreatePlanRequest) (api.LessonPlan, error)
	GetPlan(ctx context.Context, userID, planID string) (api.LessonPlan, error)
	MarkGenerated(ctx context.Context, userID, planID, subtopicID, lessonID string) error
	StartLesson(ctx context.Context, userID, planID, subtopicID string) (api.ActiveLesson, error)
	ExpandSection(ctx context.Context, userID, lessonID, sectionID string) (string, error)
	CompleteLesson(ctx context.Context, userID, lessonID string, studyMinutes int) (api.CompleteResult, error)
	StartQuiz(ctx context.Context, userID string, req api.StartQuizRequest) (api.Quiz, error)
	SubmitQuiz(ctx context.Context, userID, quizID string, answers []api.QuizAnswer) (api.QuizResult, error)
	StartTutor(ctx context.Context, userID string, req api.StartTutorRequest) (api.TutorSession, error)
	TutorMessage(ctx context.Context, userID, sessionID, message string) (string, error)
	EndTutor(ctx context.Context, userID, sessionID string) error
}

var _ API = (*api.Client)(nil)

// controllers numbers every Controller created in the process.
var controllers atomic.Uint64

// Options configures a Controller.
type Options struct {
	API    API
	UserID string
	Logger *logger.Logger

	// Now defaults to time.Now.
	Now func() time.Time

	// Context bounds every API call. Defaults to context.Background.
	Context context.Context
}

type tutorSession struct {
	ID         string
	Concept    string
	Transcript []api.TutorMessage
}

type loading struct {
	// dashboard is the seq of the pending plan list load, or 0.
	dashboard uint64

	creating      bool
	completing    bool
	submitting    bool
	tutorStarting bool
	tutorSending  bool
	tutorEnding   bool

	openingPlan map[string]bool
	generating  map[string]bool
	expanding   map[string]bool
}

// Controller is the flow state machine. All methods run on the Bubble Tea
// update loop; API calls run in commands and report back as messages.
type Controller struct {
	id     uint64
	api    API
	userID string
	log    *logger.Logger
	now    func() time.Time
	ctx    context.Context
	router *router.Router

	initCmd tea.Cmd

	state State
	err   string
	seq   uint64

	plans      []api.LessonPlan
	loaded     bool
	activePlan *api.LessonPlan
	generated  map[string]bool

	lesson         *api.ActiveLesson
	lessonPlanID   string
	lessonSubtopic string
	lessonOpened   time.Time

	quiz   *api.Quiz
	result *api.QuizResult
	tutor  tutorSession

	loading loading
}

// New creates a Controller on the dashboard. Call Init to load it.
func New(opts Options) *Controller {
	c := &Controller{
		id:        controllers.Add(1),
		api:       opts.API,
		userID:    opts.UserID,
		log:       opts.Logger,
		now:       opts.Now,
		ctx:       opts.Context,
		generated: make(map[string]bool),
		loading: loading{
			openingPlan: make(map[string]bool),
			generating:  make(map[string]bool),
			expanding:   make(map[string]bool),
		},
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.ctx == nil {
		c.ctx = context.Background()
	}
	c.log = c.log.With("component", "platform", "user_id", c.userID)
	c.router = router.New(nil)
	c.show()
	return c
}

// State is the active flow state.
func (c *Controller) State() State { return c.state }

// Err is the message of the visible error, or "".
func (c *Controller) Err() string { return c.err }

// Plans is the cached dashboard list.
func (c *Controller) Plans() []api.LessonPlan { return c.plans }

// Init loads the dashboard.
func (c *Controller) Init() tea.Cmd {
	return c.loadDashboard()
}

// Update handles API results and forwards everything else to the active
// view.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+x" && c.err != "" {
			c.err = ""
			return nil
		}
		cmd = c.router.Update(msg)

	case ownedMsg:
		if msg.owner != c.id {
			c.log.Debug("dropping result for a replaced session", "owner", msg.owner)
			return nil
		}
		return c.Update(msg.msg)

	case dashboardLoadedMsg:
		cmd = c.onDashboardLoaded(msg)
	case showCreateMsg:
		if msg.seq == c.seq {
			c.transition(CreateCourse)
		}
	case planCreatedMsg:
		cmd = c.onPlanCreated(msg)
	case planOpenedMsg:
		cmd = c.onPlanOpened(msg)
	case lessonStartedMsg:
		cmd = c.onLessonStarted(msg)
	case markGeneratedMsg:
		if msg.err != nil {
			c.log.Warn("mark generated failed", "plan_id", msg.planID, "subtopic_id", msg.subtopicID, "error", msg.err)
		}
	case sectionExpandedMsg:
		cmd = c.onSectionExpanded(msg)
	case lessonCompletedMsg:
		cmd = c.onLessonCompleted(msg)
	case quizSubmittedMsg:
		cmd = c.onQuizSubmitted(msg)
	case tutorStartedMsg:
		cmd = c.onTutorStarted(msg)
	case tutorReplyMsg:
		cmd = c.onTutorReply(msg)
	case tutorEndedMsg:
		cmd = c.onTutorEnded(msg)

	default:
		cmd = c.router.Update(msg)
	}

	return tea.Batch(cmd, c.sync())
}

// View renders the error banner, if any, above the active view.
func (c *Controller) View(width, height int) string {
	if c.err == "" {
		return c.router.View(width, height)
	}
	banner := layout.RenderErrorBanner(width, c.err)
	rest := height - lipgloss.Height(banner)
	return banner + "\n" + c.router.View(width, max(rest-1, 0))
}

func (c *Controller) Title() string { return c.router.Title() }

func (c *Controller) KeyHints() []layout.KeyHint {
	hints := c.router.KeyHints()
	if c.err != "" {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+X", Description: "Dismiss error"})
	}
	return hints
}

// call runs fn as a command and stamps its result with the controller id.
func (c *Controller) call(fn func() tea.Msg) tea.Cmd {
	owner := c.id
	return func() tea.Msg { return ownedMsg{owner: owner, msg: fn()} }
}

// next starts a transition-triggering intent. Results carrying an older
// sequence number are discarded.
func (c *Controller) next() uint64 {
	c.seq++
	return c.seq
}

func (c *Controller) transition(s State) {
	if c.state != s {
		c.log.Debug("transition", "from", c.state.String(), "to", s.String())
	}
	c.state = s
	c.err = ""
	c.show()
}

// fail records a failed call. The state is left as it was.
func (c *Controller) fail(what string, err error) tea.Cmd {
	c.log.Warn(what+" failed", "state", c.state.String(), "error", err)
	c.err = userMessage(what, err)

	if api.IsAuth(err) {
		return func() tea.Msg { return SignInRequiredMsg{Err: err} }
	}
	return nil
}

func userMessage(what string, err error) string {
	var ve *api.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	msg := fmt.Sprintf("Could not %s: %v", what, err)
	if r := []rune(msg); len(r) > maxErrorLen {
		msg = string(r[:maxErrorLen]) + "..."
	}
	return msg
}

// --- dashboard ---

func (c *Controller) loadDashboard() tea.Cmd {
	seq := c.next()
	c.loading.dashboard = seq
	ctx, userID := c.ctx, c.userID
	return c.call(func() tea.Msg {
		plans, err := c.api.ListPlans(ctx, userID)
		return dashboardLoadedMsg{seq: seq, plans: plans, err: err}
	})
}

// BackToDashboard refreshes the plan list and shows the dashboard once it
// arrives. A load already in flight is superseded.
func (c *Controller) BackToDashboard() tea.Cmd { return c.loadDashboard() }

// NewCourse opens the create-course form.
func (c *Controller) NewCourse() tea.Cmd {
	seq := c.next()
	return c.call(func() tea.Msg { return showCreateMsg{seq: seq} })
}

func (c *Controller) onDashboardLoaded(msg dashboardLoadedMsg) tea.Cmd {
	if msg.seq == c.loading.dashboard {
		c.loading.dashboard = 0
	}
	if msg.seq != c.seq {
		c.log.Debug("dropping stale dashboard load")
		return nil
	}
	if msg.err != nil {
		return c.fail("load your plans", msg.err)
	}
	c.plans, c.loaded = msg.plans, true
	c.transition(Dashboard)
	return nil
}

// --- create course ---

// CreateCourse submits the form and returns to a refreshed dashboard.
func (c *Controller) CreateCourse(req api.CreatePlanRequest) tea.Cmd {
	if c.loading.creating {
		return nil
	}
	c.loading.creating = true
	seq := c.next()
	ctx, userID := c.ctx, c.userID
	return c.call(func() tea.Msg {
		created, err := c.api.CreatePlan(ctx, userID, req)
		if err != nil {
			return planCreatedMsg{seq: seq, err: err}
		}
		plans, listErr := c.api.ListPlans(ctx, userID)
		return planCreatedMsg{seq: seq, created: created, plans: plans, listErr: listErr}
	})
}

func (c *Controller) onPlanCreated(msg planCreatedMsg) tea.Cmd {
	c.loading.creating = false
	if msg.seq != c.seq {
		return nil
	}
	if msg.err != nil {
		return c.fail("create the course", msg.err)
	}
	c.log.Info("plan created", "plan_id", msg.created.ID)

	if msg.listErr != nil {
		// The plan exists; show it with what we have rather than invite a
		// duplicate by staying on the form.
		c.plans = append([]api.LessonPlan{msg.created}, c.plans...)
		c.transition(Dashboard)
		return c.fail("refresh your plans", msg.listErr)
	}
	c.plans, c.loaded = msg.plans, true
	c.transition(Dashboard)
	return nil
}

// --- plan details ---

// OpenPlan fetches the plan and shows its details.
func (c *Controller) OpenPlan(planID string) tea.Cmd {
	if planID == "" || c.loading.openingPlan[planID] {
		return nil
	}
	c.loading.openingPlan[planID] = true
	seq := c.next()
	ctx, userID := c.ctx, c.userID
	return c.call(func() tea.Msg {
		plan, err := c.api.GetPlan(ctx, userID, planID)
		return planOpenedMsg{seq: seq, planID: planID, plan: plan, err: err}
	})
}

func (c *Controller) onPlanOpened(msg planOpenedMsg) tea.Cmd {
	delete(c.loading.openingPlan, msg.planID)
	if msg.seq != c.seq {
		return nil
	}
	if msg.err != nil {
		return c.fail("open the plan", msg.err)
	}

	plan := msg.plan
	if plan.ID == "" {
		plan.ID = msg.planID
	}
	c.activePlan = &plan
	c.generated = make(map[string]bool, len(plan.Subtopics))
	for _, sub := range plan.Subtopics {
		c.generated[sub.ID] = sub.Generated()
	}
	c.transition(PlanDetails)
	return nil
}

// --- lesson ---

// StartSubtopic starts (or reopens) the lesson for a subtopic of the
// active plan.
func (c *Controller) StartSubtopic(subtopicID string) tea.Cmd {
	if c.activePlan == nil || subtopicID == "" || c.loading.generating[subtopicID] {
		return nil
	}
	c.loading.generating[subtopicID] = true
	seq := c.next()
	planID := c.activePlan.ID
	wasGenerated := c.generated[subtopicID]
	ctx, userID := c.ctx, c.userID
	return c.call(func() tea.Msg {
		lesson, err := c.api.StartLesson(ctx, userID, planID, subtopicID)
		return lessonStartedMsg{
			seq:          seq,
			planID:       planID,
			subtopicID:   subtopicID,
			wasGenerated: wasGenerated,
			lesson:       lesson,
			err:          err,
		}
	})
}

func (c *Controller) onLessonStarted(msg lessonStartedMsg) tea.Cmd {
	delete(c.loading.generating, msg.subtopicID)
	if msg.seq != c.seq {
		c.log.Debug("dropping stale lesson", "subtopic_id", msg.subtopicID)
		return nil
	}
	if msg.err != nil {
		return c.fail("start the lesson", msg.err)
	}

	c.generated[msg.subtopicID] = true
	lesson := msg.lesson
	c.lesson = &lesson
	c.lessonPlanID = msg.planID
	c.lessonSubtopic = msg.subtopicID
	c.lessonOpened = c.now()
	c.loading.expanding = make(map[string]bool)
	c.transition(Lesson)

	if msg.wasGenerated {
		return nil
	}
	return c.markGenerated(msg.planID, msg.subtopicID, lesson.LessonID)
}

// markGenerated is best effort: a failure is only logged.
func (c *Controller) markGenerated(planID, subtopicID, lessonID string) tea.Cmd {
	ctx, userID := c.ctx, c.userID
	return c.call(func() tea.Msg {
		err := c.api.MarkGenerated(ctx, userID, planID, subtopicID, lessonID)
		return markGeneratedMsg{planID: planID, subtopicID: subtopicID, err: err}
	})
}

// ExpandSection requests the deep dive for a section of the open lesson.
func (c *Controller) ExpandSection(sectionID string) tea.Cmd {
	if c.lesson == nil || c.lesson.Section(sectionID) < 0 || c.loading.expanding[sectionID] {
		return nil
	}
	c.loading.expanding[sectionID] = true
	lessonID := c.lesson.LessonID
	ctx, userID := c.ctx, c.userID
	return c.call(func() tea.Msg {
		content, err := c.api.ExpandSection(ctx, userID, lessonID, sectionID)
		return sectionExpandedMsg{lessonID: lessonID, sectionID: sectionID, content: content, err: err}
	})
}

func (c *Controller) onSectionExpanded(msg sectionExpandedMsg) tea.Cmd {
	if c.lesson == nil || c.lesson.LessonID != msg.lessonID {
		return nil
	}
	delete(c.loading.expanding, msg.sectionID)
	if msg.err != nil {
		return c.fail("load the deep dive", msg.err)
	}
	if msg.content == "" {
		c.log.Warn("empty deep dive", "section_id", msg.sectionID)
		return nil
	}
	if i := c.lesson.Section(msg.sectionID); i >= 0 {
		c.lesson.Sections[i].Expanded = msg.content
	}
	return nil
}

// studyMinutes is whole minutes since the lesson opened, at least one.
func (c *Controller) studyMinutes() int {
	return max(1, int(c.now().Sub(c.lessonOpened)/time.Minute))
}

// CompleteLesson records the lesson and starts the quiz when the server
// asks for one.
func (c *Controller) CompleteLesson() tea.Cmd {
	if c.lesson == nil || c.loading.completing {
		return nil
	}
	c.loading.completing = true
	seq := c.next()
	lessonID, subtopicID := c.lesson.LessonID, c.lessonSubtopic
	minutes := c.studyMinutes()
	ctx, userID := c.ctx, c.userID
	return c.call(func() tea.Msg {
		res, err := c.api.CompleteLesson(ctx, userID, lessonID, minutes)
		if err != nil {
			return lessonCompletedMsg{seq: seq, err: err}
		}
		if res.NextAction == "quiz" {
			quiz, err := c.api.StartQuiz(ctx, userID, api.StartQuizRequest{
				LessonID:      lessonID,
				SubtopicID:    subtopicID,
				Difficulty:    quizDifficulty,
				QuestionCount: quizQuestionCount,
			})
			if err != nil {
				return lessonCompletedMsg{seq: seq, err: err}
			}
			return lessonCompletedMsg{seq: seq, quiz: &quiz}
		}
		plans, err := c.api.ListPlans(ctx, userID)
		return lessonCompletedMsg{seq: seq, plans: plans, err: err}
	})
}

func (c *Controller) onLessonCompleted(msg lessonCompletedMsg) tea.Cmd {
	c.loading.completing = false
	if msg.seq != c.seq {
		return nil
	}
	if msg.err != nil {
		return c.fail("complete the lesson", msg.err)
	}
	c.log.Info("lesson completed", "plan_id", c.lessonPlanID, "subtopic_id", c.lessonSubtopic, "quiz", msg.quiz != nil)
	if msg.quiz != nil {
		c.quiz = msg.quiz
		c.transition(Quiz)
		return nil
	}
	c.plans, c.loaded = msg.plans, true
	c.transition(Dashboard)
	return nil
}

// --- quiz ---

// SubmitQuiz sends the answers, one per question.
func (c *Controller) SubmitQuiz(answers []api.QuizAnswer) tea.Cmd {
	if c.quiz == nil || c.loading.submitting {
		return nil
	}
	c.loading.submitting = true
	seq := c.next()
	quizID := c.quiz.ID
	ctx, userID := c.ctx, c.userID
	return c.call(func() tea.Msg {
		res, err := c.api.SubmitQuiz(ctx, userID, quizID, answers)
		return quizSubmittedMsg{seq: seq, result: res, err: err}
	})
}

func (c *Controller) onQuizSubmitted(msg quizSubmittedMsg) tea.Cmd {
	c.loading.submitting = false
	if msg.seq != c.seq {
		return nil
	}
	if msg.err != nil {
		return c.fail("submit the quiz", msg.err)
	}
	res := msg.result
	c.result = &res
	c.log.Info("quiz marked", "percentage", res.Score.Percentage, "trigger_tutor", res.TriggerTutor)
	c.transition(Result)
	return nil
}

// --- tutor ---

// StartTutor opens a tutor session about a weak concept.
func (c *Controller) StartTutor(concept string) tea.Cmd {
	if c.loading.tutorStarting {
		return nil
	}
	c.loading.tutorStarting = true
	seq := c.next()
	opener := "I'm struggling with " + concept
	var lessonID string
	if c.lesson != nil {
		lessonID = c.lesson.LessonID
	}
	ctx, userID := c.ctx, c.userID
	return c.call(func() tea.Msg {
		sess, err := c.api.StartTutor(ctx, userID, api.StartTutorRequest{
			Trigger:        tutorTrigger,
			LessonID:       lessonID,
			Concept:        concept,
			InitialMessage: opener,
		})
		return tutorStartedMsg{seq: seq, concept: concept, opener: opener, session: sess, err: err}
	})
}

func (c *Controller) onTutorStarted(msg tutorStartedMsg) tea.Cmd {
	c.loading.tutorStarting = false
	if msg.seq != c.seq {
		return nil
	}
	if msg.err != nil {
		return c.fail("start the tutor", msg.err)
	}

	transcript := []api.TutorMessage{{Role: api.Learner, Text: msg.opener}}
	if msg.session.Message != "" {
		transcript = append(transcript, api.TutorMessage{Role: api.Tutor, Text: msg.session.Message})
	}
	c.tutor = tutorSession{ID: msg.session.SessionID, Concept: msg.concept, Transcript: transcript}
	c.loading.tutorSending = false
	c.loading.tutorEnding = false
	c.transition(Tutor)
	return nil
}

// SendTutorMessage appends the learner's message and asks for a reply.
func (c *Controller) SendTutorMessage(text string) tea.Cmd {
	if c.tutor.ID == "" || text == "" || c.loading.tutorSending {
		return nil
	}
	c.loading.tutorSending = true
	c.tutor.Transcript = append(c.tutor.Transcript, api.TutorMessage{Role: api.Learner, Text: text})
	sessionID := c.tutor.ID
	ctx, userID := c.ctx, c.userID
	return c.call(func() tea.Msg {
		reply, err := c.api.TutorMessage(ctx, userID, sessionID, text)
		return tutorReplyMsg{sessionID: sessionID, reply: reply, err: err}
	})
}

func (c *Controller) onTutorReply(msg tutorReplyMsg) tea.Cmd {
	if msg.sessionID != c.tutor.ID {
		return nil
	}
	c.loading.tutorSending = false
	if msg.err != nil {
		return c.fail("reach the tutor", msg.err)
	}
	reply := msg.reply
	if reply == "" {
		reply = tutorReplyFallback
	}
	c.tutor.Transcript = append(c.tutor.Transcript, api.TutorMessage{Role: api.Tutor, Text: reply})
	return nil
}

// EndTutor closes the session and returns to a refreshed dashboard.
func (c *Controller) EndTutor() tea.Cmd {
	if c.tutor.ID == "" || c.loading.tutorEnding {
		return nil
	}
	c.loading.tutorEnding = true
	seq := c.next()
	sessionID := c.tutor.ID
	ctx, userID := c.ctx, c.userID
	return c.call(func() tea.Msg {
		if err := c.api.EndTutor(ctx, userID, sessionID); err != nil {
			return tutorEndedMsg{seq: seq, err: err}
		}
		plans, listErr := c.api.ListPlans(ctx, userID)
		return tutorEndedMsg{seq: seq, plans: plans, listErr: listErr}
	})
}

func (c *Controller) onTutorEnded(msg tutorEndedMsg) tea.Cmd {
	c.loading.tutorEnding = false
	if msg.seq != c.seq {
		return nil
	}
	if msg.err != nil {
		return c.fail("end the session", msg.err)
	}
	c.tutor = tutorSession{}
	c.loading.tutorSending = false
	if msg.listErr != nil {
		c.transition(Dashboard)
		return c.fail("refresh your plans", msg.listErr)
	}
	c.plans, c.loaded = msg.plans, true
	c.transition(Dashboard)
	return nil
}
