package platform

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/learnhub/internal/api"
)

// SignInRequiredMsg is emitted when a call failed because no token could
// be acquired. The root model answers it with the sign-in screen.
type SignInRequiredMsg struct {
	Err error
}

// ownedMsg wraps every API result with the id of the controller that made
// the call. A controller drops results addressed to another one, so late
// replies from a signed-out account never reach the next.
type ownedMsg struct {
	owner uint64
	msg   tea.Msg
}

// Results of API calls. seq ties a result to the intent that issued it;
// a result whose seq is older than the controller's is stale.

type dashboardLoadedMsg struct {
	seq   uint64
	plans []api.LessonPlan
	err   error
}

type showCreateMsg struct {
	seq uint64
}

type planCreatedMsg struct {
	seq     uint64
	created api.LessonPlan
	plans   []api.LessonPlan

	// err is the create failure; listErr means the plan exists but the
	// refreshed list could not be fetched.
	err     error
	listErr error
}

type planOpenedMsg struct {
	seq    uint64
	planID string
	plan   api.LessonPlan
	err    error
}

type lessonStartedMsg struct {
	seq          uint64
	planID       string
	subtopicID   string
	wasGenerated bool
	lesson       api.ActiveLesson
	err          error
}

type markGeneratedMsg struct {
	planID     string
	subtopicID string
	err        error
}

type sectionExpandedMsg struct {
	lessonID  string
	sectionID string
	content   string
	err       error
}

type lessonCompletedMsg struct {
	seq uint64

	// quiz is set when the server asked for a quiz; otherwise plans holds
	// the refreshed dashboard.
	quiz  *api.Quiz
	plans []api.LessonPlan
	err   error
}

type quizSubmittedMsg struct {
	seq    uint64
	result api.QuizResult
	err    error
}

type tutorStartedMsg struct {
	seq     uint64
	concept string
	opener  string
	session api.TutorSession
	err     error
}

type tutorReplyMsg struct {
	sessionID string
	reply     string
	err       error
}

type tutorEndedMsg struct {
	seq     uint64
	plans   []api.LessonPlan
	err     error
	listErr error
}
