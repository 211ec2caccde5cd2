package api

import "time"

// LessonPlan is a course: an ordered set of subtopics for one subject and
// topic.
type LessonPlan struct {
	ID            string
	Subject       string
	Topic         string
	Description   string
	Level         string
	Status        string
	Subtopics     []Subtopic
	SubtopicCount int
	CreatedAt     time.Time
}

// Title is how plans are listed.
func (p LessonPlan) Title() string {
	if p.Topic == "" {
		return p.Subject
	}
	return p.Subject + " - " + p.Topic
}

type Subtopic struct {
	ID          string
	Title       string
	Status      string
	Order       int
	Duration    int // minutes
	Concepts    []string
	LessonID    string
	GeneratedAt time.Time
}

// Generated reports whether a lesson already exists for the subtopic.
func (s Subtopic) Generated() bool { return s.LessonID != "" }

type ActiveLesson struct {
	LessonID     string
	Subject      string
	Topic        string
	Subtopic     string
	Introduction string
	Summary      string
	KeyTerms     []string
	Sections     []LessonSection
}

// Section returns the index of the section with id, or -1.
func (l *ActiveLesson) Section(id string) int {
	for i := range l.Sections {
		if l.Sections[i].ID == id {
			return i
		}
	}
	return -1
}

type LessonSection struct {
	ID        string
	Title     string
	Content   string
	KeyPoints []string

	// Expanded is the deep dive, empty until requested.
	Expanded string
}

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	ShortAnswer    QuestionType = "short_answer"
	LongAnswer     QuestionType = "long_answer"
)

// Label is the human form, e.g. "multiple choice".
func (t QuestionType) Label() string {
	switch t {
	case MultipleChoice:
		return "multiple choice"
	case LongAnswer:
		return "long answer"
	default:
		return "short answer"
	}
}

type QuizQuestion struct {
	ID         string
	Type       QuestionType
	Prompt     string
	Options    []string // multiple choice only
	Difficulty string
	MaxMarks   float64 // 0 when the server did not say
}

type Quiz struct {
	ID        string
	Questions []QuizQuestion
}

// QuizAnswer is one submitted answer.
type QuizAnswer struct {
	QuestionID string `json:"questionId"`
	UserAnswer string `json:"userAnswer"`
}

type Score struct {
	Percentage   float64
	MarksAwarded float64
	MaxMarks     float64
}

type QuizResult struct {
	AttemptID    string
	Score        Score
	TriggerTutor bool
	NextAction   string
	WeakConcepts []string
	MasteryLevel string
	Feedback     string
	Responses    []MarkedResponse
}

type MarkedResponse struct {
	QuestionID   string
	QuestionText string
	UserAnswer   string

	// Correct is nil when the answer was only partially marked.
	Correct      *bool
	MarksAwarded float64
	MaxMarks     float64
	Feedback     string
	ModelAnswer  string
}

type CompleteResult struct {
	NextAction string
}

type TutorSession struct {
	SessionID string
	Message   string // the tutor's opening reply, may be empty
}

// CreatePlanRequest is the learner's course request.
type CreatePlanRequest struct {
	Subject string
	Topic   string
	Level   string
}

type StartQuizRequest struct {
	LessonID      string
	SubtopicID    string
	Difficulty    string
	QuestionCount int
}

type StartTutorRequest struct {
	Trigger        string
	LessonID       string
	Concept        string
	InitialMessage string
}

type TutorRole string

const (
	Learner TutorRole = "learner"
	Tutor   TutorRole = "tutor"
)

// TutorMessage is one line of a tutor session transcript.
type TutorMessage struct {
	Role TutorRole
	Text string
}
