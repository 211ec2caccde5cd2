package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// The server names the same field differently depending on the endpoint.
// Everything is decoded into these wire structs first and converted to the
// canonical types in types.go; nothing past this file sees the aliases.

type wirePlan struct {
	ID            string         `json:"id"`
	LessonPlanID  string         `json:"lesson_plan_id"`
	LessonPlanID2 string         `json:"lessonPlanId"`
	Subject       string         `json:"subject"`
	Topic         string         `json:"topic"`
	Description   string         `json:"description"`
	Level         string         `json:"level"`
	Status        string         `json:"status"`
	Subtopics     []wireSubtopic `json:"subtopics"`
	Structure     []wireSubtopic `json:"structure"`
	SubtopicCount *int           `json:"subtopic_count"`
	CreatedAt     string         `json:"created_at"`
	CreatedAt2    string         `json:"createdAt"`
}

func (w wirePlan) canonical() LessonPlan {
	p := LessonPlan{
		ID:          first(w.LessonPlanID, w.LessonPlanID2, w.ID),
		Subject:     w.Subject,
		Topic:       w.Topic,
		Description: w.Description,
		Level:       w.Level,
		Status:      w.Status,
		CreatedAt:   parseTime(first(w.CreatedAt, w.CreatedAt2)),
	}
	subs := w.Subtopics
	if len(subs) == 0 {
		subs = w.Structure
	}
	for _, s := range subs {
		p.Subtopics = append(p.Subtopics, s.canonical())
	}
	if w.SubtopicCount != nil {
		p.SubtopicCount = *w.SubtopicCount
	} else {
		p.SubtopicCount = len(p.Subtopics)
	}
	return p
}

type wireSubtopic struct {
	ID           string   `json:"id"`
	SubtopicID   string   `json:"subtopic_id"`
	SubtopicID2  string   `json:"subtopicId"`
	Title        string   `json:"title"`
	Name         string   `json:"name"`
	Status       string   `json:"status"`
	Order        int      `json:"order"`
	Duration     int      `json:"duration"`
	Duration2    int      `json:"estimatedDuration"`
	Concepts     []string `json:"concepts"`
	LessonID     *string  `json:"lesson_id"`
	LessonID2    *string  `json:"lessonId"`
	GeneratedAt  string   `json:"generated_at"`
	GeneratedAt2 string   `json:"generatedAt"`
}

func (w wireSubtopic) canonical() Subtopic {
	s := Subtopic{
		ID:          first(w.ID, w.SubtopicID, w.SubtopicID2),
		Title:       first(w.Title, w.Name),
		Status:      w.Status,
		Order:       w.Order,
		Duration:    w.Duration,
		Concepts:    w.Concepts,
		GeneratedAt: parseTime(first(w.GeneratedAt, w.GeneratedAt2)),
	}
	if s.Duration == 0 {
		s.Duration = w.Duration2
	}
	if w.LessonID != nil {
		s.LessonID = *w.LessonID
	}
	if s.LessonID == "" && w.LessonID2 != nil {
		s.LessonID = *w.LessonID2
	}
	return s
}

type wireLessonBody struct {
	Introduction string        `json:"introduction"`
	Sections     []wireSection `json:"sections"`
	Summary      string        `json:"summary"`
	KeyTerms     []string      `json:"key_terms"`
	KeyTerms2    []string      `json:"keyTerms"`
}

type wireLesson struct {
	LessonID  string `json:"lesson_id"`
	LessonID2 string `json:"lessonId"`
	ID        string `json:"id"`
	Subject   string `json:"subject"`
	Topic     string `json:"topic"`
	Subtopic  string `json:"subtopic"`
	wireLessonBody

	// Stored lessons nest the body under content.
	Content *wireLessonBody `json:"content"`
}

func (w wireLesson) canonical() ActiveLesson {
	body := w.wireLessonBody
	if w.Content != nil {
		body.Introduction = first(body.Introduction, w.Content.Introduction)
		body.Summary = first(body.Summary, w.Content.Summary)
		if len(body.Sections) == 0 {
			body.Sections = w.Content.Sections
		}
		if len(body.KeyTerms) == 0 && len(body.KeyTerms2) == 0 {
			body.KeyTerms = w.Content.KeyTerms
			body.KeyTerms2 = w.Content.KeyTerms2
		}
	}
	l := ActiveLesson{
		LessonID:     first(w.LessonID, w.LessonID2, w.ID),
		Subject:      w.Subject,
		Topic:        w.Topic,
		Subtopic:     w.Subtopic,
		Introduction: body.Introduction,
		Summary:      body.Summary,
		KeyTerms:     body.KeyTerms,
	}
	if len(l.KeyTerms) == 0 {
		l.KeyTerms = body.KeyTerms2
	}
	for i, s := range body.Sections {
		sec := s.canonical()
		if sec.ID == "" {
			sec.ID = fmt.Sprintf("section_%d", i)
		}
		l.Sections = append(l.Sections, sec)
	}
	return l
}

type wireSection struct {
	SectionID  string   `json:"sectionId"`
	SectionID2 string   `json:"section_id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	KeyPoints  []string `json:"keyPoints"`
	KeyPoints2 []string `json:"key_points"`
	Expanded   *string  `json:"expanded"`
}

func (w wireSection) canonical() LessonSection {
	s := LessonSection{
		ID:        first(w.SectionID, w.SectionID2),
		Title:     w.Title,
		Content:   w.Content,
		KeyPoints: w.KeyPoints,
	}
	if len(s.KeyPoints) == 0 {
		s.KeyPoints = w.KeyPoints2
	}
	if w.Expanded != nil {
		s.Expanded = *w.Expanded
	}
	return s
}

type wireQuestion struct {
	QuestionID  string   `json:"questionId"`
	QuestionID2 string   `json:"question_id"`
	Type        string   `json:"type"`
	Question    string   `json:"question"`
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options"`
	Difficulty  string   `json:"difficulty"`
	MaxMarks    *float64 `json:"maxMarks"`
	MaxMarks2   *float64 `json:"max_marks"`
	Max         *float64 `json:"max"`
}

func (w wireQuestion) canonical() QuizQuestion {
	q := QuizQuestion{
		ID:         first(w.QuestionID, w.QuestionID2),
		Type:       normalizeType(w.Type),
		Prompt:     first(w.Question, w.Prompt),
		Difficulty: w.Difficulty,
		MaxMarks:   firstNum(w.MaxMarks, w.MaxMarks2, w.Max),
	}
	if q.Type == MultipleChoice {
		q.Options = w.Options
	}
	return q
}

func normalizeType(t string) QuestionType {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(t), "-", "_")) {
	case "multiple_choice", "mcq":
		return MultipleChoice
	case "long_answer":
		return LongAnswer
	default:
		return ShortAnswer
	}
}

type wireQuiz struct {
	QuizID    string         `json:"quiz_id"`
	QuizID2   string         `json:"quizId"`
	ID        string         `json:"id"`
	Questions []wireQuestion `json:"questions"`
}

func (w wireQuiz) canonical() Quiz {
	q := Quiz{ID: first(w.QuizID, w.QuizID2, w.ID)}
	for _, wq := range w.Questions {
		q.Questions = append(q.Questions, wq.canonical())
	}
	return q
}

type wireScore struct {
	Percentage    *float64 `json:"percentage"`
	MarksAwarded  *float64 `json:"marksAwarded"`
	MarksAwarded2 *float64 `json:"marks_awarded"`
	MaxMarks      *float64 `json:"maxMarks"`
	MaxMarks2     *float64 `json:"max_marks"`
	TriggerTutor  *bool    `json:"triggerTutor"`
	WeakConcepts  []string `json:"weakConcepts"`
}

type wireResponse struct {
	QuestionID    string          `json:"questionId"`
	QuestionID2   string          `json:"question_id"`
	Question      string          `json:"question"`
	QuestionText  string          `json:"questionText"`
	Original      string          `json:"originalQuestion"`
	UserAnswer    json.RawMessage `json:"userAnswer"`
	UserAnswer2   json.RawMessage `json:"user_answer"`
	IsCorrect     *bool           `json:"isCorrect"`
	IsCorrect2    *bool           `json:"is_correct"`
	MarksAwarded  *float64        `json:"marksAwarded"`
	MarksAwarded2 *float64        `json:"marks_awarded"`
	MaxMarks      *float64        `json:"maxMarks"`
	MaxMarks2     *float64        `json:"max_marks"`
	Feedback      string          `json:"feedback"`
	ModelAnswer   string          `json:"aiGeneratedAnswer"`
	ModelAnswer2  string          `json:"ai_generated_answer"`
}

func (w wireResponse) canonical() MarkedResponse {
	r := MarkedResponse{
		QuestionID:   first(w.QuestionID, w.QuestionID2),
		QuestionText: first(w.Original, w.QuestionText, w.Question),
		UserAnswer:   rawText(w.UserAnswer),
		Correct:      w.IsCorrect,
		MarksAwarded: firstNum(w.MarksAwarded, w.MarksAwarded2),
		MaxMarks:     firstNum(w.MaxMarks, w.MaxMarks2),
		Feedback:     w.Feedback,
		ModelAnswer:  first(w.ModelAnswer, w.ModelAnswer2),
	}
	if r.UserAnswer == "" {
		r.UserAnswer = rawText(w.UserAnswer2)
	}
	if r.Correct == nil {
		r.Correct = w.IsCorrect2
	}
	return r
}

type wireResult struct {
	AttemptID     string         `json:"attempt_id"`
	ID            string         `json:"id"`
	Score         wireScore      `json:"score"`
	TriggerTutor  *bool          `json:"trigger_tutor"`
	TriggerTutor2 *bool          `json:"triggerTutor"`
	NextAction    string         `json:"next_action"`
	WeakConcepts  []string       `json:"weak_concepts"`
	WeakConcepts2 []string       `json:"weakConcepts"`
	MasteryLevel  string         `json:"mastery_level"`
	MasteryLevel2 string         `json:"masteryLevel"`
	Feedback      string         `json:"feedback"`
	Responses     []wireResponse `json:"responses"`
}

func (w wireResult) canonical() QuizResult {
	r := QuizResult{
		AttemptID:  first(w.AttemptID, w.ID),
		NextAction: w.NextAction,
		Score: Score{
			Percentage:   firstNum(w.Score.Percentage),
			MarksAwarded: firstNum(w.Score.MarksAwarded, w.Score.MarksAwarded2),
			MaxMarks:     firstNum(w.Score.MaxMarks, w.Score.MaxMarks2),
		},
		MasteryLevel: first(w.MasteryLevel, w.MasteryLevel2),
		Feedback:     w.Feedback,
	}
	for _, b := range []*bool{w.TriggerTutor, w.TriggerTutor2, w.Score.TriggerTutor} {
		if b != nil {
			r.TriggerTutor = *b
			break
		}
	}
	switch {
	case len(w.WeakConcepts) > 0:
		r.WeakConcepts = w.WeakConcepts
	case len(w.WeakConcepts2) > 0:
		r.WeakConcepts = w.WeakConcepts2
	default:
		r.WeakConcepts = w.Score.WeakConcepts
	}
	for _, wr := range w.Responses {
		r.Responses = append(r.Responses, wr.canonical())
	}
	return r
}

type wireTutorStart struct {
	SessionID  string `json:"session_id"`
	SessionID2 string `json:"sessionId"`
	Message    string `json:"message"`
	Response   string `json:"response"`
}

type wireTutorReply struct {
	Message  string `json:"message"`
	Response string `json:"response"`
}

func first(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNum(vals ...*float64) float64 {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}

// rawText renders an answer of any JSON type as text.
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
