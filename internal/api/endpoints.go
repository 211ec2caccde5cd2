package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

func (c *Client) ListPlans(ctx context.Context, userID string) ([]LessonPlan, error) {
	var wire []wirePlan
	if err := c.call(ctx, http.MethodGet, "/api/lesson-plans/"+url.PathEscape(userID), nil, "plans", &wire); err != nil {
		return nil, err
	}
	plans := make([]LessonPlan, 0, len(wire))
	for _, w := range wire {
		plans = append(plans, w.canonical())
	}
	return plans, nil
}

// CreatePlan asks the server to generate and approve a new plan.
func (c *Client) CreatePlan(ctx context.Context, userID string, req CreatePlanRequest) (LessonPlan, error) {
	if strings.TrimSpace(req.Subject) == "" {
		return LessonPlan{}, &ValidationError{Field: "subject", Reason: "must not be empty"}
	}
	if strings.TrimSpace(req.Topic) == "" {
		return LessonPlan{}, &ValidationError{Field: "topic", Reason: "must not be empty"}
	}
	body := map[string]any{
		"user_id":      userID,
		"subject":      req.Subject,
		"topic":        req.Topic,
		"level":        req.Level,
		"auto_approve": true,
	}
	var wire wirePlan
	if err := c.call(ctx, http.MethodPost, "/api/lesson-plans", body, "plan", &wire); err != nil {
		return LessonPlan{}, err
	}
	return wire.canonical(), nil
}

func (c *Client) GetPlan(ctx context.Context, userID, planID string) (LessonPlan, error) {
	path := "/api/lesson-plans/details/" + url.PathEscape(planID) + "?" + url.Values{"user_id": {userID}}.Encode()
	var wire wirePlan
	if err := c.call(ctx, http.MethodGet, path, nil, "plan", &wire); err != nil {
		return LessonPlan{}, err
	}
	return wire.canonical(), nil
}

// MarkGenerated records that the subtopic now has a lesson.
func (c *Client) MarkGenerated(ctx context.Context, userID, planID, subtopicID, lessonID string) error {
	path := "/api/lesson-plans/" + url.PathEscape(planID) + "/subtopics/" + url.PathEscape(subtopicID) + "/mark-generated"
	return c.Do(ctx, http.MethodPost, path, map[string]any{
		"user_id":  userID,
		"lessonId": lessonID,
	}, nil)
}

// StartLesson returns the subtopic's lesson, generating it on first use.
func (c *Client) StartLesson(ctx context.Context, userID, planID, subtopicID string) (ActiveLesson, error) {
	var wire wireLesson
	err := c.call(ctx, http.MethodPost, "/api/lessons/start", map[string]any{
		"user_id":        userID,
		"lesson_plan_id": planID,
		"subtopic_id":    subtopicID,
	}, "lesson", &wire)
	if err != nil {
		return ActiveLesson{}, err
	}
	return wire.canonical(), nil
}

// ExpandSection returns the deep dive for one section.
func (c *Client) ExpandSection(ctx context.Context, userID, lessonID, sectionID string) (string, error) {
	var wire struct {
		ExpandedContent string `json:"expanded_content"`
	}
	err := c.call(ctx, http.MethodPost, "/api/lessons/expand-section", map[string]any{
		"user_id":    userID,
		"lesson_id":  lessonID,
		"section_id": sectionID,
	}, "expand", &wire)
	return wire.ExpandedContent, err
}

// CompleteLesson reports the lesson done. studyMinutes is whole minutes.
func (c *Client) CompleteLesson(ctx context.Context, userID, lessonID string, studyMinutes int) (CompleteResult, error) {
	var wire struct {
		NextAction string `json:"next_action"`
	}
	err := c.call(ctx, http.MethodPost, "/api/lessons/complete", map[string]any{
		"user_id":    userID,
		"lesson_id":  lessonID,
		"study_time": studyMinutes,
	}, "complete", &wire)
	if err != nil {
		return CompleteResult{}, err
	}
	return CompleteResult{NextAction: wire.NextAction}, nil
}

func (c *Client) StartQuiz(ctx context.Context, userID string, req StartQuizRequest) (Quiz, error) {
	var wire wireQuiz
	err := c.call(ctx, http.MethodPost, "/api/quizzes/start", map[string]any{
		"user_id":        userID,
		"lesson_id":      req.LessonID,
		"subtopic_id":    req.SubtopicID,
		"difficulty":     req.Difficulty,
		"question_count": req.QuestionCount,
	}, "quiz", &wire)
	if err != nil {
		return Quiz{}, err
	}
	return wire.canonical(), nil
}

func (c *Client) SubmitQuiz(ctx context.Context, userID, quizID string, answers []QuizAnswer) (QuizResult, error) {
	if answers == nil {
		answers = []QuizAnswer{}
	}
	var wire wireResult
	err := c.call(ctx, http.MethodPost, "/api/quizzes/submit", map[string]any{
		"user_id":   userID,
		"quiz_id":   quizID,
		"responses": answers,
	}, "result", &wire)
	if err != nil {
		return QuizResult{}, err
	}
	return wire.canonical(), nil
}

func (c *Client) StartTutor(ctx context.Context, userID string, req StartTutorRequest) (TutorSession, error) {
	var wire wireTutorStart
	err := c.call(ctx, http.MethodPost, "/api/tutor/start", map[string]any{
		"user_id":         userID,
		"trigger":         req.Trigger,
		"lesson_id":       req.LessonID,
		"concept":         req.Concept,
		"initial_message": req.InitialMessage,
	}, "tutor_start", &wire)
	if err != nil {
		return TutorSession{}, err
	}
	return TutorSession{
		SessionID: first(wire.SessionID, wire.SessionID2),
		Message:   first(wire.Message, wire.Response),
	}, nil
}

// TutorMessage sends one learner message and returns the tutor's reply,
// which is empty when the server sent none.
func (c *Client) TutorMessage(ctx context.Context, userID, sessionID, message string) (string, error) {
	var wire wireTutorReply
	err := c.call(ctx, http.MethodPost, "/api/tutor/message", map[string]any{
		"user_id":    userID,
		"session_id": sessionID,
		"message":    message,
	}, "tutor_reply", &wire)
	if err != nil {
		return "", err
	}
	return first(wire.Message, wire.Response), nil
}

func (c *Client) EndTutor(ctx context.Context, userID, sessionID string) error {
	path := "/api/tutor/end/" + url.PathEscape(userID) + "/" + url.PathEscape(sessionID)
	return c.Do(ctx, http.MethodPost, path, nil, nil)
}
