package platform

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/learnhub/internal/screen"
	"github.com/abhisek/learnhub/internal/screens/createcourse"
	"github.com/abhisek/learnhub/internal/screens/dashboard"
	"github.com/abhisek/learnhub/internal/screens/lesson"
	"github.com/abhisek/learnhub/internal/screens/plandetails"
	"github.com/abhisek/learnhub/internal/screens/quiz"
	"github.com/abhisek/learnhub/internal/screens/result"
	"github.com/abhisek/learnhub/internal/screens/tutor"
)

// show puts a fresh view for the current state in the router.
func (c *Controller) show() {
	var s screen.Screen
	switch c.state {
	case Dashboard:
		s = dashboard.New(c.dashboardProps())
	case CreateCourse:
		s = createcourse.New(c.createCourseProps())
	case PlanDetails:
		s = plandetails.New(c.planDetailsProps())
	case Lesson:
		s = lesson.New(c.lessonProps())
	case Quiz:
		s = quiz.New(c.quizProps())
	case Result:
		s = result.New(c.resultProps())
	case Tutor:
		s = tutor.New(c.tutorProps())
	}
	c.initCmd = c.router.Show(s)
}

// sync pushes the current props into the active view and hands back the
// Init command of a view shown since the last call.
func (c *Controller) sync() tea.Cmd {
	switch s := c.router.Active().(type) {
	case *dashboard.Screen:
		s.SetProps(c.dashboardProps())
	case *createcourse.Screen:
		s.SetProps(c.createCourseProps())
	case *plandetails.Screen:
		s.SetProps(c.planDetailsProps())
	case *lesson.Screen:
		s.SetProps(c.lessonProps())
	case *quiz.Screen:
		s.SetProps(c.quizProps())
	case *result.Screen:
		s.SetProps(c.resultProps())
	case *tutor.Screen:
		s.SetProps(c.tutorProps())
	}
	cmd := c.initCmd
	c.initCmd = nil
	return cmd
}

func (c *Controller) dashboardProps() dashboard.Props {
	var opening string
	for id := range c.loading.openingPlan {
		opening = id
	}
	return dashboard.Props{
		Plans:     c.plans,
		Loaded:    c.loaded,
		Loading:   c.loading.dashboard != 0,
		Opening:   opening,
		OnOpen:    c.OpenPlan,
		OnNew:     c.NewCourse,
		OnRefresh: c.BackToDashboard,
	}
}

func (c *Controller) createCourseProps() createcourse.Props {
	return createcourse.Props{
		Creating: c.loading.creating,
		OnSubmit: c.CreateCourse,
		OnCancel: c.BackToDashboard,
	}
}

func (c *Controller) planDetailsProps() plandetails.Props {
	p := plandetails.Props{
		Generated:  c.generated,
		Generating: c.loading.generating,
		OnStart:    c.StartSubtopic,
		OnBack:     c.BackToDashboard,
	}
	if c.activePlan != nil {
		p.Plan = *c.activePlan
	}
	return p
}

func (c *Controller) lessonProps() lesson.Props {
	return lesson.Props{
		Lesson:     c.lesson,
		Expanding:  c.loading.expanding,
		Completing: c.loading.completing,
		OnExpand:   c.ExpandSection,
		OnComplete: c.CompleteLesson,
		OnBack:     c.BackToDashboard,
	}
}

func (c *Controller) quizProps() quiz.Props {
	return quiz.Props{
		Quiz:       c.quiz,
		Submitting: c.loading.submitting,
		OnSubmit:   c.SubmitQuiz,
		OnBack:     c.BackToDashboard,
	}
}

func (c *Controller) resultProps() result.Props {
	return result.Props{
		Result:        c.result,
		StartingTutor: c.loading.tutorStarting,
		OnTutor:       c.StartTutor,
		OnDashboard:   c.BackToDashboard,
	}
}

func (c *Controller) tutorProps() tutor.Props {
	return tutor.Props{
		Concept:    c.tutor.Concept,
		Transcript: c.tutor.Transcript,
		Sending:    c.loading.tutorSending,
		Ending:     c.loading.tutorEnding,
		OnSend:     c.SendTutorMessage,
		OnEnd:      c.EndTutor,
		OnBack:     c.BackToDashboard,
	}
}
