package platform

// State is the view the flow is in. Exactly one is active.
type State int

const (
	Dashboard State = iota
	CreateCourse
	PlanDetails
	Lesson
	Quiz
	Result
	Tutor
)

var stateNames = [...]string{
	Dashboard:    "DASHBOARD",
	CreateCourse: "CREATE_COURSE",
	PlanDetails:  "PLAN_DETAILS",
	Lesson:       "LESSON",
	Quiz:         "QUIZ",
	Result:       "RESULT",
	Tutor:        "TUTOR",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}
