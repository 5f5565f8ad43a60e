package session

// Intent is a local UI request handled by the dispatcher. Intents that
// fail validation are dropped at the boundary; a malformed outbound
// message is never sent.
type Intent interface {
	isIntent()
}

// SetDisplayName announces the participant's chosen name to the room.
type SetDisplayName struct {
	Name string
}

// RequestQuestionSet asks for the host's uploaded question set. The send
// happens only on a rising edge of Requesting; repeated true values do
// not re-send.
type RequestQuestionSet struct {
	Requesting bool
}

// SubmitHostConfig submits the quiz configuration. Sent exactly once per
// session; the server holds the durable record.
type SubmitHostConfig struct {
	QuizName                string
	Categories              []string
	DurationSeconds         int
	SelectedQuestionIndexes []int
}

// StartQuiz kicks off the quiz for every participant in the room.
type StartQuiz struct{}

// RequestQuestion asks for the question at an index. Guarded against
// redundant requests for the same index.
type RequestQuestion struct {
	IsRequesting  bool
	QuestionIndex int
}

// SubmitAnswer submits the participant's selection for the current
// question.
type SubmitAnswer struct {
	QuestionIndex            int
	SelectedOptionIndexes    []int
	AnsweredInDurationMillis int
}

// ReturnToHome ends the session: disconnect, full state reset, navigate
// home.
type ReturnToHome struct{}

func (SetDisplayName) isIntent()     {}
func (RequestQuestionSet) isIntent() {}
func (SubmitHostConfig) isIntent()   {}
func (StartQuiz) isIntent()          {}
func (RequestQuestion) isIntent()    {}
func (SubmitAnswer) isIntent()       {}
func (ReturnToHome) isIntent()       {}
