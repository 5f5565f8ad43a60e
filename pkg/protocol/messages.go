package protocol

// Wire type literals for the speed-run session protocol. The set is closed:
// a conforming server implements exactly these plus whatever it adds later,
// and clients ignore types they do not recognize.
const (
	// Client -> Server
	TypeParticipantConfig          = "PARTICIPANT-CONFIG"
	TypeParticipantAnswer          = "PARTICIPANT-ANSWER"
	TypeParticipantAnswerTimeout   = "PARTICIPANT-ANSWER-TIMEOUT"
	TypeRequestParticipantQuestion = "REQUEST-PARTICIPANT-QUESTION"
	TypeRequestParticipantResults  = "REQUEST-PARTICIPANT-RESULTS"
	TypeHostConfig                 = "HOST-CONFIG"
	TypeHostStart                  = "HOST-START"
	TypeRequestHostQuestions       = "REQUEST-HOST-QUESTIONS"
	TypeRequestHostQuizSummary     = "REQUEST-HOST-QUIZ-SUMMARY"

	// Server -> Client
	TypeBroadcastLeaderboard        = "BROADCAST-LEADERBOARD"
	TypeBroadcastStart              = "BROADCAST-START"
	TypeBroadcastParticipantConfig  = "BROADCAST-PARTICIPANT-CONFIG"
	TypeResponseHostQuestions       = "RESPONSE-HOST-QUESTIONS"
	TypeResponseParticipantQuestion = "RESPONSE-PARTICIPANT-QUESTION"
	TypeResponseHostQuizSummary     = "RESPONSE-HOST-QUIZ-SUMMARY"
	TypeResponseParticipantResults  = "RESPONSE-PARTICIPANT-RESULTS"
)

// LeaderboardItem is one ranked participant as reported by the server.
type LeaderboardItem struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Finished bool   `json:"finished"`
}

// Answerer identifies a participant in a question summary bucket.
type Answerer struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// HostQuestionSummary is the per-question wrap-up shown to the host.
type HostQuestionSummary struct {
	Question             string     `json:"question"`
	Options              []string   `json:"options"`
	CorrectOptions       []int      `json:"correctOptions"`
	CorrectAnswerers     []Answerer `json:"correctAnswerers"`
	IncorrectAnswerers   []Answerer `json:"incorrectAnswerers"`
	TimeExpiredAnswerers []Answerer `json:"timeExpiredAnswerers"`
}

// ParticipantQuestionSummary adds the participant's own selection to the
// host view of a question.
type ParticipantQuestionSummary struct {
	Question             string     `json:"question"`
	Options              []string   `json:"options"`
	CorrectOptions       []int      `json:"correctOptions"`
	ParticipantOptions   []int      `json:"participantOptions"`
	CorrectAnswerers     []Answerer `json:"correctAnswerers"`
	IncorrectAnswerers   []Answerer `json:"incorrectAnswerers"`
	TimeExpiredAnswerers []Answerer `json:"timeExpiredAnswerers"`
}

// Client -> Server payloads

// ParticipantConfigMsg announces a participant's display name.
type ParticipantConfigMsg struct {
	Name string `json:"name"`
}

// ParticipantAnswerMsg submits the selected options for a question.
type ParticipantAnswerMsg struct {
	QuestionIndex         int   `json:"questionIndex"`
	SelectedOptionIndexes []int `json:"selectedOptionIndexes"`
	AnsweredInDuration    int   `json:"answeredInDuration"` // milliseconds
}

// ParticipantAnswerTimeoutMsg reports that the countdown expired before a
// submission was made.
type ParticipantAnswerTimeoutMsg struct {
	QuestionIndex int `json:"questionIndex"`
}

// RequestParticipantQuestionMsg asks for the question at an index.
type RequestParticipantQuestionMsg struct {
	QuestionIndex int `json:"questionIndex"`
}

// RequestParticipantResultsMsg asks for a participant's end-of-session results.
type RequestParticipantResultsMsg struct {
	UserID string `json:"userId"`
}

// HostConfigMsg carries the host's quiz configuration. Sent once as an
// atomic message; the server holds the durable record.
type HostConfigMsg struct {
	QuizName                string   `json:"quizName"`
	Categories              []string `json:"categories"`
	Duration                int      `json:"duration"` // seconds per question
	SelectedQuestionIndexes []int    `json:"selectedQuestionIndexes"`
}

// HostStartMsg starts the quiz for everyone in the room.
type HostStartMsg struct{}

// RequestHostQuestionsMsg asks for the uploaded question set.
type RequestHostQuestionsMsg struct{}

// RequestHostQuizSummaryMsg asks for the end-of-session summary.
type RequestHostQuizSummaryMsg struct{}

// Server -> Client payloads

// BroadcastLeaderboardMsg replaces the client's leaderboard wholesale.
type BroadcastLeaderboardMsg struct {
	Leaderboard []LeaderboardItem `json:"leaderboard"`
}

// BroadcastStartMsg signals the quiz has started.
type BroadcastStartMsg struct {
	QuestionDuration  int `json:"questionDuration"` // seconds
	NumberOfQuestions int `json:"numberOfQuestions"`
}

// BroadcastParticipantConfigMsg relays another participant's announced name.
type BroadcastParticipantConfigMsg struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// HostQuestion is one question in the host's full question-set view.
type HostQuestion struct {
	Question string   `json:"question"`
	Category string   `json:"category"`
	Options  []string `json:"options"`
	Answers  []int    `json:"answers"`
}

// ResponseHostQuestionsMsg carries the full uploaded question set.
type ResponseHostQuestionsMsg struct {
	Questions []HostQuestion `json:"questions"`
}

// ResponseParticipantQuestionMsg carries the active question for a
// participant. Replaced wholesale when the next question arrives.
type ResponseParticipantQuestionMsg struct {
	QuestionIndex           int      `json:"questionIndex"`
	Question                string   `json:"question"`
	Options                 []string `json:"options"`
	NumberOfOptionsToSelect int      `json:"numberOfOptionsToSelect"`
}

// ResponseHostQuizSummaryMsg is the host's end-of-session summary.
type ResponseHostQuizSummaryMsg struct {
	TotalTimeElapsed int                   `json:"totalTimeElapsed"` // milliseconds
	Questions        []HostQuestionSummary `json:"questions"`
}

// ResponseParticipantResultsMsg is a participant's end-of-session results.
type ResponseParticipantResultsMsg struct {
	UserID           string                       `json:"userId"`
	TotalTimeElapsed int                          `json:"totalTimeElapsed"` // milliseconds
	AvgAnswerTime    int                          `json:"avgAnswerTime"`    // milliseconds
	Questions        []ParticipantQuestionSummary `json:"questions"`
}
