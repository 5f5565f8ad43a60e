package session

import "github.com/speedrunhq/quiz-client/pkg/protocol"

// Participant holds the participant-only view of the session.
type Participant struct {
	UserID string
	// Name is what this participant asked to be called, recorded before
	// the server echoes it back through the leaderboard.
	Name string

	QuestionDuration  int // seconds, set by the host, delivered in the start broadcast
	NumberOfQuestions int

	// AwaitingQuestion is true from the moment a question is requested
	// until the response replaces the current question.
	AwaitingQuestion bool
	CurrentQuestion  *protocol.ResponseParticipantQuestionMsg

	Summary          []protocol.ParticipantQuestionSummary
	TotalTimeElapsed int // milliseconds, monotonic
	AvgAnswerTime    int // milliseconds
}

// NewParticipant returns the declared initial value of the partition.
func NewParticipant() Participant {
	return Participant{}
}

// WithUserID records the identity decoded from the credential.
func (p Participant) WithUserID(userID string) Participant {
	p.UserID = userID
	return p
}

// WithName records the chosen display name.
func (p Participant) WithName(name string) Participant {
	p.Name = name
	return p
}

// WithQuizParameters stores the duration and question count from the start
// broadcast. Non-positive values are ignored.
func (p Participant) WithQuizParameters(durationSeconds, numberOfQuestions int) Participant {
	if durationSeconds > 0 {
		p.QuestionDuration = durationSeconds
	}
	if numberOfQuestions > 0 {
		p.NumberOfQuestions = numberOfQuestions
	}
	return p
}

// WithAwaitingQuestion tracks the in-flight question request flag.
func (p Participant) WithAwaitingQuestion(awaiting bool) Participant {
	p.AwaitingQuestion = awaiting
	return p
}

// WithCurrentQuestion replaces the active question wholesale and clears
// the awaiting flag.
func (p Participant) WithCurrentQuestion(q protocol.ResponseParticipantQuestionMsg) Participant {
	p.CurrentQuestion = &q
	p.AwaitingQuestion = false
	return p
}

// WithSummary stores the per-question summaries, ordered by question index.
func (p Participant) WithSummary(questions []protocol.ParticipantQuestionSummary) Participant {
	p.Summary = questions
	return p
}

// WithTotalTimeElapsed applies a server-reported elapsed correction,
// monotonically.
func (p Participant) WithTotalTimeElapsed(millis int) Participant {
	if millis <= p.TotalTimeElapsed {
		return p
	}
	p.TotalTimeElapsed = millis
	return p
}

// WithAvgAnswerTime records the aggregate answer-time statistic. Negative
// values are ignored.
func (p Participant) WithAvgAnswerTime(millis int) Participant {
	if millis < 0 {
		return p
	}
	p.AvgAnswerTime = millis
	return p
}

// Reset restores the initial value. Idempotent.
func (p Participant) Reset() Participant {
	return NewParticipant()
}
