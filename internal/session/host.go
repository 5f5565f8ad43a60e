package session

import "github.com/speedrunhq/quiz-client/pkg/protocol"

// Host holds the host-only view of the session: the configuration echo,
// the uploaded question set, and the end-of-session summary.
type Host struct {
	QuizName                string
	SelectedCategories      []string
	QuestionDuration        int // seconds
	SelectedQuestionIndexes []int

	RequestingQuestions bool
	Questions           []protocol.HostQuestion

	Summary          []protocol.HostQuestionSummary
	TotalTimeElapsed int // milliseconds, monotonic
}

// NewHost returns the declared initial value of the partition.
func NewHost() Host {
	return Host{}
}

// WithConfig echoes the submitted configuration. Non-positive durations
// are ignored rather than stored.
func (h Host) WithConfig(quizName string, categories []string, durationSeconds int, selectedQuestionIndexes []int) Host {
	if durationSeconds <= 0 {
		return h
	}
	h.QuizName = quizName
	h.SelectedCategories = categories
	h.QuestionDuration = durationSeconds
	h.SelectedQuestionIndexes = selectedQuestionIndexes
	return h
}

// WithRequestingQuestions tracks the question-set request intent flag.
func (h Host) WithRequestingQuestions(requesting bool) Host {
	h.RequestingQuestions = requesting
	return h
}

// WithQuestions replaces the uploaded question set wholesale.
func (h Host) WithQuestions(questions []protocol.HostQuestion) Host {
	h.Questions = questions
	return h
}

// WithSummary stores the per-question summaries, ordered by question index.
func (h Host) WithSummary(questions []protocol.HostQuestionSummary) Host {
	h.Summary = questions
	return h
}

// WithTotalTimeElapsed applies a server-reported elapsed correction. The
// counter is monotonic: values not strictly greater than the last applied
// one are ignored.
func (h Host) WithTotalTimeElapsed(millis int) Host {
	if millis <= h.TotalTimeElapsed {
		return h
	}
	h.TotalTimeElapsed = millis
	return h
}

// Reset restores the initial value. Idempotent.
func (h Host) Reset() Host {
	return NewHost()
}
