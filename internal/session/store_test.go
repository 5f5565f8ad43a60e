package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/speedrunhq/quiz-client/internal/transport"
	"github.com/speedrunhq/quiz-client/pkg/protocol"
)

func TestCommonRoleSetsOnce(t *testing.T) {
	c := NewCommon()

	c = c.WithRole(RoleParticipant)
	assert.Equal(t, RoleParticipant, c.Role)

	// A second assignment is ignored; only reset reverts the role.
	c = c.WithRole(RoleHost)
	assert.Equal(t, RoleParticipant, c.Role)

	c = c.Reset()
	assert.Equal(t, RoleUnknown, c.Role)
}

func TestCommonRejectsInvalidRole(t *testing.T) {
	c := NewCommon().WithRole(Role("superuser"))
	assert.Equal(t, RoleUnknown, c.Role)
}

func TestCommonLeaderboardReplacedWholesale(t *testing.T) {
	c := NewCommon().WithLeaderboard([]protocol.LeaderboardItem{
		{UserID: "a", Score: 10},
		{UserID: "b", Score: 20, Finished: true},
	})
	assert.Len(t, c.Leaderboard, 2)
	assert.Equal(t, 1, c.TotalFinished)

	c = c.WithLeaderboard([]protocol.LeaderboardItem{
		{UserID: "c", Score: 5, Finished: true},
		{UserID: "d", Score: 1, Finished: true},
	})
	assert.Len(t, c.Leaderboard, 2)
	assert.Equal(t, "c", c.Leaderboard[0].UserID)
	assert.Equal(t, 2, c.TotalFinished)
}

func TestCommonAnnouncedParticipant(t *testing.T) {
	c := NewCommon().WithLeaderboard([]protocol.LeaderboardItem{
		{UserID: "a", Name: "old", Score: 10},
	})

	c = c.WithAnnouncedParticipant("a", "new")
	assert.Equal(t, "new", c.Leaderboard[0].Name)
	assert.Equal(t, 10, c.Leaderboard[0].Score)

	c = c.WithAnnouncedParticipant("b", "joiner")
	assert.Len(t, c.Leaderboard, 2)
	assert.Equal(t, 0, c.Leaderboard[1].Score)

	// Empty ids are ignored, not fatal.
	c = c.WithAnnouncedParticipant("", "ghost")
	assert.Len(t, c.Leaderboard, 2)
}

func TestCommonStartedAtSetsOnce(t *testing.T) {
	first := time.Date(2023, 4, 1, 10, 0, 0, 0, time.UTC)
	c := NewCommon().WithStartedAt(first)
	c = c.WithStartedAt(first.Add(time.Hour))
	assert.Equal(t, first, c.StartedAt)
}

func TestHostConfigClampsDuration(t *testing.T) {
	h := NewHost().WithConfig("pub quiz", []string{"tech"}, 0, []int{0, 1})
	assert.Empty(t, h.QuizName)

	h = h.WithConfig("pub quiz", []string{"tech"}, 30, []int{0, 1})
	assert.Equal(t, "pub quiz", h.QuizName)
	assert.Equal(t, 30, h.QuestionDuration)
}

func TestHostTotalTimeElapsedMonotonic(t *testing.T) {
	h := NewHost().WithTotalTimeElapsed(5000)
	h = h.WithTotalTimeElapsed(3000)
	assert.Equal(t, 5000, h.TotalTimeElapsed)
	h = h.WithTotalTimeElapsed(5000)
	assert.Equal(t, 5000, h.TotalTimeElapsed)
	h = h.WithTotalTimeElapsed(8000)
	assert.Equal(t, 8000, h.TotalTimeElapsed)
}

func TestParticipantQuizParametersClamped(t *testing.T) {
	p := NewParticipant().WithQuizParameters(-1, 0)
	assert.Zero(t, p.QuestionDuration)
	assert.Zero(t, p.NumberOfQuestions)

	p = p.WithQuizParameters(20, 10)
	assert.Equal(t, 20, p.QuestionDuration)
	assert.Equal(t, 10, p.NumberOfQuestions)
}

func TestParticipantQuestionReplacedWholesale(t *testing.T) {
	p := NewParticipant().WithAwaitingQuestion(true)

	p = p.WithCurrentQuestion(protocol.ResponseParticipantQuestionMsg{QuestionIndex: 0, Question: "first"})
	assert.False(t, p.AwaitingQuestion)
	assert.Equal(t, "first", p.CurrentQuestion.Question)

	p = p.WithCurrentQuestion(protocol.ResponseParticipantQuestionMsg{QuestionIndex: 1, Question: "second"})
	assert.Equal(t, 1, p.CurrentQuestion.QuestionIndex)
	assert.Equal(t, "second", p.CurrentQuestion.Question)
}

func TestParticipantElapsedMonotonicUnderRepeatedCorrections(t *testing.T) {
	p := NewParticipant()
	corrections := []int{1000, 500, 1500, 1500, 1200, 4000}
	for _, c := range corrections {
		p = p.WithTotalTimeElapsed(c)
	}
	assert.Equal(t, 4000, p.TotalTimeElapsed)
}

func TestStoreResetIdempotent(t *testing.T) {
	s := NewStore()
	s.Common = s.Common.
		WithRole(RoleParticipant).
		WithRoom("room-1", "tok").
		WithConnectionState(transport.StateConnected).
		WithLeaderboard([]protocol.LeaderboardItem{{UserID: "a", Score: 1}})
	s.Host = s.Host.WithConfig("q", nil, 30, nil)
	s.Participant = s.Participant.WithUserID("u1").WithName("ryan")

	s.Reset()
	once := *s
	s.Reset()
	twice := *s

	assert.Equal(t, once, twice)
	assert.Equal(t, *NewStore(), once)
}
