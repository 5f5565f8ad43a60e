package session

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/speedrunhq/quiz-client/internal/metrics"
	"github.com/speedrunhq/quiz-client/internal/transport"
	"github.com/speedrunhq/quiz-client/pkg/protocol"
)

// Channel is the transport surface the dispatcher drives. Satisfied by
// *transport.Socket.
type Channel interface {
	Connect(roomID, credential string)
	Disconnect()
	Send(p protocol.Packet)
}

// View identifies a screen the UI should show. Navigation is a side
// effect of dispatch, always applied after the store mutations from the
// same event.
type View string

const (
	ViewHome    View = "home"
	ViewLobby   View = "lobby"
	ViewConfig  View = "config"
	ViewQuiz    View = "quiz"
	ViewSummary View = "summary"
)

// Navigator receives navigation side effects. A no-op implementation is
// fine for headless use.
type Navigator interface {
	Navigate(view View)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(view View)

func (f NavigatorFunc) Navigate(view View) { f(view) }

// Options tune dispatcher timing. Zero values select defaults.
type Options struct {
	// TickInterval is the countdown granularity. One second outside tests.
	TickInterval time.Duration
	// ReconnectInitialInterval seeds the exponential reconnect backoff.
	ReconnectInitialInterval time.Duration
	// ReconnectMaxElapsed caps total time spent retrying before the
	// session settles into disconnected.
	ReconnectMaxElapsed time.Duration
}

// Client is the protocol state machine. It owns the session store and is
// its only writer: channel events, countdown ticks and UI intents all
// serialize onto one event queue consumed by Run.
type Client struct {
	ch      Channel
	nav     Navigator
	logger  zerolog.Logger
	metrics *metrics.Metrics

	// mu guards store and phase for Snapshot readers. All writes happen
	// on the Run goroutine.
	mu    sync.RWMutex
	store *Store
	phase Phase

	events chan event
	opts   Options

	countdown    *countdown
	answered     map[int]bool
	requested    map[int]bool
	awaitedIndex int

	configSubmitted bool
	startSubmitted  bool

	roomID     string
	credential string

	reconnecting   bool
	reconnectOff   *backoff.ExponentialBackOff
	reconnectTimer *time.Timer
}

// NewClient builds a dispatcher over the given channel. nav may be nil.
func NewClient(ch Channel, nav Navigator, logger zerolog.Logger, m *metrics.Metrics, opts Options) *Client {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.ReconnectInitialInterval <= 0 {
		opts.ReconnectInitialInterval = 500 * time.Millisecond
	}
	if opts.ReconnectMaxElapsed <= 0 {
		opts.ReconnectMaxElapsed = 2 * time.Minute
	}

	off := backoff.NewExponentialBackOff()
	off.InitialInterval = opts.ReconnectInitialInterval
	off.MaxElapsedTime = opts.ReconnectMaxElapsed

	if nav == nil {
		nav = NavigatorFunc(func(View) {})
	}

	return &Client{
		ch:           ch,
		nav:          nav,
		logger:       logger,
		metrics:      m,
		store:        NewStore(),
		phase:        PhaseHome,
		events:       make(chan event, 64),
		opts:         opts,
		answered:     make(map[int]bool),
		requested:    make(map[int]bool),
		awaitedIndex: -1,
		reconnectOff: off,
	}
}

// BindSocket wires the socket's callback slots onto the event queue.
func (c *Client) BindSocket(s *transport.Socket) {
	s.OnOpen = func() { c.post(openEvent{}) }
	s.OnMessage = func(frame []byte) { c.post(frameEvent{data: frame}) }
	s.OnClose = func(err error) { c.post(closeEvent{err: err}) }
}

// Dispatch submits a UI intent. Safe from any goroutine.
func (c *Client) Dispatch(intent Intent) {
	c.post(intentEvent{intent: intent})
}

// StartHost begins a host session for the given room.
func (c *Client) StartHost(roomID, credential string) {
	c.post(startEvent{role: RoleHost, roomID: roomID, credential: credential})
}

// StartParticipant begins a participant session for the given room.
func (c *Client) StartParticipant(roomID, credential, userID string) {
	c.post(startEvent{role: RoleParticipant, roomID: roomID, credential: credential, userID: userID})
}

// Snapshot returns a copy of the current store and phase for rendering.
func (c *Client) Snapshot() (Store, Phase) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return *c.store, c.phase
}

// Run consumes the event queue until ctx is cancelled. All store
// mutations happen here.
func (c *Client) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.stopCountdown()
			c.cancelReconnect()
			c.ch.Disconnect()
			return
		case ev := <-c.events:
			c.handle(ev)
		}
	}
}

func (c *Client) post(ev event) {
	c.events <- ev
}

type startEvent struct {
	role       Role
	roomID     string
	credential string
	userID     string
}

func (startEvent) isEvent() {}

func (c *Client) handle(ev event) {
	switch ev := ev.(type) {
	case startEvent:
		c.handleStart(ev)
	case openEvent:
		c.handleOpen()
	case closeEvent:
		c.handleClose(ev)
	case frameEvent:
		c.handleFrame(ev.data)
	case tickEvent:
		c.handleTick(ev)
	case intentEvent:
		c.handleIntent(ev.intent)
	}
}

func (c *Client) handleStart(ev startEvent) {
	c.roomID = ev.roomID
	c.credential = ev.credential
	c.reconnectOff.Reset()

	var view View
	c.mutate(func(s *Store) {
		s.Common = s.Common.
			WithRole(ev.role).
			WithRoom(ev.roomID, ev.credential).
			WithStartedAt(time.Now()).
			WithConnectionState(transport.StateConnecting)
		if ev.role == RoleParticipant {
			s.Participant = s.Participant.WithUserID(ev.userID)
			c.phase = PhaseJoining
			view = ViewLobby
		} else {
			c.phase = PhaseHosting
			view = ViewConfig
		}
	})

	// Dial off the loop goroutine; the outcome comes back as an open or
	// close event.
	go c.ch.Connect(ev.roomID, ev.credential)

	c.nav.Navigate(view)
}

func (c *Client) handleOpen() {
	resyncing := c.reconnecting
	c.reconnecting = false
	c.reconnectOff.Reset()

	c.mutate(func(s *Store) {
		s.Common = s.Common.WithConnectionState(transport.StateConnected)
	})

	if !resyncing {
		return
	}

	// Resynchronize after the disconnect window: messages lost in the gap
	// are not recovered, so re-announce identity and re-request whatever
	// question the session is waiting on.
	snap, _ := c.Snapshot()
	if snap.Common.Role != RoleParticipant {
		return
	}
	if name := snap.Participant.Name; name != "" {
		c.ch.Send(protocol.ParticipantConfig(name))
	}
	switch {
	case snap.Participant.AwaitingQuestion && c.awaitedIndex >= 0:
		c.ch.Send(protocol.RequestParticipantQuestion(c.awaitedIndex))
	case snap.Participant.CurrentQuestion != nil:
		c.ch.Send(protocol.RequestParticipantQuestion(snap.Participant.CurrentQuestion.QuestionIndex))
	}
}

func (c *Client) handleClose(ev closeEvent) {
	if c.phase == PhaseHome || c.phase == PhaseSummary {
		c.mutate(func(s *Store) {
			s.Common = s.Common.WithConnectionState(transport.StateDisconnected)
		})
		return
	}

	delay := c.reconnectOff.NextBackOff()
	if delay == backoff.Stop {
		c.logger.Warn().Err(ev.err).Msg("reconnect attempts exhausted")
		c.reconnecting = false
		c.mutate(func(s *Store) {
			s.Common = s.Common.WithConnectionState(transport.StateDisconnected)
		})
		return
	}

	c.reconnecting = true
	c.metrics.IncReconnects()
	c.mutate(func(s *Store) {
		s.Common = s.Common.WithConnectionState(transport.StateReconnecting)
	})

	roomID, credential := c.roomID, c.credential
	c.cancelReconnect()
	c.reconnectTimer = time.AfterFunc(delay, func() {
		c.ch.Connect(roomID, credential)
	})
	c.logger.Info().Dur("delay", delay).Msg("scheduling reconnect")
}

func (c *Client) handleFrame(data []byte) {
	pkt, err := protocol.Decode(data)
	if err != nil {
		c.logger.Warn().Err(err).Msg("dropping malformed frame")
		return
	}

	switch pkt.Type {
	case protocol.TypeBroadcastLeaderboard:
		var msg protocol.BroadcastLeaderboardMsg
		if !c.decodePayload(pkt, &msg) {
			return
		}
		c.mutate(func(s *Store) {
			s.Common = s.Common.WithLeaderboard(msg.Leaderboard)
		})

	case protocol.TypeBroadcastParticipantConfig:
		var msg protocol.BroadcastParticipantConfigMsg
		if !c.decodePayload(pkt, &msg) {
			return
		}
		c.mutate(func(s *Store) {
			s.Common = s.Common.WithAnnouncedParticipant(msg.UserID, msg.Name)
		})

	case protocol.TypeBroadcastStart:
		var msg protocol.BroadcastStartMsg
		if !c.decodePayload(pkt, &msg) {
			return
		}
		c.handleQuizStart(msg)

	case protocol.TypeResponseParticipantQuestion:
		var msg protocol.ResponseParticipantQuestionMsg
		if !c.decodePayload(pkt, &msg) {
			return
		}
		c.handleQuestion(msg)

	case protocol.TypeResponseHostQuestions:
		var msg protocol.ResponseHostQuestionsMsg
		if !c.decodePayload(pkt, &msg) {
			return
		}
		if !c.requireRole(RoleHost, pkt.Type) {
			return
		}
		c.mutate(func(s *Store) {
			s.Host = s.Host.WithQuestions(msg.Questions).WithRequestingQuestions(false)
		})

	case protocol.TypeResponseHostQuizSummary:
		var msg protocol.ResponseHostQuizSummaryMsg
		if !c.decodePayload(pkt, &msg) {
			return
		}
		if !c.requireRole(RoleHost, pkt.Type) {
			return
		}
		c.mutate(func(s *Store) {
			s.Host = s.Host.WithSummary(msg.Questions).WithTotalTimeElapsed(msg.TotalTimeElapsed)
			c.phase = PhaseSummary
		})

	case protocol.TypeResponseParticipantResults:
		var msg protocol.ResponseParticipantResultsMsg
		if !c.decodePayload(pkt, &msg) {
			return
		}
		if !c.requireRole(RoleParticipant, pkt.Type) {
			return
		}
		c.mutate(func(s *Store) {
			s.Participant = s.Participant.
				WithSummary(msg.Questions).
				WithTotalTimeElapsed(msg.TotalTimeElapsed).
				WithAvgAnswerTime(msg.AvgAnswerTime)
		})

	default:
		c.metrics.IncUnknownTypes()
		c.logger.Warn().Str("type", pkt.Type).Msg("ignoring unknown message type")
	}
}

func (c *Client) handleQuizStart(msg protocol.BroadcastStartMsg) {
	snap, _ := c.Snapshot()

	if snap.Common.Role == RoleHost {
		// The host does not answer; it watches the live summary.
		c.ch.Send(protocol.RequestHostQuizSummary())
		c.mutate(func(s *Store) {
			c.phase = PhaseRunning
		})
		c.nav.Navigate(ViewSummary)
		return
	}

	c.ch.Send(protocol.RequestParticipantQuestion(0))
	c.requested[0] = true
	c.awaitedIndex = 0
	c.mutate(func(s *Store) {
		s.Participant = s.Participant.
			WithQuizParameters(msg.QuestionDuration, msg.NumberOfQuestions).
			WithAwaitingQuestion(true)
		c.phase = PhaseAwaitingQuestion
	})
	c.nav.Navigate(ViewQuiz)
}

func (c *Client) handleQuestion(msg protocol.ResponseParticipantQuestionMsg) {
	if !c.requireRole(RoleParticipant, protocol.TypeResponseParticipantQuestion) {
		return
	}
	// The channel can redeliver: a resync request and the original request
	// may both produce a response for the same index. A question that was
	// already answered, or that arrives after the results were requested,
	// must not restart the clock or pull the session out of the summary.
	if c.phase == PhaseSummary || c.answered[msg.QuestionIndex] {
		c.logger.Warn().Int("question_index", msg.QuestionIndex).Msg("dropping redelivered question")
		return
	}

	c.stopCountdown()
	var duration int
	c.mutate(func(s *Store) {
		s.Participant = s.Participant.WithCurrentQuestion(msg)
		duration = s.Participant.QuestionDuration
		c.phase = PhaseAnswering
	})
	c.countdown = newCountdown(msg.QuestionIndex, duration, c.opts.TickInterval, func(ev tickEvent) {
		c.post(ev)
	})
}

func (c *Client) handleTick(ev tickEvent) {
	// A stale timer must never fire a transition for a question that is
	// no longer current.
	if c.countdown == nil || c.countdown.questionIndex != ev.questionIndex {
		return
	}
	snap, _ := c.Snapshot()
	current := snap.Participant.CurrentQuestion
	if current == nil || current.QuestionIndex != ev.questionIndex {
		return
	}
	if c.answered[ev.questionIndex] {
		return
	}

	c.countdown.remaining--
	c.mutate(func(s *Store) {
		s.Participant = s.Participant.WithTotalTimeElapsed(s.Participant.TotalTimeElapsed + 1000)
	})

	if c.countdown.remaining > 0 {
		return
	}

	// Countdown expired: same advance path as a manual submission, so
	// exactly one advance happens per question either way.
	c.ch.Send(protocol.ParticipantAnswerTimeout(ev.questionIndex))
	c.answered[ev.questionIndex] = true
	c.stopCountdown()
	c.advance(ev.questionIndex)
}

func (c *Client) handleIntent(intent Intent) {
	switch intent := intent.(type) {
	case SetDisplayName:
		c.handleSetDisplayName(intent)
	case RequestQuestionSet:
		c.handleRequestQuestionSet(intent)
	case SubmitHostConfig:
		c.handleSubmitHostConfig(intent)
	case StartQuiz:
		c.handleStartQuiz()
	case RequestQuestion:
		c.handleRequestQuestion(intent)
	case SubmitAnswer:
		c.handleSubmitAnswer(intent)
	case ReturnToHome:
		c.handleReturnToHome()
	}
}

func (c *Client) handleSetDisplayName(intent SetDisplayName) {
	name := strings.TrimSpace(intent.Name)
	snap, _ := c.Snapshot()
	if snap.Common.Role != RoleParticipant || name == "" {
		return
	}

	// Send-then-apply: the message goes out before the store changes, so
	// a dropped send still leaves the local UI consistent.
	c.ch.Send(protocol.ParticipantConfig(name))
	c.mutate(func(s *Store) {
		s.Participant = s.Participant.WithName(name)
		if c.phase == PhaseJoining {
			c.phase = PhaseLobby
		}
	})
}

func (c *Client) handleRequestQuestionSet(intent RequestQuestionSet) {
	snap, _ := c.Snapshot()
	if snap.Common.Role != RoleHost {
		return
	}

	// Rising edge only: repeated true values never re-send.
	if intent.Requesting && !snap.Host.RequestingQuestions {
		c.ch.Send(protocol.RequestHostQuestions())
	}
	c.mutate(func(s *Store) {
		s.Host = s.Host.WithRequestingQuestions(intent.Requesting)
	})
}

func (c *Client) handleSubmitHostConfig(intent SubmitHostConfig) {
	snap, _ := c.Snapshot()
	if snap.Common.Role != RoleHost || c.configSubmitted {
		return
	}
	if intent.DurationSeconds <= 0 || strings.TrimSpace(intent.QuizName) == "" {
		return
	}

	c.ch.Send(protocol.HostConfig(intent.QuizName, intent.Categories, intent.DurationSeconds, intent.SelectedQuestionIndexes))
	c.configSubmitted = true
	c.mutate(func(s *Store) {
		s.Host = s.Host.WithConfig(intent.QuizName, intent.Categories, intent.DurationSeconds, intent.SelectedQuestionIndexes)
		c.phase = PhaseConfiguring
	})
}

func (c *Client) handleStartQuiz() {
	snap, _ := c.Snapshot()
	if snap.Common.Role != RoleHost || !c.configSubmitted || c.startSubmitted {
		return
	}
	c.ch.Send(protocol.HostStart())
	c.startSubmitted = true
}

func (c *Client) handleRequestQuestion(intent RequestQuestion) {
	snap, _ := c.Snapshot()
	if snap.Common.Role != RoleParticipant || !intent.IsRequesting {
		return
	}
	if intent.QuestionIndex < 0 || c.requested[intent.QuestionIndex] {
		return
	}

	c.ch.Send(protocol.RequestParticipantQuestion(intent.QuestionIndex))
	c.requested[intent.QuestionIndex] = true
	c.awaitedIndex = intent.QuestionIndex
	c.mutate(func(s *Store) {
		s.Participant = s.Participant.WithAwaitingQuestion(true)
		c.phase = PhaseAwaitingQuestion
	})
}

func (c *Client) handleSubmitAnswer(intent SubmitAnswer) {
	snap, _ := c.Snapshot()
	current := snap.Participant.CurrentQuestion
	if snap.Common.Role != RoleParticipant || current == nil {
		return
	}
	if intent.QuestionIndex != current.QuestionIndex || c.answered[intent.QuestionIndex] {
		return
	}
	// Reject at the boundary: a selection count that does not match the
	// question never reaches the wire.
	if len(intent.SelectedOptionIndexes) != current.NumberOfOptionsToSelect {
		return
	}

	answeredIn := intent.AnsweredInDurationMillis
	if answeredIn <= 0 && c.countdown != nil {
		answeredIn = (c.countdown.total - c.countdown.remaining) * 1000
	}

	c.ch.Send(protocol.ParticipantAnswer(intent.QuestionIndex, intent.SelectedOptionIndexes, answeredIn))
	c.answered[intent.QuestionIndex] = true
	c.stopCountdown()
	c.advance(intent.QuestionIndex)
}

// advance moves to the next question, or to the summary when the answered
// question was the last one. Shared by manual submission and timeout.
func (c *Client) advance(questionIndex int) {
	snap, _ := c.Snapshot()
	total := snap.Participant.NumberOfQuestions

	if total > 0 && questionIndex+1 >= total {
		c.ch.Send(protocol.RequestParticipantResults(snap.Participant.UserID))
		c.mutate(func(s *Store) {
			c.phase = PhaseSummary
		})
		c.nav.Navigate(ViewSummary)
		return
	}

	next := questionIndex + 1
	if !c.requested[next] {
		c.ch.Send(protocol.RequestParticipantQuestion(next))
		c.requested[next] = true
	}
	c.awaitedIndex = next
	c.mutate(func(s *Store) {
		s.Participant = s.Participant.WithAwaitingQuestion(true)
		c.phase = PhaseAwaitingQuestion
	})
}

func (c *Client) handleReturnToHome() {
	c.stopCountdown()
	c.cancelReconnect()
	c.reconnecting = false
	c.ch.Disconnect()

	c.mutate(func(s *Store) {
		s.Reset()
		c.phase = PhaseHome
	})
	c.answered = make(map[int]bool)
	c.requested = make(map[int]bool)
	c.awaitedIndex = -1
	c.configSubmitted = false
	c.startSubmitted = false
	c.roomID = ""
	c.credential = ""

	c.nav.Navigate(ViewHome)
}

// mutate applies store changes under the snapshot lock. Only the Run
// goroutine calls it.
func (c *Client) mutate(fn func(s *Store)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.store)
}

func (c *Client) decodePayload(pkt protocol.Packet, v any) bool {
	if err := json.Unmarshal(pkt.Payload, v); err != nil {
		c.logger.Warn().Err(err).Str("type", pkt.Type).Msg("dropping undecodable payload")
		return false
	}
	return true
}

// requireRole warns and drops messages that cannot occur for the current
// role, e.g. a host receiving a participant-only response.
func (c *Client) requireRole(role Role, msgType string) bool {
	snap, _ := c.Snapshot()
	if snap.Common.Role != role {
		c.logger.Warn().Str("type", msgType).Str("role", string(snap.Common.Role)).Msg("message not valid for role")
		return false
	}
	return true
}

func (c *Client) stopCountdown() {
	if c.countdown != nil {
		c.countdown.Stop()
		c.countdown = nil
	}
}

func (c *Client) cancelReconnect() {
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
}
