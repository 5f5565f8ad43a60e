package transport

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/speedrunhq/quiz-client/internal/metrics"
	"github.com/speedrunhq/quiz-client/pkg/protocol"
)

// State is the lifecycle of the session channel. Transitions are driven by
// channel events only; callers observe state, they never set it.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateConnecting    State = "connecting"
	StateConnected     State = "connected"
	StateDisconnected  State = "disconnected"
	StateReconnecting  State = "reconnecting"
)

// Socket owns one websocket channel per session. It knows nothing about
// message semantics: frames in, frames out, and three optional callbacks.
// Retry policy belongs to the caller.
type Socket struct {
	mu         sync.Mutex
	conn       *websocket.Conn
	state      State
	generation int

	baseURL string
	dialer  *websocket.Dialer
	logger  zerolog.Logger
	metrics *metrics.Metrics

	// Callback slots. Absence of a bound callback is not an error. All are
	// invoked from the read goroutine (OnOpen from the Connect caller).
	OnOpen    func()
	OnMessage func(frame []byte)
	OnClose   func(err error)
}

// NewSocket creates an unconnected socket for the speed-run service at
// baseURL (e.g. "ws://localhost:8080").
func NewSocket(baseURL string, logger zerolog.Logger, m *metrics.Metrics) *Socket {
	return &Socket{
		state:   StateUninitialized,
		baseURL: baseURL,
		dialer:  websocket.DefaultDialer,
		logger:  logger,
		metrics: m,
	}
}

// URL derives the channel address for a room.
func (s *Socket) URL(roomID, credential string) string {
	return fmt.Sprintf("%s/speed-run/%s/ws?token=%s", s.baseURL, url.PathEscape(roomID), url.QueryEscape(credential))
}

// Connect opens exactly one channel, tearing down and replacing any
// existing one first. Dial failure surfaces as a close event, not an
// error return.
func (s *Socket) Connect(roomID, credential string) {
	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.generation++
	gen := s.generation
	s.state = StateConnecting
	addr := s.URL(roomID, credential)
	s.mu.Unlock()

	conn, _, err := s.dialer.Dial(addr, nil)
	if err != nil {
		s.mu.Lock()
		stale := gen != s.generation
		if !stale {
			s.state = StateDisconnected
		}
		s.mu.Unlock()
		if stale {
			return
		}
		s.logger.Warn().Err(err).Str("room_id", roomID).Msg("channel dial failed")
		if s.OnClose != nil {
			s.OnClose(err)
		}
		return
	}

	s.mu.Lock()
	if gen != s.generation {
		// A newer Connect or Disconnect raced us; this channel is stale.
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.conn = conn
	s.state = StateConnected
	s.mu.Unlock()

	s.logger.Info().Str("room_id", roomID).Msg("channel connected")
	if s.OnOpen != nil {
		s.OnOpen()
	}

	go s.readPump(conn, gen)
}

// Disconnect closes the channel if open; no-op otherwise.
func (s *Socket) Disconnect() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.generation++
	if conn != nil {
		s.state = StateDisconnected
	}
	s.mu.Unlock()

	if conn != nil {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}
}

// Send writes one frame, fire-and-forget. If no channel is open the packet
// is silently dropped, not queued.
func (s *Socket) Send(p protocol.Packet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		s.metrics.IncDroppedSends()
		s.logger.Debug().Str("type", p.Type).Msg("send dropped, channel not open")
		return
	}

	if err := s.conn.WriteJSON(p); err != nil {
		// The read pump will observe the broken channel and raise close.
		s.logger.Warn().Err(err).Str("type", p.Type).Msg("channel write failed")
		return
	}
	s.metrics.IncFramesSent()
}

// State reports the current channel state.
func (s *Socket) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Socket) readPump(conn *websocket.Conn, gen int) {
	var closeErr error
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			closeErr = err
			break
		}
		s.metrics.IncFramesReceived()
		if s.OnMessage != nil {
			s.OnMessage(frame)
		}
	}

	s.mu.Lock()
	stale := gen != s.generation
	if !stale {
		s.conn = nil
		s.state = StateDisconnected
	}
	s.mu.Unlock()

	conn.Close()
	if stale {
		// A replacement channel took over; its pump owns the callbacks now.
		return
	}

	if websocket.IsUnexpectedCloseError(closeErr, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		s.logger.Warn().Err(closeErr).Msg("channel closed unexpectedly")
	} else {
		s.logger.Info().Msg("channel closed")
	}
	if s.OnClose != nil {
		s.OnClose(closeErr)
	}
}
