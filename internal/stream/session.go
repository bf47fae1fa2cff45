// Package stream manages the WebSocket session that forwards audio chunks to a
// remote transcription consumer. The session is a strict state machine and its
// send/close paths never fail loudly: the caller is a hot capture loop that must
// keep running regardless of streaming-sink health.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"meeting-recorder/internal/domain"
)

// State is the lifecycle position of one streaming session.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateOpen         State = "open"
	StateClosing      State = "closing"
	StateClosed       State = "closed"
)

// Conn is the subset of the websocket connection used by Session.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Dialer opens a websocket connection to the given URL.
type Dialer func(ctx context.Context, url string) (Conn, error)

// gorillaDialer dials via the default gorilla websocket dialer.
func gorillaDialer(ctx context.Context, rawURL string) (Conn, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, rawURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// controlFrame is the JSON envelope for outbound control messages.
type controlFrame struct {
	Type   string `json:"type"`
	Action string `json:"action"`
}

// serverMessage is the inbound control message shape.
type serverMessage struct {
	SessionID string `json:"session_id"`
}

// Session forwards one audio chunk stream to a remote consumer.
type Session struct {
	endpoint string
	userID   string
	params   domain.StreamingSettings
	dial     Dialer
	logger   *zap.SugaredLogger

	mu        sync.Mutex
	state     State
	conn      Conn
	sessionID string
	resumed   bool
}

// NewSession creates a disconnected session for the configured endpoint.
func NewSession(params domain.StreamingSettings, userID string, logger *zap.SugaredLogger) *Session {
	return &Session{
		endpoint: params.Endpoint,
		userID:   userID,
		params:   params,
		dial:     gorillaDialer,
		logger:   logger,
		state:    StateDisconnected,
	}
}

// NewSessionForTests creates a session with an injectable dialer.
func NewSessionForTests(params domain.StreamingSettings, userID string, dial Dialer, logger *zap.SugaredLogger) *Session {
	s := NewSession(params, userID, logger)
	s.dial = dial
	return s
}

// Connect opens the transport. A non-empty resumeID reconnects to an existing
// remote session; otherwise a new session is requested with the configured
// stream parameters. A failed connect leaves the session closed; the caller is
// expected to degrade to video-only recording rather than abort.
func (s *Session) Connect(ctx context.Context, resumeID string) error {
	s.mu.Lock()
	if s.state != StateDisconnected {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("connect from state %s", state)
	}
	s.state = StateConnecting
	s.mu.Unlock()

	target, err := s.buildURL(resumeID)
	if err != nil {
		s.setState(StateClosed)
		return fmt.Errorf("build stream url: %w", err)
	}

	conn, err := s.dial(ctx, target)
	if err != nil {
		s.setState(StateClosed)
		return fmt.Errorf("dial stream endpoint: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.state = StateOpen
	s.sessionID = resumeID
	s.resumed = resumeID != ""
	s.mu.Unlock()

	go s.readLoop(conn)
	return nil
}

// buildURL constructs the new-session or resume-session endpoint URL.
func (s *Session) buildURL(resumeID string) (string, error) {
	base, err := url.Parse(strings.TrimSpace(s.endpoint))
	if err != nil {
		return "", err
	}

	query := url.Values{}
	query.Set("user_id", s.userID)
	if resumeID == "" {
		query.Set("sample_rate", strconv.Itoa(s.params.SampleRate))
		query.Set("channels", strconv.Itoa(s.params.Channels))
		query.Set("format", s.params.Format)
	} else {
		base.Path = strings.TrimRight(base.Path, "/") + "/" + resumeID
	}

	base.RawQuery = query.Encode()
	return base.String(), nil
}

// readLoop consumes inbound control messages until the transport closes.
// Malformed messages are logged and ignored.
func (s *Session) readLoop(conn Conn) {
	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			s.logger.Debugw("stream read loop ended", "error", err)
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var msg serverMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logger.Warnw("ignoring malformed control message", "error", err)
			continue
		}
		if msg.SessionID != "" {
			s.recordSessionID(msg.SessionID)
		}
	}
}

// recordSessionID stores the server-assigned id for new sessions.
func (s *Session) recordSessionID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Only meaningful on new-session connects; resumed sessions keep their id.
	if s.resumed || s.sessionID != "" {
		return
	}
	s.sessionID = id
	s.logger.Infow("stream session assigned", "sessionId", id)
}

// SendChunk forwards one binary audio chunk. It returns true only when the
// session is open and the write succeeds; in every other case the chunk is
// dropped and false is returned. It never panics or returns an error.
func (s *Session) SendChunk(data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateOpen || s.conn == nil {
		return false
	}
	if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		s.logger.Warnw("audio chunk write failed", "error", err, "bytes", len(data))
		return false
	}
	return true
}

// Close ends the session: best-effort close control frame, then transport
// close. Calling Close on a session that never opened, or twice, is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateOpen {
		if s.state != StateClosed {
			s.state = StateClosed
		}
		return
	}

	s.state = StateClosing
	frame, _ := json.Marshal(controlFrame{Type: "control", Action: "close_session"})
	if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		s.logger.Warnw("close control frame not delivered", "error", err)
	}
	if err := s.conn.Close(); err != nil {
		s.logger.Debugw("transport close", "error", err)
	}
	s.conn = nil
	s.state = StateClosed
}

// SessionID returns the current session id, empty until assigned.
func (s *Session) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// setState transitions to the given state.
func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
