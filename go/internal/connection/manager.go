package connection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/roulette/go/internal/protocol"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNotConnected is returned by Send when no channel is open.
	ErrNotConnected = errors.New("not connected")
	// ErrSendBufferFull is returned by Send when the write pump is behind.
	ErrSendBufferFull = errors.New("send buffer full")
	// ErrRetriesExhausted is returned by Run when the retry policy gives up.
	ErrRetriesExhausted = errors.New("reconnect attempts exhausted")
)

// Info identifies one physical connection. Generation increases by one on
// every successful dial.
type Info struct {
	ID         string
	Generation int
	URL        string
}

// FrameHandler receives everything that happens on the channel. Calls for one
// connection are made from a single goroutine, in receipt order, and all calls
// for a connection finish before the next connection is dialed.
type FrameHandler interface {
	HandleConnected(info Info)
	HandleFrame(info Info, env protocol.Envelope)
	HandleDisconnected(info Info, err error)
}

// Config holds configuration for the game channel
type Config struct {
	URL              string
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	ReadTimeout      time.Duration
	PingInterval     time.Duration
	MaxMessageSize   int64
	ReadBufferSize   int
	WriteBufferSize  int
	SendBufferSize   int
}

// DefaultConfig returns default channel configuration
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		ReadTimeout:      60 * time.Second,
		PingInterval:     30 * time.Second,
		MaxMessageSize:   64 * 1024, // result frames carry the full history
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		SendBufferSize:   64,
	}
}

// Option configures a Manager.
type Option func(*Manager)

// WithDialer replaces the gorilla dialer, mainly for tests.
func WithDialer(d Dialer) Option {
	return func(m *Manager) { m.dialer = d }
}

// WithRetryPolicy sets the reconnect policy. The default is DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(m *Manager) { m.retry = p }
}

// WithClock sets the clock used for reconnect waits and keepalive pings.
func WithClock(c clockwork.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// Manager owns the single persistent channel to the game server.
type Manager struct {
	config  Config
	handler FrameHandler
	dialer  Dialer
	retry   RetryPolicy
	clock   clockwork.Clock

	mu         sync.Mutex
	current    *channel
	generation int
}

// channel is one dialed connection and its write queue
type channel struct {
	info Info
	conn Conn
	send chan []byte
}

// NewManager creates a Manager. Nothing is dialed until Run is called.
func NewManager(config Config, handler FrameHandler, opts ...Option) *Manager {
	if config.SendBufferSize <= 0 {
		config.SendBufferSize = DefaultConfig().SendBufferSize
	}
	m := &Manager{
		config:  config,
		handler: handler,
		retry:   DefaultRetryPolicy(),
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.dialer == nil {
		m.dialer = NewWebSocketDialer(config)
	}
	return m
}

// Run dials, serves the connection until it closes, then waits the retry
// policy's delay and dials again. Every reconnect is a full handshake. Run
// returns when ctx is done or the policy gives up.
func (m *Manager) Run(ctx context.Context) error {
	log.Info().Str("url", m.config.URL).Msg("connection manager started")

	attempt := 0
	for {
		if err := ctx.Err(); err != nil {
			log.Info().Msg("connection manager shutting down")
			return err
		}

		conn, err := m.dialer.Dial(ctx, m.config.URL)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("failed to connect")
		} else {
			attempt = 0
			err = m.serve(ctx, conn)
		}
		if ctx.Err() != nil {
			log.Info().Msg("connection manager shutting down")
			return ctx.Err()
		}

		attempt++
		delay, ok := m.retry.NextDelay(attempt)
		if !ok {
			return fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, attempt, err)
		}
		log.Info().Int("attempt", attempt).Dur("delay", delay).Msg("reconnecting")

		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			return ctx.Err()
		case <-m.clock.After(delay):
		}
	}
}

// Send marshals v and queues it on the open channel. It returns
// ErrNotConnected without side effects when nothing is open.
func (m *Manager) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return ErrNotConnected
	}
	select {
	case m.current.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Connected reports whether a channel is currently open.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}

// serve runs one connection to completion. It returns only after both pumps
// have stopped and the handler has been told about the disconnect.
func (m *Manager) serve(ctx context.Context, conn Conn) error {
	m.mu.Lock()
	m.generation++
	ch := &channel{
		info: Info{
			ID:         uuid.New().String(),
			Generation: m.generation,
			URL:        m.config.URL,
		},
		conn: conn,
		send: make(chan []byte, m.config.SendBufferSize),
	}
	m.current = ch
	m.mu.Unlock()

	log.Info().
		Str("connection_id", ch.info.ID).
		Int("generation", ch.info.Generation).
		Msg("WebSocket connection established")
	m.handler.HandleConnected(ch.info)

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		m.writePump(ch)
	}()

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	err := m.readPump(ch)
	close(stop)

	m.mu.Lock()
	m.current = nil
	close(ch.send)
	m.mu.Unlock()
	<-writeDone

	log.Info().
		Str("connection_id", ch.info.ID).
		Int("generation", ch.info.Generation).
		Msg("connection closed")
	m.handler.HandleDisconnected(ch.info, err)
	return err
}

// writePump handles sending frames and keepalive pings
func (m *Manager) writePump(ch *channel) {
	ticker := m.clock.NewTicker(m.pingInterval())
	defer func() {
		ticker.Stop()
		ch.conn.Close()
	}()

	for {
		select {
		case message, ok := <-ch.send:
			ch.conn.SetWriteDeadline(m.writeDeadline())
			if !ok {
				ch.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := ch.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", ch.info.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.Chan():
			ch.conn.SetWriteDeadline(m.writeDeadline())
			if err := ch.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", ch.info.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump decodes frames and hands them to the handler until the
// connection fails. Undecodable frames are dropped.
func (m *Manager) readPump(ch *channel) error {
	if m.config.MaxMessageSize > 0 {
		ch.conn.SetReadLimit(m.config.MaxMessageSize)
	}
	ch.conn.SetReadDeadline(m.readDeadline())
	ch.conn.SetPongHandler(func(string) error {
		ch.conn.SetReadDeadline(m.readDeadline())
		return nil
	})

	for {
		_, message, err := ch.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error().
					Err(err).
					Str("connection_id", ch.info.ID).
					Msg("unexpected WebSocket close error")
			}
			return err
		}
		ch.conn.SetReadDeadline(m.readDeadline())

		env, err := protocol.Decode(message)
		if err != nil {
			log.Warn().
				Err(err).
				Str("connection_id", ch.info.ID).
				Msg("dropping frame")
			continue
		}
		m.handler.HandleFrame(ch.info, env)
	}
}

func (m *Manager) readDeadline() time.Time {
	if m.config.ReadTimeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(m.config.ReadTimeout)
}

func (m *Manager) writeDeadline() time.Time {
	if m.config.WriteTimeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(m.config.WriteTimeout)
}

func (m *Manager) pingInterval() time.Duration {
	if m.config.PingInterval <= 0 {
		return DefaultConfig().PingInterval
	}
	return m.config.PingInterval
}
