package presentation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/roulette/go/internal/events"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

type NATSConfig struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		SubjectPrefix: "roulette.events",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// msgPublisher is the part of *nats.Conn the publisher uses.
type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// NATSPublisher mirrors presentation events onto <prefix>.<event type>.
// Publishing is best effort: failures are logged and the game carries on.
type NATSPublisher struct {
	nc     *nats.Conn
	pub    msgPublisher
	prefix string
	clock  clockwork.Clock
}

func NewNATSPublisher(cfg NATSConfig) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("roulette-client"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	p := newNATSPublisher(nc, cfg.SubjectPrefix, clockwork.NewRealClock())
	p.nc = nc
	return p, nil
}

func newNATSPublisher(pub msgPublisher, prefix string, clock clockwork.Clock) *NATSPublisher {
	return &NATSPublisher{pub: pub, prefix: prefix, clock: clock}
}

// Subject returns the subject an event type is published on.
func (p *NATSPublisher) Subject(t events.Type) string {
	return fmt.Sprintf("%s.%s", p.prefix, t)
}

func (p *NATSPublisher) Present(ev events.Event) {
	if err := p.Publish(ev); err != nil {
		log.Warn().Err(err).Str("event_type", string(ev.EventType())).Msg("failed to mirror event")
	}
}

// Publish sends one event wrapped in the {eventId, eventType, timestamp,
// payload} envelope.
func (p *NATSPublisher) Publish(ev events.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	eventID := uuid.New().String()
	env := map[string]interface{}{
		"eventId":   eventID,
		"eventType": ev.EventType(),
		"timestamp": p.clock.Now().UTC(),
		"payload":   json.RawMessage(payload),
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	subject := p.Subject(ev.EventType())
	err = p.pub.PublishMsg(&nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"Event-Type": []string{string(ev.EventType())},
			"Event-ID":   []string{eventID},
		},
	})
	if err != nil {
		return fmt.Errorf("publish to NATS: %w", err)
	}

	log.Debug().
		Str("subject", subject).
		Str("event_id", eventID).
		Msg("published to NATS")
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.nc != nil {
		return p.nc.Drain()
	}
	return nil
}
