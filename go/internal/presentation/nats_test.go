package presentation

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mcdev12/roulette/go/internal/events"
	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// startTestNATS starts an embedded NATS server and returns its client URL.
func startTestNATS(t *testing.T) string {
	t.Helper()
	opts := &natsserver.Options{Host: "127.0.0.1", Port: -1}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

func TestNATSPublisher_EmbeddedServer(t *testing.T) {
	url := startTestNATS(t)

	sub, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("connecting subscriber: %v", err)
	}
	defer sub.Close()

	ch := make(chan *nats.Msg, 4)
	if _, err := sub.ChanSubscribe("roulette.events.>", ch); err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	if err := sub.Flush(); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultNATSConfig()
	cfg.URL = url
	pub, err := NewNATSPublisher(cfg)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	pub.Present(events.RoundOutcome{Won: true, Payout: 70, Number: 17})
	if err := pub.nc.Flush(); err != nil {
		t.Fatal(err)
	}

	select {
	case msg := <-ch:
		if msg.Subject != "roulette.events.round_outcome" {
			t.Fatalf("subject = %q", msg.Subject)
		}
		var env struct {
			EventType string          `json:"eventType"`
			Payload   json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			t.Fatal(err)
		}
		var outcome events.RoundOutcome
		if err := json.Unmarshal(env.Payload, &outcome); err != nil {
			t.Fatal(err)
		}
		if env.EventType != "round_outcome" || !outcome.Won || outcome.Number != 17 {
			t.Fatalf("envelope = %s", msg.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}
