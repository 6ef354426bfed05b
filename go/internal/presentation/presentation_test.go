package presentation

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/roulette/go/internal/events"
	"github.com/mcdev12/roulette/go/internal/models"
	"github.com/mcdev12/roulette/go/internal/protocol"
	"github.com/nats-io/nats.go"
)

func TestConsole_Lines(t *testing.T) {
	tests := []struct {
		name string
		ev   events.Event
		want string
	}{
		{"result", events.ResultShown{Number: 17, Color: protocol.ColorBlack}, "Result: 17"},
		{"history", events.HistoryReplaced{History: []protocol.HistoryEntry{{Number: 3, Color: protocol.ColorRed}, {Number: 0, Color: protocol.ColorGreen}}}, "History: 3 0"},
		{"balance", events.BalanceChanged{Balance: 90.5}, "Balance: 90.50"},
		{"active bets", events.ActiveBetsChanged{Bets: []string{"10 on 17", "5 on red"}}, "Active bets: 10 on 17, 5 on red"},
		{"cleared bets", events.ActiveBetsChanged{Bets: []string{}}, "Active bets cleared"},
		{"win", events.RoundOutcome{Won: true, Payout: 360, Number: 17}, "WIN! +360.00 | Result: 17"},
		{"loss", events.RoundOutcome{Number: 2}, "No win | Result: 2"},
		{"server error", events.ServerError{Message: "insufficient funds"}, "Server: insufficient funds"},
		{"login", events.SessionChanged{LoggedIn: true, Identity: &models.Identity{Username: "alice", Balance: 10}}, "Logged in as alice (balance 10.00)"},
		{"logout", events.SessionChanged{Reason: "session expired"}, "Logged out: session expired"},
		{"rejected", events.BetRejected{Reason: "must log in to place a bet", Local: true}, "Bet rejected: must log in to place a bet"},
		{"empty message", events.BetMessage{}, ""},
		{"clock", events.ServerClock{ServerTime: "12:00"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewConsole(&buf, false).Present(tt.ev)
			if got := strings.TrimRight(buf.String(), "\n"); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConsole_CountdownMilestones(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)
	for _, v := range []int{20, 19, 18, 15, 12, 10, 4, 3, 2, 1} {
		c.Present(events.PhaseChanged{Phase: events.PhaseBetting, SecondsRemaining: v})
	}
	c.Present(events.PhaseChanged{Phase: events.PhaseLocked})

	want := []string{
		"Betting open: 20s",
		"Betting open: 15s",
		"Betting open: 10s",
		"Betting open: 3s",
		"Betting open: 2s",
		"Betting open: 1s",
		"Betting closed",
	}
	got := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("got %q", got)
	}
}

func TestConsole_Color(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, true).Present(events.ResultShown{Number: 3, Color: protocol.ColorRed})
	if !strings.Contains(buf.String(), ansiRed+"3"+ansiReset) {
		t.Fatalf("missing colour: %q", buf.String())
	}
}

func TestShouldUseColor_Env(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("CLICOLOR_FORCE", "1")
	if ShouldUseColor(nil) {
		t.Fatalf("NO_COLOR ignored")
	}

	t.Setenv("NO_COLOR", "")
	if !ShouldUseColor(nil) {
		t.Fatalf("CLICOLOR_FORCE ignored")
	}
}

type fakeNATS struct {
	msgs []*nats.Msg
	err  error
}

func (f *fakeNATS) PublishMsg(m *nats.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, m)
	return nil
}

func TestNATSPublisher_Envelope(t *testing.T) {
	fake := &fakeNATS{}
	clock := clockwork.NewFakeClockAt(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	p := newNATSPublisher(fake, "roulette.events", clock)

	p.Present(events.BalanceChanged{Balance: 42})

	if len(fake.msgs) != 1 {
		t.Fatalf("published %d messages", len(fake.msgs))
	}
	msg := fake.msgs[0]
	if msg.Subject != "roulette.events.balance_changed" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	if msg.Header.Get("Event-Type") != "balance_changed" || msg.Header.Get("Event-ID") == "" {
		t.Fatalf("headers = %v", msg.Header)
	}

	var env struct {
		EventID   string          `json:"eventId"`
		EventType string          `json:"eventType"`
		Timestamp time.Time       `json:"timestamp"`
		Payload   json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		t.Fatal(err)
	}
	if env.EventType != "balance_changed" || !env.Timestamp.Equal(clock.Now()) || string(env.Payload) != `{"balance":42}` {
		t.Fatalf("envelope = %+v payload=%s", env, env.Payload)
	}
}

func TestNATSPublisher_FailureIsNotFatal(t *testing.T) {
	p := newNATSPublisher(&fakeNATS{err: errors.New("nats: connection closed")}, "roulette.events", clockwork.NewFakeClock())
	p.Present(events.ServerError{Message: "x"})
	if err := p.Publish(events.ServerError{Message: "x"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFanoutAndRecorder(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	var seen []events.Type
	f := Fanout{a, b, PresenterFunc(func(ev events.Event) { seen = append(seen, ev.EventType()) })}

	f.Present(events.BalanceChanged{Balance: 1})
	f.Present(events.BetMessage{Text: "hi"})

	if len(a.Events()) != 2 || len(b.Events()) != 2 || len(seen) != 2 {
		t.Fatalf("a=%d b=%d seen=%d", len(a.Events()), len(b.Events()), len(seen))
	}
	if got := a.OfType(events.TypeBetMessage); len(got) != 1 {
		t.Fatalf("OfType = %+v", got)
	}
	a.Reset()
	if len(a.Events()) != 0 {
		t.Fatalf("reset did not clear")
	}
}
