package bet

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/roulette/go/internal/models"
	"github.com/mcdev12/roulette/go/internal/protocol"
)

type staticIdentity struct {
	identity *models.Identity
}

func (s staticIdentity) Identity() (models.Identity, bool) {
	if s.identity == nil {
		return models.Identity{}, false
	}
	return *s.identity, true
}

type recordingSender struct {
	frames []any
	err    error
}

func (r *recordingSender) Send(v any) error {
	if r.err != nil {
		return r.err
	}
	r.frames = append(r.frames, v)
	return nil
}

type fixedRound int

func (f fixedRound) Round() int { return int(f) }

var alice = &models.Identity{ID: 7, Username: "alice", Balance: 100}

func TestSubmit_WithoutIdentitySendsNothing(t *testing.T) {
	sender := &recordingSender{}
	ledger := NewLedger()
	s := NewSubmitter(staticIdentity{}, sender, ledger, WithStake(10))

	_, err := s.Submit(protocol.BetNumber, "17")
	if !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("want ErrNotLoggedIn, got %v", err)
	}
	if len(sender.frames) != 0 || ledger.Len() != 0 {
		t.Fatalf("frames = %d pending = %d", len(sender.frames), ledger.Len())
	}
}

func TestSubmit_SendsExactlyOnePlaceBet(t *testing.T) {
	sender := &recordingSender{}
	ledger := NewLedger()
	clock := clockwork.NewFakeClock()
	s := NewSubmitter(staticIdentity{alice}, sender, ledger, WithStake(10.00), WithClock(clock), WithRoundCounter(fixedRound(4)))

	pending, err := s.Submit(protocol.BetNumber, "17")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(sender.frames) != 1 {
		t.Fatalf("frames = %d", len(sender.frames))
	}

	data, err := json.Marshal(sender.frames[0])
	if err != nil {
		t.Fatal(err)
	}
	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"type": "place_bet", "user_id": 7.0, "bet_type": "number", "value": "17", "amount": 10.0}
	if len(wire) != len(want) {
		t.Fatalf("wire = %v", wire)
	}
	for k, v := range want {
		if wire[k] != v {
			t.Fatalf("wire[%q] = %v, want %v", k, wire[k], v)
		}
	}

	if ledger.Len() != 1 || pending.ID == "" || pending.Round != 4 || !pending.SubmittedAt.Equal(clock.Now()) {
		t.Fatalf("pending = %+v", pending)
	}
}

func TestSubmit_CorrelationID(t *testing.T) {
	sender := &recordingSender{}
	s := NewSubmitter(staticIdentity{alice}, sender, NewLedger(), WithStake(1), WithCorrelationIDs(true))

	pending, err := s.Submit(protocol.BetColor, "red")
	if err != nil {
		t.Fatal(err)
	}
	frame := sender.frames[0].(protocol.PlaceBet)
	if frame.CorrelationID != pending.ID {
		t.Fatalf("correlation id = %q, pending id = %q", frame.CorrelationID, pending.ID)
	}
}

func TestSubmit_LocalValidation(t *testing.T) {
	tests := []struct {
		name    string
		stake   float64
		betType protocol.BetType
		value   string
		wantErr error
	}{
		{"zero stake", 0, protocol.BetNumber, "17", ErrInvalidStake},
		{"negative stake", -5, protocol.BetNumber, "17", ErrInvalidStake},
		{"infinite stake", math.Inf(1), protocol.BetNumber, "17", ErrInvalidStake},
		{"nan stake", math.NaN(), protocol.BetNumber, "17", ErrInvalidStake},
		{"number out of range", 5, protocol.BetNumber, "37", ErrInvalidBet},
		{"unknown colour", 5, protocol.BetColor, "blue", ErrInvalidBet},
		{"unknown type", 5, protocol.BetType("corner"), "1", ErrInvalidBet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &recordingSender{}
			s := NewSubmitter(staticIdentity{alice}, sender, NewLedger(), WithStake(tt.stake))
			if _, err := s.Submit(tt.betType, tt.value); !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}
			if len(sender.frames) != 0 {
				t.Fatalf("frame sent despite local failure")
			}
		})
	}
}

func TestSubmit_SendFailureRecordsNothing(t *testing.T) {
	sender := &recordingSender{err: errors.New("not connected")}
	ledger := NewLedger()
	s := NewSubmitter(staticIdentity{alice}, sender, ledger, WithStake(5))

	if _, err := s.Submit(protocol.BetDozen, protocol.DozenSecond); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("want ErrNotConnected, got %v", err)
	}
	if ledger.Len() != 0 {
		t.Fatalf("pending recorded after failed send")
	}
}

func TestSetStake_RejectsInvalidAmounts(t *testing.T) {
	s := NewSubmitter(staticIdentity{alice}, &recordingSender{}, NewLedger(), WithStake(10))

	for _, amount := range []float64{0, -1, math.Inf(1), math.Inf(-1), math.NaN()} {
		if err := s.SetStake(amount); !errors.Is(err, ErrInvalidStake) {
			t.Fatalf("SetStake(%v) = %v, want ErrInvalidStake", amount, err)
		}
	}
	if s.Stake() != 10 {
		t.Fatalf("stake changed to %v", s.Stake())
	}
	if err := s.SetStake(2.5); err != nil || s.Stake() != 2.5 {
		t.Fatalf("SetStake(2.5) = %v, stake %v", err, s.Stake())
	}
}

func TestLedger(t *testing.T) {
	l := NewLedger()
	now := time.Now()
	l.Add(PendingBet{ID: "a", Round: 1, SubmittedAt: now})
	l.Add(PendingBet{ID: "b", Round: 2, SubmittedAt: now})
	l.Add(PendingBet{ID: "c", Round: 2, SubmittedAt: now})

	if b, ok := l.Match("c"); !ok || b.ID != "c" {
		t.Fatalf("correlated match = %+v, %v", b, ok)
	}
	if _, ok := l.Match("zzz"); ok {
		t.Fatalf("unknown correlation id matched")
	}
	if b, ok := l.Match(""); !ok || b.ID != "a" {
		t.Fatalf("fifo match = %+v, %v", b, ok)
	}

	l.Add(PendingBet{ID: "d", Round: 3})
	if n := l.DropBefore(3); n != 1 {
		t.Fatalf("dropped %d", n)
	}
	l.MarkStale()
	pending := l.Pending()
	if len(pending) != 1 || pending[0].ID != "d" || !pending[0].Stale {
		t.Fatalf("pending = %+v", pending)
	}
	if n := l.Clear(); n != 1 || l.Len() != 0 {
		t.Fatalf("clear = %d, len = %d", n, l.Len())
	}
}
