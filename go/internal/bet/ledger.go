package bet

import (
	"time"

	"github.com/mcdev12/roulette/go/internal/protocol"
)

// PendingBet is a wager that was sent but not yet confirmed or rejected.
type PendingBet struct {
	ID          string
	Type        protocol.BetType
	Value       string
	Amount      float64
	SubmittedAt time.Time
	// Round is the betting window the bet was placed in.
	Round int
	// Stale bets belong to an earlier window. Their confirmations still
	// update the balance but not the active list.
	Stale bool
}

// Ledger is the ordered list of pending bets. It is owned by the game loop
// and is not safe for concurrent use.
type Ledger struct {
	bets []PendingBet
}

func NewLedger() *Ledger {
	return &Ledger{}
}

func (l *Ledger) Add(b PendingBet) {
	l.bets = append(l.bets, b)
}

// Match removes and returns the bet a confirmation or rejection refers to:
// the one with correlationID when it is set, otherwise the oldest.
func (l *Ledger) Match(correlationID string) (PendingBet, bool) {
	if len(l.bets) == 0 {
		return PendingBet{}, false
	}
	idx := 0
	if correlationID != "" {
		idx = -1
		for i, b := range l.bets {
			if b.ID == correlationID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return PendingBet{}, false
		}
	}
	b := l.bets[idx]
	l.bets = append(l.bets[:idx], l.bets[idx+1:]...)
	return b, true
}

// MarkStale flags every pending bet as belonging to the past.
func (l *Ledger) MarkStale() {
	for i := range l.bets {
		l.bets[i].Stale = true
	}
}

// DropBefore removes bets placed in windows earlier than round and returns
// how many were removed.
func (l *Ledger) DropBefore(round int) int {
	kept := l.bets[:0]
	for _, b := range l.bets {
		if b.Round >= round {
			kept = append(kept, b)
		}
	}
	n := len(l.bets) - len(kept)
	l.bets = kept
	return n
}

// Clear drops all pending bets and returns how many there were.
func (l *Ledger) Clear() int {
	n := len(l.bets)
	l.bets = nil
	return n
}

func (l *Ledger) Len() int {
	return len(l.bets)
}

// Pending returns a copy of the pending bets, oldest first.
func (l *Ledger) Pending() []PendingBet {
	out := make([]PendingBet, len(l.bets))
	copy(out, l.bets)
	return out
}
