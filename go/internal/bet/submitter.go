package bet

import (
	"errors"
	"fmt"
	"math"

	"github.com/jonboulle/clockwork"
	nanoid "github.com/matoous/go-nanoid/v2"
	"github.com/mcdev12/roulette/go/internal/models"
	"github.com/mcdev12/roulette/go/internal/protocol"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotLoggedIn  = errors.New("must log in to place a bet")
	ErrInvalidStake = errors.New("invalid stake")
	ErrInvalidBet   = errors.New("invalid bet")
	// ErrNotConnected wraps the sender's error when the frame could not be queued.
	ErrNotConnected = errors.New("bet could not be sent")
)

const (
	idAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	idLength   = 12
)

// Identities gives read access to the current player.
type Identities interface {
	Identity() (models.Identity, bool)
}

// Sender queues one outbound frame.
type Sender interface {
	Send(v any) error
}

// RoundCounter reports the current betting window number.
type RoundCounter interface {
	Round() int
}

// Option configures a Submitter.
type Option func(*Submitter)

func WithClock(c clockwork.Clock) Option {
	return func(s *Submitter) { s.clock = c }
}

// WithCorrelationIDs sends each bet's local id as correlation_id.
func WithCorrelationIDs(enabled bool) Option {
	return func(s *Submitter) { s.correlation = enabled }
}

func WithRoundCounter(r RoundCounter) Option {
	return func(s *Submitter) { s.rounds = r }
}

// WithStake sets the initial stake.
func WithStake(amount float64) Option {
	return func(s *Submitter) { s.stake = amount }
}

// Submitter validates wagers, sends them and records them as pending.
// Like the Ledger it runs on the game loop.
type Submitter struct {
	identities  Identities
	sender      Sender
	ledger      *Ledger
	clock       clockwork.Clock
	rounds      RoundCounter
	stake       float64
	correlation bool
}

func NewSubmitter(identities Identities, sender Sender, ledger *Ledger, opts ...Option) *Submitter {
	s := &Submitter{
		identities: identities,
		sender:     sender,
		ledger:     ledger,
		clock:      clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetStake replaces the amount used by subsequent bets. An invalid amount
// is rejected with ErrInvalidStake and the current stake is kept.
func (s *Submitter) SetStake(amount float64) error {
	if !validStake(amount) {
		return fmt.Errorf("%w: %v", ErrInvalidStake, amount)
	}
	s.stake = amount
	return nil
}

func (s *Submitter) Stake() float64 {
	return s.stake
}

// Submit sends a place_bet frame for the current identity and stake. Nothing
// is sent when a local check fails, and nothing is recorded when the send
// fails.
func (s *Submitter) Submit(betType protocol.BetType, value string) (PendingBet, error) {
	identity, ok := s.identities.Identity()
	if !ok {
		return PendingBet{}, ErrNotLoggedIn
	}
	if !validStake(s.stake) {
		return PendingBet{}, fmt.Errorf("%w: %v", ErrInvalidStake, s.stake)
	}
	if err := protocol.ValidateBet(betType, value); err != nil {
		return PendingBet{}, fmt.Errorf("%w: %v", ErrInvalidBet, err)
	}

	id, err := nanoid.Generate(idAlphabet, idLength)
	if err != nil {
		return PendingBet{}, fmt.Errorf("failed to generate bet id: %w", err)
	}

	frame := protocol.NewPlaceBet(identity.ID, betType, value, s.stake)
	if s.correlation {
		frame.CorrelationID = id
	}
	if err := s.sender.Send(frame); err != nil {
		return PendingBet{}, fmt.Errorf("%w: %w", ErrNotConnected, err)
	}

	pending := PendingBet{
		ID:          id,
		Type:        betType,
		Value:       value,
		Amount:      s.stake,
		SubmittedAt: s.clock.Now(),
	}
	if s.rounds != nil {
		pending.Round = s.rounds.Round()
	}
	s.ledger.Add(pending)

	log.Debug().
		Str("bet_id", id).
		Str("bet_type", string(betType)).
		Str("value", value).
		Float64("amount", s.stake).
		Msg("bet submitted")
	return pending, nil
}

func validStake(amount float64) bool {
	return amount > 0 && !math.IsInf(amount, 0) && !math.IsNaN(amount)
}
