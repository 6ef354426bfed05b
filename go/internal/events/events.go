package events

import (
	"github.com/mcdev12/roulette/go/internal/models"
	"github.com/mcdev12/roulette/go/internal/protocol"
)

// Event types consumed by presenters. They live in their own package so the
// round, bet, session and presentation packages can share them without cycles.

// Type identifies an event; it is also the NATS subject suffix.
type Type string

const (
	TypePhaseChanged      Type = "phase_changed"
	TypeHistoryReplaced   Type = "history_replaced"
	TypeResultShown       Type = "result_shown"
	TypeBalanceChanged    Type = "balance_changed"
	TypeActiveBetsChanged Type = "active_bets_changed"
	TypeBetMessage        Type = "bet_message"
	TypeRoundOutcome      Type = "round_outcome"
	TypeServerError       Type = "server_error"
	TypeServerClock       Type = "server_clock"
	TypeSessionChanged    Type = "session_changed"
	TypeConnectionChanged Type = "connection_changed"
	TypeBetPending        Type = "bet_pending"
	TypeBetRejected       Type = "bet_rejected"
)

// Event is implemented by every payload below.
type Event interface {
	EventType() Type
}

// Phase names the current stage of a round.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseBetting  Phase = "betting"
	PhaseLocked   Phase = "locked"
	PhaseRolling  Phase = "rolling"
	PhaseResolved Phase = "resolved"
)

// PhaseChanged is emitted whenever a frame sets the phase, including countdown ticks.
type PhaseChanged struct {
	Phase            Phase          `json:"phase"`
	SecondsRemaining int            `json:"seconds_remaining,omitempty"`
	Number           int            `json:"number,omitempty"`
	Color            protocol.Color `json:"color,omitempty"`
}

type HistoryReplaced struct {
	History []protocol.HistoryEntry `json:"history"`
}

type ResultShown struct {
	Number int            `json:"number"`
	Color  protocol.Color `json:"color"`
}

type BalanceChanged struct {
	Balance float64 `json:"balance"`
}

type ActiveBetsChanged struct {
	Bets []string `json:"bets"`
}

// BetMessage is the transient confirmation line. An empty Text clears it.
type BetMessage struct {
	Text string `json:"text"`
}

// RoundOutcome tells the current player whether the resolved round paid out.
type RoundOutcome struct {
	Won    bool    `json:"won"`
	Payout float64 `json:"payout,omitempty"`
	Number int     `json:"number"`
}

type ServerError struct {
	Message string `json:"message"`
}

type ServerClock struct {
	ServerTime string `json:"server_time"`
}

// SessionChanged switches the view between authenticated and logged out.
type SessionChanged struct {
	LoggedIn bool             `json:"logged_in"`
	Identity *models.Identity `json:"identity,omitempty"`
	Reason   string           `json:"reason,omitempty"`
}

type ConnectionChanged struct {
	Connected  bool   `json:"connected"`
	Generation int    `json:"generation"`
	Error      string `json:"error,omitempty"`
}

type BetPending struct {
	ID     string           `json:"id"`
	Type   protocol.BetType `json:"bet_type"`
	Value  string           `json:"value"`
	Amount float64          `json:"amount"`
}

// BetRejected covers both local validation failures and server rejections.
type BetRejected struct {
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
	Local  bool   `json:"local"`
}

func (PhaseChanged) EventType() Type      { return TypePhaseChanged }
func (HistoryReplaced) EventType() Type   { return TypeHistoryReplaced }
func (ResultShown) EventType() Type       { return TypeResultShown }
func (BalanceChanged) EventType() Type    { return TypeBalanceChanged }
func (ActiveBetsChanged) EventType() Type { return TypeActiveBetsChanged }
func (BetMessage) EventType() Type        { return TypeBetMessage }
func (RoundOutcome) EventType() Type      { return TypeRoundOutcome }
func (ServerError) EventType() Type       { return TypeServerError }
func (ServerClock) EventType() Type       { return TypeServerClock }
func (SessionChanged) EventType() Type    { return TypeSessionChanged }
func (ConnectionChanged) EventType() Type { return TypeConnectionChanged }
func (BetPending) EventType() Type        { return TypeBetPending }
func (BetRejected) EventType() Type       { return TypeBetRejected }
