package round

import (
	"time"

	"github.com/mcdev12/roulette/go/internal/bet"
	"github.com/mcdev12/roulette/go/internal/events"
	"github.com/mcdev12/roulette/go/internal/models"
	"github.com/mcdev12/roulette/go/internal/protocol"
	"github.com/mcdev12/roulette/go/internal/session"
	"github.com/rs/zerolog/log"
)

// Config holds the timing agreement with the server.
type Config struct {
	// RefreshThreshold is the countdown value at which the balance is pulled
	// and the previous round's bets are cleared. It must match the length of
	// the server's betting window.
	RefreshThreshold int
	WinRefreshDelay  time.Duration
	BetMessageTTL    time.Duration
}

func DefaultConfig() Config {
	return Config{
		RefreshThreshold: 20,
		WinRefreshDelay:  500 * time.Millisecond,
		BetMessageTTL:    3 * time.Second,
	}
}

// Session is the machine's view of the session store.
type Session interface {
	Identity() (models.Identity, bool)
	Apply(update session.BalanceUpdate) bool
}

// Effect is a timed side effect the caller must run after Apply returns.
type Effect interface {
	isEffect()
}

// RefreshIdentity asks for an authoritative identity pull after a delay.
type RefreshIdentity struct {
	After time.Duration
}

// ClearBetMessage asks for ClearBetMessage(Seq) to be called after a delay.
type ClearBetMessage struct {
	After time.Duration
	Seq   int
}

func (RefreshIdentity) isEffect() {}
func (ClearBetMessage) isEffect() {}

// Outcome is what applying one input produced.
type Outcome struct {
	Events  []events.Event
	Effects []Effect
}

func (o *Outcome) emit(ev events.Event) {
	o.Events = append(o.Events, ev)
}

func (o *Outcome) schedule(e Effect) {
	o.Effects = append(o.Effects, e)
}

// Machine derives the round state from server frames and reconciles pending
// bets against confirmations. It does no I/O and is driven from a single
// goroutine.
type Machine struct {
	config  Config
	session Session
	ledger  *bet.Ledger

	phase      Phase
	history    []protocol.HistoryEntry
	lastResult *protocol.Result
	activeBets []string
	betMessage string
	messageSeq int

	round        int
	refreshArmed bool
}

func NewMachine(config Config, s Session, ledger *bet.Ledger) *Machine {
	return &Machine{
		config:  config,
		session: s,
		ledger:  ledger,
		phase:   Idle(),
	}
}

// Apply handles one decoded frame. Every handler is safe on any prior phase.
func (m *Machine) Apply(env protocol.Envelope) Outcome {
	var out Outcome
	if env.ServerTime != "" {
		out.emit(events.ServerClock{ServerTime: env.ServerTime})
	}

	switch msg := env.Message.(type) {
	case protocol.Timer:
		m.applyTimer(msg, &out)
	case protocol.Status:
		m.applyStatus(msg, &out)
	case protocol.Result:
		m.applyResult(msg, &out)
	case protocol.Init:
		m.replaceHistory(msg.History, &out)
	case protocol.BetConfirmed:
		m.applyBetConfirmed(msg, &out)
	case protocol.Error:
		m.applyError(msg, &out)
	case protocol.Unknown:
		log.Debug().Str("type", msg.Type).Msg("ignoring unknown frame")
	default:
		log.Debug().Str("type", string(env.Message.Kind())).Msg("ignoring unhandled frame")
	}
	return out
}

func (m *Machine) applyTimer(msg protocol.Timer, out *Outcome) {
	if msg.Value <= 0 {
		m.setPhase(Locked(), out)
		return
	}

	// A countdown going up means a round boundary fell into a gap.
	if m.phase.Kind != events.PhaseBetting || msg.Value > m.phase.SecondsRemaining {
		m.openWindow(out)
	}
	m.setPhase(Betting(msg.Value), out)

	if !m.refreshArmed || msg.Value > m.config.RefreshThreshold {
		return
	}
	if _, ok := m.session.Identity(); !ok {
		return
	}
	m.refreshArmed = false
	if n := m.ledger.DropBefore(m.round); n > 0 {
		log.Debug().Int("dropped", n).Int("round", m.round).Msg("dropped unconfirmed bets of earlier rounds")
	}
	m.clearActiveBets(out)
	out.schedule(RefreshIdentity{})
}

func (m *Machine) openWindow(out *Outcome) {
	m.round++
	m.refreshArmed = true
	m.ledger.MarkStale()
	m.clearActiveBets(out)
	log.Debug().Int("round", m.round).Msg("betting window opened")
}

func (m *Machine) applyStatus(msg protocol.Status, out *Outcome) {
	if msg.Value != protocol.StatusRolling {
		log.Debug().Str("status", msg.Value).Msg("ignoring unknown status")
		return
	}
	m.setPhase(Rolling(), out)
}

func (m *Machine) applyResult(msg protocol.Result, out *Outcome) {
	result := msg
	m.lastResult = &result
	m.setPhase(Resolved(msg.Number, msg.Color), out)
	out.emit(events.ResultShown{Number: msg.Number, Color: msg.Color})
	m.replaceHistory(msg.History, out)

	if identity, ok := m.session.Identity(); ok {
		if payout, won := msg.Winners[identity.Key()]; won {
			out.emit(events.RoundOutcome{Won: true, Payout: payout, Number: msg.Number})
			out.schedule(RefreshIdentity{After: m.config.WinRefreshDelay})
		} else if len(m.activeBets) > 0 {
			out.emit(events.RoundOutcome{Won: false, Number: msg.Number})
		}
	}
	out.schedule(ClearBetMessage{After: m.config.BetMessageTTL, Seq: m.messageSeq})
}

func (m *Machine) applyBetConfirmed(msg protocol.BetConfirmed, out *Outcome) {
	if m.session.Apply(session.BalanceUpdate{Balance: msg.NewBalance}) {
		out.emit(events.BalanceChanged{Balance: msg.NewBalance})
	} else {
		log.Debug().Msg("bet confirmation without a session")
	}

	pending, matched := m.ledger.Match(msg.CorrelationID)
	display := (matched && !pending.Stale) || (!matched && msg.CorrelationID == "")
	if display && msg.BetInfo != "" {
		m.activeBets = append(m.activeBets, msg.BetInfo)
		out.emit(events.ActiveBetsChanged{Bets: m.ActiveBets()})
	}
	if matched && pending.Stale {
		log.Debug().Str("bet_id", pending.ID).Msg("late confirmation of an earlier round")
	}

	if msg.Message != "" {
		m.showMessage(msg.Message, out)
	}
}

func (m *Machine) applyError(msg protocol.Error, out *Outcome) {
	out.emit(events.ServerError{Message: msg.Message})
	if pending, ok := m.ledger.Match(msg.CorrelationID); ok {
		out.emit(events.BetRejected{ID: pending.ID, Reason: msg.Message})
	}
}

// ClearBetMessage clears the transient message unless a newer one replaced it.
func (m *Machine) ClearBetMessage(seq int) Outcome {
	var out Outcome
	if seq != m.messageSeq || m.betMessage == "" {
		return out
	}
	m.betMessage = ""
	out.emit(events.BetMessage{})
	return out
}

// HandleReconnected is called when a new connection replaces a dead one.
// Confirmations for bets sent on the old connection will never arrive, so
// those bets are dropped. The stream may have skipped a round boundary, so
// the next countdown opens a new window.
func (m *Machine) HandleReconnected() Outcome {
	var out Outcome
	if n := m.ledger.Clear(); n > 0 {
		log.Debug().Int("dropped", n).Msg("dropped bets sent on the closed connection")
	}
	m.refreshArmed = false
	m.setPhase(Idle(), &out)
	if _, ok := m.session.Identity(); ok {
		out.schedule(RefreshIdentity{})
	}
	return out
}

// HandleLoggedOut drops everything tied to the previous player.
func (m *Machine) HandleLoggedOut() Outcome {
	var out Outcome
	m.ledger.Clear()
	m.clearActiveBets(&out)
	if m.betMessage != "" {
		m.messageSeq++
		m.betMessage = ""
		out.emit(events.BetMessage{})
	}
	return out
}

func (m *Machine) setPhase(p Phase, out *Outcome) {
	m.phase = p
	out.emit(p.event())
}

func (m *Machine) replaceHistory(history []protocol.HistoryEntry, out *Outcome) {
	m.history = append([]protocol.HistoryEntry(nil), history...)
	out.emit(events.HistoryReplaced{History: m.History()})
}

func (m *Machine) clearActiveBets(out *Outcome) {
	if len(m.activeBets) == 0 {
		return
	}
	m.activeBets = nil
	out.emit(events.ActiveBetsChanged{Bets: []string{}})
}

func (m *Machine) showMessage(text string, out *Outcome) {
	m.messageSeq++
	m.betMessage = text
	out.emit(events.BetMessage{Text: text})
	out.schedule(ClearBetMessage{After: m.config.BetMessageTTL, Seq: m.messageSeq})
}

func (m *Machine) Phase() Phase {
	return m.phase
}

// Round is the number of betting windows seen so far.
func (m *Machine) Round() int {
	return m.round
}

func (m *Machine) History() []protocol.HistoryEntry {
	return append([]protocol.HistoryEntry(nil), m.history...)
}

func (m *Machine) ActiveBets() []string {
	return append([]string{}, m.activeBets...)
}

func (m *Machine) BetMessage() string {
	return m.betMessage
}

// LastResult returns the most recent result frame, if any.
func (m *Machine) LastResult() (protocol.Result, bool) {
	if m.lastResult == nil {
		return protocol.Result{}, false
	}
	return *m.lastResult, true
}
