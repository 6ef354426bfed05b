package game

import (
	"context"
	"errors"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/roulette/go/internal/bet"
	"github.com/mcdev12/roulette/go/internal/connection"
	"github.com/mcdev12/roulette/go/internal/events"
	"github.com/mcdev12/roulette/go/internal/models"
	"github.com/mcdev12/roulette/go/internal/presentation"
	"github.com/mcdev12/roulette/go/internal/protocol"
	"github.com/mcdev12/roulette/go/internal/round"
	"github.com/mcdev12/roulette/go/internal/session"
	"github.com/rs/zerolog/log"
)

// ErrStopped is returned by commands issued after the loop has exited.
var ErrStopped = errors.New("game loop stopped")

const inboxSize = 256

// Refresher pulls the authoritative identity.
type Refresher interface {
	RefreshIdentity(ctx context.Context) (*models.Identity, error)
}

// Loop serialises all game state work on one goroutine. The connection
// manager, timers, refreshes and user commands only post messages to it.
type Loop struct {
	machine   *round.Machine
	submitter *bet.Submitter
	ledger    *bet.Ledger
	refresher Refresher
	presenter presentation.Presenter
	clock     clockwork.Clock

	inbox   chan Msg
	stopped chan struct{}

	connected bool
}

type Option func(*Loop)

func WithClock(c clockwork.Clock) Option {
	return func(l *Loop) { l.clock = c }
}

// NewLoop wires a loop. The machine, submitter and ledger must share the
// same ledger and are only touched from the loop goroutine afterwards.
func NewLoop(machine *round.Machine, submitter *bet.Submitter, ledger *bet.Ledger, refresher Refresher, presenter presentation.Presenter, opts ...Option) *Loop {
	l := &Loop{
		machine:   machine,
		submitter: submitter,
		ledger:    ledger,
		refresher: refresher,
		presenter: presenter,
		clock:     clockwork.NewRealClock(),
		inbox:     make(chan Msg, inboxSize),
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run handles messages until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.stopped)
	log.Info().Msg("game loop started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("game loop shutting down")
			return ctx.Err()
		case msg := <-l.inbox:
			l.handle(ctx, msg)
		}
	}
}

func (l *Loop) handle(ctx context.Context, msg Msg) {
	switch m := msg.(type) {
	case frameReceived:
		out := l.machine.Apply(m.env)
		l.publish(out.Events...)
		l.schedule(ctx, out.Effects)

	case connected:
		l.connected = true
		l.publish(events.ConnectionChanged{Connected: true, Generation: m.info.Generation})
		if m.info.Generation > 1 {
			out := l.machine.HandleReconnected()
			l.publish(out.Events...)
			l.schedule(ctx, out.Effects)
		}

	case disconnected:
		l.connected = false
		ev := events.ConnectionChanged{Connected: false, Generation: m.info.Generation}
		if m.err != nil {
			ev.Error = m.err.Error()
		}
		l.publish(ev)

	case effectFired:
		switch e := m.effect.(type) {
		case round.RefreshIdentity:
			l.startRefresh(ctx)
		case round.ClearBetMessage:
			out := l.machine.ClearBetMessage(e.Seq)
			l.publish(out.Events...)
		}

	case refreshDone:
		if m.err != nil {
			if errors.Is(m.err, session.ErrUnauthorized) || errors.Is(m.err, session.ErrNotLoggedIn) {
				// the session listener reports the logout
				return
			}
			log.Warn().Err(m.err).Msg("identity refresh failed")
			return
		}
		l.publish(events.BalanceChanged{Balance: m.identity.Balance})

	case sessionChanged:
		l.publish(events.SessionChanged{LoggedIn: m.change.LoggedIn, Identity: m.change.Identity, Reason: m.change.Reason})
		if !m.change.LoggedIn {
			out := l.machine.HandleLoggedOut()
			l.publish(out.Events...)
		}

	case placeBet:
		pending, err := l.submitter.Submit(m.betType, m.value)
		if err != nil {
			l.publish(events.BetRejected{Reason: err.Error(), Local: true})
		} else {
			l.publish(events.BetPending{ID: pending.ID, Type: pending.Type, Value: pending.Value, Amount: pending.Amount})
		}
		m.reply <- placeBetResult{pending: pending, err: err}

	case setStake:
		m.reply <- l.submitter.SetStake(m.amount)

	case snapshotRequest:
		m.reply <- Snapshot{
			Phase:      l.machine.Phase(),
			History:    l.machine.History(),
			ActiveBets: l.machine.ActiveBets(),
			Pending:    l.ledger.Pending(),
			BetMessage: l.machine.BetMessage(),
			Stake:      l.submitter.Stake(),
			Connected:  l.connected,
		}
	}
}

func (l *Loop) publish(evs ...events.Event) {
	for _, ev := range evs {
		l.presenter.Present(ev)
	}
}

// startRefresh pulls the identity off-loop and posts the result back.
func (l *Loop) startRefresh(ctx context.Context) {
	go func() {
		identity, err := l.refresher.RefreshIdentity(ctx)
		l.post(refreshDone{identity: identity, err: err})
	}()
}

// post queues msg unless the loop has stopped.
func (l *Loop) post(msg Msg) bool {
	select {
	case l.inbox <- msg:
		return true
	case <-l.stopped:
		return false
	}
}

// HandleConnected implements connection.FrameHandler.
func (l *Loop) HandleConnected(info connection.Info) {
	l.post(connected{info: info})
}

// HandleFrame implements connection.FrameHandler.
func (l *Loop) HandleFrame(info connection.Info, env protocol.Envelope) {
	l.post(frameReceived{info: info, env: env})
}

// HandleDisconnected implements connection.FrameHandler.
func (l *Loop) HandleDisconnected(info connection.Info, err error) {
	l.post(disconnected{info: info, err: err})
}

// HandleSessionChange is a session.Listener.
func (l *Loop) HandleSessionChange(change session.Change) {
	l.post(sessionChanged{change: change})
}

// PlaceBet submits a wager at the current stake and waits for the local
// outcome. A nil error means the frame was sent, not that the bet was accepted.
func (l *Loop) PlaceBet(ctx context.Context, betType protocol.BetType, value string) (bet.PendingBet, error) {
	reply := make(chan placeBetResult, 1)
	if !l.post(placeBet{betType: betType, value: value, reply: reply}) {
		return bet.PendingBet{}, ErrStopped
	}
	select {
	case res := <-reply:
		return res.pending, res.err
	case <-ctx.Done():
		return bet.PendingBet{}, ctx.Err()
	case <-l.stopped:
		return bet.PendingBet{}, ErrStopped
	}
}

// SetStake changes the stake for later bets. Invalid amounts return
// bet.ErrInvalidStake.
func (l *Loop) SetStake(ctx context.Context, amount float64) error {
	reply := make(chan error, 1)
	if !l.post(setStake{amount: amount, reply: reply}) {
		return ErrStopped
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		return ErrStopped
	}
}

// Refresh requests an authoritative identity pull now.
func (l *Loop) Refresh() error {
	if !l.post(effectFired{effect: round.RefreshIdentity{}}) {
		return ErrStopped
	}
	return nil
}

func (l *Loop) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	if !l.post(snapshotRequest{reply: reply}) {
		return Snapshot{}, ErrStopped
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-l.stopped:
		return Snapshot{}, ErrStopped
	}
}

var _ connection.FrameHandler = (*Loop)(nil)
