package game

import (
	"github.com/mcdev12/roulette/go/internal/bet"
	"github.com/mcdev12/roulette/go/internal/connection"
	"github.com/mcdev12/roulette/go/internal/models"
	"github.com/mcdev12/roulette/go/internal/protocol"
	"github.com/mcdev12/roulette/go/internal/round"
	"github.com/mcdev12/roulette/go/internal/session"
)

// Msg is one unit of work for the loop. Every input, whether a frame, a timer
// or a user command, becomes a Msg and is handled to completion in turn.
type Msg interface {
	isMsg()
}

type frameReceived struct {
	info connection.Info
	env  protocol.Envelope
}

type connected struct {
	info connection.Info
}

type disconnected struct {
	info connection.Info
	err  error
}

type effectFired struct {
	effect round.Effect
}

type refreshDone struct {
	identity *models.Identity
	err      error
}

type sessionChanged struct {
	change session.Change
}

type placeBet struct {
	betType protocol.BetType
	value   string
	reply   chan placeBetResult
}

type placeBetResult struct {
	pending bet.PendingBet
	err     error
}

type setStake struct {
	amount float64
	reply  chan error
}

type snapshotRequest struct {
	reply chan Snapshot
}

func (frameReceived) isMsg()   {}
func (connected) isMsg()       {}
func (disconnected) isMsg()    {}
func (effectFired) isMsg()     {}
func (refreshDone) isMsg()     {}
func (sessionChanged) isMsg()  {}
func (placeBet) isMsg()        {}
func (setStake) isMsg()        {}
func (snapshotRequest) isMsg() {}

// Snapshot is a read-only copy of the loop's state.
type Snapshot struct {
	Phase      round.Phase
	History    []protocol.HistoryEntry
	ActiveBets []string
	Pending    []bet.PendingBet
	BetMessage string
	Stake      float64
	Connected  bool
}
