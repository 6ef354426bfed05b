package round

import (
	"fmt"

	"github.com/mcdev12/roulette/go/internal/events"
	"github.com/mcdev12/roulette/go/internal/protocol"
)

// Phase is the current stage of the round. SecondsRemaining is only set for
// Betting; Number and Color only for Resolved. Use the constructors.
type Phase struct {
	Kind             events.Phase
	SecondsRemaining int
	Number           int
	Color            protocol.Color
}

func Idle() Phase {
	return Phase{Kind: events.PhaseIdle}
}

func Betting(secondsRemaining int) Phase {
	return Phase{Kind: events.PhaseBetting, SecondsRemaining: secondsRemaining}
}

func Locked() Phase {
	return Phase{Kind: events.PhaseLocked}
}

func Rolling() Phase {
	return Phase{Kind: events.PhaseRolling}
}

func Resolved(number int, color protocol.Color) Phase {
	return Phase{Kind: events.PhaseResolved, Number: number, Color: color}
}

func (p Phase) String() string {
	switch p.Kind {
	case events.PhaseBetting:
		return fmt.Sprintf("betting(%ds)", p.SecondsRemaining)
	case events.PhaseResolved:
		return fmt.Sprintf("resolved(%d %s)", p.Number, p.Color)
	default:
		return string(p.Kind)
	}
}

func (p Phase) event() events.PhaseChanged {
	return events.PhaseChanged{
		Phase:            p.Kind,
		SecondsRemaining: p.SecondsRemaining,
		Number:           p.Number,
		Color:            p.Color,
	}
}
