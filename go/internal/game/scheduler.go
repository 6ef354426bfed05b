package game

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/roulette/go/internal/round"
	"github.com/rs/zerolog/log"
)

// schedule runs the effects returned by the machine. Immediate refreshes start
// right away; everything else fires later as an effectFired message.
// Superseded timers are not cancelled: the effects are idempotent overwrites.
func (l *Loop) schedule(ctx context.Context, effects []round.Effect) {
	for _, effect := range effects {
		switch e := effect.(type) {
		case round.RefreshIdentity:
			if e.After <= 0 {
				l.startRefresh(ctx)
				continue
			}
			l.after(ctx, e.After, e)
		case round.ClearBetMessage:
			l.after(ctx, e.After, e)
		}
	}
}

// after posts effect back to the loop once d has elapsed on the loop's clock.
func (l *Loop) after(ctx context.Context, d time.Duration, effect round.Effect) {
	timer := l.clock.NewTimer(d)
	go func(t clockwork.Timer) {
		select {
		case <-t.Chan():
			l.post(effectFired{effect: effect})
		case <-ctx.Done():
			stopAndDrainTimer(t)
		}
	}(timer)

	log.Debug().
		Dur("duration", d).
		Str("effect", effectName(effect)).
		Msg("scheduled effect")
}

// stopAndDrainTimer safely stops a timer and drains its channel to prevent goroutine leaks.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}

func effectName(effect round.Effect) string {
	switch effect.(type) {
	case round.RefreshIdentity:
		return "refresh_identity"
	case round.ClearBetMessage:
		return "clear_bet_message"
	default:
		return "unknown"
	}
}
