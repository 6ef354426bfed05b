package connection

import (
	"math"
	"time"
)

// RetryPolicy decides how long to wait before reconnect attempt n (1-based).
// ok == false means give up.
type RetryPolicy interface {
	NextDelay(attempt int) (delay time.Duration, ok bool)
}

// FixedDelay waits the same delay before every attempt. MaxAttempts <= 0
// retries forever.
type FixedDelay struct {
	Delay       time.Duration
	MaxAttempts int
}

func (p FixedDelay) NextDelay(attempt int) (time.Duration, bool) {
	if p.MaxAttempts > 0 && attempt > p.MaxAttempts {
		return 0, false
	}
	return p.Delay, true
}

// ExponentialBackoff doubles (or multiplies by Multiplier) the wait after each
// failed attempt, capped at Max.
type ExponentialBackoff struct {
	Base        time.Duration
	Max         time.Duration
	Multiplier  float64
	MaxAttempts int
}

func (p ExponentialBackoff) NextDelay(attempt int) (time.Duration, bool) {
	if p.MaxAttempts > 0 && attempt > p.MaxAttempts {
		return 0, false
	}
	if attempt < 1 {
		attempt = 1
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 2
	}

	wait := float64(p.Base) * math.Pow(mult, float64(attempt-1))
	if p.Max > 0 && wait > float64(p.Max) {
		return p.Max, true
	}
	if wait > math.MaxInt64 {
		return time.Duration(math.MaxInt64), true
	}
	return time.Duration(wait), true
}

// DefaultRetryPolicy reconnects one second after every closure, forever.
func DefaultRetryPolicy() RetryPolicy {
	return FixedDelay{Delay: time.Second}
}
