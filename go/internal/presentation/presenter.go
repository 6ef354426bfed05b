package presentation

import (
	"sync"

	"github.com/mcdev12/roulette/go/internal/events"
)

// Presenter renders events. Implementations never call back into game state.
type Presenter interface {
	Present(ev events.Event)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(ev events.Event)

func (f PresenterFunc) Present(ev events.Event) { f(ev) }

// Fanout forwards every event to each presenter in order.
type Fanout []Presenter

func (f Fanout) Present(ev events.Event) {
	for _, p := range f {
		p.Present(ev)
	}
}

// Recorder keeps every event it is given. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Present(ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded events of one type, oldest first.
func (r *Recorder) OfType(t events.Type) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, ev := range r.events {
		if ev.EventType() == t {
			out = append(out, ev)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
