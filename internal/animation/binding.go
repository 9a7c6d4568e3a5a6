package animation

import (
	"time"

	"github.com/coreman2200/ledgfx/internal/color"
)

const DefaultSpeed = 50

// Params are the per-instance knobs of a binding.
type Params struct {
	Color color.RGB
	// Speed is 1 (slow) .. 100 (fast); 0 means DefaultSpeed.
	Speed uint8
}

func (p Params) speed() int {
	if p.Speed == 0 {
		return DefaultSpeed
	}
	if p.Speed > 100 {
		return 100
	}
	return int(p.Speed)
}

// period maps speed to a cycle length: 100 -> 500ms, 1 -> ~5s.
func (p Params) period() time.Duration {
	return time.Duration(5000-p.speed()*45) * time.Millisecond
}

// Binding attaches a catalog entry to a layer.
// A zero lastRun is the cold-start sentinel: the next Step resets generator state.
type Binding struct {
	Entry    Entry
	Params   Params
	Interval time.Duration

	started time.Time
	lastRun time.Time
}

// NewBinding returns a binding in the cold-start state.
func NewBinding(e Entry, p Params) *Binding {
	if p.Color.IsBlack() {
		p.Color = color.White
	}
	return &Binding{Entry: e, Params: p, Interval: e.Interval}
}

// Restart returns the binding to the cold-start state.
func (b *Binding) Restart() {
	b.started = time.Time{}
	b.lastRun = time.Time{}
}

// Cold reports whether the binding has not run since (re)start.
func (b *Binding) Cold() bool { return b.lastRun.IsZero() }

// Due reports whether the generator should run at now.
func (b *Binding) Due(now time.Time) bool {
	return b.Cold() || now.Sub(b.lastRun) >= b.Interval
}

// Elapsed is the time since the binding started.
func (b *Binding) Elapsed(now time.Time) time.Duration {
	if b.started.IsZero() {
		return 0
	}
	return now.Sub(b.started)
}
