package animation

import (
	"math/rand"
	"sync"
	"time"

	"github.com/coreman2200/ledgfx/internal/canvas"
)

// LayerID identifies the layer whose memory a generator is using.
type LayerID uint64

// state is the lazily allocated memory of one layer's stateful generator.
type state struct {
	kind    Kind
	heat    []uint8
	drops   []drop
	columns []column
	sparks  []spark
}

type drop struct {
	active bool
	y      float64
	speed  float64
}

type column struct {
	head   int
	length int
	wait   int
	every  int
}

type sparkPhase uint8

const (
	sparkOff sparkPhase = iota
	sparkIn
	sparkHold
	sparkOut
)

type spark struct {
	phase sparkPhase
	level uint8
	hold  uint8
}

// Arena owns generator memory for every layer.
type Arena struct {
	mu     sync.Mutex
	states map[LayerID]*state
	rng    *rand.Rand
}

func NewArena(seed int64) *Arena {
	return &Arena{states: map[LayerID]*state{}, rng: rand.New(rand.NewSource(seed))}
}

// Reset discards the memory of a layer; it is rebuilt on the next frame.
func (a *Arena) Reset(id LayerID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if st, ok := a.states[id]; ok {
		st.reset()
	}
}

// Release frees the memory of a destroyed layer.
func (a *Arena) Release(id LayerID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.states, id)
}

func (st *state) reset() {
	for i := range st.heat {
		st.heat[i] = 0
	}
	for i := range st.drops {
		st.drops[i] = drop{}
	}
	for i := range st.columns {
		st.columns[i] = column{}
	}
	for i := range st.sparks {
		st.sparks[i] = spark{}
	}
}

// get returns the layer's state, allocating or re-kinding it lazily.
func (a *Arena) get(id LayerID, k Kind) *state {
	st, ok := a.states[id]
	if !ok || st.kind != k {
		st = &state{kind: k}
		a.states[id] = st
	}
	return st
}

// Step runs b on c if it is due and reports whether it ran. On the first frame
// after a (re)start it resets the layer's generator memory.
func (a *Arena) Step(id LayerID, c *canvas.Canvas, b *Binding, now time.Time) bool {
	if b == nil || !b.Due(now) {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	cold := b.Cold()
	if cold {
		b.started = now
		if b.Entry.Stateful() {
			st := a.get(id, b.Entry.Kind)
			st.reset()
		}
	}
	f := frameCtx{c: c, p: b.Params, t: b.Elapsed(now), cold: cold, rng: a.rng}
	if b.Entry.Stateful() {
		f.st = a.get(id, b.Entry.Kind)
	}
	run(b.Entry.Kind, &f)
	b.lastRun = now
	return true
}

// frameCtx is everything a generator sees for one frame.
type frameCtx struct {
	c    *canvas.Canvas
	p    Params
	t    time.Duration
	cold bool
	rng  *rand.Rand
	st   *state
}

// phase is the position in the current cycle, 0..1.
func (f *frameCtx) phase() float64 {
	per := f.p.period()
	return float64(f.t%per) / float64(per)
}

func run(k Kind, f *frameCtx) {
	switch k {
	case Solid:
		f.c.Fill(f.p.Color)
	case Rainbow:
		rainbow(f)
	case RainbowCycle:
		rainbowCycle(f)
	case Breathing:
		breathing(f)
	case Chase:
		chase(f)
	case Comet:
		comet(f)
	case Twinkle:
		twinkle(f)
	case Sparkle:
		sparkle(f)
	case Fire:
		fire(f)
	case Rain:
		rain(f)
	case CodeRain:
		codeRain(f)
	case Wave:
		wave(f)
	case Gradient:
		gradient(f)
	case Spin:
		spin(f)
	case Ripple:
		ripple(f)
	case Plasma:
		plasma(f)
	case Sweep:
		sweep(f)
	case RGBTest:
		rgbTest(f)
	}
}
