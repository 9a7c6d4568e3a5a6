package media

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledgfx/internal/canvas"
	"github.com/coreman2200/ledgfx/internal/color"
	"github.com/coreman2200/ledgfx/internal/errs"
	"github.com/coreman2200/ledgfx/internal/render"
)

// State is the lifecycle position of a Player.
type State int

const (
	Idle       State = iota // nothing loaded
	Loaded                  // image held, not on a layer
	Displaying              // drawing onto a layer
	Stopped                 // image held, layer released
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loaded:
		return "loaded"
	case Displaying:
		return "displaying"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Player shows one image on one layer. Every transition goes through a method
// so a displayed image is always detached from its layer before it is freed.
type Player struct {
	mu     sync.Mutex
	state  State
	img    *Image
	layer  *render.Layer
	frames [][]color.RGB
	frame  int
	next   time.Time
}

func NewPlayer() *Player { return &Player{} }

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Image returns the held image, or nil when Idle.
func (p *Player) Image() *Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.img
}

// Load replaces the held image. A displayed image is stopped first.
func (p *Player) Load(img *Image) error {
	if img == nil || len(img.Frames) == 0 {
		return fmt.Errorf("load: %v: %w", errEmpty, errs.ErrInvalidArgument)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Displaying {
		p.stopLocked()
	}
	p.freeLocked()
	p.img = img
	p.state = Loaded
	return nil
}

// Play shows the held image on l starting at now. Any animation on l is
// stopped. Playing while already displaying moves the image to l.
func (p *Player) Play(l *render.Layer, now time.Time) error {
	if l == nil {
		return fmt.Errorf("play: nil layer: %w", errs.ErrInvalidArgument)
	}
	if l.Index() == render.OverlayIndex {
		return fmt.Errorf("play: layer %d is reserved: %w", l.Index(), errs.ErrInvalidArgument)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case Idle:
		return fmt.Errorf("play: nothing loaded: %w", errs.ErrInvalidArgument)
	case Displaying:
		if p.layer == l {
			return nil
		}
		p.stopLocked()
	}
	frames, err := Fit(p.img, l.Geom)
	if err != nil {
		return err
	}
	l.StopAnimation()
	p.layer = l
	p.frames = frames
	p.frame = 0
	p.show(now)
	p.state = Displaying
	log.Debug().Str("device", l.Device().Name).Int("layer", l.Index()).
		Int("frames", len(frames)).Msg("image displaying")
	return nil
}

// Tick advances an animated image; it reports whether a new frame was drawn.
func (p *Player) Tick(now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Displaying || len(p.frames) < 2 || now.Before(p.next) {
		return false
	}
	p.frame = (p.frame + 1) % len(p.frames)
	p.show(now)
	return true
}

func (p *Player) show(now time.Time) {
	px := p.frames[p.frame]
	p.layer.Draw(func(c *canvas.Canvas) { c.CopyFrom(px) })
	d := DefaultDelay
	if p.frame < len(p.img.Delays) {
		d = p.img.Delays[p.frame]
	}
	p.next = now.Add(d)
}

// Stop clears the layer and keeps the image. Stop outside Displaying is a no-op.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Displaying {
		p.stopLocked()
	}
}

func (p *Player) stopLocked() {
	p.layer.Draw(func(c *canvas.Canvas) { c.Clear() })
	p.layer = nil
	p.frames = nil
	p.state = Stopped
}

// Unload stops and frees the image, returning to Idle.
func (p *Player) Unload() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Displaying {
		p.stopLocked()
	}
	p.freeLocked()
}

func (p *Player) freeLocked() {
	p.img = nil
	p.state = Idle
}
