package render

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledgfx/internal/animation"
	"github.com/coreman2200/ledgfx/internal/canvas"
	"github.com/coreman2200/ledgfx/internal/color"
	"github.com/coreman2200/ledgfx/internal/effect"
	"github.com/coreman2200/ledgfx/internal/errs"
	"github.com/coreman2200/ledgfx/internal/layout"
)

// Device is one physical LED arrangement and its layer stack.
type Device struct {
	Name string
	Geom layout.Geometry

	// Power is applied after brightness; a zero budget disables it.
	Power PowerLimit
	// Clock stamps effect start times; tests replace it.
	Clock func() time.Time

	mu         sync.Mutex
	brightness uint8
	layers     [MaxLayers]*Layer
	out        []color.RGB
	scratch    []color.RGB
	// base holds layer 0 as last shown, effect included; baseOK is false until
	// layer 0 has been composed.
	base       *canvas.Canvas
	baseOK     bool
	drv        Driver
	arena      *animation.Arena
	overlay    *OverlayHandle
}

func NewDevice(name string, g layout.Geometry, drv Driver) (*Device, error) {
	if name == "" {
		return nil, fmt.Errorf("device name is empty: %w", errs.ErrInvalidArgument)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &Device{
		Name:       name,
		Geom:       g,
		brightness: 255,
		out:        make([]color.RGB, g.Count),
		scratch:    make([]color.RGB, g.Count),
		base:       canvas.New(g),
		drv:        drv,
		arena:      animation.NewArena(time.Now().UnixNano()),
	}, nil
}

func (d *Device) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now()
}

func (d *Device) Brightness() uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.brightness
}

func (d *Device) SetBrightness(b uint8) {
	d.mu.Lock()
	d.brightness = b
	d.mu.Unlock()
}

// CreateLayer takes the lowest free index, skipping the overlay slot.
func (d *Device) CreateLayer(cfg LayerConfig) (*Layer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.layers {
		if i == OverlayIndex || d.layers[i] != nil {
			continue
		}
		l := newLayer(d, i, cfg)
		d.layers[i] = l
		return l, nil
	}
	return nil, fmt.Errorf("device %s: %d layers: %w", d.Name, MaxLayers, errs.ErrResourceExhausted)
}

// Layer returns layer i. Layer 0 is created with defaults on first access when
// the device has no layers yet.
func (d *Device) Layer(i int) (*Layer, error) {
	if i < 0 || i >= MaxLayers {
		return nil, fmt.Errorf("layer %d: %w", i, errs.ErrInvalidArgument)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if l := d.layers[i]; l != nil {
		return l, nil
	}
	if i == 0 && d.emptyLocked() {
		l := newLayer(d, 0, DefaultLayerConfig())
		d.layers[0] = l
		return l, nil
	}
	return nil, fmt.Errorf("device %s layer %d: %w", d.Name, i, errs.ErrNotFound)
}

func (d *Device) emptyLocked() bool {
	for _, l := range d.layers {
		if l != nil {
			return false
		}
	}
	return true
}

// DestroyLayer drops layer i and its generator memory.
func (d *Device) DestroyLayer(i int) error {
	if i < 0 || i >= MaxLayers {
		return fmt.Errorf("layer %d: %w", i, errs.ErrInvalidArgument)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	l := d.layers[i]
	if l == nil {
		return fmt.Errorf("device %s layer %d: %w", d.Name, i, errs.ErrNotFound)
	}
	if l.claimed {
		return fmt.Errorf("layer %d is owned by the text overlay: %w", i, errs.ErrInvalidArgument)
	}
	d.arena.Release(l.id)
	d.layers[i] = nil
	return nil
}

// Layers returns the existing layers in ascending index order.
func (d *Device) Layers() []*Layer {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Layer, 0, MaxLayers)
	for _, l := range d.layers {
		if l != nil {
			out = append(out, l)
		}
	}
	return out
}

// Frame returns a copy of the last composited frame.
func (d *Device) Frame() []color.RGB {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]color.RGB(nil), d.out...)
}

// Close closes the driver if it can be closed.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if c, ok := d.drv.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// compose renders one frame into d.out. Caller holds d.mu.
func (d *Device) compose(now time.Time, corr *Correction) {
	for i := range d.out {
		d.out[i] = color.Black
	}
	d.baseOK = false
	for _, l := range d.layers {
		if l == nil || !l.visible {
			continue
		}
		if l.anim != nil && !l.claimed {
			if d.arena.Step(l.id, l.Canvas, l.anim, now) {
				l.dirty = true
			}
		}
		src := l.Pix
		if !effect.IsNone(l.effect) {
			copy(d.scratch, l.Pix)
			res := l.fx.Apply(d.scratch, d.Geom, l.effect, now)
			if res.Finished {
				log.Debug().Str("device", d.Name).Int("layer", l.index).Str("effect", l.effect.Name()).Msg("effect finished")
				l.effect = effect.None{}
			}
			src = d.scratch
		}
		if l.index == 0 {
			copy(d.base.Pix, src)
			d.baseOK = true
		}
		Composite(d.out, src, l.blend, l.opacity)
		l.dirty = false
	}
	if corr != nil {
		corr.Apply(d.out)
	}
	if d.brightness != 255 {
		for i := range d.out {
			d.out[i] = color.Scale(d.out[i], d.brightness)
		}
	}
	d.Power.Limit(d.out)
}

// RenderFrame composes and writes one frame at now without a correction stage.
func (d *Device) RenderFrame(now time.Time) error {
	return d.render(now, nil)
}

func (d *Device) render(now time.Time, corr *Correction) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.compose(now, corr)
	if d.drv == nil {
		return nil
	}
	if err := d.drv.Write(d.out); err != nil {
		return fmt.Errorf("device %s write: %w", d.Name, err)
	}
	return nil
}
