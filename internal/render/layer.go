package render

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledgfx/internal/animation"
	"github.com/coreman2200/ledgfx/internal/canvas"
	"github.com/coreman2200/ledgfx/internal/effect"
	"github.com/coreman2200/ledgfx/internal/errs"
)

var layerIDs atomic.Uint64

// Layer is one drawable buffer of a device. The embedded canvas never changes size.
//
// Drawing through the canvas assumes a single writer per layer; the attribute and
// binding setters below take the device lock.
type Layer struct {
	*canvas.Canvas

	id    animation.LayerID
	index int
	dev   *Device

	blend   BlendMode
	opacity uint8
	visible bool
	dirty   bool
	claimed bool

	anim   *animation.Binding
	effect effect.Config
	fx     *effect.State
}

func newLayer(d *Device, index int, cfg LayerConfig) *Layer {
	id := animation.LayerID(layerIDs.Add(1))
	return &Layer{
		Canvas:  canvas.New(d.Geom),
		id:      id,
		index:   index,
		dev:     d,
		blend:   cfg.Blend,
		opacity: cfg.Opacity,
		visible: cfg.Visible,
		dirty:   true,
		effect:  effect.None{},
		fx:      effect.NewState(int64(id)),
	}
}

func (l *Layer) Index() int { return l.index }
func (l *Layer) ID() animation.LayerID { return l.id }
func (l *Layer) Device() *Device { return l.dev }

func (l *Layer) Blend() BlendMode {
	l.dev.mu.Lock()
	defer l.dev.mu.Unlock()
	return l.blend
}

func (l *Layer) SetBlend(m BlendMode) {
	l.dev.mu.Lock()
	l.blend = m
	l.dirty = true
	l.dev.mu.Unlock()
}

func (l *Layer) Opacity() uint8 {
	l.dev.mu.Lock()
	defer l.dev.mu.Unlock()
	return l.opacity
}

func (l *Layer) SetOpacity(o uint8) {
	l.dev.mu.Lock()
	l.opacity = o
	l.dirty = true
	l.dev.mu.Unlock()
}

func (l *Layer) Visible() bool {
	l.dev.mu.Lock()
	defer l.dev.mu.Unlock()
	return l.visible
}

func (l *Layer) SetVisible(v bool) {
	l.dev.mu.Lock()
	l.visible = v
	l.dirty = true
	l.dev.mu.Unlock()
}

// MarkDirty flags the layer for the next composite.
func (l *Layer) MarkDirty() {
	l.dev.mu.Lock()
	l.dirty = true
	l.dev.mu.Unlock()
}

func (l *Layer) Dirty() bool {
	l.dev.mu.Lock()
	defer l.dev.mu.Unlock()
	return l.dirty
}

// Draw runs fn on the layer canvas under the device lock.
func (l *Layer) Draw(fn func(c *canvas.Canvas)) {
	l.dev.mu.Lock()
	defer l.dev.mu.Unlock()
	fn(l.Canvas)
	l.dirty = true
}

// StartAnimation binds a catalog entry. The binding starts cold, so stateful
// generators reset their memory on the next frame.
func (l *Layer) StartAnimation(name string, p animation.Params) error {
	e, err := animation.Lookup(name)
	if err != nil {
		return err
	}
	return l.StartEntry(e, p)
}

func (l *Layer) StartEntry(e animation.Entry, p animation.Params) error {
	if !e.AppliesTo(l.dev.Geom.Class) {
		return fmt.Errorf("animation %q on %s: %w", e.Name, l.dev.Geom.Class, errs.ErrUnsupported)
	}
	l.dev.mu.Lock()
	defer l.dev.mu.Unlock()
	if l.claimed {
		return fmt.Errorf("layer %d is owned by the text overlay: %w", l.index, errs.ErrInvalidArgument)
	}
	l.anim = animation.NewBinding(e, p)
	l.dev.arena.Reset(l.id)
	log.Debug().Str("device", l.dev.Name).Int("layer", l.index).Str("animation", e.Name).Msg("animation started")
	return nil
}

// StopAnimation clears the binding and leaves the pixels alone. Stopping a layer
// with no animation is a no-op.
func (l *Layer) StopAnimation() {
	l.dev.mu.Lock()
	defer l.dev.mu.Unlock()
	if l.anim == nil {
		return
	}
	l.anim = nil
	l.dev.arena.Release(l.id)
}

// Animation returns the active binding's entry name, or "".
func (l *Layer) Animation() string {
	l.dev.mu.Lock()
	defer l.dev.mu.Unlock()
	if l.anim == nil {
		return ""
	}
	return l.anim.Entry.Name
}

// AnimationParams returns the active binding's params.
func (l *Layer) AnimationParams() (animation.Params, bool) {
	l.dev.mu.Lock()
	defer l.dev.mu.Unlock()
	if l.anim == nil {
		return animation.Params{}, false
	}
	return l.anim.Params, true
}

// SetEffect replaces the effect and stamps its start time. None clears it.
func (l *Layer) SetEffect(cfg effect.Config) {
	l.dev.mu.Lock()
	defer l.dev.mu.Unlock()
	if effect.IsNone(cfg) {
		cfg = effect.None{}
	}
	l.effect = cfg
	l.fx.Restart(l.dev.now())
	l.dirty = true
}

func (l *Layer) ClearEffect() { l.SetEffect(effect.None{}) }

func (l *Layer) HasEffect() bool {
	l.dev.mu.Lock()
	defer l.dev.mu.Unlock()
	return !effect.IsNone(l.effect)
}

func (l *Layer) Effect() effect.Config {
	l.dev.mu.Lock()
	defer l.dev.mu.Unlock()
	return l.effect
}
