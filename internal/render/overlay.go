package render

import (
	"fmt"

	"github.com/coreman2200/ledgfx/internal/canvas"
	"github.com/coreman2200/ledgfx/internal/effect"
	"github.com/coreman2200/ledgfx/internal/errs"
)

// OverlayHandle is exclusive ownership of a device's overlay layer. While it is
// held the compositor blends the layer but never runs an animation on it.
type OverlayHandle struct {
	dev      *Device
	layer    *Layer
	released bool
}

// ClaimOverlay resolves or creates the overlay layer, clears it, makes it visible
// and hands it to the caller.
func (d *Device) ClaimOverlay() (*OverlayHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.overlay != nil {
		return nil, fmt.Errorf("device %s overlay already claimed: %w", d.Name, errs.ErrResourceExhausted)
	}
	l := d.layers[OverlayIndex]
	if l == nil {
		l = newLayer(d, OverlayIndex, DefaultLayerConfig())
		d.layers[OverlayIndex] = l
	}
	if l.anim != nil {
		l.anim = nil
		d.arena.Release(l.id)
	}
	l.effect = effect.None{}
	l.claimed = true
	l.visible = true
	l.dirty = true
	l.Clear()
	h := &OverlayHandle{dev: d, layer: l}
	d.overlay = h
	return h, nil
}

func (h *OverlayHandle) Device() *Device { return h.dev }

// Render clears the overlay and calls fn with it and with layer 0 as the read-only
// base (nil when there is none). The base is layer 0 as last composited, with its
// effect applied. It runs under the device lock.
func (h *OverlayHandle) Render(fn func(dst, base *canvas.Canvas)) {
	d := h.dev
	d.mu.Lock()
	defer d.mu.Unlock()
	if h.released {
		return
	}
	h.layer.Clear()
	var base *canvas.Canvas
	switch l0 := d.layers[0]; {
	case l0 == nil:
	case d.baseOK:
		base = d.base
	default:
		base = l0.Canvas
	}
	fn(h.layer.Canvas, base)
	h.layer.dirty = true
}

// Release clears and hides the overlay and gives the layer back. Safe to call twice.
func (h *OverlayHandle) Release() {
	d := h.dev
	d.mu.Lock()
	defer d.mu.Unlock()
	if h.released {
		return
	}
	h.released = true
	h.layer.Clear()
	h.layer.visible = false
	h.layer.claimed = false
	h.layer.dirty = true
	if d.overlay == h {
		d.overlay = nil
	}
}
