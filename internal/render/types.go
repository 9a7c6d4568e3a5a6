package render

import (
	"fmt"
	"strings"

	"github.com/coreman2200/ledgfx/internal/color"
	"github.com/coreman2200/ledgfx/internal/errs"
)

const (
	// MaxLayers is the per-device layer capacity.
	MaxLayers = 8
	// OverlayIndex is the layer reserved for the text overlay.
	OverlayIndex = 1

	DefaultFPS = 60
)

// Driver pushes a device's final frame to hardware.
type Driver interface {
	Write([]color.RGB) error
}

type BlendMode int

const (
	Normal BlendMode = iota
	Add
	Multiply
	Screen
	Overlay
)

func (m BlendMode) String() string {
	switch m {
	case Add:
		return "add"
	case Multiply:
		return "multiply"
	case Screen:
		return "screen"
	case Overlay:
		return "overlay"
	default:
		return "normal"
	}
}

func ParseBlend(s string) (BlendMode, error) {
	switch strings.ToLower(s) {
	case "", "normal":
		return Normal, nil
	case "add":
		return Add, nil
	case "multiply":
		return Multiply, nil
	case "screen":
		return Screen, nil
	case "overlay":
		return Overlay, nil
	}
	return Normal, fmt.Errorf("blend mode %q: %w", s, errs.ErrInvalidArgument)
}

// LayerConfig holds the compositing attributes of a new layer.
type LayerConfig struct {
	Blend   BlendMode
	Opacity uint8
	Visible bool
}

// DefaultLayerConfig is what layer 0 gets when it is auto-created.
func DefaultLayerConfig() LayerConfig {
	return LayerConfig{Blend: Normal, Opacity: 255, Visible: true}
}
