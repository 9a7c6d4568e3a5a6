// Package effect implements the per-layer post-processing pipeline applied after a
// layer's animation has drawn the frame.
package effect

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/coreman2200/ledgfx/internal/color"
	"github.com/coreman2200/ledgfx/internal/errs"
)

// Config is one effect and its parameters. The set of implementations is closed.
type Config interface {
	Name() string
	params() map[string]float64
}

type (
	None       struct{}
	Brightness struct{ Level uint8 }
	Pulse      struct{ Speed, Min uint8 }
	Blink      struct{ Speed uint8 }
	FadeIn     struct {
		Duration   time.Duration
		AutoRemove bool
	}
	FadeOut struct {
		Duration   time.Duration
		AutoRemove bool
	}
	Breathing  struct{ Speed uint8 }
	ColorShift struct{ Speed uint8 }
	Saturation struct{ Factor float64 }
	Invert     struct{}
	Grayscale  struct{}
	// ColorTemp shifts toward warm (negative) or cool (positive), -100..100.
	ColorTemp struct{ Temp int }
	Scanline  struct{ Speed, Width uint8 }
	Wave      struct{ Speed, Amplitude uint8 }
	Strobe    struct{ Speed uint8 }
	Noise     struct{ Amount uint8 }
	Glitch    struct{ Intensity uint8 }
	Rainbow   struct{ Speed, Amount uint8 }
	Sparkle   struct {
		Speed, Density, Decay uint8
		Color                 color.RGB
	}
	Plasma    struct{ Speed, Amount uint8 }
	Sepia     struct{}
	Posterize struct{ Levels uint8 }
	Contrast  struct{ Factor float64 }
	Tint      struct {
		Color  color.RGB
		Amount uint8
	}
	Flicker  struct{ Intensity uint8 }
	Vignette struct{ Strength uint8 }
	Mirror   struct{}
)

func (None) Name() string       { return "none" }
func (Brightness) Name() string { return "brightness" }
func (Pulse) Name() string      { return "pulse" }
func (Blink) Name() string      { return "blink" }
func (FadeIn) Name() string     { return "fade_in" }
func (FadeOut) Name() string    { return "fade_out" }
func (Breathing) Name() string  { return "breathing" }
func (ColorShift) Name() string { return "color_shift" }
func (Saturation) Name() string { return "saturation" }
func (Invert) Name() string     { return "invert" }
func (Grayscale) Name() string  { return "grayscale" }
func (ColorTemp) Name() string  { return "color_temp" }
func (Scanline) Name() string   { return "scanline" }
func (Wave) Name() string       { return "wave" }
func (Strobe) Name() string     { return "strobe" }
func (Noise) Name() string      { return "noise" }
func (Glitch) Name() string     { return "glitch" }
func (Rainbow) Name() string    { return "rainbow" }
func (Sparkle) Name() string    { return "sparkle" }
func (Plasma) Name() string     { return "plasma" }
func (Sepia) Name() string      { return "sepia" }
func (Posterize) Name() string  { return "posterize" }
func (Contrast) Name() string   { return "contrast" }
func (Tint) Name() string       { return "tint" }
func (Flicker) Name() string    { return "flicker" }
func (Vignette) Name() string   { return "vignette" }
func (Mirror) Name() string     { return "mirror" }

func (None) params() map[string]float64 { return nil }
func (c Brightness) params() map[string]float64 {
	return map[string]float64{"level": float64(c.Level)}
}
func (c Pulse) params() map[string]float64 {
	return map[string]float64{"speed": float64(c.Speed), "min": float64(c.Min)}
}
func (c Blink) params() map[string]float64 { return speedOnly(c.Speed) }
func (c FadeIn) params() map[string]float64 {
	return fadeParams(c.Duration, c.AutoRemove)
}
func (c FadeOut) params() map[string]float64 {
	return fadeParams(c.Duration, c.AutoRemove)
}
func (c Breathing) params() map[string]float64  { return speedOnly(c.Speed) }
func (c ColorShift) params() map[string]float64 { return speedOnly(c.Speed) }
func (c Saturation) params() map[string]float64 {
	return map[string]float64{"factor": c.Factor}
}
func (Invert) params() map[string]float64    { return nil }
func (Grayscale) params() map[string]float64 { return nil }
func (c ColorTemp) params() map[string]float64 {
	return map[string]float64{"temp": float64(c.Temp)}
}
func (c Scanline) params() map[string]float64 {
	return map[string]float64{"speed": float64(c.Speed), "width": float64(c.Width)}
}
func (c Wave) params() map[string]float64 {
	return map[string]float64{"speed": float64(c.Speed), "amplitude": float64(c.Amplitude)}
}
func (c Strobe) params() map[string]float64 { return speedOnly(c.Speed) }
func (c Noise) params() map[string]float64 {
	return map[string]float64{"amount": float64(c.Amount)}
}
func (c Glitch) params() map[string]float64 {
	return map[string]float64{"intensity": float64(c.Intensity)}
}
func (c Rainbow) params() map[string]float64 {
	return map[string]float64{"speed": float64(c.Speed), "amount": float64(c.Amount)}
}
func (c Sparkle) params() map[string]float64 {
	return map[string]float64{
		"speed":   float64(c.Speed),
		"density": float64(c.Density),
		"decay":   float64(c.Decay),
		"color":   float64(c.Color.Uint32()),
	}
}
func (c Plasma) params() map[string]float64 {
	return map[string]float64{"speed": float64(c.Speed), "amount": float64(c.Amount)}
}
func (Sepia) params() map[string]float64 { return nil }
func (c Posterize) params() map[string]float64 {
	return map[string]float64{"levels": float64(c.Levels)}
}
func (c Contrast) params() map[string]float64 {
	return map[string]float64{"factor": c.Factor}
}
func (c Tint) params() map[string]float64 {
	return map[string]float64{"color": float64(c.Color.Uint32()), "amount": float64(c.Amount)}
}
func (c Flicker) params() map[string]float64 {
	return map[string]float64{"intensity": float64(c.Intensity)}
}
func (c Vignette) params() map[string]float64 {
	return map[string]float64{"strength": float64(c.Strength)}
}
func (Mirror) params() map[string]float64 { return nil }

func speedOnly(s uint8) map[string]float64 { return map[string]float64{"speed": float64(s)} }

func fadeParams(d time.Duration, auto bool) map[string]float64 {
	p := map[string]float64{"duration_ms": float64(d.Milliseconds())}
	if auto {
		p["auto_remove"] = 1
	}
	return p
}

// MatrixOnly reports whether cfg needs a width and height to do anything.
func MatrixOnly(cfg Config) bool {
	switch cfg.(type) {
	case Scanline, Wave, Glitch, Plasma, Vignette:
		return true
	}
	return false
}

// IsNone reports whether cfg is absent or None.
func IsNone(cfg Config) bool {
	if cfg == nil {
		return true
	}
	_, ok := cfg.(None)
	return ok
}

// Spec is the serializable form of a Config used by configuration and the store.
type Spec struct {
	Name   string             `yaml:"name" json:"name"`
	Params map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
}

func ToSpec(cfg Config) Spec {
	if cfg == nil {
		cfg = None{}
	}
	return Spec{Name: cfg.Name(), Params: cfg.params()}
}

type params map[string]float64

func (p params) u8(k string, def uint8) uint8 {
	v, ok := p[k]
	if !ok || math.IsNaN(v) {
		return def
	}
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func (p params) f(k string, def float64) float64 {
	if v, ok := p[k]; ok {
		return v
	}
	return def
}

func (p params) rgb(k string, def color.RGB) color.RGB {
	v, ok := p[k]
	if !ok || math.IsNaN(v) {
		return def
	}
	return color.FromUint32(uint32(math.Min(math.Max(v, 0), 0xFFFFFF)))
}

func (p params) ms(k string, def time.Duration) time.Duration {
	if v, ok := p[k]; ok && v > 0 {
		return time.Duration(v) * time.Millisecond
	}
	return def
}

// FromSpec builds a Config, filling unset parameters with defaults.
// An empty name is None.
func FromSpec(s Spec) (Config, error) {
	p := params(s.Params)
	switch s.Name {
	case "", "none":
		return None{}, nil
	case "brightness":
		return Brightness{Level: p.u8("level", 128)}, nil
	case "pulse":
		return Pulse{Speed: p.u8("speed", 50), Min: p.u8("min", 32)}, nil
	case "blink":
		return Blink{Speed: p.u8("speed", 50)}, nil
	case "fade_in":
		return FadeIn{Duration: p.ms("duration_ms", time.Second), AutoRemove: p.f("auto_remove", 0) != 0}, nil
	case "fade_out":
		return FadeOut{Duration: p.ms("duration_ms", time.Second), AutoRemove: p.f("auto_remove", 0) != 0}, nil
	case "breathing":
		return Breathing{Speed: p.u8("speed", 50)}, nil
	case "color_shift":
		return ColorShift{Speed: p.u8("speed", 50)}, nil
	case "saturation":
		return Saturation{Factor: p.f("factor", 1.5)}, nil
	case "invert":
		return Invert{}, nil
	case "grayscale":
		return Grayscale{}, nil
	case "color_temp":
		t := int(p.f("temp", 0))
		if t < -100 || t > 100 {
			return nil, fmt.Errorf("color_temp %d out of range: %w", t, errs.ErrInvalidArgument)
		}
		return ColorTemp{Temp: t}, nil
	case "scanline":
		return Scanline{Speed: p.u8("speed", 50), Width: p.u8("width", 1)}, nil
	case "wave":
		return Wave{Speed: p.u8("speed", 50), Amplitude: p.u8("amplitude", 128)}, nil
	case "strobe":
		return Strobe{Speed: p.u8("speed", 50)}, nil
	case "noise":
		return Noise{Amount: p.u8("amount", 32)}, nil
	case "glitch":
		return Glitch{Intensity: p.u8("intensity", 50)}, nil
	case "rainbow":
		return Rainbow{Speed: p.u8("speed", 50), Amount: p.u8("amount", 128)}, nil
	case "sparkle":
		return Sparkle{
			Speed:   p.u8("speed", 50),
			Density: p.u8("density", 50),
			Decay:   p.u8("decay", 50),
			Color:   p.rgb("color", color.White),
		}, nil
	case "plasma":
		return Plasma{Speed: p.u8("speed", 50), Amount: p.u8("amount", 128)}, nil
	case "sepia":
		return Sepia{}, nil
	case "posterize":
		lv := p.u8("levels", 4)
		if lv < 2 {
			return nil, fmt.Errorf("posterize levels %d: %w", lv, errs.ErrInvalidArgument)
		}
		return Posterize{Levels: lv}, nil
	case "contrast":
		return Contrast{Factor: p.f("factor", 1.5)}, nil
	case "tint":
		return Tint{Color: p.rgb("color", color.RGB{R: 255, G: 147, B: 41}), Amount: p.u8("amount", 128)}, nil
	case "flicker":
		return Flicker{Intensity: p.u8("intensity", 50)}, nil
	case "vignette":
		return Vignette{Strength: p.u8("strength", 128)}, nil
	case "mirror":
		return Mirror{}, nil
	}
	return nil, fmt.Errorf("effect %q: %w", s.Name, errs.ErrNotFound)
}

var names = []string{
	"brightness", "pulse", "blink", "fade_in", "fade_out", "breathing", "color_shift",
	"saturation", "invert", "grayscale", "color_temp", "scanline", "wave", "strobe",
	"noise", "glitch", "rainbow", "sparkle", "plasma", "sepia", "posterize", "contrast",
	"tint", "flicker", "vignette", "mirror",
}

// Names lists every effect name except none, sorted.
func Names() []string {
	out := append([]string(nil), names...)
	sort.Strings(out)
	return out
}
