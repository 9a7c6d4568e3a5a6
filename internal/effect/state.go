package effect

import (
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/coreman2200/ledgfx/internal/color"
	"github.com/coreman2200/ledgfx/internal/layout"
)

// Result reports what happened during one Apply.
type Result struct {
	// Finished is set when a self-removing effect completed; the owner clears it to None.
	Finished bool
}

// State is the memory an effect keeps across frames for one layer.
type State struct {
	start  time.Time
	cells  []sparkCell
	rng    *rand.Rand
	warned bool
}

func NewState(seed int64) *State {
	return &State{rng: rand.New(rand.NewSource(seed))}
}

// Restart stamps the start time and drops lifecycle memory. Called whenever the
// layer's effect is replaced.
func (s *State) Restart(now time.Time) {
	s.start = now
	s.cells = s.cells[:0]
	s.warned = false
}

func (s *State) Started() time.Time { return s.start }

// Apply runs cfg over buf in place.
func (s *State) Apply(buf []color.RGB, g layout.Geometry, cfg Config, now time.Time) Result {
	if IsNone(cfg) || len(buf) == 0 {
		return Result{}
	}
	if MatrixOnly(cfg) && !g.IsMatrix() {
		if !s.warned {
			s.warned = true
			log.Warn().Str("effect", cfg.Name()).Str("layout", g.Class.String()).
				Msg("matrix-only effect on a non-matrix layer; skipped")
		}
		return Result{}
	}
	t := now.Sub(s.start)
	if t < 0 {
		t = 0
	}

	switch c := cfg.(type) {
	case Brightness:
		scaleAll(buf, c.Level)
	case Pulse:
		lvl := float64(c.Min) + float64(255-int(c.Min))*(0.5-0.5*math.Cos(2*math.Pi*phase(c.Speed, t)))
		scaleAll(buf, clamp(lvl))
	case Blink:
		if phase(c.Speed, t) >= 0.5 {
			fill(buf, color.Black)
		}
	case FadeIn:
		lvl, done := fade(0, 255, c.Duration, t)
		scaleAll(buf, lvl)
		return Result{Finished: done && c.AutoRemove}
	case FadeOut:
		lvl, done := fade(255, 0, c.Duration, t)
		scaleAll(buf, lvl)
		return Result{Finished: done && c.AutoRemove}
	case Breathing:
		ph := phase(c.Speed, t)
		tri := 2 * ph
		if ph >= 0.5 {
			tri = 2 - 2*ph
		}
		scaleAll(buf, clamp(float64(ease.InOutSine(float32(tri), 0, 255, 1))))
	case ColorShift:
		deg := phase(c.Speed, t) * 360
		for i := range buf {
			buf[i] = color.RotateHue(buf[i], deg)
		}
	case Saturation:
		for i := range buf {
			buf[i] = color.Saturate(buf[i], c.Factor)
		}
	case Invert:
		for i := range buf {
			buf[i] = buf[i].Invert()
		}
	case Grayscale:
		for i := range buf {
			l := buf[i].Luma()
			buf[i] = color.RGB{R: l, G: l, B: l}
		}
	case ColorTemp:
		colorTemp(buf, c.Temp)
	case Scanline:
		scanline(buf, g, c, t)
	case Wave:
		wave(buf, g, c, t)
	case Strobe:
		if phase(c.Speed, t) > 0.1 {
			fill(buf, color.Black)
		}
	case Noise:
		s.noise(buf, int(c.Amount))
	case Glitch:
		s.glitch(buf, g, c)
	case Rainbow:
		n := len(buf)
		shift := int(phase(c.Speed, t) * 256)
		for i := range buf {
			buf[i] = color.Blend(buf[i], color.Wheel(uint8((i*256/n+shift)&0xFF)), c.Amount)
		}
	case Sparkle:
		s.sparkle(buf, c)
	case Plasma:
		plasma(buf, g, c, t)
	case Sepia:
		for i := range buf {
			buf[i] = sepia(buf[i])
		}
	case Posterize:
		posterize(buf, c.Levels)
	case Contrast:
		for i := range buf {
			p := buf[i]
			buf[i] = color.RGB{R: contrast(p.R, c.Factor), G: contrast(p.G, c.Factor), B: contrast(p.B, c.Factor)}
		}
	case Tint:
		for i := range buf {
			buf[i] = color.Blend(buf[i], c.Color, c.Amount)
		}
	case Flicker:
		scaleAll(buf, uint8(255-s.rng.Intn(int(c.Intensity)+1)))
	case Vignette:
		vignette(buf, g, c.Strength)
	case Mirror:
		mirror(buf, g)
	}
	return Result{}
}

// phase maps a 1..100 speed to a cycle position in [0,1).
func phase(speed uint8, t time.Duration) float64 {
	s := int(speed)
	if s == 0 {
		s = 50
	} else if s > 100 {
		s = 100
	}
	per := time.Duration(5000-s*45) * time.Millisecond
	return float64(t%per) / float64(per)
}

// fade eases between two levels over d and reports completion.
func fade(from, to float32, d, t time.Duration) (uint8, bool) {
	if d <= 0 {
		return uint8(to), true
	}
	tw := gween.New(from, to, float32(d.Seconds()), ease.InOutQuad)
	v, done := tw.Set(float32(t.Seconds()))
	return uint8(math.Round(float64(v))), done
}

func scaleAll(buf []color.RGB, lvl uint8) {
	if lvl == 255 {
		return
	}
	for i := range buf {
		buf[i] = color.Scale(buf[i], lvl)
	}
}

func fill(buf []color.RGB, c color.RGB) {
	for i := range buf {
		buf[i] = c
	}
}

func clamp(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
