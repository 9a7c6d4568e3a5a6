package effect

import (
	"math"
	"time"

	"github.com/coreman2200/ledgfx/internal/color"
	"github.com/coreman2200/ledgfx/internal/layout"
)

func colorTemp(buf []color.RGB, temp int) {
	k := float64(temp) / 200
	for i, p := range buf {
		buf[i] = color.RGB{
			R: clamp(float64(p.R) * (1 - k)),
			G: p.G,
			B: clamp(float64(p.B) * (1 + k)),
		}
	}
}

func sepia(p color.RGB) color.RGB {
	r, g, b := float64(p.R), float64(p.G), float64(p.B)
	return color.RGB{
		R: clamp(0.393*r + 0.769*g + 0.189*b),
		G: clamp(0.349*r + 0.686*g + 0.168*b),
		B: clamp(0.272*r + 0.534*g + 0.131*b),
	}
}

func posterize(buf []color.RGB, levels uint8) {
	if levels < 2 {
		return
	}
	n := int(levels) - 1
	q := func(v uint8) uint8 { return uint8((int(v)*n + 127) / 255 * 255 / n) }
	for i, p := range buf {
		buf[i] = color.RGB{R: q(p.R), G: q(p.G), B: q(p.B)}
	}
}

func contrast(v uint8, f float64) uint8 {
	return clamp((float64(v)-128)*f + 128)
}

// scanline keeps a bright band moving down the rows and dims the rest.
func scanline(buf []color.RGB, g layout.Geometry, c Scanline, t time.Duration) {
	w := int(c.Width)
	if w == 0 {
		w = 1
	}
	row := int(phase(c.Speed, t) * float64(g.Height))
	for y := 0; y < g.Height; y++ {
		d := y - row
		if d < 0 {
			d = -d
		}
		if d < w {
			continue
		}
		for x := 0; x < g.Width; x++ {
			if i, ok := g.Index(x, y); ok {
				buf[i] = color.Scale(buf[i], 64)
			}
		}
	}
}

func wave(buf []color.RGB, g layout.Geometry, c Wave, t time.Duration) {
	ph := phase(c.Speed, t)
	for x := 0; x < g.Width; x++ {
		s := 0.5 + 0.5*math.Sin(2*math.Pi*(float64(x)/float64(g.Width)-ph))
		lvl := uint8(255 - float64(c.Amplitude)*s)
		for y := 0; y < g.Height; y++ {
			if i, ok := g.Index(x, y); ok {
				buf[i] = color.Scale(buf[i], lvl)
			}
		}
	}
}

func plasma(buf []color.RGB, g layout.Geometry, c Plasma, t time.Duration) {
	tt := phase(c.Speed, t) * 2 * math.Pi
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			fx, fy := float64(x), float64(y)
			v := math.Sin(fx/4+tt) + math.Sin(fy/3-tt) + math.Sin((fx+fy)/6+tt)
			if i, ok := g.Index(x, y); ok {
				buf[i] = color.Blend(buf[i], color.Wheel(uint8((v+3)/6*255)), c.Amount)
			}
		}
	}
}

func vignette(buf []color.RGB, g layout.Geometry, strength uint8) {
	cx, cy := float64(g.Width-1)/2, float64(g.Height-1)/2
	dmax := math.Hypot(cx, cy)
	if dmax == 0 {
		return
	}
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy) / dmax
			if i, ok := g.Index(x, y); ok {
				buf[i] = color.Scale(buf[i], clamp(255-float64(strength)*d*d))
			}
		}
	}
}

// mirror reflects the first half onto the second: per row on a matrix, end to end otherwise.
func mirror(buf []color.RGB, g layout.Geometry) {
	if !g.IsMatrix() {
		n := len(buf)
		for i := 0; i < n/2; i++ {
			buf[n-1-i] = buf[i]
		}
		return
	}
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width/2; x++ {
			src, ok1 := g.Index(x, y)
			dst, ok2 := g.Index(g.Width-1-x, y)
			if ok1 && ok2 {
				buf[dst] = buf[src]
			}
		}
	}
}

func (s *State) noise(buf []color.RGB, amount int) {
	if amount == 0 {
		return
	}
	j := func(v uint8) uint8 { return clamp(float64(int(v) + s.rng.Intn(2*amount+1) - amount)) }
	for i, p := range buf {
		buf[i] = color.RGB{R: j(p.R), G: j(p.G), B: j(p.B)}
	}
}

// glitch occasionally shifts a random row sideways and swaps its red and blue.
func (s *State) glitch(buf []color.RGB, g layout.Geometry, c Glitch) {
	if s.rng.Intn(256) >= int(c.Intensity) {
		return
	}
	y := s.rng.Intn(g.Height)
	shift := 1 + s.rng.Intn(max(1, g.Width/3))
	row := make([]color.RGB, g.Width)
	for x := range row {
		if i, ok := g.Index(x, y); ok {
			row[x] = buf[i]
		}
	}
	for x := range row {
		p := row[(x+shift)%g.Width]
		if i, ok := g.Index(x, y); ok {
			buf[i] = color.RGB{R: p.B, G: p.G, B: p.R}
		}
	}
}
