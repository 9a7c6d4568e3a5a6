package animation

import (
	"math"
	"time"

	"github.com/coreman2200/ledgfx/internal/color"
)

func rainbow(f *frameCtx) {
	n := f.c.Len()
	if n == 0 {
		return
	}
	shift := int(f.phase() * 256)
	for i := 0; i < n; i++ {
		f.c.Pix[i] = color.Wheel(uint8((i*256/n + shift) & 0xFF))
	}
}

func rainbowCycle(f *frameCtx) {
	f.c.Fill(color.Wheel(uint8(f.phase() * 256)))
}

func breathing(f *frameCtx) {
	lvl := 0.5 - 0.5*math.Cos(2*math.Pi*f.phase())
	f.c.Fill(color.Scale(f.p.Color, uint8(lvl*255)))
}

func chase(f *frameCtx) {
	step := int(f.phase() * 3 * 8)
	for i := range f.c.Pix {
		if (i+step)%3 == 0 {
			f.c.Pix[i] = f.p.Color
		} else {
			f.c.Pix[i] = color.Black
		}
	}
}

func comet(f *frameCtx) {
	n := f.c.Len()
	if n == 0 {
		return
	}
	head := int(f.phase() * float64(n))
	tail := n / 4
	if tail < 3 {
		tail = 3
	}
	f.c.Clear()
	for k := 0; k <= tail; k++ {
		i := (head - k + n) % n
		lvl := 255 - k*255/(tail+1)
		f.c.Pix[i] = color.Scale(f.p.Color, uint8(lvl))
	}
}

// twinkle keeps its memory in the pixels themselves.
func twinkle(f *frameCtx) {
	if f.cold {
		f.c.Clear()
	}
	for i := range f.c.Pix {
		f.c.Pix[i] = color.Scale(f.c.Pix[i], 220)
	}
	n := f.c.Len()
	if n == 0 {
		return
	}
	spawn := 1 + n*f.p.speed()/1000
	for k := 0; k < spawn; k++ {
		if f.rng.Intn(100) < f.p.speed() {
			f.c.Pix[f.rng.Intn(n)] = f.p.Color
		}
	}
}

func wave(f *frameCtx) {
	n := f.c.Len()
	ph := f.phase() * 2 * math.Pi
	if f.c.Geom.IsMatrix() {
		w, h := f.c.Width(), f.c.Height()
		for x := 0; x < w; x++ {
			lvl := 0.5 + 0.5*math.Sin(float64(x)*2*math.Pi/float64(w)-ph)
			c := color.Scale(f.p.Color, uint8(lvl*255))
			for y := 0; y < h; y++ {
				f.c.SetXY(x, y, c)
			}
		}
		return
	}
	for i := 0; i < n; i++ {
		lvl := 0.5 + 0.5*math.Sin(float64(i)*2*math.Pi/float64(n)-ph)
		f.c.Pix[i] = color.Scale(f.p.Color, uint8(lvl*255))
	}
}

func gradient(f *frameCtx) {
	n := f.c.Len()
	if n == 0 {
		return
	}
	other := color.RotateHue(f.p.Color, 180)
	shift := f.phase()
	for i := 0; i < n; i++ {
		pos := math.Mod(float64(i)/float64(n)+shift, 1)
		tri := 1 - math.Abs(2*pos-1)
		f.c.Pix[i] = color.Blend(f.p.Color, other, uint8(tri*255))
	}
}

func spin(f *frameCtx) {
	n := f.c.Len()
	if n == 0 {
		return
	}
	head := f.phase() * float64(n)
	arc := float64(n) / 3
	for i := 0; i < n; i++ {
		d := math.Mod(head-float64(i)+float64(n), float64(n))
		if d < arc {
			f.c.Pix[i] = color.Scale(f.p.Color, uint8(255*(1-d/arc)))
		} else {
			f.c.Pix[i] = color.Black
		}
	}
}

func ripple(f *frameCtx) {
	if !f.c.Geom.IsMatrix() {
		wave(f)
		return
	}
	w, h := f.c.Width(), f.c.Height()
	cx, cy := float64(w-1)/2, float64(h-1)/2
	ph := f.phase() * 2 * math.Pi
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			lvl := 0.5 + 0.5*math.Sin(d*1.5-ph)
			f.c.SetXY(x, y, color.Scale(f.p.Color, uint8(lvl*lvl*255)))
		}
	}
}

func plasma(f *frameCtx) {
	if !f.c.Geom.IsMatrix() {
		rainbow(f)
		return
	}
	w, h := f.c.Width(), f.c.Height()
	t := f.phase() * 2 * math.Pi
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			fx, fy := float64(x), float64(y)
			v := math.Sin(fx/4+t) + math.Sin(fy/3-t) + math.Sin((fx+fy)/5+t) + math.Sin(math.Hypot(fx, fy)/3)
			f.c.SetXY(x, y, color.Wheel(uint8((v+4)/8*255)))
		}
	}
}

func sweep(f *frameCtx) {
	n := f.c.Len()
	if n == 0 {
		return
	}
	f.c.Clear()
	f.c.Pix[int(f.phase()*float64(n))%n] = color.White
}

func rgbTest(f *frameCtx) {
	switch int(f.t/(500*time.Millisecond)) % 3 {
	case 0:
		f.c.Fill(color.RGB{R: 255})
	case 1:
		f.c.Fill(color.RGB{G: 255})
	default:
		f.c.Fill(color.RGB{B: 255})
	}
}
