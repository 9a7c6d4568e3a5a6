package animation

import (
	"github.com/coreman2200/ledgfx/internal/color"
)

const (
	fireCooling  = 55
	fireSparking = 120
)

// fireDims returns columns and rows; a strip is a single column of Count rows.
func fireDims(f *frameCtx) (cols, rows int) {
	if f.c.Geom.IsMatrix() {
		return f.c.Width(), f.c.Height()
	}
	return 1, f.c.Len()
}

// fire is the classic heat simulation. Row 0 of the heat grid is the bottom.
func fire(f *frameCtx) {
	cols, rows := fireDims(f)
	st := f.st
	if len(st.heat) != cols*rows {
		st.heat = make([]uint8, cols*rows)
	}
	if !f.cold && rows > 0 {
		spark := fireSparking * f.p.speed() / DefaultSpeed
		for x := 0; x < cols; x++ {
			h := st.heat[x*rows : (x+1)*rows]
			for k := range h {
				cool := f.rng.Intn(fireCooling*10/rows + 2)
				if int(h[k]) <= cool {
					h[k] = 0
				} else {
					h[k] -= uint8(cool)
				}
			}
			for k := rows - 1; k >= 2; k-- {
				h[k] = uint8((int(h[k-1]) + 2*int(h[k-2])) / 3)
			}
			if f.rng.Intn(255) < spark {
				y := f.rng.Intn(min(3, rows))
				h[y] = uint8(min(255, int(h[y])+160+f.rng.Intn(96)))
			}
		}
	}
	for x := 0; x < cols; x++ {
		for k := 0; k < rows; k++ {
			c := heatColor(st.heat[x*rows+k])
			if f.c.Geom.IsMatrix() {
				f.c.SetXY(x, rows-1-k, c)
			} else {
				f.c.Set(k, c)
			}
		}
	}
}

func heatColor(t uint8) color.RGB {
	t192 := uint8(int(t) * 191 / 255)
	ramp := (t192 & 0x3F) << 2
	switch {
	case t192 > 0x80:
		return color.RGB{R: 255, G: 255, B: ramp}
	case t192 > 0x40:
		return color.RGB{R: 255, G: ramp, B: 0}
	default:
		return color.RGB{R: ramp, G: 0, B: 0}
	}
}

// rain drops fall down matrix columns leaving a fading trail.
func rain(f *frameCtx) {
	w, h := f.c.Width(), f.c.Height()
	st := f.st
	if len(st.drops) != w {
		st.drops = make([]drop, w)
	}
	for i := range f.c.Pix {
		f.c.Pix[i] = color.Scale(f.c.Pix[i], 160)
	}
	if f.cold {
		f.c.Clear()
		return
	}
	for x := range st.drops {
		d := &st.drops[x]
		if !d.active {
			if f.rng.Intn(100) < f.p.speed()/4+2 {
				*d = drop{active: true, speed: 0.4 + f.rng.Float64()*0.6}
			}
			continue
		}
		f.c.SetXY(x, int(d.y), f.p.Color)
		d.y += d.speed
		if int(d.y) >= h {
			d.active = false
		}
	}
}

var codeHead = color.RGB{R: 180, G: 255, B: 180}
var codeTrail = color.RGB{G: 200}

// codeRain draws green columns whose heads fall at their own pace.
func codeRain(f *frameCtx) {
	w, h := f.c.Width(), f.c.Height()
	st := f.st
	if len(st.columns) != w {
		st.columns = make([]column, w)
	}
	if f.cold {
		f.c.Clear()
		return
	}
	for i := range f.c.Pix {
		f.c.Pix[i] = color.Scale(f.c.Pix[i], 200)
	}
	for x := range st.columns {
		col := &st.columns[x]
		if col.length == 0 {
			if f.rng.Intn(100) < 8 {
				*col = column{head: 0, length: 3 + f.rng.Intn(h/2+1), every: 1 + f.rng.Intn(3)}
			}
			continue
		}
		col.wait++
		if col.wait < col.every {
			continue
		}
		col.wait = 0
		if y := col.head - 1; y >= 0 {
			f.c.SetXY(x, y, codeTrail)
		}
		f.c.SetXY(x, col.head, codeHead)
		col.head++
		if col.head-col.length >= h {
			col.length = 0
		}
	}
}

// sparkle runs an independent fade in, hold, fade out cycle per pixel.
func sparkle(f *frameCtx) {
	n := f.c.Len()
	st := f.st
	if len(st.sparks) != n {
		st.sparks = make([]spark, n)
	}
	step := uint8(8 + f.p.speed()/4)
	for i := range st.sparks {
		s := &st.sparks[i]
		if !f.cold {
			switch s.phase {
			case sparkOff:
				if f.rng.Intn(1000) < 5+f.p.speed()/5 {
					s.phase = sparkIn
				}
			case sparkIn:
				if int(s.level)+int(step) >= 255 {
					s.level, s.phase, s.hold = 255, sparkHold, uint8(5+f.rng.Intn(20))
				} else {
					s.level += step
				}
			case sparkHold:
				if s.hold == 0 {
					s.phase = sparkOut
				} else {
					s.hold--
				}
			case sparkOut:
				if s.level <= step {
					s.level, s.phase = 0, sparkOff
				} else {
					s.level -= step
				}
			}
		}
		f.c.Pix[i] = color.Scale(f.p.Color, s.level)
	}
}
