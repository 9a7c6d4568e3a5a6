// Package canvas provides the drawing primitives shared by layers, animations and
// the text overlay. Every primitive clamps out-of-range input instead of failing.
package canvas

import (
	"math"

	"github.com/coreman2200/ledgfx/internal/color"
	"github.com/coreman2200/ledgfx/internal/layout"
)

// Canvas is a pixel buffer with the geometry of the device it belongs to.
// len(Pix) == Geom.Count for the lifetime of the canvas.
type Canvas struct {
	Pix  []color.RGB
	Geom layout.Geometry
}

func New(g layout.Geometry) *Canvas {
	return &Canvas{Pix: make([]color.RGB, g.Count), Geom: g}
}

func (c *Canvas) Len() int    { return len(c.Pix) }
func (c *Canvas) Width() int  { return c.Geom.Width }
func (c *Canvas) Height() int { return c.Geom.Height }

func (c *Canvas) Set(i int, col color.RGB) {
	if i >= 0 && i < len(c.Pix) {
		c.Pix[i] = col
	}
}

func (c *Canvas) At(i int) color.RGB {
	if i >= 0 && i < len(c.Pix) {
		return c.Pix[i]
	}
	return color.Black
}

// SetXY writes through the device's origin and scan mapping.
func (c *Canvas) SetXY(x, y int, col color.RGB) {
	if i, ok := c.Geom.Index(x, y); ok {
		c.Pix[i] = col
	}
}

func (c *Canvas) AtXY(x, y int) color.RGB {
	if i, ok := c.Geom.Index(x, y); ok {
		return c.Pix[i]
	}
	return color.Black
}

func (c *Canvas) Clear() { c.Fill(color.Black) }

func (c *Canvas) Fill(col color.RGB) {
	for i := range c.Pix {
		c.Pix[i] = col
	}
}

// FillRange fills count pixels starting at start.
func (c *Canvas) FillRange(start, count int, col color.RGB) {
	if start < 0 {
		count += start
		start = 0
	}
	end := start + count
	if end > len(c.Pix) {
		end = len(c.Pix)
	}
	for i := start; i < end; i++ {
		c.Pix[i] = col
	}
}

// bounds is the drawable area in SetXY coordinates; a strip or ring is Count x 1.
func (c *Canvas) bounds() (w, h int) {
	if c.Geom.IsMatrix() {
		return c.Geom.Width, c.Geom.Height
	}
	return len(c.Pix), 1
}

func (c *Canvas) FillRect(x, y, w, h int, col color.RGB) {
	if w <= 0 || h <= 0 || x+w < x || y+h < y {
		return
	}
	bw, bh := c.bounds()
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, bw), min(y+h, bh)
	for yy := y0; yy < y1; yy++ {
		for xx := x0; xx < x1; xx++ {
			c.SetXY(xx, yy, col)
		}
	}
}

// Line draws with Bresenham's algorithm. Segments are clipped to the canvas first.
func (c *Canvas) Line(x0, y0, x1, y1 int, col color.RGB) {
	bw, bh := c.bounds()
	if !inside(x0, y0, bw, bh) || !inside(x1, y1, bw, bh) {
		var ok bool
		if x0, y0, x1, y1, ok = clipLine(x0, y0, x1, y1, bw, bh); !ok {
			return
		}
	}
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.SetXY(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func inside(x, y, w, h int) bool { return x >= 0 && y >= 0 && x < w && y < h }

// clipLine clips a segment to [0,w-1]x[0,h-1] (Liang-Barsky).
func clipLine(x0, y0, x1, y1, w, h int) (int, int, int, int, bool) {
	if w <= 0 || h <= 0 {
		return 0, 0, 0, 0, false
	}
	fx0, fy0 := float64(x0), float64(y0)
	dx, dy := float64(x1)-fx0, float64(y1)-fy0
	t0, t1 := 0.0, 1.0
	for _, edge := range [4][2]float64{
		{-dx, fx0},
		{dx, float64(w-1) - fx0},
		{-dy, fy0},
		{dy, float64(h-1) - fy0},
	} {
		p, q := edge[0], edge[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			t0 = math.Max(t0, r)
		} else {
			t1 = math.Min(t1, r)
		}
		if t0 > t1 {
			return 0, 0, 0, 0, false
		}
	}
	round := func(v float64) int { return int(math.Round(v)) }
	return round(fx0 + t0*dx), round(fy0 + t0*dy), round(fx0 + t1*dx), round(fy0 + t1*dy), true
}

// Circle draws a midpoint circle outline, or a filled disc when fill is set.
func (c *Canvas) Circle(cx, cy, r int, col color.RGB, fill bool) {
	if r < 0 {
		return
	}
	bw, bh := c.bounds()
	if cx+r < 0 || cy+r < 0 || cx-r >= bw || cy-r >= bh {
		return
	}
	if r > bw+bh {
		c.bigCircle(cx, cy, r, col, fill)
		return
	}
	x, y := r, 0
	e := 1 - r
	for x >= y {
		if fill {
			c.hline(cx-x, cx+x, cy+y, col)
			c.hline(cx-x, cx+x, cy-y, col)
			c.hline(cx-y, cx+y, cy+x, col)
			c.hline(cx-y, cx+y, cy-x, col)
		} else {
			for _, p := range [8][2]int{
				{cx + x, cy + y}, {cx - x, cy + y}, {cx + x, cy - y}, {cx - x, cy - y},
				{cx + y, cy + x}, {cx - y, cy + x}, {cx + y, cy - x}, {cx - y, cy - x},
			} {
				c.SetXY(p[0], p[1], col)
			}
		}
		y++
		if e < 0 {
			e += 2*y + 1
		} else {
			x--
			e += 2*(y-x) + 1
		}
	}
}

// bigCircle tests each canvas pixel against the circle, so the cost follows the
// canvas size rather than the radius.
func (c *Canvas) bigCircle(cx, cy, r int, col color.RGB, fill bool) {
	bw, bh := c.bounds()
	rr := float64(r)
	for y := 0; y < bh; y++ {
		for x := 0; x < bw; x++ {
			d := math.Hypot(float64(x-cx), float64(y-cy))
			if (fill && d <= rr+0.5) || (!fill && math.Abs(d-rr) < 0.5) {
				c.SetXY(x, y, col)
			}
		}
	}
}

func (c *Canvas) hline(x0, x1, y int, col color.RGB) {
	bw, bh := c.bounds()
	if y < 0 || y >= bh {
		return
	}
	for x := max(x0, 0); x <= min(x1, bw-1); x++ {
		c.SetXY(x, y, col)
	}
}

// Gradient fills count pixels from start with a linear blend from a to b.
func (c *Canvas) Gradient(start, count int, a, b color.RGB) {
	if count <= 0 {
		return
	}
	from, to := max(0, -start), min(count, len(c.Pix)-start)
	for i := from; i < to; i++ {
		amt := 255
		if count > 1 {
			amt = i * 255 / (count - 1)
		}
		c.Set(start+i, color.Blend(a, b, uint8(amt)))
	}
}

// CopyFrom copies src pixels; geometries must match in length.
func (c *Canvas) CopyFrom(src []color.RGB) {
	copy(c.Pix, src)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
