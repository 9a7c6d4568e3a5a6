package overlay

import (
	"github.com/coreman2200/ledgfx/internal/canvas"
	"github.com/coreman2200/ledgfx/internal/color"
	"github.com/coreman2200/ledgfx/internal/font"
)

// glyph returns r's bitmap and advance. Missing glyphs draw nothing and advance by
// half a cell.
func (m *Manager) glyph(r rune) (font.Bitmap, int) {
	w, _ := m.font.Size()
	b, err := m.font.Glyph(r)
	if err != nil {
		return font.Bitmap{}, w / 2
	}
	ink := b.InkWidth()
	if ink == 0 {
		return b, w / 2
	}
	return b, ink + Spacing
}

// measure returns the drawn size of text; trailing spacing is not counted.
func (m *Manager) measure(text string) (w, h int) {
	if m.font == nil {
		return 0, 0
	}
	_, h = m.font.Size()
	last := 0
	for _, r := range text {
		b, adv := m.glyph(r)
		w += adv
		last = adv - b.InkWidth()
		if b.InkWidth() == 0 {
			last = 0
		}
	}
	return w - last, h
}

// origin returns where the top-left of the text goes this frame.
func (s *slot) origin() (x, y int) {
	x, y = s.cfg.X, s.cfg.Y
	switch s.cfg.Align {
	case AlignCenter:
		x += (s.dev.Geom.Width - s.textW) / 2
	case AlignRight:
		x = s.dev.Geom.Width - s.textW - s.cfg.X
	}
	if s.cfg.Scroll.horizontal() {
		x = s.off
	} else if s.cfg.Scroll != Static {
		y = s.off
	}
	return x, y
}

func (m *Manager) draw(s *slot) {
	x0, y0 := s.origin()
	s.h.Render(func(dst, base *canvas.Canvas) {
		pen := x0
		for _, r := range s.cfg.Text {
			b, adv := m.glyph(r)
			if pen >= dst.Width() {
				break
			}
			if pen+adv > 0 {
				drawGlyph(dst, base, b, pen, y0, s.cfg)
			}
			pen += adv
		}
	})
}

func drawGlyph(dst, base *canvas.Canvas, b font.Bitmap, x0, y0 int, cfg Config) {
	for gy := 0; gy < b.Height; gy++ {
		for gx := 0; gx < b.Width; gx++ {
			if !b.Lit(gx, gy) {
				continue
			}
			x, y := x0+gx, y0+gy
			c := cfg.Color
			if cfg.InvertOnOverlap && base != nil {
				c = pick(base.AtXY(x, y), cfg.Color)
			}
			dst.SetXY(x, y, c)
		}
	}
}

// pick keeps text readable without alpha: dark base shows the text color, bright
// base shows its own inverse.
func pick(base, text color.RGB) color.RGB {
	if base.Luma() < 128 {
		return text
	}
	inv := base.Invert()
	if inv.IsBlack() {
		// black would composite as transparent
		return color.RGB{R: 1, G: 1, B: 1}
	}
	return inv
}
