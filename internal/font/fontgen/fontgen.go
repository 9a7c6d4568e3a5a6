// Package fontgen rasterizes x/image font faces into the engine's bitmap font format.
package fontgen

import (
	"fmt"
	"image"
	"io"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/coreman2200/ledgfx/internal/errs"
	lfont "github.com/coreman2200/ledgfx/internal/font"
)

// Options control rasterization.
type Options struct {
	// Runes to include; ASCII 0x20..0x7E when empty.
	Runes []rune
	// Threshold is the minimum mask alpha (0..255) that lights a pixel.
	Threshold uint8
}

func (o Options) runes() []rune {
	if len(o.Runes) > 0 {
		return o.Runes
	}
	rs := make([]rune, 0, 95)
	for r := rune(0x20); r <= 0x7E; r++ {
		rs = append(rs, r)
	}
	return rs
}

// Basic is the 7x13 face shipped with x/image.
func Basic() font.Face { return basicfont.Face7x13 }

// OpenType loads a TTF/OTF file as a face of the given pixel size.
func OpenType(path string, size float64) (font.Face, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %v: %w", path, err, errs.ErrIO)
	}
	f, err := opentype.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", path, err, errs.ErrFormat)
	}
	return opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
}

// CellSize derives the glyph cell from the face metrics, capped at lfont.MaxDim.
func CellSize(face font.Face) (w, h int) {
	m := face.Metrics()
	h = m.Height.Ceil()
	if adv, ok := face.GlyphAdvance('M'); ok {
		w = adv.Ceil()
	}
	if w > lfont.MaxDim {
		w = lfont.MaxDim
	}
	if h > lfont.MaxDim {
		h = lfont.MaxDim
	}
	return w, h
}

// Rasterize renders each rune of opts into a w x h bitmap.
func Rasterize(face font.Face, opts Options) (map[rune]lfont.Bitmap, int, int, error) {
	w, h := CellSize(face)
	if w <= 0 || h <= 0 {
		return nil, 0, 0, fmt.Errorf("face has empty cell: %w", errs.ErrInvalidArgument)
	}
	th := uint32(opts.Threshold)
	if th == 0 {
		th = 0x80
	}
	ascent := face.Metrics().Ascent.Ceil()
	dot := fixed.P(0, ascent)

	out := make(map[rune]lfont.Bitmap)
	for _, r := range opts.runes() {
		dr, mask, mp, _, ok := face.Glyph(dot, r)
		if !ok {
			continue
		}
		b := lfont.Bitmap{Width: w, Height: h, Rows: make([]uint16, h)}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				p := image.Pt(x, y)
				if !p.In(dr) {
					continue
				}
				_, _, _, a := mask.At(mp.X+x-dr.Min.X, mp.Y+y-dr.Min.Y).RGBA()
				if a>>8 >= th {
					b.Rows[y] |= 1 << uint(w-1-x)
				}
			}
		}
		out[r] = b
	}
	if len(out) == 0 {
		return nil, 0, 0, fmt.Errorf("face rendered no glyphs: %w", errs.ErrNotFound)
	}
	return out, w, h, nil
}

// Write rasterizes face and encodes the result to dst.
func Write(dst io.Writer, face font.Face, opts Options) error {
	glyphs, w, h, err := Rasterize(face, opts)
	if err != nil {
		return err
	}
	return lfont.Encode(dst, w, h, glyphs)
}
