package font

// Bitmap is one decoded glyph. Rows[y] holds Width bits, column 0 in the most
// significant of the low Width bits. Bitmaps are immutable once decoded.
type Bitmap struct {
	Width  int
	Height int
	Rows   []uint16
}

// Lit reports whether the pixel at column x, row y is set.
func (b Bitmap) Lit(x, y int) bool {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return false
	}
	return b.Rows[y]&(1<<uint(b.Width-1-x)) != 0
}

// InkWidth is the width with trailing empty columns trimmed. Blank glyphs return 0.
func (b Bitmap) InkWidth() int {
	var all uint16
	for _, r := range b.Rows {
		all |= r
	}
	for w := b.Width; w > 0; w-- {
		if all&(1<<uint(b.Width-w)) != 0 {
			return w
		}
	}
	return 0
}

func glyphBytes(w, h int) int { return (w*h + 7) / 8 }

// decode unpacks a row-major, MSB-first bit stream.
func decode(data []byte, w, h int) Bitmap {
	b := Bitmap{Width: w, Height: h, Rows: make([]uint16, h)}
	bit := 0
	for y := 0; y < h; y++ {
		var row uint16
		for x := 0; x < w; x++ {
			row <<= 1
			if data[bit/8]&(0x80>>uint(bit%8)) != 0 {
				row |= 1
			}
			bit++
		}
		b.Rows[y] = row
	}
	return b
}

// encode packs b into the on-disk bit stream.
func encode(b Bitmap) []byte {
	out := make([]byte, glyphBytes(b.Width, b.Height))
	bit := 0
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if b.Lit(x, y) {
				out[bit/8] |= 0x80 >> uint(bit%8)
			}
			bit++
		}
	}
	return out
}
