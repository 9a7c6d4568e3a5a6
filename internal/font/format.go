package font

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/coreman2200/ledgfx/internal/errs"
)

// On-disk layout, little-endian:
//
//	0  magic[4] "LGFN"
//	4  version u8
//	5  width u8
//	6  height u8
//	7  flags u8
//	8  glyph_count u32
//	12 index_offset u32
//
// followed at index_offset by glyph_count (codepoint u32, offset u32) entries sorted
// by codepoint, each offset pointing at ceil(width*height/8) bytes of glyph data.
const (
	Magic      = "LGFN"
	Version    = 1
	HeaderSize = 16
	EntrySize  = 8
	MaxDim     = 16
)

type header struct {
	version     uint8
	width       uint8
	height      uint8
	flags       uint8
	glyphCount  uint32
	indexOffset uint32
}

func parseHeader(b []byte) (header, error) {
	if len(b) < HeaderSize {
		return header{}, fmt.Errorf("short header: %w", errs.ErrFormat)
	}
	if string(b[0:4]) != Magic {
		return header{}, fmt.Errorf("bad magic %q: %w", b[0:4], errs.ErrFormat)
	}
	h := header{
		version:     b[4],
		width:       b[5],
		height:      b[6],
		flags:       b[7],
		glyphCount:  binary.LittleEndian.Uint32(b[8:12]),
		indexOffset: binary.LittleEndian.Uint32(b[12:16]),
	}
	if h.version != Version {
		return header{}, fmt.Errorf("version %d: %w", h.version, errs.ErrFormat)
	}
	if h.width == 0 || h.height == 0 || h.width > MaxDim || h.height > MaxDim {
		return header{}, fmt.Errorf("glyph size %dx%d: %w", h.width, h.height, errs.ErrFormat)
	}
	if h.glyphCount == 0 {
		return header{}, fmt.Errorf("no glyphs: %w", errs.ErrFormat)
	}
	return h, nil
}

// Encode writes a font file holding glyphs, all sized width x height.
func Encode(w io.Writer, width, height int, glyphs map[rune]Bitmap) error {
	if width <= 0 || height <= 0 || width > MaxDim || height > MaxDim {
		return fmt.Errorf("glyph size %dx%d: %w", width, height, errs.ErrInvalidArgument)
	}
	if len(glyphs) == 0 {
		return fmt.Errorf("no glyphs: %w", errs.ErrInvalidArgument)
	}
	cps := make([]rune, 0, len(glyphs))
	for r, g := range glyphs {
		if g.Width != width || g.Height != height {
			return fmt.Errorf("glyph %U is %dx%d: %w", r, g.Width, g.Height, errs.ErrInvalidArgument)
		}
		cps = append(cps, r)
	}
	sort.Slice(cps, func(i, j int) bool { return cps[i] < cps[j] })

	gb := glyphBytes(width, height)
	indexOff := uint32(HeaderSize)
	dataOff := indexOff + uint32(len(cps)*EntrySize)

	bw := bufio.NewWriter(w)
	hdr := make([]byte, HeaderSize)
	copy(hdr, Magic)
	hdr[4] = Version
	hdr[5] = uint8(width)
	hdr[6] = uint8(height)
	binary.LittleEndian.PutUint32(hdr[8:], uint32(len(cps)))
	binary.LittleEndian.PutUint32(hdr[12:], indexOff)
	if _, err := bw.Write(hdr); err != nil {
		return err
	}
	entry := make([]byte, EntrySize)
	for i, r := range cps {
		binary.LittleEndian.PutUint32(entry[0:], uint32(r))
		binary.LittleEndian.PutUint32(entry[4:], dataOff+uint32(i*gb))
		if _, err := bw.Write(entry); err != nil {
			return err
		}
	}
	for _, r := range cps {
		if _, err := bw.Write(encode(glyphs[r])); err != nil {
			return err
		}
	}
	return bw.Flush()
}
