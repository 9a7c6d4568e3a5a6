// Package color is the engine's 8-bit RGB color model: HSV/HSL conversion,
// blending, fixed-point scaling, a color wheel, a name/hex parser and gamma tables.
package color

import (
	"image/color"
	"math"
)

const (
	RedOffset   uint8 = 0x10
	GreenOffset uint8 = 0x08
	BlueOffset  uint8 = 0x00
)

// RGB is one LED pixel.
type RGB struct {
	R, G, B uint8
}

var (
	Black = RGB{}
	White = RGB{255, 255, 255}
)

// FromUint32 unpacks 0x00RRGGBB.
func FromUint32(c uint32) RGB {
	return RGB{
		R: getcolor(c, RedOffset),
		G: getcolor(c, GreenOffset),
		B: getcolor(c, BlueOffset),
	}
}

// Uint32 packs the color as 0x00RRGGBB.
func (c RGB) Uint32() uint32 {
	var v uint32
	v = setcolor(v, c.R, RedOffset)
	v = setcolor(v, c.G, GreenOffset)
	v = setcolor(v, c.B, BlueOffset)
	return v
}

func setcolor(c uint32, n uint8, off uint8) uint32 {
	var val uint32 = uint32(n) << off
	var mask uint32 = 0xFF << off
	return (c & (^mask)) | val
}

func getcolor(c uint32, off uint8) uint8 {
	var mask uint32 = 0xFF << off
	return uint8((c & mask) >> off)
}

// NRGBA converts to an opaque image/color value.
func (c RGB) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// FromColor converts any image/color value, dropping alpha after premultiplication.
func FromColor(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	return RGB{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
}

func (c RGB) IsBlack() bool { return c.R == 0 && c.G == 0 && c.B == 0 }

// Invert returns the channel-wise complement.
func (c RGB) Invert() RGB {
	return RGB{255 - c.R, 255 - c.G, 255 - c.B}
}

// Luma is the integer Rec.601 luma, 0..255.
func (c RGB) Luma() uint8 {
	return uint8((uint32(c.R)*77 + uint32(c.G)*150 + uint32(c.B)*29) >> 8)
}

// Scale multiplies every channel by factor/256 using (v*(factor+1))>>8,
// so 255 is identity and 0 is black.
func Scale(c RGB, factor uint8) RGB {
	f := uint16(factor) + 1
	return RGB{
		R: uint8((uint16(c.R) * f) >> 8),
		G: uint8((uint16(c.G) * f) >> 8),
		B: uint8((uint16(c.B) * f) >> 8),
	}
}

// Blend linearly interpolates from a (amount 0) to b (amount 255).
func Blend(a, b RGB, amount uint8) RGB {
	t := int(amount)
	mix := func(x, y uint8) uint8 {
		return uint8(int(x) + ((int(y)-int(x))*t)/255)
	}
	return RGB{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B)}
}

// Add is a saturating channel sum.
func Add(a, b RGB) RGB {
	return RGB{addSat(a.R, b.R), addSat(a.G, b.G), addSat(a.B, b.B)}
}

func addSat(a, b uint8) uint8 {
	s := uint16(a) + uint16(b)
	if s > 255 {
		return 255
	}
	return uint8(s)
}

// Wheel maps 0..255 around the R -> G -> B -> R color wheel.
func Wheel(pos uint8) RGB {
	switch {
	case pos < 85:
		return RGB{255 - pos*3, pos * 3, 0}
	case pos < 170:
		pos -= 85
		return RGB{0, 255 - pos*3, pos * 3}
	default:
		pos -= 170
		return RGB{pos * 3, 0, 255 - pos*3}
	}
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
