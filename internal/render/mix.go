package render

import "github.com/coreman2200/ledgfx/internal/color"

// Composite blends src over dst per mode, then mixes the result in by opacity.
// In Normal mode black source pixels are transparent; there is no alpha channel.
func Composite(dst, src []color.RGB, mode BlendMode, opacity uint8) {
	if opacity == 0 {
		return
	}
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		s := src[i]
		if mode == Normal && s.IsBlack() {
			continue
		}
		d := dst[i]
		m := color.RGB{
			R: blendChannel(mode, d.R, s.R),
			G: blendChannel(mode, d.G, s.G),
			B: blendChannel(mode, d.B, s.B),
		}
		if opacity == 255 {
			dst[i] = m
		} else {
			dst[i] = color.Blend(d, m, opacity)
		}
	}
}

func blendChannel(mode BlendMode, d, s uint8) uint8 {
	a, b := int(d), int(s)
	switch mode {
	case Add:
		if a+b > 255 {
			return 255
		}
		return uint8(a + b)
	case Multiply:
		return uint8(a * b / 255)
	case Screen:
		return uint8(255 - (255-a)*(255-b)/255)
	case Overlay:
		if a < 128 {
			return uint8(2 * a * b / 255)
		}
		return uint8(255 - 2*(255-a)*(255-b)/255)
	default:
		return s
	}
}

// Mix crossfades a into b by alpha (0 = a, 255 = b) into dst.
func Mix(dst, a, b []color.RGB, alpha uint8) {
	for i := range dst {
		dst[i] = color.Blend(a[i], b[i], alpha)
	}
}
