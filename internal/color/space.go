package color

import "math"

// HSV has H in degrees [0,360) and S, V in [0,1].
type HSV struct {
	H, S, V float64
}

// HSL has H in degrees [0,360) and S, L in [0,1].
type HSL struct {
	H, S, L float64
}

func hue(r, g, b, max, delta float64) float64 {
	if delta == 0 {
		return 0
	}
	var h float64
	switch max {
	case r:
		h = math.Mod((g-b)/delta, 6)
	case g:
		h = (b-r)/delta + 2
	default:
		h = (r-g)/delta + 4
	}
	h *= 60
	if h < 0 {
		h += 360
	}
	return h
}

func unit(c RGB) (r, g, b, max, min float64) {
	r = float64(c.R) / 255
	g = float64(c.G) / 255
	b = float64(c.B) / 255
	max = math.Max(r, math.Max(g, b))
	min = math.Min(r, math.Min(g, b))
	return
}

func RGBToHSV(c RGB) HSV {
	r, g, b, max, min := unit(c)
	delta := max - min
	s := 0.0
	if max > 0 {
		s = delta / max
	}
	return HSV{H: hue(r, g, b, max, delta), S: s, V: max}
}

func HSVToRGB(h HSV) RGB {
	c := h.V * h.S
	r, g, b := sector(normHue(h.H), c)
	m := h.V - c
	return RGB{clampByte((r + m) * 255), clampByte((g + m) * 255), clampByte((b + m) * 255)}
}

func RGBToHSL(c RGB) HSL {
	r, g, b, max, min := unit(c)
	delta := max - min
	l := (max + min) / 2
	s := 0.0
	if delta != 0 {
		s = delta / (1 - math.Abs(2*l-1))
	}
	return HSL{H: hue(r, g, b, max, delta), S: s, L: l}
}

func HSLToRGB(h HSL) RGB {
	c := (1 - math.Abs(2*h.L-1)) * h.S
	r, g, b := sector(normHue(h.H), c)
	m := h.L - c/2
	return RGB{clampByte((r + m) * 255), clampByte((g + m) * 255), clampByte((b + m) * 255)}
}

// sector returns the chroma-only channels for hue h.
func sector(h, c float64) (r, g, b float64) {
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	switch {
	case h < 60:
		return c, x, 0
	case h < 120:
		return x, c, 0
	case h < 180:
		return 0, c, x
	case h < 240:
		return 0, x, c
	case h < 300:
		return x, 0, c
	default:
		return c, 0, x
	}
}

func normHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// RotateHue shifts the hue of c by deg degrees, keeping S and V.
func RotateHue(c RGB, deg float64) RGB {
	hsv := RGBToHSV(c)
	hsv.H = normHue(hsv.H + deg)
	return HSVToRGB(hsv)
}

// Saturate multiplies HSL saturation by factor through an HSL round trip.
func Saturate(c RGB, factor float64) RGB {
	hsl := RGBToHSL(c)
	hsl.S = math.Min(1, math.Max(0, hsl.S*factor))
	return HSLToRGB(hsl)
}
