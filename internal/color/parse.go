package color

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/coreman2200/ledgfx/internal/errs"
)

var names = map[string]RGB{
	"black":     {0, 0, 0},
	"white":     {255, 255, 255},
	"red":       {255, 0, 0},
	"green":     {0, 255, 0},
	"blue":      {0, 0, 255},
	"yellow":    {255, 255, 0},
	"cyan":      {0, 255, 255},
	"magenta":   {255, 0, 255},
	"orange":    {255, 165, 0},
	"purple":    {128, 0, 128},
	"pink":      {255, 192, 203},
	"gold":      {255, 215, 0},
	"lime":      {50, 205, 50},
	"teal":      {0, 128, 128},
	"navy":      {0, 0, 128},
	"violet":    {238, 130, 238},
	"warmwhite": {255, 180, 107},
	"coolwhite": {201, 226, 255},
}

// Names lists the named colors accepted by Parse.
func Names() []string {
	out := make([]string, 0, len(names))
	for k := range names {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Parse accepts "#RRGGBB" or a color name (case-insensitive).
func Parse(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) != 6 {
			return RGB{}, fmt.Errorf("color %q: want #RRGGBB: %w", s, errs.ErrInvalidArgument)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return RGB{}, fmt.Errorf("color %q: %w", s, errs.ErrInvalidArgument)
		}
		return FromUint32(uint32(v)), nil
	}
	if s == "" {
		return RGB{}, fmt.Errorf("empty color: %w", errs.ErrInvalidArgument)
	}
	c, ok := names[strings.ToLower(s)]
	if !ok {
		return RGB{}, fmt.Errorf("color %q: %w", s, errs.ErrNotFound)
	}
	return c, nil
}

// Hex formats as "#RRGGBB".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c RGB) String() string { return c.Hex() }

// MarshalText lets RGB round-trip through yaml/json as "#RRGGBB".
func (c RGB) MarshalText() ([]byte, error) { return []byte(c.Hex()), nil }

func (c *RGB) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// GammaTable builds out = 255 * (in/255)^gamma.
func GammaTable(gamma float64) [256]uint8 {
	var t [256]uint8
	if gamma <= 0 {
		gamma = 1
	}
	for i := range t {
		t[i] = clampByte(math.Pow(float64(i)/255, gamma) * 255)
	}
	return t
}
