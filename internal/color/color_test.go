package color_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/coreman2200/ledgfx/internal/color"
	"github.com/coreman2200/ledgfx/internal/errs"
)

var TestPackedIsExpectedColor = []struct {
	R, G, B uint8
	Expect  uint32
}{
	{0x11, 0x22, 0x33, 0x112233},
	{0x44, 0x2A, 0x34, 0x442A34},
	{0x88, 0x3B, 0x35, 0x883B35},
	{0xFF, 0x00, 0xFF, 0xFF00FF},
}

func within1(t *testing.T, want, got RGB) {
	t.Helper()
	d := func(a, b uint8) int {
		if a > b {
			return int(a - b)
		}
		return int(b - a)
	}
	if d(want.R, got.R) > 1 || d(want.G, got.G) > 1 || d(want.B, got.B) > 1 {
		t.Fatalf("round trip %v -> %v exceeds ±1", want, got)
	}
}

func TestPacked(t *testing.T) {
	for k, v := range TestPackedIsExpectedColor {
		t.Run("packed"+strconv.Itoa(k), func(t *testing.T) {
			c := RGB{v.R, v.G, v.B}
			assert.Equal(t, v.Expect, c.Uint32())
			assert.Equal(t, c, FromUint32(v.Expect))
		})
	}
}

func TestHSVRoundTrip(t *testing.T) {
	for r := 0; r < 256; r += 5 {
		for g := 0; g < 256; g += 7 {
			for b := 0; b < 256; b += 3 {
				c := RGB{uint8(r), uint8(g), uint8(b)}
				within1(t, c, HSVToRGB(RGBToHSV(c)))
				within1(t, c, HSLToRGB(RGBToHSL(c)))
			}
		}
	}
}

func TestParseHex(t *testing.T) {
	c, err := Parse("#FF8000")
	require.NoError(t, err)
	assert.Equal(t, RGB{255, 128, 0}, c)
	assert.Equal(t, "#FF8000", c.Hex())
}

func TestParseNames(t *testing.T) {
	c, err := Parse("Red")
	require.NoError(t, err)
	assert.Equal(t, RGB{255, 0, 0}, c)

	_, err = Parse("chartreuse-ish")
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	for _, bad := range []string{"#FF80", "#GG0000", "#FF80001"} {
		_, err = Parse(bad)
		assert.Truef(t, errors.Is(err, errs.ErrInvalidArgument), "input %q", bad)
	}
	for _, n := range Names() {
		_, err := Parse(n)
		assert.NoError(t, err)
	}
}

func TestScaleAndBlend(t *testing.T) {
	c := RGB{200, 100, 50}
	assert.Equal(t, c, Scale(c, 255))
	assert.Equal(t, RGB{}, Scale(c, 0))
	assert.Equal(t, RGB{100, 50, 25}, Scale(c, 127))

	a, b := RGB{0, 0, 0}, RGB{255, 255, 255}
	assert.Equal(t, a, Blend(a, b, 0))
	assert.Equal(t, b, Blend(a, b, 255))
	assert.Equal(t, RGB{128, 128, 128}, Blend(a, b, 128))
}

func TestWheelCoversPrimaries(t *testing.T) {
	assert.Equal(t, RGB{255, 0, 0}, Wheel(0))
	assert.Equal(t, RGB{0, 255, 0}, Wheel(85))
	assert.Equal(t, RGB{0, 0, 255}, Wheel(170))
}

func TestGammaTable(t *testing.T) {
	g := GammaTable(2.2)
	assert.Equal(t, uint8(0), g[0])
	assert.Equal(t, uint8(255), g[255])
	assert.Less(t, g[128], uint8(128))
	id := GammaTable(1.0)
	for i := range id {
		assert.Equal(t, uint8(i), id[i])
	}
}

func TestTextRoundTrip(t *testing.T) {
	var c RGB
	require.NoError(t, c.UnmarshalText([]byte("#0A0B0C")))
	b, err := c.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "#0A0B0C", string(b))
}
