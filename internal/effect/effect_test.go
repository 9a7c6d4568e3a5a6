package effect

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/ledgfx/internal/color"
	"github.com/coreman2200/ledgfx/internal/errs"
	"github.com/coreman2200/ledgfx/internal/layout"
)

func filled(n int, c color.RGB) []color.RGB {
	buf := make([]color.RGB, n)
	for i := range buf {
		buf[i] = c
	}
	return buf
}

func TestFadeInFinishes(t *testing.T) {
	g := layout.NewStrip(8)
	s := NewState(1)
	t0 := time.Unix(10, 0)
	s.Restart(t0)
	cfg := FadeIn{Duration: time.Second, AutoRemove: true}

	buf := filled(8, color.RGB{R: 200, G: 100, B: 50})
	res := s.Apply(buf, g, cfg, t0)
	assert.False(t, res.Finished)
	assert.True(t, buf[0].IsBlack())

	buf = filled(8, color.RGB{R: 200, G: 100, B: 50})
	res = s.Apply(buf, g, cfg, t0.Add(500*time.Millisecond))
	assert.False(t, res.Finished)
	assert.Greater(t, buf[0].R, uint8(0))
	assert.Less(t, buf[0].R, uint8(200))

	buf = filled(8, color.RGB{R: 200, G: 100, B: 50})
	res = s.Apply(buf, g, cfg, t0.Add(time.Second))
	assert.True(t, res.Finished)
	assert.Equal(t, color.RGB{R: 200, G: 100, B: 50}, buf[0])
}

func TestFadeOutWithoutAutoRemoveStaysDark(t *testing.T) {
	s := NewState(1)
	t0 := time.Unix(10, 0)
	s.Restart(t0)
	buf := filled(4, color.White)
	res := s.Apply(buf, layout.NewStrip(4), FadeOut{Duration: 200 * time.Millisecond}, t0.Add(time.Second))
	assert.False(t, res.Finished)
	assert.True(t, buf[3].IsBlack())
}

func TestNoneIsNoop(t *testing.T) {
	s := NewState(1)
	buf := filled(3, color.RGB{G: 7})
	s.Apply(buf, layout.NewStrip(3), None{}, time.Now())
	s.Apply(buf, layout.NewStrip(3), nil, time.Now())
	assert.Equal(t, filled(3, color.RGB{G: 7}), buf)
}

func TestMatrixOnlyOnStripIsNoop(t *testing.T) {
	for _, cfg := range []Config{Scanline{Speed: 50, Width: 1}, Wave{Speed: 50, Amplitude: 255}, Glitch{Intensity: 255}, Plasma{Speed: 50, Amount: 255}, Vignette{Strength: 255}} {
		s := NewState(1)
		buf := filled(10, color.RGB{R: 10, G: 20, B: 30})
		for i := 0; i < 3; i++ {
			s.Apply(buf, layout.NewStrip(10), cfg, time.Unix(int64(i), 0))
		}
		assert.Equal(t, filled(10, color.RGB{R: 10, G: 20, B: 30}), buf, cfg.Name())
		assert.True(t, s.warned)
	}
}

func TestVignetteDarkensCorners(t *testing.T) {
	g := layout.NewMatrix(5, 5, layout.TopLeft, layout.RowMajor)
	buf := filled(25, color.White)
	NewState(1).Apply(buf, g, Vignette{Strength: 255}, time.Now())
	center, _ := g.Index(2, 2)
	corner, _ := g.Index(0, 0)
	assert.Equal(t, color.White, buf[center])
	assert.Less(t, buf[corner].R, uint8(10))
}

func TestSparkleLifecycleReturnsToBase(t *testing.T) {
	s := NewState(7)
	cfg := Sparkle{Speed: 100, Density: 100, Decay: 200, Color: color.White}
	base := color.RGB{B: 40}
	seen := false
	for f := 0; f < 200; f++ {
		buf := filled(50, base)
		s.Apply(buf, layout.NewStrip(50), cfg, time.Unix(0, 0))
		for _, p := range buf {
			if p != base {
				seen = true
			}
		}
	}
	assert.True(t, seen)

	// no spawns: every cell drains back to off
	quiet := Sparkle{Speed: 0, Density: 0, Decay: 200, Color: color.White}
	for f := 0; f < 100; f++ {
		s.Apply(filled(50, base), layout.NewStrip(50), quiet, time.Unix(0, 0))
	}
	assert.Zero(t, s.Active())

	s.Restart(time.Unix(1, 0))
	assert.Zero(t, s.Active())
}

func TestPosterizeAndGrayscale(t *testing.T) {
	buf := []color.RGB{{R: 10, G: 130, B: 250}}
	posterize(buf, 2)
	assert.Equal(t, color.RGB{R: 0, G: 255, B: 255}, buf[0])

	buf = []color.RGB{{R: 255}}
	NewState(1).Apply(buf, layout.NewStrip(1), Grayscale{}, time.Now())
	assert.Equal(t, buf[0].R, buf[0].G)
	assert.Equal(t, buf[0].G, buf[0].B)
}

func TestMirrorStrip(t *testing.T) {
	buf := []color.RGB{{R: 1}, {R: 2}, {R: 3}, {R: 4}}
	NewState(1).Apply(buf, layout.NewStrip(4), Mirror{}, time.Now())
	assert.Equal(t, []color.RGB{{R: 1}, {R: 2}, {R: 2}, {R: 1}}, buf)
}

func TestSpecRoundTrip(t *testing.T) {
	for _, name := range Names() {
		cfg, err := FromSpec(Spec{Name: name})
		require.NoError(t, err, name)
		back, err := FromSpec(ToSpec(cfg))
		require.NoError(t, err, name)
		assert.Equal(t, cfg, back, name)
	}
	assert.Len(t, Names(), 26)
}

func TestFromSpecErrors(t *testing.T) {
	_, err := FromSpec(Spec{Name: "warp"})
	assert.ErrorIs(t, err, errs.ErrNotFound)
	_, err = FromSpec(Spec{Name: "color_temp", Params: map[string]float64{"temp": 400}})
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	cfg, err := FromSpec(Spec{})
	require.NoError(t, err)
	assert.True(t, IsNone(cfg))
}

func TestColorParamsAreClamped(t *testing.T) {
	cfg, err := FromSpec(Spec{Name: "tint", Params: map[string]float64{"color": -5, "amount": 300}})
	require.NoError(t, err)
	assert.Equal(t, color.Black, cfg.(Tint).Color)
	assert.Equal(t, uint8(255), cfg.(Tint).Amount)

	cfg, err = FromSpec(Spec{Name: "sparkle", Params: map[string]float64{"color": 1e12}})
	require.NoError(t, err)
	assert.Equal(t, color.White, cfg.(Sparkle).Color)

	cfg, err = FromSpec(Spec{Name: "tint", Params: map[string]float64{"color": math.NaN()}})
	require.NoError(t, err)
	assert.Equal(t, color.RGB{R: 255, G: 147, B: 41}, cfg.(Tint).Color)
}

func TestEveryEffectKeepsLength(t *testing.T) {
	g := layout.NewMatrix(6, 4, layout.BottomLeft, layout.ZigzagColumn)
	for _, name := range Names() {
		cfg, err := FromSpec(Spec{Name: name})
		require.NoError(t, err)
		s := NewState(3)
		s.Restart(time.Unix(0, 0))
		buf := filled(g.Count, color.RGB{R: 90, G: 160, B: 30})
		for i := 0; i < 10; i++ {
			s.Apply(buf, g, cfg, time.Unix(0, int64(i)*int64(40*time.Millisecond)))
		}
		assert.Len(t, buf, g.Count, name)
	}
}
