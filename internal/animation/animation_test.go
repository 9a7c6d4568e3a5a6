package animation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/ledgfx/internal/canvas"
	"github.com/coreman2200/ledgfx/internal/color"
	"github.com/coreman2200/ledgfx/internal/errs"
	"github.com/coreman2200/ledgfx/internal/layout"
)

func mustEntry(t *testing.T, name string) Entry {
	t.Helper()
	e, err := Lookup(name)
	require.NoError(t, err)
	return e
}

func hot(h []uint8) bool {
	for _, v := range h {
		if v != 0 {
			return true
		}
	}
	return false
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("nope")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestListForFiltersByClass(t *testing.T) {
	for _, e := range ListFor(layout.Strip) {
		assert.True(t, e.AppliesTo(layout.Strip), e.Name)
		assert.NotEqual(t, "coderain", e.Name)
	}
	names := map[string]bool{}
	for _, e := range ListFor(layout.Matrix) {
		names[e.Name] = true
	}
	assert.True(t, names["coderain"])
	assert.True(t, names["fire"])
	assert.False(t, names["spin"])
	assert.Len(t, List(), len(catalog))
}

func TestFireRestartClearsHeat(t *testing.T) {
	g := layout.NewMatrix(8, 8, layout.TopLeft, layout.RowMajor)
	c := canvas.New(g)
	a := NewArena(1)
	b := NewBinding(mustEntry(t, "fire"), Params{})
	const id = LayerID(3)

	now := time.Unix(100, 0)
	require.True(t, a.Step(id, c, b, now))
	assert.False(t, hot(a.states[id].heat), "cold frame must not simulate")

	heated := false
	for i := 0; i < 200 && !heated; i++ {
		now = now.Add(b.Interval)
		a.Step(id, c, b, now)
		heated = hot(a.states[id].heat)
	}
	require.True(t, heated)

	// stop and restart
	b.Restart()
	now = now.Add(time.Millisecond)
	require.True(t, a.Step(id, c, b, now))
	assert.False(t, hot(a.states[id].heat))
	for i := range c.Pix {
		assert.True(t, c.Pix[i].IsBlack())
	}
}

func TestStepHonorsInterval(t *testing.T) {
	c := canvas.New(layout.NewStrip(10))
	a := NewArena(1)
	b := NewBinding(mustEntry(t, "solid"), Params{Color: color.RGB{R: 9}})
	now := time.Unix(5, 0)
	assert.True(t, a.Step(1, c, b, now))
	assert.False(t, a.Step(1, c, b, now.Add(b.Interval/2)))
	assert.True(t, a.Step(1, c, b, now.Add(b.Interval)))
	assert.Equal(t, color.RGB{R: 9}, c.Pix[9])
}

func TestBlackColorDefaultsToWhite(t *testing.T) {
	b := NewBinding(mustEntry(t, "solid"), Params{})
	assert.Equal(t, color.White, b.Params.Color)
}

func TestReleaseDropsState(t *testing.T) {
	c := canvas.New(layout.NewStrip(30))
	a := NewArena(2)
	b := NewBinding(mustEntry(t, "sparkle"), Params{})
	a.Step(7, c, b, time.Unix(1, 0))
	require.Contains(t, a.states, LayerID(7))
	a.Release(7)
	a.Release(7)
	assert.NotContains(t, a.states, LayerID(7))
}

func TestSparkleLifecycle(t *testing.T) {
	c := canvas.New(layout.NewStrip(64))
	a := NewArena(3)
	b := NewBinding(mustEntry(t, "sparkle"), Params{Color: color.RGB{G: 255}, Speed: 100})
	now := time.Unix(1, 0)
	lit := false
	for i := 0; i < 500; i++ {
		a.Step(1, c, b, now)
		now = now.Add(b.Interval)
		for _, p := range c.Pix {
			assert.Zero(t, p.R)
			if p.G > 0 {
				lit = true
			}
		}
	}
	assert.True(t, lit)
}

func TestEveryGeneratorRunsOnItsClasses(t *testing.T) {
	geoms := []layout.Geometry{
		layout.NewStrip(20),
		layout.NewRing(16),
		layout.NewMatrix(8, 4, layout.BottomRight, layout.ZigzagRow),
	}
	for _, g := range geoms {
		for _, e := range ListFor(g.Class) {
			c := canvas.New(g)
			a := NewArena(4)
			b := NewBinding(e, Params{Color: color.RGB{R: 200, G: 40}})
			now := time.Unix(0, 0)
			for i := 0; i < 20; i++ {
				a.Step(1, c, b, now)
				now = now.Add(e.Interval)
			}
			assert.Len(t, c.Pix, g.Count, e.Name)
		}
	}
}

func TestHeatColorRamp(t *testing.T) {
	assert.Equal(t, color.Black, heatColor(0))
	hi := heatColor(255)
	assert.Equal(t, uint8(255), hi.R)
	assert.Equal(t, uint8(255), hi.G)
}
