package canvas

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/ledgfx/internal/color"
	"github.com/coreman2200/ledgfx/internal/layout"
)

var red = color.RGB{R: 255}

func TestPrimitivesClamp(t *testing.T) {
	c := New(layout.NewMatrix(4, 4, layout.TopLeft, layout.RowMajor))
	c.Set(-1, red)
	c.Set(16, red)
	c.SetXY(4, 0, red)
	c.FillRange(-2, 4, red)
	assert.Equal(t, red, c.Pix[0])
	assert.Equal(t, red, c.Pix[1])
	assert.Equal(t, color.Black, c.Pix[2])
	c.FillRange(14, 10, red)
	assert.Equal(t, red, c.Pix[15])
	assert.Len(t, c.Pix, 16)
}

func TestLineAndRect(t *testing.T) {
	c := New(layout.NewMatrix(4, 4, layout.TopLeft, layout.RowMajor))
	c.Line(0, 0, 3, 3, red)
	for i := 0; i < 4; i++ {
		assert.Equal(t, red, c.AtXY(i, i))
	}
	c.Clear()
	c.FillRect(1, 1, 10, 10, red)
	assert.Equal(t, color.Black, c.AtXY(0, 0))
	assert.Equal(t, red, c.AtXY(3, 3))
}

func TestCircle(t *testing.T) {
	c := New(layout.NewMatrix(9, 9, layout.TopLeft, layout.RowMajor))
	c.Circle(4, 4, 3, red, false)
	assert.Equal(t, red, c.AtXY(7, 4))
	assert.Equal(t, color.Black, c.AtXY(4, 4))
	c.Circle(4, 4, 3, red, true)
	assert.Equal(t, red, c.AtXY(4, 4))
}

func TestGradient(t *testing.T) {
	c := New(layout.NewStrip(5))
	c.Gradient(0, 5, color.Black, color.White)
	assert.Equal(t, color.Black, c.Pix[0])
	assert.Equal(t, color.White, c.Pix[4])
	assert.True(t, c.Pix[2].R > 100 && c.Pix[2].R < 160)
}

func TestHugeExtentsAreClipped(t *testing.T) {
	c := New(layout.NewMatrix(4, 4, layout.TopLeft, layout.RowMajor))
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.FillRect(-1<<30, -1<<30, 1<<31, 1<<31, red)
		c.Line(-1<<30, 0, 1<<30, 0, color.White)
		c.Circle(2, 2, 1<<30, red, true)
		c.Circle(-1<<30, 2, 1<<30, red, false)
		c.Gradient(-1<<30, 1<<31, color.Black, color.White)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("drawing with huge extents did not return")
	}
}

func TestClippedLineKeepsVisiblePart(t *testing.T) {
	c := New(layout.NewMatrix(4, 4, layout.TopLeft, layout.RowMajor))
	c.Line(-100, 1, 100, 1, red)
	for x := 0; x < 4; x++ {
		assert.Equal(t, red, c.AtXY(x, 1))
	}
	assert.Equal(t, color.Black, c.AtXY(0, 0))

	c.Clear()
	c.Line(-10, -10, -1, -1, red)
	for _, p := range c.Pix {
		assert.Equal(t, color.Black, p)
	}
}

func TestHugeFilledCircleCoversCanvas(t *testing.T) {
	c := New(layout.NewMatrix(4, 4, layout.TopLeft, layout.RowMajor))
	c.Circle(2, 2, 1000, red, true)
	for _, p := range c.Pix {
		assert.Equal(t, red, p)
	}
	c.Clear()
	c.Circle(2, 2, 1000, red, false)
	for _, p := range c.Pix {
		assert.Equal(t, color.Black, p)
	}
}

func TestGradientClipsToStrip(t *testing.T) {
	c := New(layout.NewStrip(4))
	c.Gradient(-2, 8, color.Black, color.White)
	assert.True(t, c.Pix[0].R > 0)
	assert.Len(t, c.Pix, 4)
}
