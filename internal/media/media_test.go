package media

import (
	"bytes"
	"image"
	stdcolor "image/color"
	"image/color/palette"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/coreman2200/ledgfx/internal/animation"
	"github.com/coreman2200/ledgfx/internal/color"
	"github.com/coreman2200/ledgfx/internal/errs"
	"github.com/coreman2200/ledgfx/internal/layout"
	"github.com/coreman2200/ledgfx/internal/render"
)

func solid(w, h int, c stdcolor.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func twoFrameGIF(t *testing.T) []byte {
	g := &gif.GIF{Config: image.Config{Width: 4, Height: 4}}
	for _, c := range []stdcolor.Color{stdcolor.RGBA{255, 0, 0, 255}, stdcolor.RGBA{0, 0, 255, 255}} {
		p := image.NewPaletted(image.Rect(0, 0, 4, 4), palette.Plan9)
		for i := range p.Pix {
			p.Pix[i] = uint8(p.Palette.Index(c))
		}
		g.Image = append(g.Image, p)
		g.Delay = append(g.Delay, 5)
		g.Disposal = append(g.Disposal, gif.DisposalNone)
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, g))
	return buf.Bytes()
}

func TestDecodeFormats(t *testing.T) {
	red := stdcolor.NRGBA{255, 0, 0, 255}
	var bmpBuf bytes.Buffer
	require.NoError(t, bmp.Encode(&bmpBuf, solid(3, 2, red)))

	cases := map[string][]byte{
		"png": pngBytes(t, solid(3, 2, red)),
		"bmp": bmpBuf.Bytes(),
	}
	for hint, data := range cases {
		for _, h := range []string{hint, ""} {
			img, err := StdDecoder{}.Decode(bytes.NewReader(data), h)
			require.NoError(t, err, "hint %q", h)
			assert.Equal(t, 3, img.Width)
			assert.Equal(t, 2, img.Height)
			require.Len(t, img.Frames, 1)
			assert.Empty(t, img.Delays)
		}
	}

	img, err := StdDecoder{}.Decode(bytes.NewReader(twoFrameGIF(t)), "")
	require.NoError(t, err)
	require.Len(t, img.Frames, 2)
	assert.Equal(t, []time.Duration{50 * time.Millisecond, 50 * time.Millisecond}, img.Delays)
}

func TestDecodeErrors(t *testing.T) {
	_, err := StdDecoder{}.Decode(bytes.NewReader([]byte("not an image")), "")
	assert.ErrorIs(t, err, errs.ErrUnsupported)

	_, err = StdDecoder{}.Decode(bytes.NewReader([]byte("\x89PNG broken")), "png")
	assert.ErrorIs(t, err, errs.ErrFormat)

	_, err = Load(StdDecoder{}, filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, errs.ErrIO)
}

func TestLoadUsesExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, solid(8, 8, stdcolor.White)), 0644))
	img, err := Load(StdDecoder{}, path)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Width)
}

func TestFitScalesToGeometry(t *testing.T) {
	img := still(solid(16, 16, stdcolor.NRGBA{0, 255, 0, 255}))

	frames, err := Fit(img, layout.NewMatrix(4, 2, layout.TopLeft, layout.ZigzagRow))
	require.NoError(t, err)
	require.Len(t, frames, 1)
	require.Len(t, frames[0], 8)
	for _, px := range frames[0] {
		assert.Equal(t, color.RGB{R: 0, G: 255, B: 0}, px)
	}

	frames, err = Fit(img, layout.NewStrip(10))
	require.NoError(t, err)
	assert.Len(t, frames[0], 10)

	_, err = Fit(&Image{}, layout.NewStrip(10))
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func newLayer(t *testing.T) (*render.Device, *render.Layer) {
	d, err := render.NewDevice("m", layout.NewMatrix(4, 4, layout.TopLeft, layout.RowMajor), nil)
	require.NoError(t, err)
	l, err := d.Layer(0)
	require.NoError(t, err)
	return d, l
}

func TestPlayerLifecycle(t *testing.T) {
	_, l := newLayer(t)
	p := NewPlayer()
	assert.Equal(t, Idle, p.State())

	now := time.Unix(100, 0)
	assert.ErrorIs(t, p.Play(l, now), errs.ErrInvalidArgument)

	img, err := StdDecoder{}.Decode(bytes.NewReader(twoFrameGIF(t)), "gif")
	require.NoError(t, err)
	require.NoError(t, p.Load(img))
	assert.Equal(t, Loaded, p.State())

	require.NoError(t, l.StartAnimation("rainbow", animation.Params{}))
	require.NoError(t, p.Play(l, now))
	assert.Equal(t, Displaying, p.State())
	assert.Empty(t, l.Animation(), "play stops the animation")
	first := l.At(0)
	assert.Greater(t, first.R, first.B)

	assert.False(t, p.Tick(now.Add(10*time.Millisecond)))
	assert.True(t, p.Tick(now.Add(50*time.Millisecond)))
	second := l.At(0)
	assert.Greater(t, second.B, second.R)

	p.Stop()
	assert.Equal(t, Stopped, p.State())
	assert.True(t, l.At(0).IsBlack())
	assert.False(t, p.Tick(now.Add(time.Second)))
	p.Stop()
	assert.Equal(t, Stopped, p.State())

	require.NoError(t, p.Play(l, now))
	p.Unload()
	assert.Equal(t, Idle, p.State())
	assert.Nil(t, p.Image())
	assert.True(t, l.At(0).IsBlack(), "unload detaches before freeing")
}

func TestPlayerLoadWhileDisplaying(t *testing.T) {
	_, l := newLayer(t)
	p := NewPlayer()
	require.NoError(t, p.Load(still(solid(2, 2, stdcolor.White))))
	require.NoError(t, p.Play(l, time.Unix(0, 0)))

	require.NoError(t, p.Load(still(solid(2, 2, stdcolor.NRGBA{255, 0, 0, 255}))))
	assert.Equal(t, Loaded, p.State())
	assert.True(t, l.At(0).IsBlack())

	assert.ErrorIs(t, p.Load(nil), errs.ErrInvalidArgument)
}

func TestPlayerRejectsOverlayLayer(t *testing.T) {
	d, _ := newLayer(t)
	ov, err := d.CreateLayer(render.DefaultLayerConfig())
	require.NoError(t, err)
	require.NotEqual(t, render.OverlayIndex, ov.Index())

	h, err := d.ClaimOverlay()
	require.NoError(t, err)
	defer h.Release()
	l1, err := d.Layer(render.OverlayIndex)
	require.NoError(t, err)

	p := NewPlayer()
	require.NoError(t, p.Load(still(solid(2, 2, stdcolor.White))))
	assert.ErrorIs(t, p.Play(l1, time.Unix(0, 0)), errs.ErrInvalidArgument)
}
