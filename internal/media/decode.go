// Package media decodes still and animated images into frames sized for a
// device and plays them on a layer.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"

	"github.com/coreman2200/ledgfx/internal/canvas"
	"github.com/coreman2200/ledgfx/internal/color"
	"github.com/coreman2200/ledgfx/internal/errs"
	"github.com/coreman2200/ledgfx/internal/layout"
)

// DefaultDelay is used for gif frames that declare no delay.
const DefaultDelay = 100 * time.Millisecond

// Image is a decoded picture. Stills have one frame and no delays.
type Image struct {
	Width, Height int
	Frames        []*image.NRGBA
	Delays        []time.Duration
}

// Decoder turns encoded bytes into an Image. hint is a format name
// ("png", "gif", "bmp") or empty to sniff.
type Decoder interface {
	Decode(r io.Reader, hint string) (*Image, error)
}

// StdDecoder handles png, gif (all frames) and bmp.
type StdDecoder struct{}

func (StdDecoder) Decode(r io.Reader, hint string) (*Image, error) {
	hint = strings.TrimPrefix(strings.ToLower(hint), ".")
	if hint == "" {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read image: %v: %w", err, errs.ErrIO)
		}
		hint = sniff(b)
		r = bytes.NewReader(b)
	}
	switch hint {
	case "gif":
		g, err := gif.DecodeAll(r)
		if err != nil {
			return nil, fmt.Errorf("gif: %v: %w", err, errs.ErrFormat)
		}
		return fromGIF(g), nil
	case "png":
		img, err := png.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("png: %v: %w", err, errs.ErrFormat)
		}
		return still(img), nil
	case "bmp":
		img, err := bmp.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("bmp: %v: %w", err, errs.ErrFormat)
		}
		return still(img), nil
	}
	return nil, fmt.Errorf("image format %q: %w", hint, errs.ErrUnsupported)
}

func sniff(b []byte) string {
	switch {
	case bytes.HasPrefix(b, []byte("\x89PNG")):
		return "png"
	case bytes.HasPrefix(b, []byte("GIF8")):
		return "gif"
	case bytes.HasPrefix(b, []byte("BM")):
		return "bmp"
	}
	return "unknown"
}

// Load decodes the file at path, taking the format from its extension.
func Load(d Decoder, path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v: %w", path, err, errs.ErrIO)
	}
	defer f.Close()
	img, err := d.Decode(f, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, src, b.Min, draw.Src)
	return dst
}

func still(img image.Image) *Image {
	n := toNRGBA(img)
	return &Image{Width: n.Rect.Dx(), Height: n.Rect.Dy(), Frames: []*image.NRGBA{n}}
}

// fromGIF flattens gif sub-frames onto a running canvas honoring disposal.
func fromGIF(g *gif.GIF) *Image {
	w, h := g.Config.Width, g.Config.Height
	if w == 0 || h == 0 {
		b := g.Image[0].Bounds()
		w, h = b.Max.X, b.Max.Y
	}
	out := &Image{Width: w, Height: h}
	acc := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, p := range g.Image {
		var prev *image.NRGBA
		disposal := byte(0)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			prev = image.NewNRGBA(acc.Rect)
			copy(prev.Pix, acc.Pix)
		}
		draw.Draw(acc, p.Bounds(), p, p.Bounds().Min, draw.Over)
		frame := image.NewNRGBA(acc.Rect)
		copy(frame.Pix, acc.Pix)
		out.Frames = append(out.Frames, frame)

		d := DefaultDelay
		if i < len(g.Delay) && g.Delay[i] > 0 {
			d = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		out.Delays = append(out.Delays, d)

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(acc, p.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			acc = prev
		}
	}
	return out
}

var errEmpty = errors.New("image has no frames")

// Fit scales every frame of img to g: matrices get w x h, strips and rings a
// single row of Count pixels. Alpha is dropped after premultiplication.
func Fit(img *Image, g layout.Geometry) ([][]color.RGB, error) {
	if img == nil || len(img.Frames) == 0 {
		return nil, fmt.Errorf("%v: %w", errEmpty, errs.ErrInvalidArgument)
	}
	w, h := g.Count, 1
	if g.IsMatrix() {
		w, h = g.Width, g.Height
	}
	out := make([][]color.RGB, 0, len(img.Frames))
	for _, f := range img.Frames {
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		xdraw.ApproxBiLinear.Scale(dst, dst.Rect, f, f.Rect, xdraw.Src, nil)
		c := canvas.New(g)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c.SetXY(x, y, color.FromColor(dst.At(x, y)))
			}
		}
		out = append(out, c.Pix)
	}
	return out, nil
}
