// Package led holds the output drivers that push a device's final frame to
// hardware, the console, or memory.
package led

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"

	"periph.io/x/conn/v3/display"

	"github.com/coreman2200/ledgfx/internal/color"
	"github.com/coreman2200/ledgfx/internal/errs"
)

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes one frame in wiring order.
	Write(px []color.RGB) error
	// Close releases resources.
	Close() error
}

// Order is the channel order a strip expects on the wire, e.g. "RGB" or "BRG".
type Order string

const DefaultOrder Order = "RGB"

// Validate checks that o is a permutation of R, G and B.
func (o Order) Validate() error {
	s := strings.ToUpper(string(o))
	if s == "" {
		return nil
	}
	if len(s) != 3 || !strings.ContainsRune(s, 'R') || !strings.ContainsRune(s, 'G') || !strings.ContainsRune(s, 'B') {
		return fmt.Errorf("color order %q: %w", string(o), errs.ErrInvalidArgument)
	}
	return nil
}

// swizzle reorders c so the drawer, which assumes RGB, emits o on the wire.
func (o Order) swizzle(c color.RGB) color.RGB {
	s := strings.ToUpper(string(o))
	if s == "" || s == "RGB" || len(s) != 3 {
		return c
	}
	ch := func(b byte) uint8 {
		switch b {
		case 'R':
			return c.R
		case 'G':
			return c.G
		default:
			return c.B
		}
	}
	return color.RGB{R: ch(s[0]), G: ch(s[1]), B: ch(s[2])}
}

// drawerDriver adapts a periph display.Drawer laid out as a single row.
type drawerDriver struct {
	mu    sync.Mutex
	d     display.Drawer
	img   *image.NRGBA
	order Order
	close func() error
}

func newDrawerDriver(d display.Drawer, n int, o Order, closeFn func() error) *drawerDriver {
	return &drawerDriver{
		d:     d,
		img:   image.NewNRGBA(image.Rect(0, 0, n, 1)),
		order: o,
		close: closeFn,
	}
}

func (dd *drawerDriver) String() string {
	if s, ok := dd.d.(fmt.Stringer); ok {
		return s.String()
	}
	return "drawer"
}

func (dd *drawerDriver) Write(px []color.RGB) error {
	dd.mu.Lock()
	defer dd.mu.Unlock()
	if dd.d == nil {
		return fmt.Errorf("driver closed: %w", errs.ErrInvalidArgument)
	}
	n := dd.img.Rect.Dx()
	for x := 0; x < n; x++ {
		c := color.Black
		if x < len(px) {
			c = dd.order.swizzle(px[x])
		}
		dd.img.SetNRGBA(x, 0, c.NRGBA())
	}
	return dd.d.Draw(dd.d.Bounds(), dd.img, image.Point{})
}

func (dd *drawerDriver) Close() error {
	dd.mu.Lock()
	defer dd.mu.Unlock()
	if dd.d == nil {
		return nil
	}
	err := dd.d.Halt()
	dd.d = nil
	if dd.close != nil {
		err = errors.Join(err, dd.close())
	}
	return err
}
