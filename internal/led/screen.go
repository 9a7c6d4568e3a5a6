package led

import (
	"fmt"

	"periph.io/x/devices/v3/screen1d"

	"github.com/coreman2200/ledgfx/internal/errs"
)

// NewScreen prints n pixels as a row of colored blocks on the console.
func NewScreen(n int, o Order) (Driver, error) {
	if n <= 0 {
		return nil, fmt.Errorf("pixel count %d: %w", n, errs.ErrInvalidArgument)
	}
	return newDrawerDriver(screen1d.New(&screen1d.Opts{X: n}), n, o, nil), nil
}
