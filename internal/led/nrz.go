package led

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"

	"github.com/coreman2200/ledgfx/internal/errs"
)

// DefaultFreq suits WS2812-class strips.
const DefaultFreq = 2500 * physic.KiloHertz

// NewNRZ drives n pixels of a WS281x-style strip over an already opened SPI port.
func NewNRZ(p spi.Port, n int, freq physic.Frequency, o Order) (Driver, error) {
	if n <= 0 {
		return nil, fmt.Errorf("pixel count %d: %w", n, errs.ErrInvalidArgument)
	}
	if freq == 0 {
		freq = DefaultFreq
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{NumPixels: n, Channels: 3, Freq: freq})
	if err != nil {
		return nil, fmt.Errorf("nrzled: %v: %w", err, errs.ErrIO)
	}
	return newDrawerDriver(d, n, o, nil), nil
}

// OpenNRZ initializes the host, opens the named SPI port ("" for the first one)
// and drives n pixels on it.
func OpenNRZ(port string, n int, freq physic.Frequency, o Order) (Driver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %v: %w", err, errs.ErrIO)
	}
	p, err := spireg.Open(port)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %v: %w", port, err, errs.ErrIO)
	}
	drv, err := NewNRZ(p, n, freq, o)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	dd := drv.(*drawerDriver)
	dd.close = p.Close
	return dd, nil
}
