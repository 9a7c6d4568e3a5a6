package led

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/ledgfx/internal/errs"
)

// Config selects and parameterizes a driver.
type Config struct {
	// Kind is spi, screen or sim.
	Kind    string `yaml:"kind" json:"kind"`
	Port    string `yaml:"port,omitempty" json:"port,omitempty"`
	FreqKHz int    `yaml:"freq_khz,omitempty" json:"freq_khz,omitempty"`
	Order   Order  `yaml:"order,omitempty" json:"order,omitempty"`
}

func (c Config) Validate() error {
	switch strings.ToLower(c.Kind) {
	case "", "sim", "screen", "spi", "nrz":
	default:
		return fmt.Errorf("driver kind %q: %w", c.Kind, errs.ErrInvalidArgument)
	}
	if c.FreqKHz < 0 {
		return fmt.Errorf("driver freq %d kHz: %w", c.FreqKHz, errs.ErrInvalidArgument)
	}
	return c.Order.Validate()
}

// Hardware reports whether c asks for a physical strip (spi or its nrz alias).
func (c Config) Hardware() bool {
	switch strings.ToLower(c.Kind) {
	case "spi", "nrz":
		return true
	}
	return false
}

// Open builds the driver for a device of n pixels. If the SPI hardware cannot be
// opened the device falls back to a Sim driver so the engine keeps running.
func Open(device string, c Config, n int) (Driver, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	switch strings.ToLower(c.Kind) {
	case "spi", "nrz":
		drv, err := OpenNRZ(c.Port, n, physic.Frequency(c.FreqKHz)*physic.KiloHertz, c.Order)
		if err == nil {
			log.Info().Str("device", device).Str("driver", "spi").Str("port", c.Port).Msg("driver ready")
			return drv, nil
		}
		log.Warn().Err(err).Str("device", device).Str("driver", "spi").Msg("SPI init failed; falling back to SIM")
		return NewSim(device), nil
	case "screen":
		return NewScreen(n, c.Order)
	default:
		return NewSim(device), nil
	}
}
