package render

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledgfx/internal/diagnostics"
	"github.com/coreman2200/ledgfx/internal/errs"
)

// Engine composites every registered device at a fixed rate, then applies the
// shared color correction and writes each frame to its driver.
type Engine struct {
	Correction *Correction

	// Diagnostics receives render failures; may be nil.
	Diagnostics *diagnostics.Log

	mu      sync.RWMutex
	devices []*Device

	// metrics (last durations in ms)
	Last struct {
		sync.Mutex
		RenderMS float64
		Frames   uint64
		Errors   uint64
	}
}

func NewEngine(corr *Correction) *Engine {
	if corr == nil {
		corr = NewCorrection(DefaultCorrectionSettings())
	}
	return &Engine{Correction: corr}
}

// AddDevice registers d. Names are unique.
func (e *Engine) AddDevice(d *Device) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, x := range e.devices {
		if x.Name == d.Name {
			return fmt.Errorf("device %s already registered: %w", d.Name, errs.ErrInvalidArgument)
		}
	}
	e.devices = append(e.devices, d)
	return nil
}

func (e *Engine) Device(name string) (*Device, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, d := range e.devices {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("device %q: %w", name, errs.ErrNotFound)
}

func (e *Engine) Devices() []*Device {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]*Device(nil), e.devices...)
}

// RenderOnce renders a single frame of every device at now. A failing driver does
// not stop the other devices; all errors are joined.
func (e *Engine) RenderOnce(now time.Time) error {
	start := time.Now()
	var errList []error
	for _, d := range e.Devices() {
		if err := d.render(now, e.Correction); err != nil {
			errList = append(errList, err)
		}
	}

	e.Last.Lock()
	e.Last.RenderMS = float64(time.Since(start).Microseconds()) / 1000.0
	e.Last.Frames++
	if len(errList) > 0 {
		e.Last.Errors++
	}
	e.Last.Unlock()
	return errors.Join(errList...)
}

// Run drives RenderOnce at fps until ctx is cancelled. Repeated identical errors
// are logged once.
func (e *Engine) Run(ctx context.Context, fps int) error {
	var last string
	Loop(ctx, fps, func(now time.Time) {
		err := e.RenderOnce(now)
		switch {
		case err == nil && last != "":
			log.Info().Msg("render recovered")
			last = ""
		case err != nil && err.Error() != last:
			last = err.Error()
			if e.Diagnostics != nil {
				e.Diagnostics.Push(diagnostics.Diagnostic{
					Severity:       diagnostics.Err,
					Code:           "RENDER.WRITE",
					Summary:        "Driver write failed",
					Detail:         last,
					LikelyCauses:   []string{"LED bus disconnected", "SPI port busy"},
					SuggestedFixes: []string{"Check wiring and power", "Switch the device to the sim driver"},
				})
			} else {
				log.Warn().Err(err).Msg("render failed")
			}
		}
	})
	return nil
}

// Close closes every device driver.
func (e *Engine) Close() error {
	var errList []error
	for _, d := range e.Devices() {
		if err := d.Close(); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}
