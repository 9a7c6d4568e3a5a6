package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledgfx/internal/animation"
	"github.com/coreman2200/ledgfx/internal/config"
	"github.com/coreman2200/ledgfx/internal/diagnostics"
	"github.com/coreman2200/ledgfx/internal/effect"
	"github.com/coreman2200/ledgfx/internal/font"
	"github.com/coreman2200/ledgfx/internal/led"
	"github.com/coreman2200/ledgfx/internal/media"
	"github.com/coreman2200/ledgfx/internal/overlay"
	"github.com/coreman2200/ledgfx/internal/preview"
	"github.com/coreman2200/ledgfx/internal/render"
	"github.com/coreman2200/ledgfx/internal/sequence"
	"github.com/coreman2200/ledgfx/internal/store"
)

// Core is every long-lived piece of a running engine.
type Core struct {
	Config    *config.Config
	Engine    *render.Engine
	Overlay   *overlay.Manager
	Diag      *diagnostics.Log
	Preview   *preview.Server // nil when disabled
	Store     store.Store     // nil when not configured
	Conductor *Conductor      // nil without a sequence

	Decoder media.Decoder

	mu      sync.Mutex
	players map[string]*media.Player
	images  map[string]string // device -> displayed image path
}

// Build wires the engine from cfg: drivers, devices, defaults, restored state
// and the optional preview, store and sequence.
func Build(cfg *config.Config) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Core{
		Config:  cfg,
		Diag:    diagnostics.NewLog(256),
		Decoder: media.StdDecoder{},
		players: map[string]*media.Player{},
		images:  map[string]string{},
	}
	c.Engine = render.NewEngine(render.NewCorrection(cfg.Correction))
	c.Engine.Diagnostics = c.Diag
	c.Overlay = overlay.NewManager(cfg.Font.Path, font.CacheConfig{
		Capacity:        cfg.Font.CacheSize,
		PrecomputeASCII: cfg.Font.PrecomputeASCII,
	})
	if cfg.Preview.Enabled {
		c.Preview = preview.NewServer(c.Engine, c.Diag)
		if cfg.Preview.MaxFPS > 0 {
			c.Preview.MaxFPS = cfg.Preview.MaxFPS
		}
	}
	if cfg.Store.Kind != "" {
		s, err := store.Open(cfg.Store.Kind, cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		c.Store = s
	}

	for _, dc := range cfg.Devices {
		if err := c.addDevice(dc); err != nil {
			_ = c.Close()
			return nil, err
		}
	}

	if cfg.Sequence != "" {
		prog, err := sequence.LoadProgram(cfg.Sequence)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		name := prog.Device
		if name == "" {
			name = cfg.Devices[0].Name
		}
		dev, err := c.Engine.Device(name)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		if c.Conductor, err = NewConductor(dev, prog); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	return c, nil
}

func (c *Core) addDevice(dc config.Device) error {
	g, err := dc.Geometry()
	if err != nil {
		return err
	}
	hw, err := led.Open(dc.Name, dc.Driver, g.Count)
	if err != nil {
		return fmt.Errorf("device %s: %w", dc.Name, err)
	}
	if _, sim := hw.(*led.Sim); sim && dc.Driver.Hardware() {
		c.Diag.Push(diagnostics.Diagnostic{
			Severity:       diagnostics.Warn,
			Code:           "DRIVER.FALLBACK",
			Device:         dc.Name,
			Summary:        "SPI driver unavailable; rendering to sim",
			Evidence:       map[string]any{"port": dc.Driver.Port, "freq_khz": dc.Driver.FreqKHz},
			LikelyCauses:   []string{"SPI disabled in the boot config", "wrong port name", "missing permissions on /dev/spidev*"},
			SuggestedFixes: []string{"Enable SPI and reboot", "List ports with periph's spi-list", "Run with access to /dev/spidev*"},
		})
	}
	var drv render.Driver = hw
	if c.Preview != nil {
		drv = led.Multi{hw, c.Preview.Driver(dc.Name, g)}
	}
	dev, err := render.NewDevice(dc.Name, g, drv)
	if err != nil {
		_ = hw.Close()
		return err
	}
	dev.Power = dc.Power
	if dc.Brightness > 0 {
		dev.SetBrightness(dc.Brightness)
	}
	if err := c.Engine.AddDevice(dev); err != nil {
		_ = hw.Close()
		return err
	}
	c.players[dc.Name] = media.NewPlayer()

	if err := c.applyDefaults(dev, dc); err != nil {
		return err
	}
	c.restore(dev)
	return nil
}

func (c *Core) applyDefaults(dev *render.Device, dc config.Device) error {
	l, err := dev.Layer(0)
	if err != nil {
		return err
	}
	if dc.Animation.Name != "" {
		p, err := dc.Animation.Params()
		if err != nil {
			return err
		}
		if err := l.StartAnimation(dc.Animation.Name, p); err != nil {
			return fmt.Errorf("device %s: %w", dev.Name, err)
		}
	}
	if dc.Effect.Name != "" {
		fx, err := effect.FromSpec(dc.Effect)
		if err != nil {
			return err
		}
		l.SetEffect(fx)
	}
	return nil
}

// restore replays the persisted record of dev over its defaults. Anything
// that no longer applies is logged and skipped.
func (c *Core) restore(dev *render.Device) {
	if c.Store == nil {
		return
	}
	rec, err := c.Store.Load(dev.Name)
	if err != nil {
		log.Debug().Err(err).Str("device", dev.Name).Msg("no stored state")
		return
	}
	if rec.Brightness > 0 {
		dev.SetBrightness(rec.Brightness)
	}
	l, err := dev.Layer(0)
	if err != nil {
		return
	}
	switch {
	case rec.Image != "":
		if err := c.showImage(dev, rec.Image, false); err != nil {
			log.Warn().Err(err).Str("device", dev.Name).Str("image", rec.Image).Msg("stored image unavailable")
		}
	case rec.Animation != "":
		p, err := paramsOf(rec)
		if err == nil {
			err = l.StartAnimation(rec.Animation, p)
		}
		if err != nil {
			log.Warn().Err(err).Str("device", dev.Name).Str("animation", rec.Animation).Msg("stored animation skipped")
		}
	}
	if rec.Effect.Name != "" {
		fx, err := effect.FromSpec(rec.Effect)
		if err != nil {
			log.Warn().Err(err).Str("device", dev.Name).Msg("stored effect skipped")
		} else {
			l.SetEffect(fx)
		}
	}
	log.Info().Str("device", dev.Name).Str("animation", rec.Animation).Str("image", rec.Image).Msg("state restored")
}

func paramsOf(rec store.Record) (animation.Params, error) {
	ac := config.Animation{Name: rec.Animation, Color: rec.Color, Speed: rec.Speed}
	return ac.Params()
}

// Close stops overlays and images, persists device state and closes drivers.
func (c *Core) Close() error {
	if err := c.Overlay.StopAll(); err != nil {
		log.Warn().Err(err).Msg("closing font")
	}
	c.mu.Lock()
	for _, p := range c.players {
		p.Unload()
	}
	c.mu.Unlock()
	if c.Store != nil {
		for _, d := range c.Engine.Devices() {
			c.persist(d)
		}
		if err := c.Store.Close(); err != nil {
			log.Warn().Err(err).Msg("closing store")
		}
	}
	return c.Engine.Close()
}

// RenderOnce composes and writes one frame of every device at now.
func (c *Core) RenderOnce(now time.Time) error { return c.Engine.RenderOnce(now) }
