package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/coreman2200/ledgfx/internal/animation"
	"github.com/coreman2200/ledgfx/internal/diagnostics"
	"github.com/coreman2200/ledgfx/internal/effect"
	"github.com/coreman2200/ledgfx/internal/media"
	"github.com/coreman2200/ledgfx/internal/overlay"
	"github.com/coreman2200/ledgfx/internal/render"
	"github.com/coreman2200/ledgfx/internal/store"
)

// SetAnimation replaces whatever layer 0 of device shows with the animation.
func (c *Core) SetAnimation(device, name string, p animation.Params) error {
	dev, l, err := c.base(device)
	if err != nil {
		return err
	}
	c.stopImage(device)
	if err := l.StartAnimation(name, p); err != nil {
		return err
	}
	c.persist(dev)
	return nil
}

// SetEffect applies spec to layer 0 of device. An empty name clears it.
func (c *Core) SetEffect(device string, spec effect.Spec) error {
	dev, l, err := c.base(device)
	if err != nil {
		return err
	}
	fx, err := effect.FromSpec(spec)
	if err != nil {
		return err
	}
	l.SetEffect(fx)
	c.persist(dev)
	return nil
}

func (c *Core) SetBrightness(device string, b uint8) error {
	dev, err := c.Engine.Device(device)
	if err != nil {
		return err
	}
	dev.SetBrightness(b)
	c.persist(dev)
	return nil
}

// ShowImage decodes path and plays it on layer 0 of device. On failure the
// layer keeps its current content and a diagnostic is recorded.
func (c *Core) ShowImage(device, path string) error {
	dev, err := c.Engine.Device(device)
	if err != nil {
		return err
	}
	return c.showImage(dev, path, true)
}

func (c *Core) showImage(dev *render.Device, path string, save bool) error {
	img, err := media.Load(c.Decoder, path)
	if err != nil {
		c.Diag.Push(diagnostics.Diagnostic{
			Severity: diagnostics.Warn,
			Code:     "IMAGE.LOAD",
			Device:   dev.Name,
			Summary:  "Image could not be decoded",
			Detail:   err.Error(),
			Evidence: map[string]any{"path": path},
		})
		return err
	}
	l, err := dev.Layer(0)
	if err != nil {
		return err
	}
	c.mu.Lock()
	p := c.players[dev.Name]
	c.mu.Unlock()
	if err := p.Load(img); err != nil {
		return err
	}
	if err := p.Play(l, time.Now()); err != nil {
		return err
	}
	c.mu.Lock()
	c.images[dev.Name] = path
	c.mu.Unlock()
	if save {
		c.persist(dev)
	}
	return nil
}

// StopImage stops and frees the image on device, if any.
func (c *Core) StopImage(device string) error {
	dev, err := c.Engine.Device(device)
	if err != nil {
		return err
	}
	c.stopImage(device)
	c.persist(dev)
	return nil
}

func (c *Core) stopImage(device string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p := c.players[device]; p != nil {
		p.Unload()
	}
	delete(c.images, device)
}

// ShowText starts or replaces the text overlay on device.
func (c *Core) ShowText(device string, cfg overlay.Config) error {
	dev, err := c.Engine.Device(device)
	if err != nil {
		return err
	}
	return c.Overlay.Start(dev, cfg)
}

func (c *Core) StopText(device string) { c.Overlay.Stop(device) }

func (c *Core) base(device string) (*render.Device, *render.Layer, error) {
	dev, err := c.Engine.Device(device)
	if err != nil {
		return nil, nil, err
	}
	l, err := dev.Layer(0)
	if err != nil {
		return nil, nil, err
	}
	return dev, l, nil
}

// persist saves the current state of dev when a store is configured.
func (c *Core) persist(dev *render.Device) {
	if c.Store == nil {
		return
	}
	rec := store.Record{Device: dev.Name, Brightness: dev.Brightness()}
	if l, err := dev.Layer(0); err == nil {
		rec.Animation = l.Animation()
		if p, ok := l.AnimationParams(); ok {
			rec.Color = p.Color.Hex()
			rec.Speed = p.Speed
		}
		if fx := l.Effect(); !effect.IsNone(fx) {
			rec.Effect = effect.ToSpec(fx)
		}
	}
	c.mu.Lock()
	rec.Image = c.images[dev.Name]
	c.mu.Unlock()
	if err := c.Store.Save(rec); err != nil {
		log.Warn().Err(err).Str("device", dev.Name).Msg("state not saved")
	}
}

func (c *Core) tickImages(now time.Time) {
	c.mu.Lock()
	players := make([]*media.Player, 0, len(c.players))
	for _, p := range c.players {
		players = append(players, p)
	}
	c.mu.Unlock()
	for _, p := range players {
		p.Tick(now)
	}
}

// Run drives the compositor, overlay, image playback, sequence and preview
// until ctx is cancelled or one of them fails.
func (c *Core) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.Engine.Run(ctx, c.Config.FPS) })
	g.Go(func() error { return c.Overlay.Run(ctx, c.Config.OverlayFPS) })
	g.Go(func() error {
		render.Loop(ctx, c.Config.OverlayFPS, c.tickImages)
		return nil
	})
	if c.Conductor != nil {
		g.Go(func() error { return c.Conductor.Run(ctx, c.Config.OverlayFPS) })
	}
	if c.Preview != nil {
		g.Go(func() error { return c.Preview.ListenAndServe(ctx, c.Config.Preview.Addr) })
	}
	log.Info().Int("devices", len(c.Engine.Devices())).Int("fps", c.Config.FPS).Msg("engine running")
	return g.Wait()
}
