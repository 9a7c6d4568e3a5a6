package app

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledgfx/internal/canvas"
	"github.com/coreman2200/ledgfx/internal/effect"
	"github.com/coreman2200/ledgfx/internal/render"
	"github.com/coreman2200/ledgfx/internal/sequence"
)

// Conductor plays a sequence program on one device. The active clip runs on
// one layer; the next clip is armed on a staging layer and the two swap once
// the crossfade completes.
type Conductor struct {
	Dev *render.Device
	Seq *sequence.SafePlayer

	active  *render.Layer
	staging *render.Layer
	armed   *sequence.Clip
}

func NewConductor(dev *render.Device, prog sequence.Program) (*Conductor, error) {
	active, err := dev.Layer(0)
	if err != nil {
		return nil, err
	}
	staging, err := dev.CreateLayer(render.LayerConfig{Blend: render.Normal, Opacity: 0, Visible: true})
	if err != nil {
		return nil, err
	}
	c := &Conductor{Dev: dev, active: active, staging: staging}

	hooks := sequence.Hooks{
		Show:         c.show,
		Arm:          c.arm,
		SetCrossfade: c.crossfade,
		SetParam:     c.setParam,
		SetBool:      c.setBool,
		Done:         func() { log.Info().Str("device", dev.Name).Msg("sequence finished") },
	}
	c.Seq = sequence.NewSafePlayer(hooks)
	if err := c.Seq.P.Load(prog); err != nil {
		_ = dev.DestroyLayer(staging.Index())
		return nil, err
	}
	return c, nil
}

// Active is the layer showing the current clip.
func (c *Conductor) Active() *render.Layer { return c.active }

func (c *Conductor) show(clip sequence.Clip) {
	if c.armed != nil && c.armed.Name == clip.Name && c.armed.Animation == clip.Animation {
		c.active, c.staging = c.staging, c.active
	} else {
		apply(c.active, clip)
	}
	c.armed = nil
	c.active.SetOpacity(255)
	c.staging.SetOpacity(0)
	c.staging.StopAnimation()
	c.staging.ClearEffect()
	c.staging.Draw(func(cv *canvas.Canvas) { cv.Clear() })
	log.Debug().Str("device", c.Dev.Name).Str("clip", clip.Name).Int("layer", c.active.Index()).Msg("clip active")
}

func (c *Conductor) arm(clip sequence.Clip) {
	apply(c.staging, clip)
	c.staging.SetOpacity(0)
	c.armed = &clip
}

func (c *Conductor) crossfade(a float64) {
	if c.armed == nil {
		c.active.SetOpacity(255)
		c.staging.SetOpacity(0)
		return
	}
	o := uint8(math.Round(clamp01(a) * 255))
	c.staging.SetOpacity(o)
	c.active.SetOpacity(255 - o)
}

func (c *Conductor) setParam(name string, v float64) {
	switch name {
	case "brightness":
		c.Dev.SetBrightness(uint8(math.Round(math.Max(0, math.Min(255, v)))))
	case "opacity":
		if c.armed == nil {
			c.active.SetOpacity(uint8(math.Round(math.Max(0, math.Min(255, v)))))
		}
	}
}

func (c *Conductor) setBool(name string, b bool) {
	if name == "visible" {
		c.active.SetVisible(b)
	}
}

func apply(l *render.Layer, clip sequence.Clip) {
	p, err := clip.AnimParams()
	if err == nil {
		err = l.StartAnimation(clip.Animation, p)
	}
	if err != nil {
		log.Warn().Err(err).Str("clip", clip.Name).Int("layer", l.Index()).Msg("clip animation skipped")
	}
	fx, err := effect.FromSpec(clip.Effect)
	if err != nil {
		log.Warn().Err(err).Str("clip", clip.Name).Msg("clip effect skipped")
		fx = effect.None{}
	}
	l.SetEffect(fx)
}

// Run starts the program and advances it at fps until ctx is cancelled.
func (c *Conductor) Run(ctx context.Context, fps int) error {
	c.Seq.With(func(p *sequence.Player) { p.Start() })
	last := time.Now()
	render.Loop(ctx, fps, func(now time.Time) {
		dt := now.Sub(last).Seconds()
		last = now
		c.Seq.With(func(p *sequence.Player) { p.Tick(dt) })
	})
	return nil
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
