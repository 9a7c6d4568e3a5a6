package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/ledgfx/internal/animation"
	"github.com/coreman2200/ledgfx/internal/color"
	"github.com/coreman2200/ledgfx/internal/effect"
	"github.com/coreman2200/ledgfx/internal/errs"
	"github.com/coreman2200/ledgfx/internal/layout"
	"github.com/coreman2200/ledgfx/internal/led"
	"github.com/coreman2200/ledgfx/internal/render"
)

type Font struct {
	Path            string `yaml:"path"` // empty = builtin 7x13
	CacheSize       int    `yaml:"cache_size"`
	PrecomputeASCII bool   `yaml:"precompute_ascii"`
}

type Preview struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"` // e.g. 127.0.0.1:8787
	MaxFPS  int    `yaml:"max_fps,omitempty"`
}

type Store struct {
	Kind string `yaml:"kind"` // "yaml" | "sqlite" | "" (none)
	Path string `yaml:"path"`
}

type Animation struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color,omitempty"` // "#RRGGBB" or a color name
	Speed uint8  `yaml:"speed,omitempty"`
}

type Device struct {
	Name       string `yaml:"name"`
	Layout     string `yaml:"layout"` // strip | ring | matrix
	Count      int    `yaml:"count,omitempty"`
	Width      int    `yaml:"width,omitempty"`
	Height     int    `yaml:"height,omitempty"`
	Origin     string `yaml:"origin,omitempty"`
	Scan       string `yaml:"scan,omitempty"`
	Brightness uint8  `yaml:"brightness"`

	Driver led.Config        `yaml:"driver"`
	Power  render.PowerLimit `yaml:"power,omitempty"`

	Animation Animation   `yaml:"animation,omitempty"`
	Effect    effect.Spec `yaml:"effect,omitempty"`
}

type Config struct {
	FPS        int `yaml:"fps"`
	OverlayFPS int `yaml:"overlay_fps"`

	Font       Font                      `yaml:"font"`
	Preview    Preview                   `yaml:"preview"`
	Correction render.CorrectionSettings `yaml:"correction"`
	Store      Store                     `yaml:"store"`
	Sequence   string                    `yaml:"sequence,omitempty"` // path to a show program (json)

	Devices []Device `yaml:"devices"`
}

// Default is a single simulated 32x8 matrix.
func Default() *Config {
	return &Config{
		FPS:        render.DefaultFPS,
		OverlayFPS: 30,
		Font:       Font{CacheSize: 64, PrecomputeASCII: true},
		Preview:    Preview{Addr: "127.0.0.1:8787"},
		Correction: render.DefaultCorrectionSettings(),
		Devices: []Device{{
			Name:       "matrix",
			Layout:     "matrix",
			Width:      32,
			Height:     8,
			Origin:     "top_left",
			Scan:       "zigzag_row",
			Brightness: 128,
			Driver:     led.Config{Kind: "sim"},
			Animation:  Animation{Name: "rainbow", Speed: animation.DefaultSpeed},
		}},
	}
}

// Geometry resolves the layout fields of d.
func (d Device) Geometry() (layout.Geometry, error) {
	class, err := layout.ParseClass(d.Layout)
	if err != nil {
		return layout.Geometry{}, fmt.Errorf("device %s: %w", d.Name, err)
	}
	switch class {
	case layout.Strip:
		return layout.NewStrip(d.Count), nil
	case layout.Ring:
		return layout.NewRing(d.Count), nil
	}
	o, err := layout.ParseOrigin(d.Origin)
	if err != nil {
		return layout.Geometry{}, fmt.Errorf("device %s: %w", d.Name, err)
	}
	s, err := layout.ParseScan(d.Scan)
	if err != nil {
		return layout.Geometry{}, fmt.Errorf("device %s: %w", d.Name, err)
	}
	return layout.NewMatrix(d.Width, d.Height, o, s), nil
}

// Params resolves the default animation parameters of d.
func (a Animation) Params() (animation.Params, error) {
	p := animation.Params{Speed: a.Speed}
	if a.Color != "" {
		c, err := color.Parse(a.Color)
		if err != nil {
			return p, err
		}
		p.Color = c
	}
	return p, nil
}

func (c *Config) Validate() error {
	if c.FPS <= 0 || c.FPS > 240 {
		return fmt.Errorf("fps %d: %w", c.FPS, errs.ErrInvalidArgument)
	}
	if c.OverlayFPS <= 0 || c.OverlayFPS > c.FPS {
		return fmt.Errorf("overlay_fps %d: %w", c.OverlayFPS, errs.ErrInvalidArgument)
	}
	switch strings.ToLower(c.Store.Kind) {
	case "", "yaml", "sqlite":
	default:
		return fmt.Errorf("store kind %q: %w", c.Store.Kind, errs.ErrInvalidArgument)
	}
	if c.Store.Kind != "" && c.Store.Path == "" {
		return fmt.Errorf("store %s needs a path: %w", c.Store.Kind, errs.ErrInvalidArgument)
	}
	if c.Correction.Gamma <= 0 {
		return fmt.Errorf("correction gamma %v: %w", c.Correction.Gamma, errs.ErrInvalidArgument)
	}
	if c.Correction.Saturation < 0 {
		return fmt.Errorf("correction saturation %v: %w", c.Correction.Saturation, errs.ErrInvalidArgument)
	}
	if len(c.Devices) == 0 {
		return fmt.Errorf("no devices: %w", errs.ErrInvalidArgument)
	}
	seen := make(map[string]bool, len(c.Devices))
	for _, d := range c.Devices {
		if d.Name == "" {
			return fmt.Errorf("device without name: %w", errs.ErrInvalidArgument)
		}
		if seen[d.Name] {
			return fmt.Errorf("device %s listed twice: %w", d.Name, errs.ErrInvalidArgument)
		}
		seen[d.Name] = true
		g, err := d.Geometry()
		if err != nil {
			return err
		}
		if err := g.Validate(); err != nil {
			return fmt.Errorf("device %s: %w", d.Name, err)
		}
		if err := d.Driver.Validate(); err != nil {
			return fmt.Errorf("device %s: %w", d.Name, err)
		}
		if d.Animation.Name != "" {
			e, err := animation.Lookup(d.Animation.Name)
			if err != nil {
				return fmt.Errorf("device %s: %w", d.Name, err)
			}
			if !e.AppliesTo(g.Class) {
				return fmt.Errorf("device %s: animation %s on %s: %w", d.Name, e.Name, g.Class, errs.ErrUnsupported)
			}
			if _, err := d.Animation.Params(); err != nil {
				return fmt.Errorf("device %s: %w", d.Name, err)
			}
		}
		if d.Effect.Name != "" {
			if _, err := effect.FromSpec(d.Effect); err != nil {
				return fmt.Errorf("device %s: %w", d.Name, err)
			}
		}
	}
	return nil
}

// Load reads path over Default, so omitted fields keep their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	c.Devices = nil
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", path, err, errs.ErrFormat)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
