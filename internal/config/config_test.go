package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/ledgfx/internal/errs"
	"github.com/coreman2200/ledgfx/internal/layout"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	g, err := c.Devices[0].Geometry()
	require.NoError(t, err)
	assert.Equal(t, layout.Matrix, g.Class)
	assert.Equal(t, 256, g.Count)
}

func TestSaveLoadKeepsDevices(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledgfx.yaml")
	c := Default()
	c.Devices = append(c.Devices, Device{
		Name: "shelf", Layout: "strip", Count: 60, Brightness: 200,
		Animation: Animation{Name: "fire", Color: "#FF8000", Speed: 70},
	})
	c.Devices[0].Effect.Name = "vignette"
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, got.Validate())
	require.Len(t, got.Devices, 2)
	assert.Equal(t, "shelf", got.Devices[1].Name)
	assert.Equal(t, "fire", got.Devices[1].Animation.Name)
	assert.Equal(t, "vignette", got.Devices[0].Effect.Name)

	p, err := got.Devices[1].Animation.Params()
	require.NoError(t, err)
	assert.Equal(t, uint8(0xFF), p.Color.R)
	assert.Equal(t, uint8(0x80), p.Color.G)
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "min.yaml")
	require.NoError(t, os.WriteFile(path, []byte("devices:\n  - name: ring\n    layout: ring\n    count: 24\n"), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 60, c.FPS)
	assert.Equal(t, 30, c.OverlayFPS)
	assert.Equal(t, 2.2, c.Correction.Gamma)
	require.Len(t, c.Devices, 1)
	require.NoError(t, c.Validate())
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"fps":           func(c *Config) { c.FPS = 0 },
		"overlay":       func(c *Config) { c.OverlayFPS = 500 },
		"store kind":    func(c *Config) { c.Store.Kind = "redis" },
		"store path":    func(c *Config) { c.Store.Kind = "sqlite" },
		"no devices":    func(c *Config) { c.Devices = nil },
		"duplicate":     func(c *Config) { c.Devices = append(c.Devices, c.Devices[0]) },
		"layout":        func(c *Config) { c.Devices[0].Layout = "cube" },
		"driver":        func(c *Config) { c.Devices[0].Driver.Kind = "pwm" },
		"effect":        func(c *Config) { c.Devices[0].Effect.Name = "bloom" },
		"bad color":     func(c *Config) { c.Devices[0].Animation.Color = "#12" },
		"zero geometry": func(c *Config) { c.Devices[0].Width = 0 },
		"saturation":    func(c *Config) { c.Correction.Saturation = -0.5 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestValidateAnimationClass(t *testing.T) {
	c := Default()
	c.Devices[0] = Device{Name: "strip", Layout: "strip", Count: 30, Animation: Animation{Name: "plasma"}}
	assert.ErrorIs(t, c.Validate(), errs.ErrUnsupported)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
