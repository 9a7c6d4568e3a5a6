package render

import (
	"sync"

	"github.com/coreman2200/ledgfx/internal/color"
)

// CorrectionSettings is the device-wide color correction applied after compositing.
type CorrectionSettings struct {
	Enabled    bool      `yaml:"enabled" json:"enabled"`
	WhitePoint color.RGB `yaml:"white_point" json:"white_point"`
	Gamma      float64   `yaml:"gamma" json:"gamma"`
	// Brightness is 0..1.
	Brightness float64 `yaml:"brightness" json:"brightness"`
	// Saturation multiplies HSL saturation; 1 leaves color unchanged, 0 is gray.
	Saturation float64 `yaml:"saturation" json:"saturation"`
}

func DefaultCorrectionSettings() CorrectionSettings {
	return CorrectionSettings{
		Enabled:    false,
		WhitePoint: color.White,
		Gamma:      2.2,
		Brightness: 1,
		Saturation: 1,
	}
}

// Correction applies CorrectionSettings with a gamma LUT rebuilt only when gamma changes.
type Correction struct {
	mu       sync.Mutex
	s        CorrectionSettings
	lut      [256]uint8
	lutGamma float64
	lutOK    bool
}

func NewCorrection(s CorrectionSettings) *Correction {
	return &Correction{s: s}
}

func (c *Correction) Set(s CorrectionSettings) {
	c.mu.Lock()
	c.s = s
	c.mu.Unlock()
}

func (c *Correction) Settings() CorrectionSettings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s
}

// Apply runs white point, gamma, brightness then saturation over buf.
func (c *Correction) Apply(buf []color.RGB) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.s
	if !s.Enabled {
		return
	}
	if !c.lutOK || c.lutGamma != s.Gamma {
		c.lut = color.GammaTable(s.Gamma)
		c.lutGamma = s.Gamma
		c.lutOK = true
	}
	wp := s.WhitePoint
	bright := uint8(clampUnit(s.Brightness) * 255)
	for i, p := range buf {
		if wp != color.White {
			p = color.RGB{
				R: uint8(int(p.R) * int(wp.R) / 255),
				G: uint8(int(p.G) * int(wp.G) / 255),
				B: uint8(int(p.B) * int(wp.B) / 255),
			}
		}
		p = color.RGB{R: c.lut[p.R], G: c.lut[p.G], B: c.lut[p.B]}
		if bright != 255 {
			p = color.Scale(p, bright)
		}
		if s.Saturation != 1 && s.Saturation >= 0 {
			p = color.Saturate(p, s.Saturation)
		}
		buf[i] = p
	}
}

func clampUnit(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// PowerLimit caps the estimated supply current of a frame.
//   - MilliampsPerChannel: current of one channel at full scale (WS2812 ≈ 20)
//   - BudgetMilliamps: total budget; 0 disables the limiter
//   - Knee: fraction of the budget where soft limiting begins (default 0.9)
type PowerLimit struct {
	MilliampsPerChannel float64 `yaml:"ma_per_channel" json:"ma_per_channel"`
	BudgetMilliamps     float64 `yaml:"budget_ma" json:"budget_ma"`
	Knee                float64 `yaml:"knee" json:"knee"`
}

// Estimate returns the frame's current draw in mA.
func (p PowerLimit) Estimate(buf []color.RGB) float64 {
	chanmA := p.MilliampsPerChannel
	if chanmA <= 0 {
		chanmA = 20
	}
	var sum int
	for _, c := range buf {
		sum += int(c.R) + int(c.G) + int(c.B)
	}
	return float64(sum) / 255 * chanmA
}

// Limit scales buf down so it stays within the budget.
func (p PowerLimit) Limit(buf []color.RGB) {
	budget := p.BudgetMilliamps
	if budget <= 0 {
		return
	}
	knee := p.Knee
	if knee <= 0 || knee >= 1 {
		knee = 0.9
	}
	total := p.Estimate(buf)
	if total <= 0 {
		return
	}
	ratio := total / budget
	if ratio <= knee {
		return
	}
	s := budget / total
	if ratio <= 1 {
		// map ratio in [knee,1] to a scale in [1, budget/total]
		t := (ratio - knee) / (1 - knee)
		s = 1 - t*(1-s)
	}
	applyGlobalScale(buf, s)
}

func applyGlobalScale(buf []color.RGB, s float64) {
	if s >= 1 {
		return
	}
	// (f+1)/256 <= s so the budget is never overshot
	k := int(s*256) - 1
	if k < 0 {
		k = 0
	}
	f := uint8(k)
	for i := range buf {
		buf[i] = color.Scale(buf[i], f)
	}
}
