package sequence

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/coreman2200/ledgfx/internal/animation"
	"github.com/coreman2200/ledgfx/internal/color"
	"github.com/coreman2200/ledgfx/internal/effect"
	"github.com/coreman2200/ledgfx/internal/errs"
)

// NewPlayer constructs a Player with provided hooks.
func NewPlayer(h Hooks) *Player {
	return &Player{
		State:      Idle,
		hooks:      h,
		armedIndex: -1,
	}
}

// Validate checks every clip against the animation catalog and effect names.
func (prog Program) Validate() error {
	if len(prog.Clips) == 0 {
		return fmt.Errorf("program has no clips: %w", errs.ErrInvalidArgument)
	}
	for i, c := range prog.Clips {
		if c.DurationS <= 0 {
			return fmt.Errorf("clip %d (%s): duration %v: %w", i, c.Name, c.DurationS, errs.ErrInvalidArgument)
		}
		if c.XFadeS < 0 || c.XFadeS > c.DurationS {
			return fmt.Errorf("clip %d (%s): crossfade %v: %w", i, c.Name, c.XFadeS, errs.ErrInvalidArgument)
		}
		if _, err := animation.Lookup(c.Animation); err != nil {
			return fmt.Errorf("clip %d (%s): %w", i, c.Name, err)
		}
		if _, err := c.AnimParams(); err != nil {
			return fmt.Errorf("clip %d (%s): %w", i, c.Name, err)
		}
		if _, err := effect.FromSpec(c.Effect); err != nil {
			return fmt.Errorf("clip %d (%s): %w", i, c.Name, err)
		}
	}
	return nil
}

// AnimParams resolves the clip's animation parameters.
func (c Clip) AnimParams() (animation.Params, error) {
	p := animation.Params{Speed: c.Speed}
	if c.Color != "" {
		col, err := color.Parse(c.Color)
		if err != nil {
			return p, err
		}
		p.Color = col
	}
	return p, nil
}

// LoadProgram reads a JSON program file.
func LoadProgram(path string) (Program, error) {
	var prog Program
	b, err := os.ReadFile(path)
	if err != nil {
		return prog, fmt.Errorf("read program %s: %v: %w", path, err, errs.ErrIO)
	}
	if err := json.Unmarshal(b, &prog); err != nil {
		return prog, fmt.Errorf("program %s: %v: %w", path, err, errs.ErrFormat)
	}
	return prog, prog.Validate()
}

// Load replaces the current program. Resets time and state to Idle.
func (p *Player) Load(prog Program) error {
	if err := prog.Validate(); err != nil {
		return err
	}
	p.prog = prog
	p.nowS = 0
	p.idx = 0
	p.State = Idle
	p.armed = false
	p.armedIndex = -1
	p.lastAlpha = 0
	return nil
}

// Program returns the loaded program.
func (p *Player) Program() Program { return p.prog }

// Position returns the clip index and program time in seconds.
func (p *Player) Position() (int, float64) { return p.idx, p.nowS }

// Start moves to Running and shows the current clip.
func (p *Player) Start() {
	if p.State == Running || len(p.prog.Clips) == 0 {
		return
	}
	p.State = Running
	p.show(p.prog.Clips[p.idx])
	p.crossfade(0)
}

func (p *Player) Pause() { p.State = Paused }

func (p *Player) Resume() {
	if p.State == Paused {
		p.State = Running
	}
}

// Stop stops and rewinds to the start.
func (p *Player) Stop() {
	p.State = Idle
	p.nowS = 0
	p.idx = 0
	p.armed = false
	p.armedIndex = -1
	p.crossfade(0)
}

// Seek jumps to absolute program time t, clamped into [0, total).
func (p *Player) Seek(t float64) {
	if len(p.prog.Clips) == 0 {
		return
	}
	if t < 0 {
		t = 0
	}
	total := p.totalDuration()
	if total > 0 && t >= total {
		t = math.Nextafter(total, -1)
	}
	acc := 0.0
	idx := 0
	for i, c := range p.prog.Clips {
		if t < acc+c.DurationS {
			idx = i
			break
		}
		acc += c.DurationS
	}
	p.idx = idx
	p.nowS = t
	p.armed = false
	p.armedIndex = -1
	p.show(p.prog.Clips[p.idx])
	p.crossfade(0)
}

// Tick advances the sequencer by dt seconds and emits control hooks.
func (p *Player) Tick(dt float64) {
	if p.State != Running || len(p.prog.Clips) == 0 || dt <= 0 {
		return
	}
	p.nowS += dt

	clip, localT := p.currentClipAndLocalT()
	if p.hooks.SetParam != nil {
		for name, env := range clip.Params {
			p.hooks.SetParam(name, env.Eval(localT))
		}
	}
	if p.hooks.SetBool != nil {
		for name, env := range clip.Bools {
			p.hooks.SetBool(name, env.BoolEval(localT))
		}
	}

	if clip.XFadeS > 0 {
		remain := clip.DurationS - localT
		if remain <= clip.XFadeS && remain >= 0 {
			nextIdx := p.nextIndex()
			if !p.armed && nextIdx != -1 {
				if p.hooks.Arm != nil {
					p.hooks.Arm(p.prog.Clips[nextIdx])
				}
				p.armed = true
				p.armedIndex = nextIdx
			}
			if p.armed {
				alpha := clamp01(1.0 - remain/clip.XFadeS)
				if alpha != p.lastAlpha {
					p.crossfade(alpha)
				}
			}
		}
	}

	if localT >= clip.DurationS {
		p.advanceClip()
	}
}

func (p *Player) show(c Clip) {
	if p.hooks.Show != nil {
		p.hooks.Show(c)
	}
}

func (p *Player) crossfade(a float64) {
	p.lastAlpha = a
	if p.hooks.SetCrossfade != nil {
		p.hooks.SetCrossfade(a)
	}
}

func (p *Player) currentClipAndLocalT() (Clip, float64) {
	acc := 0.0
	for i := 0; i < p.idx; i++ {
		acc += p.prog.Clips[i].DurationS
	}
	return p.prog.Clips[p.idx], p.nowS - acc
}

func (p *Player) totalDuration() float64 {
	total := 0.0
	for _, c := range p.prog.Clips {
		total += c.DurationS
	}
	return total
}

func (p *Player) nextIndex() int {
	ni := p.idx + 1
	if ni >= len(p.prog.Clips) {
		if p.prog.Loop {
			return 0
		}
		return -1
	}
	return ni
}

func (p *Player) advanceClip() {
	next := p.nextIndex()
	if next == -1 {
		p.State = Idle
		p.crossfade(0)
		if p.hooks.Done != nil {
			p.hooks.Done()
		}
		return
	}
	if next == 0 {
		p.nowS -= p.totalDuration()
	}
	p.idx = next
	p.show(p.prog.Clips[p.idx])
	p.crossfade(0)
	p.armed = false
	p.armedIndex = -1
}

// SafePlayer serializes access to a Player shared between goroutines.
type SafePlayer struct {
	mu sync.Mutex
	P  *Player
}

func NewSafePlayer(h Hooks) *SafePlayer {
	return &SafePlayer{P: NewPlayer(h)}
}

func (s *SafePlayer) With(f func(p *Player)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(s.P)
}
