package effect

import "github.com/coreman2200/ledgfx/internal/color"

type sparkPhase uint8

const (
	sparkOff sparkPhase = iota
	sparkIn
	sparkHold
	sparkOut
)

type sparkCell struct {
	phase sparkPhase
	level uint8
	hold  uint8
}

const (
	sparkRise       = 64
	sparkHoldFrames = 3
)

// decayStep grows quadratically with decay so low values linger.
func decayStep(decay uint8) int {
	return 1 + int(decay)*int(decay)/256
}

func (s *State) sparkle(buf []color.RGB, c Sparkle) {
	if len(s.cells) != len(buf) {
		s.cells = make([]sparkCell, len(buf))
	}
	// chance per pixel per frame out of 100000
	chance := int(c.Speed) * int(c.Density)
	out := decayStep(c.Decay)
	for i := range s.cells {
		p := &s.cells[i]
		switch p.phase {
		case sparkOff:
			if s.rng.Intn(100000) < chance {
				p.phase = sparkIn
			}
		case sparkIn:
			if int(p.level)+sparkRise >= 255 {
				p.level, p.phase, p.hold = 255, sparkHold, sparkHoldFrames
			} else {
				p.level += sparkRise
			}
		case sparkHold:
			if p.hold == 0 {
				p.phase = sparkOut
			} else {
				p.hold--
			}
		case sparkOut:
			if int(p.level) <= out {
				p.level, p.phase = 0, sparkOff
			} else {
				p.level -= uint8(out)
			}
		}
		if p.level > 0 {
			buf[i] = color.Blend(buf[i], c.Color, p.level)
		}
	}
}

// Active reports how many pixels are in a visible sparkle phase.
func (s *State) Active() int {
	n := 0
	for _, p := range s.cells {
		if p.phase != sparkOff {
			n++
		}
	}
	return n
}
