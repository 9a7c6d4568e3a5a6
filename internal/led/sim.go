package led

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledgfx/internal/color"
)

// Sim keeps the last frame in memory, useful for headless runs and tests.
type Sim struct {
	Name string
	// LogEvery logs a compact frame summary every N frames; 0 disables it.
	LogEvery int

	mu     sync.Mutex
	last   []color.RGB
	frames int
}

func NewSim(name string) *Sim { return &Sim{Name: name} }

func (s *Sim) Write(px []color.RGB) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = append(s.last[:0], px...)
	s.frames++
	if s.LogEvery > 0 && s.frames%s.LogEvery == 0 && len(px) > 0 {
		// simple average for the log line
		var r, g, b int
		for _, c := range px {
			r += int(c.R)
			g += int(c.G)
			b += int(c.B)
		}
		n := len(px)
		log.Debug().Str("device", s.Name).Int("frame", s.frames).
			Ints("avg", []int{r / n, g / n, b / n}).Str("first", px[0].Hex()).Msg("sim frame")
	}
	return nil
}

// Last returns a copy of the last frame.
func (s *Sim) Last() []color.RGB {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]color.RGB(nil), s.last...)
}

func (s *Sim) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func (s *Sim) Close() error { return nil }
