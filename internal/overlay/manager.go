package overlay

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledgfx/internal/color"
	"github.com/coreman2200/ledgfx/internal/errs"
	"github.com/coreman2200/ledgfx/internal/font"
	"github.com/coreman2200/ledgfx/internal/font/fontgen"
	"github.com/coreman2200/ledgfx/internal/render"
)

const (
	// Slots is the number of devices that can show text at once.
	Slots = 4
	// Spacing is the gap between glyphs, in pixels.
	Spacing = 1

	DefaultFPS = 30
)

type slot struct {
	active bool
	dev    *render.Device
	h      *render.OverlayHandle
	cfg    Config

	textW, textH int
	off          int
	scrolling    bool
	lastScroll   time.Time
}

// Status is a snapshot of one active overlay.
type Status struct {
	Device    string
	Text      string
	Offset    int
	TextWidth int
	Height    int
	Scrolling bool
}

// Manager owns the overlay slots and the current font.
type Manager struct {
	mu       sync.Mutex
	slots    [Slots]slot
	font     *font.Font
	fontPath string
	cacheCfg font.CacheConfig

	// Clock drives scroll timing; tests replace it.
	Clock func() time.Time
}

// NewManager returns a manager whose current font is loaded lazily from path.
// An empty path uses the built-in 7x13 face.
func NewManager(path string, cfg font.CacheConfig) *Manager {
	return &Manager{fontPath: path, cacheCfg: cfg}
}

func (m *Manager) now() time.Time {
	if m.Clock != nil {
		return m.Clock()
	}
	return time.Now()
}

// UseFont makes path the current font, loading it unless it already is.
func (m *Manager) UseFont(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.useFontLocked(path)
}

func (m *Manager) useFontLocked(path string) error {
	if m.font != nil && m.font.Path() == path {
		return nil
	}
	f, err := m.open(path)
	if err != nil {
		return err
	}
	if m.font != nil {
		_ = m.font.Close()
	}
	m.font = f
	m.fontPath = path
	for i := range m.slots {
		if s := &m.slots[i]; s.active {
			s.textW, s.textH = m.measure(s.cfg.Text)
		}
	}
	return nil
}

func (m *Manager) open(path string) (*font.Font, error) {
	if path != "" {
		return font.Load(path, m.cacheCfg)
	}
	var buf bytes.Buffer
	if err := fontgen.Write(&buf, fontgen.Basic(), fontgen.Options{}); err != nil {
		return nil, err
	}
	return font.New(nopCloser{bytes.NewReader(buf.Bytes())}, int64(buf.Len()), m.cacheCfg)
}

type nopCloser struct{ *bytes.Reader }

func (nopCloser) Close() error { return nil }

// Font returns the current font, loading it if needed.
func (m *Manager) Font() (*font.Font, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.font == nil {
		if err := m.useFontLocked(m.fontPath); err != nil {
			return nil, err
		}
	}
	return m.font, nil
}

// Start shows cfg on dev, replacing an overlay already running there.
func (m *Manager) Start(dev *render.Device, cfg Config) error {
	if !dev.Geom.IsMatrix() {
		return fmt.Errorf("text overlay on %s %s: %w", dev.Geom.Class, dev.Name, errs.ErrUnsupported)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	path := cfg.FontPath
	if path == "" {
		path = m.fontPath
	}
	if m.font == nil || m.font.Path() != path {
		if err := m.useFontLocked(path); err != nil {
			return err
		}
	}

	s := m.slotFor(dev.Name)
	if s == nil {
		return fmt.Errorf("overlay slots full (%d): %w", Slots, errs.ErrResourceExhausted)
	}
	if !s.active {
		h, err := dev.ClaimOverlay()
		if err != nil {
			return err
		}
		s.h = h
	}
	if cfg.Color.IsBlack() {
		cfg.Color = color.White
	}
	s.active = true
	s.dev = dev
	s.cfg = cfg
	s.textW, s.textH = m.measure(cfg.Text)
	s.scrolling = cfg.Scroll != Static
	s.lastScroll = m.now()
	s.off = m.initialOffset(s)
	m.draw(s)
	log.Info().Str("device", dev.Name).Str("text", cfg.Text).Int("width", s.textW).Msg("text overlay started")
	return nil
}

func (m *Manager) slotFor(name string) *slot {
	var free *slot
	for i := range m.slots {
		s := &m.slots[i]
		if s.active && s.dev.Name == name {
			return s
		}
		if !s.active && free == nil {
			free = s
		}
	}
	return free
}

func (m *Manager) initialOffset(s *slot) int {
	w, h := s.dev.Geom.Width, s.dev.Geom.Height
	switch s.cfg.Scroll {
	case ScrollLeft:
		return w
	case ScrollRight:
		return -s.textW
	case ScrollUp:
		return h
	case ScrollDown:
		return -s.textH
	}
	return 0
}

// Stop clears and hides the overlay on the named device. Stopping a device with
// no overlay is a no-op.
func (m *Manager) Stop(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.slots {
		s := &m.slots[i]
		if s.active && s.dev.Name == name {
			s.h.Release()
			*s = slot{}
			log.Info().Str("device", name).Msg("text overlay stopped")
		}
	}
}

// StopAll stops every overlay and closes the current font.
func (m *Manager) StopAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.slots {
		if s := &m.slots[i]; s.active {
			s.h.Release()
			*s = slot{}
		}
	}
	if m.font == nil {
		return nil
	}
	err := m.font.Close()
	m.font = nil
	return err
}

// Status reports the overlay on the named device.
func (m *Manager) Status(name string) (Status, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.slots {
		s := &m.slots[i]
		if s.active && s.dev.Name == name {
			return Status{
				Device:    name,
				Text:      s.cfg.Text,
				Offset:    s.off,
				TextWidth: s.textW,
				Height:    s.textH,
				Scrolling: s.scrolling,
			}, true
		}
	}
	return Status{}, false
}

// Tick advances every scrolling overlay that is due and redraws all of them.
func (m *Manager) Tick(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.slots {
		s := &m.slots[i]
		if !s.active {
			continue
		}
		if s.scrolling && now.Sub(s.lastScroll) >= scrollInterval(s.cfg.Speed) {
			m.advance(s)
			s.lastScroll = now
		}
		m.draw(s)
	}
}

// Run ticks at fps until ctx is done.
func (m *Manager) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		fps = DefaultFPS
	}
	render.Loop(ctx, fps, func(time.Time) { m.Tick(m.now()) })
	return nil
}

func scrollInterval(speed uint8) time.Duration {
	s := int(speed)
	if s == 0 {
		s = 50
	} else if s > 100 {
		s = 100
	}
	return time.Duration(110-s) * time.Millisecond
}

// advance moves the text one pixel and wraps it once it has fully left the layer.
func (m *Manager) advance(s *slot) {
	w, h := s.dev.Geom.Width, s.dev.Geom.Height
	var wrapped bool
	switch s.cfg.Scroll {
	case ScrollLeft:
		s.off--
		if s.off < -s.textW {
			s.off, wrapped = w, true
		}
	case ScrollRight:
		s.off++
		if s.off > w {
			s.off, wrapped = -s.textW, true
		}
	case ScrollUp:
		s.off--
		if s.off < -s.textH {
			s.off, wrapped = h, true
		}
	case ScrollDown:
		s.off++
		if s.off > h {
			s.off, wrapped = -s.textH, true
		}
	}
	if wrapped && !s.cfg.Loop {
		s.scrolling = false
	}
}
