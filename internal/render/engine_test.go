package render

import (
	"errors"
	"testing"
	"time"

	"github.com/coreman2200/ledgfx/internal/animation"
	"github.com/coreman2200/ledgfx/internal/canvas"
	"github.com/coreman2200/ledgfx/internal/color"
	"github.com/coreman2200/ledgfx/internal/effect"
	"github.com/coreman2200/ledgfx/internal/errs"
	"github.com/coreman2200/ledgfx/internal/layout"
)

// fakeDriver captures the last frame written.
type fakeDriver struct {
	last   []color.RGB
	writes int
	err    error
}

func (d *fakeDriver) Write(buf []color.RGB) error {
	if d.err != nil {
		return d.err
	}
	d.last = make([]color.RGB, len(buf))
	copy(d.last, buf)
	d.writes++
	return nil
}

func newStrip(t *testing.T, n int) (*Device, *fakeDriver) {
	t.Helper()
	drv := &fakeDriver{}
	d, err := NewDevice("strip", layout.NewStrip(n), drv)
	if err != nil {
		t.Fatalf("device: %v", err)
	}
	return d, drv
}

func TestCompositeModes(t *testing.T) {
	dst := []color.RGB{{R: 100, G: 100, B: 100}}
	src := []color.RGB{{R: 200, G: 0, B: 255}}
	cases := []struct {
		mode BlendMode
		want color.RGB
	}{
		{Normal, color.RGB{R: 200, G: 0, B: 255}},
		{Add, color.RGB{R: 255, G: 100, B: 255}},
		{Multiply, color.RGB{R: 78, G: 0, B: 100}},
		{Screen, color.RGB{R: 222, G: 100, B: 255}},
		{Overlay, color.RGB{R: 156, G: 0, B: 200}},
	}
	for _, c := range cases {
		out := append([]color.RGB(nil), dst...)
		Composite(out, src, c.mode, 255)
		if out[0] != c.want {
			t.Fatalf("%s: expected %v, got %v", c.mode, c.want, out[0])
		}
	}

	// black is transparent in normal mode
	out := append([]color.RGB(nil), dst...)
	Composite(out, []color.RGB{color.Black}, Normal, 255)
	if out[0] != dst[0] {
		t.Fatalf("expected black to keep the base, got %v", out[0])
	}
	Composite(out, src, Normal, 0)
	if out[0] != dst[0] {
		t.Fatalf("expected zero opacity to be a no-op, got %v", out[0])
	}
}

func TestEngineRenderOnce(t *testing.T) {
	d, drv := newStrip(t, 4)
	e := NewEngine(nil)
	if err := e.AddDevice(d); err != nil {
		t.Fatalf("add: %v", err)
	}
	l0, err := d.Layer(0)
	if err != nil {
		t.Fatalf("layer 0: %v", err)
	}
	l0.Fill(color.RGB{R: 255})
	if err := e.RenderOnce(time.Now()); err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(drv.last) != 4 || drv.last[3] != (color.RGB{R: 255}) {
		t.Fatalf("expected red frame, got %v", drv.last)
	}

	d.SetBrightness(127)
	if err := e.RenderOnce(time.Now()); err != nil {
		t.Fatalf("render 2: %v", err)
	}
	if drv.last[0].R != 127 {
		t.Fatalf("expected half brightness, got %v", drv.last[0])
	}
	if _, err := e.Device("nope"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLayerCapacity(t *testing.T) {
	d, _ := newStrip(t, 3)
	if _, err := d.Layer(3); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected missing layer, got %v", err)
	}
	if _, err := d.Layer(MaxLayers); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("expected invalid index, got %v", err)
	}
	seen := map[int]bool{}
	for i := 0; i < MaxLayers-1; i++ {
		l, err := d.CreateLayer(DefaultLayerConfig())
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if l.Index() == OverlayIndex {
			t.Fatalf("overlay index handed out")
		}
		if l.Len() != 3 {
			t.Fatalf("buffer length %d", l.Len())
		}
		seen[l.Index()] = true
	}
	if _, err := d.CreateLayer(DefaultLayerConfig()); !errors.Is(err, errs.ErrResourceExhausted) {
		t.Fatalf("expected exhausted, got %v", err)
	}
	if err := d.DestroyLayer(4); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if err := d.DestroyLayer(4); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	l, err := d.CreateLayer(DefaultLayerConfig())
	if err != nil || l.Index() != 4 {
		t.Fatalf("expected slot 4 reused, got %v %v", l, err)
	}
}

func TestFadeInRemovesItself(t *testing.T) {
	d, drv := newStrip(t, 2)
	t0 := time.Unix(1000, 0)
	d.Clock = func() time.Time { return t0 }
	l, _ := d.Layer(0)
	l.Fill(color.RGB{G: 200})
	l.SetEffect(effect.FadeIn{Duration: time.Second, AutoRemove: true})

	if err := d.RenderFrame(t0.Add(400 * time.Millisecond)); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !l.HasEffect() || drv.last[0].G >= 200 {
		t.Fatalf("expected fade in progress, got %v", drv.last[0])
	}
	for _, at := range []time.Duration{time.Second, 2 * time.Second, 3 * time.Second} {
		if err := d.RenderFrame(t0.Add(at)); err != nil {
			t.Fatalf("render: %v", err)
		}
		if l.HasEffect() {
			t.Fatalf("expected effect cleared at %v", at)
		}
		if drv.last[0].G != 200 {
			t.Fatalf("expected full brightness at %v, got %v", at, drv.last[0])
		}
	}
	if _, ok := l.Effect().(effect.None); !ok {
		t.Fatalf("expected None, got %T", l.Effect())
	}
}

func TestEffectDoesNotCompound(t *testing.T) {
	d, drv := newStrip(t, 1)
	l, _ := d.Layer(0)
	l.Fill(color.RGB{B: 200})
	l.SetEffect(effect.Brightness{Level: 127})
	for i := 0; i < 3; i++ {
		_ = d.RenderFrame(time.Now())
	}
	if drv.last[0].B != 100 {
		t.Fatalf("expected 100, got %v", drv.last[0])
	}
	if l.At(0).B != 200 {
		t.Fatalf("layer pixels changed: %v", l.At(0))
	}
}

func TestIdempotentNoneAndStop(t *testing.T) {
	d, _ := newStrip(t, 5)
	l, _ := d.Layer(0)
	l.SetEffect(effect.None{})
	l.ClearEffect()
	if l.HasEffect() {
		t.Fatalf("expected no effect")
	}
	l.StopAnimation()
	if err := l.StartAnimation("rainbow", animation.Params{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	l.StopAnimation()
	l.StopAnimation()
	if l.Animation() != "" {
		t.Fatalf("expected stopped, got %q", l.Animation())
	}
}

func TestStartAnimationErrors(t *testing.T) {
	d, _ := newStrip(t, 5)
	l, _ := d.Layer(0)
	if err := l.StartAnimation("spin", animation.Params{}); !errors.Is(err, errs.ErrUnsupported) {
		t.Fatalf("expected unsupported, got %v", err)
	}
	if err := l.StartAnimation("warp", animation.Params{}); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAnimationDrivesFrame(t *testing.T) {
	d, drv := newStrip(t, 6)
	l, _ := d.Layer(0)
	if err := l.StartAnimation("solid", animation.Params{Color: color.RGB{R: 9, G: 8, B: 7}}); err != nil {
		t.Fatalf("start: %v", err)
	}
	_ = d.RenderFrame(time.Now())
	if drv.last[5] != (color.RGB{R: 9, G: 8, B: 7}) {
		t.Fatalf("expected solid color, got %v", drv.last[5])
	}
}

func TestOverlayHandle(t *testing.T) {
	d, drv := newStrip(t, 4)
	l0, _ := d.Layer(0)
	l0.Fill(color.RGB{R: 10})

	h, err := d.ClaimOverlay()
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := d.ClaimOverlay(); !errors.Is(err, errs.ErrResourceExhausted) {
		t.Fatalf("expected second claim to fail, got %v", err)
	}
	l1, _ := d.Layer(OverlayIndex)
	if err := l1.StartAnimation("solid", animation.Params{}); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("expected overlay layer to refuse animations, got %v", err)
	}
	h.Render(func(dst, base *canvas.Canvas) {
		if base == nil || base.At(0).R != 10 {
			t.Fatalf("expected base layer 0")
		}
		dst.Set(2, color.White)
	})
	_ = d.RenderFrame(time.Now())
	if drv.last[2] != color.White || drv.last[1] != (color.RGB{R: 10}) {
		t.Fatalf("unexpected frame %v", drv.last)
	}

	h.Release()
	h.Release()
	if l1.Visible() {
		t.Fatalf("expected overlay hidden")
	}
	if _, err := d.ClaimOverlay(); err != nil {
		t.Fatalf("reclaim: %v", err)
	}
}

func TestOverlayBaseIncludesEffect(t *testing.T) {
	d, _ := newStrip(t, 4)
	l0, _ := d.Layer(0)
	l0.Fill(color.White)
	l0.SetEffect(effect.Invert{})

	h, err := d.ClaimOverlay()
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	h.Render(func(dst, base *canvas.Canvas) {
		if base.At(0) != color.White {
			t.Fatalf("before the first frame the base is the raw layer, got %v", base.At(0))
		}
	})
	_ = d.RenderFrame(time.Now())
	h.Render(func(dst, base *canvas.Canvas) {
		if !base.At(0).IsBlack() {
			t.Fatalf("expected the inverted base as shown, got %v", base.At(0))
		}
	})
	if l0.At(0) != color.White {
		t.Fatalf("layer content changed: %v", l0.At(0))
	}
}

func TestFailingDriverDoesNotStopOthers(t *testing.T) {
	bad := &fakeDriver{err: errors.New("bus down")}
	good := &fakeDriver{}
	d1, _ := NewDevice("a", layout.NewStrip(2), bad)
	d2, _ := NewDevice("b", layout.NewRing(3), good)
	e := NewEngine(nil)
	_ = e.AddDevice(d1)
	_ = e.AddDevice(d2)
	if err := e.AddDevice(d2); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("expected duplicate rejected, got %v", err)
	}
	if err := e.RenderOnce(time.Now()); err == nil {
		t.Fatalf("expected error from failing driver")
	}
	if good.writes != 1 {
		t.Fatalf("expected healthy device written once, got %d", good.writes)
	}
}
