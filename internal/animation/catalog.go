// Package animation holds the catalog of procedural generators that write a layer's
// pixels every frame, and the scheduler state that drives them.
//
// Generators are a closed set (Kind); dispatch is a switch, not a function table.
// Generators that remember things between frames keep that memory in an Arena keyed
// by layer ID. The memory is reset when a binding is (re)started, never on an
// ordinary frame.
package animation

import (
	"fmt"
	"sort"
	"time"

	"github.com/coreman2200/ledgfx/internal/errs"
	"github.com/coreman2200/ledgfx/internal/layout"
)

// Mask tags which device classes an entry makes sense on.
type Mask uint8

const (
	Point Mask = 1 << iota
	RingMask
	MatrixMask

	All = Point | RingMask | MatrixMask
)

// MaskFor returns the applicability bit of a layout class.
func MaskFor(c layout.Class) Mask {
	switch c {
	case layout.Ring:
		return RingMask
	case layout.Matrix:
		return MatrixMask
	default:
		return Point
	}
}

type Kind int

const (
	Solid Kind = iota
	Rainbow
	RainbowCycle
	Breathing
	Chase
	Comet
	Twinkle
	Sparkle
	Fire
	Rain
	CodeRain
	Wave
	Gradient
	Spin
	Ripple
	Plasma
	Sweep
	RGBTest
)

// Entry is one catalog item.
type Entry struct {
	Name        string
	Kind        Kind
	Interval    time.Duration
	Applies     Mask
	Description string
}

// Stateful reports whether the entry keeps arena memory between frames.
func (e Entry) Stateful() bool {
	switch e.Kind {
	case Fire, Rain, CodeRain, Sparkle:
		return true
	}
	return false
}

// AppliesTo reports whether e can run on the class.
func (e Entry) AppliesTo(c layout.Class) bool {
	return e.Applies&MaskFor(c) != 0
}

const frame = 16 * time.Millisecond

var catalog = []Entry{
	{"solid", Solid, 100 * time.Millisecond, All, "static fill"},
	{"rainbow", Rainbow, 20 * time.Millisecond, All, "hue spread across the pixels, scrolling"},
	{"rainbow_cycle", RainbowCycle, 20 * time.Millisecond, All, "every pixel cycles through hues together"},
	{"breathing", Breathing, frame, All, "sinusoidal brightness of one color"},
	{"chase", Chase, 50 * time.Millisecond, Point | RingMask, "theater chase"},
	{"comet", Comet, 20 * time.Millisecond, Point | RingMask, "bright head with a fading tail"},
	{"twinkle", Twinkle, 30 * time.Millisecond, All, "random pixels flash and fade"},
	{"sparkle", Sparkle, frame, All, "per-pixel fade in, hold, fade out"},
	{"fire", Fire, 30 * time.Millisecond, Point | MatrixMask, "heat simulation rising from the bottom"},
	{"rain", Rain, 40 * time.Millisecond, MatrixMask, "falling drops with trails"},
	{"coderain", CodeRain, 50 * time.Millisecond, MatrixMask, "green falling code columns"},
	{"wave", Wave, 20 * time.Millisecond, All, "travelling sine brightness wave"},
	{"gradient", Gradient, 30 * time.Millisecond, All, "scrolling gradient to the complement color"},
	{"spin", Spin, 20 * time.Millisecond, RingMask, "rotating arc"},
	{"ripple", Ripple, 30 * time.Millisecond, MatrixMask, "rings expanding from the center"},
	{"plasma", Plasma, 30 * time.Millisecond, MatrixMask, "sine plasma field"},
	{"sweep", Sweep, 100 * time.Millisecond, All, "calibration: one white pixel walks the wiring order"},
	{"rgb_test", RGBTest, 500 * time.Millisecond, All, "calibration: full red, green, blue in turn"},
}

// Lookup finds an entry by name.
func Lookup(name string) (Entry, error) {
	for _, e := range catalog {
		if e.Name == name {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("animation %q: %w", name, errs.ErrNotFound)
}

// List returns every entry, sorted by name.
func List() []Entry {
	out := append([]Entry(nil), catalog...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ListFor returns the entries applicable to a device class.
func ListFor(c layout.Class) []Entry {
	var out []Entry
	for _, e := range List() {
		if e.AppliesTo(c) {
			out = append(out, e)
		}
	}
	return out
}
