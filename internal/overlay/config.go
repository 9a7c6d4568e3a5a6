// Package overlay scrolls text over a device on its own clock, drawing into the
// device's overlay layer through a render.OverlayHandle.
package overlay

import (
	"fmt"
	"strings"

	"github.com/coreman2200/ledgfx/internal/color"
	"github.com/coreman2200/ledgfx/internal/errs"
)

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

func ParseAlign(s string) (Align, error) {
	switch strings.ToLower(s) {
	case "", "left":
		return AlignLeft, nil
	case "center", "centre":
		return AlignCenter, nil
	case "right":
		return AlignRight, nil
	}
	return AlignLeft, fmt.Errorf("align %q: %w", s, errs.ErrInvalidArgument)
}

type Direction int

const (
	Static Direction = iota
	ScrollLeft
	ScrollRight
	ScrollUp
	ScrollDown
)

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "", "none", "static":
		return Static, nil
	case "left":
		return ScrollLeft, nil
	case "right":
		return ScrollRight, nil
	case "up":
		return ScrollUp, nil
	case "down":
		return ScrollDown, nil
	}
	return Static, fmt.Errorf("scroll %q: %w", s, errs.ErrInvalidArgument)
}

func (d Direction) horizontal() bool { return d == ScrollLeft || d == ScrollRight }

// Config describes one overlay.
type Config struct {
	Text string
	// FontPath selects the font; empty keeps the current one.
	FontPath string
	Color    color.RGB
	X, Y     int
	Align    Align
	Scroll   Direction
	// Speed is 1..100; one pixel moves every 110-Speed ms.
	Speed uint8
	Loop  bool
	// InvertOnOverlap picks the text color per pixel against layer 0.
	InvertOnOverlap bool
}
