// Package layout maps 2D coordinates onto the linear wiring order of an LED device.
package layout

import (
	"fmt"
	"strings"

	"github.com/coreman2200/ledgfx/internal/errs"
)

// Class is the physical arrangement of a device.
type Class int

const (
	Strip Class = iota
	Ring
	Matrix
)

func (c Class) String() string {
	switch c {
	case Ring:
		return "ring"
	case Matrix:
		return "matrix"
	default:
		return "strip"
	}
}

// Origin is the corner that holds pixel 0.
type Origin int

const (
	TopLeft Origin = iota
	TopRight
	BottomLeft
	BottomRight
)

// Scan is the wiring order starting from the origin.
type Scan int

const (
	RowMajor Scan = iota
	ColumnMajor
	ZigzagRow
	ZigzagColumn
)

// Geometry describes a device's pixels. Width/Height are zero for strips and rings.
type Geometry struct {
	Class  Class
	Count  int
	Width  int
	Height int
	Origin Origin
	Scan   Scan
}

// NewStrip returns a linear geometry of n pixels.
func NewStrip(n int) Geometry { return Geometry{Class: Strip, Count: n} }

// NewRing returns a circular geometry of n pixels.
func NewRing(n int) Geometry { return Geometry{Class: Ring, Count: n} }

// NewMatrix returns a w*h geometry.
func NewMatrix(w, h int, o Origin, s Scan) Geometry {
	return Geometry{Class: Matrix, Count: w * h, Width: w, Height: h, Origin: o, Scan: s}
}

// IsMatrix reports whether 2D coordinates are meaningful.
func (g Geometry) IsMatrix() bool {
	return g.Class == Matrix && g.Width > 0 && g.Height > 0
}

// Index maps x,y (0,0 is top-left) to a linear LED index.
// Non-matrix geometries treat x as the index along the strip and require y == 0.
func (g Geometry) Index(x, y int) (int, bool) {
	if !g.IsMatrix() {
		if y != 0 || x < 0 || x >= g.Count {
			return 0, false
		}
		return x, true
	}
	w, h := g.Width, g.Height
	if x < 0 || y < 0 || x >= w || y >= h {
		return 0, false
	}
	xx, yy := x, y
	if g.Origin == TopRight || g.Origin == BottomRight {
		xx = w - 1 - x
	}
	if g.Origin == BottomLeft || g.Origin == BottomRight {
		yy = h - 1 - y
	}
	switch g.Scan {
	case ColumnMajor:
		return xx*h + yy, true
	case ZigzagRow:
		if yy%2 == 1 {
			xx = w - 1 - xx
		}
		return yy*w + xx, true
	case ZigzagColumn:
		if xx%2 == 1 {
			yy = h - 1 - yy
		}
		return xx*h + yy, true
	default:
		return yy*w + xx, true
	}
}

// Validate checks the geometry is self-consistent.
func (g Geometry) Validate() error {
	if g.Count <= 0 {
		return fmt.Errorf("pixel count %d: %w", g.Count, errs.ErrInvalidArgument)
	}
	if g.Class == Matrix && g.Width*g.Height != g.Count {
		return fmt.Errorf("matrix %dx%d does not hold %d pixels: %w", g.Width, g.Height, g.Count, errs.ErrInvalidArgument)
	}
	return nil
}

// ParseClass accepts "strip", "ring" or "matrix".
func ParseClass(s string) (Class, error) {
	switch strings.ToLower(s) {
	case "", "strip":
		return Strip, nil
	case "ring":
		return Ring, nil
	case "matrix":
		return Matrix, nil
	}
	return Strip, fmt.Errorf("layout %q: %w", s, errs.ErrInvalidArgument)
}

// ParseOrigin accepts top_left, top_right, bottom_left, bottom_right.
func ParseOrigin(s string) (Origin, error) {
	switch strings.ToLower(s) {
	case "", "top_left":
		return TopLeft, nil
	case "top_right":
		return TopRight, nil
	case "bottom_left":
		return BottomLeft, nil
	case "bottom_right":
		return BottomRight, nil
	}
	return TopLeft, fmt.Errorf("origin %q: %w", s, errs.ErrInvalidArgument)
}

// ParseScan accepts row, column, zigzag_row, zigzag_column.
func ParseScan(s string) (Scan, error) {
	switch strings.ToLower(s) {
	case "", "row":
		return RowMajor, nil
	case "column":
		return ColumnMajor, nil
	case "zigzag_row":
		return ZigzagRow, nil
	case "zigzag_column":
		return ZigzagColumn, nil
	}
	return RowMajor, fmt.Errorf("scan %q: %w", s, errs.ErrInvalidArgument)
}
