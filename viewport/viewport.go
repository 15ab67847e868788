// Package viewport maps pointer input onto a window into the fractal plane.
//
// All arithmetic is done in double precision. Zoom compounds multiplicatively
// over a session, and single precision runs out long before the fractal does.
package viewport

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ScrollBase is the zoom multiplier for one unit of scroll.
const ScrollBase = 1.05

// View is the visible rectangle of the fractal plane.
//
// Offset is the plane position of the rectangle's corner, Base the unzoomed
// extents and Zoom a strictly positive multiplier; the visible extents are
// Base / Zoom.
type View struct {
	Offset mgl64.Vec2
	Base   mgl64.Vec2
	Zoom   float64
}

// Default returns the view that frames the whole Mandelbrot set.
func Default() View {
	return View{
		Offset: mgl64.Vec2{-2.5, -1.0},
		Base:   mgl64.Vec2{3.5, 2.0},
		Zoom:   1.0,
	}
}

// Valid reports whether v can be rendered.
func (v View) Valid() bool {
	size := v.Size()
	return finitePositive(v.Zoom) &&
		finitePositive(v.Base[0]) && finitePositive(v.Base[1]) &&
		finitePositive(size[0]) && finitePositive(size[1]) &&
		!math.IsNaN(v.Offset[0]) && !math.IsNaN(v.Offset[1]) &&
		!math.IsInf(v.Offset[0], 0) && !math.IsInf(v.Offset[1], 0)
}

// Size returns the visible width and height.
func (v View) Size() mgl64.Vec2 {
	return mgl64.Vec2{v.Base[0] / v.Zoom, v.Base[1] / v.Zoom}
}

// Fraction converts a normalized pointer position into the fractional
// position inside the view. The vertical axis flips, since window y grows
// downward and plane y grows upward.
func Fraction(pointer mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{
		pointer[0]/2 + 0.5,
		-pointer[1]/2 + 0.5,
	}
}

// Normalize converts a window position in pixels into a normalized pointer
// position in [-1, 1], y downward.
func Normalize(x, y float64, width, height int) mgl64.Vec2 {
	if width <= 0 || height <= 0 {
		return mgl64.Vec2{}
	}

	return mgl64.Vec2{
		2*x/float64(width) - 1,
		2*y/float64(height) - 1,
	}
}

// PlanePoint returns the point of the plane under the pointer.
func (v View) PlanePoint(pointer mgl64.Vec2) mgl64.Vec2 {
	f := Fraction(pointer)
	size := v.Size()
	return mgl64.Vec2{
		v.Offset[0] + f[0]*size[0],
		v.Offset[1] + f[1]*size[1],
	}
}

// Scroll zooms by ScrollBase^delta about the pointer, so the plane point
// under the pointer stays where it is.
//
// A zero delta returns v untouched. A delta that would push Zoom, the
// visible extents or the offset out of the finite range is ignored.
func (v View) Scroll(pointer mgl64.Vec2, delta float64) View {
	if delta == 0 {
		return v
	}

	factor := math.Pow(ScrollBase, delta)
	zoom := v.Zoom * factor
	if !finitePositive(factor) || !finitePositive(zoom) {
		return v
	}

	f := Fraction(pointer)
	before := v.Size()
	after := mgl64.Vec2{v.Base[0] / zoom, v.Base[1] / zoom}

	next := v
	next.Offset[0] += f[0] * (before[0] - after[0])
	next.Offset[1] += f[1] * (before[1] - after[1])
	next.Zoom = zoom
	if !next.Valid() {
		return v
	}
	return next
}

// Pan moves the view so the plane point under from ends up under to.
func (v View) Pan(from, to mgl64.Vec2) View {
	d := Fraction(to).Sub(Fraction(from))
	if d[0] == 0 && d[1] == 0 {
		return v
	}

	size := v.Size()
	v.Offset[0] -= d[0] * size[0]
	v.Offset[1] -= d[1] * size[1]
	return v
}

func finitePositive(f float64) bool {
	return f > 0 && !math.IsInf(f, 1)
}
