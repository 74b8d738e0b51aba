package glview

import (
	"math"

	"github.com/fogleman/fauxgl"
)

// Trackball turns mouse drags over a viewport into rotations. Window
// coordinates have their origin at the top left, y pointing down.
type Trackball struct {
	width, height float64
	rotation      fauxgl.Matrix // accumulated over finished drags
	drag          fauxgl.Matrix // rotation of the drag in progress
	start         fauxgl.Vector
	dragging      bool
}

// NewTrackball returns a Trackball with no rotation for a viewport of
// the given size in pixels.
func NewTrackball(width, height int) *Trackball {
	tb := &Trackball{}
	tb.Resize(width, height)
	tb.Reset()
	return tb
}

// Resize sets the viewport size. Non-positive sizes are ignored.
func (tb *Trackball) Resize(width, height int) {
	if width > 0 && height > 0 {
		tb.width, tb.height = float64(width), float64(height)
	}
}

// Reset clears the rotation and any drag in progress.
func (tb *Trackball) Reset() {
	tb.rotation = fauxgl.Identity()
	tb.drag = fauxgl.Identity()
	tb.dragging = false
}

// Press starts a drag at window coordinates (x,y).
func (tb *Trackball) Press(x, y float64) {
	tb.start = tb.project(x, y)
	tb.drag = fauxgl.Identity()
	tb.dragging = true
}

// Drag updates the drag in progress to window coordinates (x,y).
func (tb *Trackball) Drag(x, y float64) {
	if !tb.dragging {
		return
	}
	cur := tb.project(x, y)
	axis := tb.start.Cross(cur)
	if axis.Length() < 1e-9 {
		tb.drag = fauxgl.Identity()
		return
	}
	angle := math.Acos(math.Max(-1, math.Min(1, tb.start.Dot(cur))))
	tb.drag = rotation(axis.Normalize(), angle)
}

// Release ends the drag in progress, keeping its rotation.
func (tb *Trackball) Release() {
	if !tb.dragging {
		return
	}
	tb.rotation = tb.drag.Mul(tb.rotation)
	tb.drag = fauxgl.Identity()
	tb.dragging = false
}

// Rotation returns the current rotation including the drag in progress.
func (tb *Trackball) Rotation() fauxgl.Matrix {
	return tb.drag.Mul(tb.rotation)
}

// project maps window coordinates onto a unit sphere blended with a
// hyperbolic sheet away from the center.
func (tb *Trackball) project(x, y float64) fauxgl.Vector {
	r := math.Min(tb.width, tb.height)
	p := fauxgl.Vector{
		X: (2*x - tb.width) / r,
		Y: (tb.height - 2*y) / r,
	}
	d2 := p.X*p.X + p.Y*p.Y
	if d2 <= 0.5 {
		p.Z = math.Sqrt(1 - d2)
	} else {
		p.Z = 0.5 / math.Sqrt(d2)
	}
	return p.Normalize()
}

// rotation returns the right-handed rotation by angle radians about the
// unit vector k.
func rotation(k fauxgl.Vector, angle float64) fauxgl.Matrix {
	s, c := math.Sincos(angle)
	m := 1 - c
	return fauxgl.Matrix{
		X00: c + k.X*k.X*m, X01: k.X*k.Y*m - k.Z*s, X02: k.X*k.Z*m + k.Y*s,
		X10: k.Y*k.X*m + k.Z*s, X11: c + k.Y*k.Y*m, X12: k.Y*k.Z*m - k.X*s,
		X20: k.Z*k.X*m - k.Y*s, X21: k.Z*k.Y*m + k.X*s, X22: c + k.Z*k.Z*m,
		X33: 1,
	}
}
