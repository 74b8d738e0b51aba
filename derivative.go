package parasurf

import (
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultDelta is the parameter step used by TangentU and TangentV.
const DefaultDelta = 1e-4

// TangentU returns the forward displacement of s along u,
//  s(u+δ,v) - s(u,v)
// with δ=DefaultDelta. The result is not divided by δ so its magnitude
// scales with the step while its direction approximates ∂s/∂u.
// If the forward sample falls outside the surface's real range (e.g. past
// the ribbon's v=1 edge) the backward displacement s(u,v) - s(u-δ,v) is used.
func TangentU(s Surface, u, v float64, sheet Sheet) r3.Vec {
	return oneSided(s, u, v, sheet, DefaultDelta, 0)
}

// TangentV is the v counterpart of TangentU.
func TangentV(s Surface, u, v float64, sheet Sheet) r3.Vec {
	return oneSided(s, u, v, sheet, 0, DefaultDelta)
}

func oneSided(s Surface, u, v float64, sheet Sheet, du, dv float64) r3.Vec {
	d := Displacement(s, u, v, sheet, du, dv)
	if finiteVec(d) {
		return d
	}
	return r3.Scale(-1, Displacement(s, u, v, sheet, -du, -dv))
}

// Displacement returns s(u+du, v+dv) - s(u, v).
func Displacement(s Surface, u, v float64, sheet Sheet, du, dv float64) r3.Vec {
	p0 := s.Evaluate(u, v, sheet)
	p1 := s.Evaluate(u+du, v+dv, sheet)
	return r3.Sub(p1, p0)
}

// Jacobian returns the partial derivatives ∂s/∂u and ∂s/∂v at (u,v)
// estimated with central differences of the given step. A non-positive
// step selects gonum's default step for the formula.
func Jacobian(s Surface, u, v float64, sheet Sheet, step float64) (du, dv r3.Vec) {
	if step < 0 {
		step = 0
	}
	jac := mat.NewDense(3, 2, nil)
	fd.Jacobian(jac, func(y, x []float64) {
		p := s.Evaluate(x[0], x[1], sheet)
		y[0], y[1], y[2] = p.X, p.Y, p.Z
	}, []float64{u, v}, &fd.JacobianSettings{
		Formula: fd.Central,
		Step:    step,
	})
	du = r3.Vec{X: jac.At(0, 0), Y: jac.At(1, 0), Z: jac.At(2, 0)}
	dv = r3.Vec{X: jac.At(0, 1), Y: jac.At(1, 1), Z: jac.At(2, 1)}
	if !finiteVec(du) || !finiteVec(dv) {
		// Central stencil crossed the edge of the real range.
		h := step
		if h == 0 {
			h = DefaultDelta
		}
		if !finiteVec(du) {
			du = r3.Scale(1/h, oneSided(s, u, v, sheet, h, 0))
		}
		if !finiteVec(dv) {
			dv = r3.Scale(1/h, oneSided(s, u, v, sheet, 0, h))
		}
	}
	return du, dv
}

// Normal returns the unit normal ∂s/∂u × ∂s/∂v at (u,v) estimated
// from the forward displacements. Zero is returned at singular points.
func Normal(s Surface, u, v float64, sheet Sheet) r3.Vec {
	n := r3.Cross(TangentU(s, u, v, sheet), TangentV(s, u, v, sheet))
	if r3.Norm(n) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(n)
}
