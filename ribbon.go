package parasurf

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// ribbonK is the width constant of the ribbon cross section.
	ribbonK = 2.5426
	// ribbonPole is the v value where the ribbon's radicand denominator vanishes.
	ribbonPole = -1. / 3.
)

// Ribbon is a twisted ribbon that narrows to a point at u=0 and whose
// two sheets mirror each other across the y=0 plane.
//  x = L(1-u)
//  y = ±2.5426·B·v·sqrt(3(1-v)/(1+3v))·u
//  z = (√3·T/3)(1-u) + u·v·T
type Ribbon struct {
	p      ShapeParams
	domain r2.Box
}

var _ Surface = (*Ribbon)(nil)

// NewRibbon returns a Ribbon sampled over u∈[0,1], v∈[-0.3,1].
func NewRibbon(p ShapeParams) (*Ribbon, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &Ribbon{
		p:      p,
		domain: r2.Box{Min: r2.Vec{X: 0, Y: -0.3}, Max: r2.Vec{X: 1, Y: 1}},
	}, nil
}

// WithDomain returns a copy of r sampled over d. The v range must stay
// within (-1/3, 1] where the equation is real and finite.
func (r *Ribbon) WithDomain(d r2.Box) (*Ribbon, error) {
	if err := checkDomain(d); err != nil {
		return nil, err
	}
	if d.Min.Y <= ribbonPole || d.Max.Y > 1 {
		return nil, fmt.Errorf("%w: ribbon v range [%g,%g] outside (-1/3,1]", ErrDomain, d.Min.Y, d.Max.Y)
	}
	cp := *r
	cp.domain = d
	return &cp, nil
}

func (r *Ribbon) Domain() r2.Box { return r.domain }

func (r *Ribbon) Evaluate(u, v float64, sheet Sheet) r3.Vec {
	L, T, B := r.p.L, r.p.T, r.p.B
	return r3.Vec{
		X: L * (1 - u),
		Y: sheet.Sign() * ribbonK * B * v * math.Sqrt((3*(1-v))/(1+3*v)) * u,
		Z: ((math.Sqrt(3)*T)/3)*(1-u) + u*v*T,
	}
}
