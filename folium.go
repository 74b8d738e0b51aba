package parasurf

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

const foliumPole = -1.0

// Folium sweeps a folium of Descartes loop, scaled by (1-u), along x.
//  x = L·u/3
//  y = ±T·B·v(1-u)/(1+v³)
//  z = T·B·v²(1-u)/(1+v³)
// The y component is mirrored per sheet so both sheets carry geometry.
type Folium struct {
	p      ShapeParams
	domain r2.Box
}

var _ Surface = (*Folium)(nil)

// NewFolium returns a Folium sampled over u∈[0,1], v∈[-0.6,5].
func NewFolium(p ShapeParams) (*Folium, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &Folium{
		p:      p,
		domain: r2.Box{Min: r2.Vec{X: 0, Y: -0.6}, Max: r2.Vec{X: 1, Y: 5}},
	}, nil
}

// WithDomain returns a copy of f sampled over d. The v range may not
// contain the pole at v=-1.
func (f *Folium) WithDomain(d r2.Box) (*Folium, error) {
	if err := checkDomain(d); err != nil {
		return nil, err
	}
	if d.Min.Y <= foliumPole && d.Max.Y >= foliumPole {
		return nil, fmt.Errorf("%w: folium v range [%g,%g] contains pole v=-1", ErrDomain, d.Min.Y, d.Max.Y)
	}
	cp := *f
	cp.domain = d
	return &cp, nil
}

func (f *Folium) Domain() r2.Box { return f.domain }

func (f *Folium) Evaluate(u, v float64, sheet Sheet) r3.Vec {
	L, T, B := f.p.L, f.p.T, f.p.B
	k := T * B * (1 - u) / (1 + v*v*v)
	return r3.Vec{
		X: L * u / 3,
		Y: sheet.Sign() * k * v,
		Z: k * v * v,
	}
}
