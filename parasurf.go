package parasurf

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Parametric surface utility functions.

// Surface is the interface to a two-sheeted parametric surface.
type Surface interface {
	// Evaluate returns the point of the surface at parameters (u,v) on the
	// given sheet. It must be deterministic and free of side effects.
	Evaluate(u, v float64, sheet Sheet) r3.Vec
	// Domain returns the parameter rectangle sampled by tessellators.
	// The X axis corresponds to u and the Y axis to v.
	Domain() r2.Box
}

var (
	// ErrShape is returned when shape parameters are not finite.
	ErrShape = errors.New("invalid shape parameters")
	// ErrDomain is returned when a parameter domain is empty or
	// crosses a pole of the surface equation.
	ErrDomain = errors.New("invalid parameter domain")
)

// Sheet selects one of the two mirrored branches of a surface.
type Sheet int8

const (
	Plus  Sheet = +1
	Minus Sheet = -1
)

// Sheets lists the sheets in the order they are laid out in a mesh.
var Sheets = [2]Sheet{Plus, Minus}

// Sign returns +1 for Plus and -1 for Minus.
func (s Sheet) Sign() float64 {
	if s == Minus {
		return -1
	}
	return 1
}

func (s Sheet) String() string {
	switch s {
	case Plus:
		return "plus"
	case Minus:
		return "minus"
	}
	return fmt.Sprintf("Sheet(%d)", int8(s))
}

// ShapeParams are the three scalars that shape a surface.
type ShapeParams struct {
	L float64 `toml:"l" yaml:"l"`
	T float64 `toml:"t" yaml:"t"`
	B float64 `toml:"b" yaml:"b"`
}

func (p ShapeParams) validate() error {
	if !finite(p.L) || !finite(p.T) || !finite(p.B) {
		return fmt.Errorf("%w: L=%g T=%g B=%g", ErrShape, p.L, p.T, p.B)
	}
	return nil
}

// Surface kinds accepted by New.
const (
	KindRibbon = "ribbon"
	KindFolium = "folium"
)

// New returns the surface named by kind with its default domain.
func New(kind string, p ShapeParams) (Surface, error) {
	switch strings.ToLower(kind) {
	case KindRibbon, "":
		return NewRibbon(p)
	case KindFolium:
		return NewFolium(p)
	}
	return nil, fmt.Errorf("unknown surface kind %q", kind)
}

// checkDomain checks d is a non-empty finite rectangle.
func checkDomain(d r2.Box) error {
	if !finite(d.Min.X) || !finite(d.Min.Y) || !finite(d.Max.X) || !finite(d.Max.Y) {
		return fmt.Errorf("%w: non-finite bounds %v", ErrDomain, d)
	}
	if d.Min.X >= d.Max.X || d.Min.Y >= d.Max.Y {
		return fmt.Errorf("%w: empty rectangle %v", ErrDomain, d)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
