package config

import (
	"fmt"
	"math"

	"github.com/soypat/parasurf"
)

// Range is the interval and increment of an interactive control.
type Range struct {
	Min, Max, Step float64
}

func (r Range) clamp(x float64) float64 {
	if math.IsNaN(x) {
		return r.Min
	}
	return parasurf.Clamp(x, r.Min, r.Max)
}

var (
	ShapeRange = Range{Min: 0.1, Max: 10, Step: 0.1}
	StepsRange = Range{Min: 1, Max: 256, Step: 1}
	// ConcurrentRange bounds the goroutines used per build.
	ConcurrentRange = Range{Min: 0, Max: 64, Step: 1}
)

// Clamp returns c with shape parameters, resolution and concurrency
// clamped to the interactive control ranges.
func (c Config) Clamp() Config {
	c.Shape.L = ShapeRange.clamp(c.Shape.L)
	c.Shape.T = ShapeRange.clamp(c.Shape.T)
	c.Shape.B = ShapeRange.clamp(c.Shape.B)
	c.Resolution.USteps = int(StepsRange.clamp(float64(c.Resolution.USteps)))
	c.Resolution.VSteps = int(StepsRange.clamp(float64(c.Resolution.VSteps)))
	c.Concurrent = int(ConcurrentRange.clamp(float64(c.Concurrent)))
	return c
}

// Param is a user editable build parameter.
type Param uint8

const (
	ParamL Param = iota
	ParamT
	ParamB
	ParamU // u steps
	ParamV // v steps
)

func (p Param) String() string {
	switch p {
	case ParamL:
		return "L"
	case ParamT:
		return "T"
	case ParamB:
		return "B"
	case ParamU:
		return "u steps"
	case ParamV:
		return "v steps"
	}
	return fmt.Sprintf("Param(%d)", uint8(p))
}

// Nudge moves p by dir control steps and returns the clamped result.
// Shape values are rounded to the step to avoid drift.
func (c Config) Nudge(p Param, dir int) Config {
	d := float64(dir)
	switch p {
	case ParamL:
		c.Shape.L = snap(c.Shape.L+d*ShapeRange.Step, ShapeRange.Step)
	case ParamT:
		c.Shape.T = snap(c.Shape.T+d*ShapeRange.Step, ShapeRange.Step)
	case ParamB:
		c.Shape.B = snap(c.Shape.B+d*ShapeRange.Step, ShapeRange.Step)
	case ParamU:
		c.Resolution.USteps += dir * int(StepsRange.Step)
	case ParamV:
		c.Resolution.VSteps += dir * int(StepsRange.Step)
	}
	return c.Clamp()
}

func snap(x, step float64) float64 {
	return math.Round(x/step) * step
}
