package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// R3 helpers shared by the mesh builders. Vectors stored in flat
// float32 attribute arrays are read and written with Load and Store.

func Elem(sides float64) r3.Vec {
	return r3.Vec{
		X: sides,
		Y: sides,
		Z: sides,
	}
}

// MinElem return a vector with the minimum components of two vectors.
func MinElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// MaxElem return a vector with the maximum components of two vectors.
func MaxElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

// Load reads the i'th 3-component vector of a flat array.
func Load(flat []float32, i int) r3.Vec {
	f := flat[3*i : 3*i+3]
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}
}

// Store writes v as the i'th 3-component vector of a flat array.
func Store(flat []float32, i int, v r3.Vec) {
	f := flat[3*i : 3*i+3]
	f[0] = float32(v.X)
	f[1] = float32(v.Y)
	f[2] = float32(v.Z)
}
