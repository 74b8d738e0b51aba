package glview

import (
	"math"

	"github.com/fogleman/fauxgl"
)

// Scene holds the per-frame view state.
type Scene struct {
	// Model rotation, usually from a Trackball.
	Rotation fauxgl.Matrix
	// LightAngle is the azimuth in radians of the light orbiting the surface.
	LightAngle float64
	// Aspect is the viewport width over its height.
	Aspect float64
}

// Camera and lighting constants.
const (
	fovy          = 22.5 // degrees
	near, far     = 8, 50
	viewDistance  = 15
	lightRadius   = 5
	lightHeight   = 4
	shininess     = 50
	bumpStrength  = 0.15
	defaultAspect = 1
)

var (
	objectColor = [4]float32{0, 0, 1, 1}
	ka          = [3]float32{0.2, 0.2, 0.2}
	kd          = [3]float32{0.8, 0.8, 0.8}
	ks          = [3]float32{1, 1, 1}
)

// Matrices returns the model-view and model-view-projection matrices of s.
// The model is tilted so its x axis points away from the viewer.
func (s Scene) Matrices() (mv, mvp fauxgl.Matrix) {
	aspect := s.Aspect
	if !(aspect > 0) {
		aspect = defaultAspect
	}
	rot := s.Rotation
	if rot == (fauxgl.Matrix{}) {
		rot = fauxgl.Identity()
	}
	mv = rot.
		Rotate(fauxgl.V(1, 0, 0), fauxgl.Radians(270)).
		Rotate(fauxgl.V(0, 1, 0), fauxgl.Radians(45)).
		Translate(fauxgl.V(0, 0, -viewDistance))
	mvp = mv.Perspective(fovy, aspect, near, far)
	return mv, mvp
}

// LightEye returns the light position in eye coordinates.
func (s Scene) LightEye(mv fauxgl.Matrix) fauxgl.Vector {
	light := fauxgl.V(lightRadius*math.Cos(s.LightAngle), lightHeight, lightRadius*math.Sin(s.LightAngle))
	return mv.MulPosition(light)
}

// glMat4 returns m in column-major order as expected by glUniformMatrix4fv.
func glMat4(m fauxgl.Matrix) [16]float32 {
	return [16]float32{
		float32(m.X00), float32(m.X10), float32(m.X20), float32(m.X30),
		float32(m.X01), float32(m.X11), float32(m.X21), float32(m.X31),
		float32(m.X02), float32(m.X12), float32(m.X22), float32(m.X32),
		float32(m.X03), float32(m.X13), float32(m.X23), float32(m.X33),
	}
}

// normalMat3 returns the inverse transpose of the upper 3x3 block of mv
// in column-major order.
func normalMat3(mv fauxgl.Matrix) [9]float32 {
	n := mv.Inverse().Transpose()
	return [9]float32{
		float32(n.X00), float32(n.X10), float32(n.X20),
		float32(n.X01), float32(n.X11), float32(n.X21),
		float32(n.X02), float32(n.X12), float32(n.X22),
	}
}
