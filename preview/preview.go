// Package preview draws meshes to images without a GPU.
package preview

import (
	"errors"
	"image"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/parasurf/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// View configures the camera and output of Render.
type View struct {
	// what position (point) to look at
	LookAt r3.Vec
	// which way is up (direction)
	Up r3.Vec
	// where the camera/eye located at (point)
	Eye       r3.Vec
	Near, Far float64
	// Vertical field of view in degrees.
	Fovy float64
	// Output size in pixels.
	Width, Height int
	// Supersampling factor, downsampled for antialiasing.
	Scale int
	// Hex colors of the surface and the background.
	Color, Background string
}

// DefaultView looks at the mesh, fit in a bi-unit cube, from the first octant.
var DefaultView = View{
	Up:         r3.Vec{Z: 1},
	Eye:        r3.Vec{X: 3, Y: 3, Z: 3},
	Near:       1,
	Far:        10,
	Fovy:       30,
	Width:      800,
	Height:     600,
	Scale:      2,
	Color:      "#468966",
	Background: "#FFF8E3",
}

// Render draws m with Phong shading using the mesh's vertex normals.
// The mesh is fit in a bi-unit cube centered at the origin before drawing.
func Render(m *mesh.Mesh, view View) (image.Image, error) {
	if view.Width <= 0 || view.Height <= 0 {
		return nil, errors.New("preview: non-positive image size")
	}
	if !(view.Near > 0 && view.Far > view.Near) {
		return nil, errors.New("preview: require 0 < near < far")
	}
	scale := view.Scale
	if scale < 1 {
		scale = 1
	}
	var (
		eye    = fauxglVec(view.Eye)
		center = fauxglVec(view.LookAt)
		up     = fauxglVec(view.Up)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize() // light direction
		aspect = float64(view.Width) / float64(view.Height)
	)
	fm := fauxgl.NewTriangleMesh(triangles(m))
	// fit mesh in a bi-unit cube centered at the origin
	fm.BiUnitCube()
	context := fauxgl.NewContext(view.Width*scale, view.Height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor(view.Background))
	// Both sheets are visible from either side.
	context.Cull = fauxgl.CullNone
	matrix := fauxgl.LookAt(eye, center, up).Perspective(view.Fovy, aspect, view.Near, view.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = fauxgl.HexColor(view.Color)
	context.Shader = shader
	context.DrawMesh(fm)
	img := context.Image()
	if scale > 1 {
		// downsample image for antialiasing
		img = resize.Resize(uint(view.Width), uint(view.Height), img, resize.Bilinear)
	}
	return img, nil
}

// SavePNG writes img as a PNG file at path.
func SavePNG(path string, img image.Image) error {
	return fauxgl.SavePNG(path, img)
}

// triangles converts m to fauxgl triangles carrying the mesh's smooth
// normals and UVs. Zero area triangles are skipped.
func triangles(m *mesh.Mesh) []*fauxgl.Triangle {
	uvs := m.UVs()
	tris := make([]*fauxgl.Triangle, 0, m.TriangleCount())
	for i := 0; i < m.TriangleCount(); i++ {
		var v [3]fauxgl.Vertex
		for k, idx := range m.Triangle(i) {
			vi := int(idx)
			v[k] = fauxgl.Vertex{
				Position: fauxglVec(m.Position(vi)),
				Normal:   fauxglVec(m.Normal(vi)),
				Texture:  fauxgl.V(float64(uvs[2*vi]), float64(uvs[2*vi+1]), 0),
			}
		}
		e1 := v[1].Position.Sub(v[0].Position)
		e2 := v[2].Position.Sub(v[0].Position)
		if e1.Cross(e2).Length() == 0 {
			continue
		}
		tris = append(tris, fauxgl.NewTriangle(v[0], v[1], v[2]))
	}
	return tris
}

func fauxglVec(v r3.Vec) fauxgl.Vector { return fauxgl.V(v.X, v.Y, v.Z) }
