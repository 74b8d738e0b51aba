// Package glview draws meshes with OpenGL 4.6 core.
package glview

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/parasurf/mesh"
)

//go:embed shader.glsl
var shaderSource string

var uniformNames = [...]string{
	"ModelViewProjectionMatrix", "ModelViewMatrix", "NormalMatrix",
	"color", "lightPosition", "Ka", "Kd", "Ks", "shininess", "bumpStrength",
}

const (
	uMVP = iota
	uMV
	uNormal
	uColor
	uLight
	uKa
	uKd
	uKs
	uShininess
	uBump
)

// Renderer draws one mesh with Phong lighting and a procedural normal map.
type Renderer struct {
	prog     glgl.Program
	uniforms [len(uniformNames)]int32
	attribs  [numAttributes]uint32
	buf      MeshBuffers
}

// NewRenderer loads the GL functions of the current context and compiles
// the shader program. A GL 4.6 context must be current.
func NewRenderer() (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("loading GL functions: %w", err)
	}
	ss, err := glgl.ParseCombined(strings.NewReader(shaderSource))
	if err != nil {
		return nil, err
	}
	prog, err := glgl.CompileProgram(ss)
	if err != nil {
		return nil, fmt.Errorf("compiling mesh shader: %w", err)
	}
	r := &Renderer{prog: prog}
	if err = r.locate(); err != nil {
		prog.Delete()
		return nil, err
	}
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	return r, glError()
}

// locate looks up the uniform and attribute locations of the program.
func (r *Renderer) locate() error {
	r.prog.Bind()
	id := r.prog.ID()
	for i, name := range uniformNames {
		r.uniforms[i] = gl.GetUniformLocation(id, gl.Str(name+"\x00"))
		if r.uniforms[i] < 0 {
			return fmt.Errorf("uniform %q not found in mesh shader", name)
		}
	}
	for i, name := range attributeNames {
		loc := gl.GetAttribLocation(id, gl.Str(name+"\x00"))
		if loc < 0 {
			return fmt.Errorf("attribute %q not found in mesh shader", name)
		}
		r.attribs[i] = uint32(loc)
	}
	return nil
}

// SetMesh uploads m, replacing the mesh drawn so far once the upload succeeds.
func (r *Renderer) SetMesh(m *mesh.Mesh) error {
	return r.buf.Upload(m, r.attribs)
}

// Draw clears the framebuffer and draws the mesh as seen in s.
func (r *Renderer) Draw(s Scene) {
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	r.prog.Bind()
	mv, mvp := s.Matrices()
	m4mvp, m4mv, m3n := glMat4(mvp), glMat4(mv), normalMat3(mv)
	light := s.LightEye(mv)
	gl.UniformMatrix4fv(r.uniforms[uMVP], 1, false, &m4mvp[0])
	gl.UniformMatrix4fv(r.uniforms[uMV], 1, false, &m4mv[0])
	gl.UniformMatrix3fv(r.uniforms[uNormal], 1, false, &m3n[0])
	gl.Uniform4fv(r.uniforms[uColor], 1, &objectColor[0])
	gl.Uniform3f(r.uniforms[uLight], float32(light.X), float32(light.Y), float32(light.Z))
	gl.Uniform3fv(r.uniforms[uKa], 1, &ka[0])
	gl.Uniform3fv(r.uniforms[uKd], 1, &kd[0])
	gl.Uniform3fv(r.uniforms[uKs], 1, &ks[0])
	gl.Uniform1f(r.uniforms[uShininess], shininess)
	gl.Uniform1f(r.uniforms[uBump], bumpStrength)
	r.buf.Draw()
}

// Delete releases the GPU resources of r.
func (r *Renderer) Delete() {
	r.buf.Delete()
	r.prog.Delete()
}
