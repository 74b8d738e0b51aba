package glview

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/soypat/parasurf/mesh"
)

// attributeNames are the vertex shader inputs, in the order of attributes.
var attributeNames = [numAttributes]string{"vertex", "normal", "uv", "tangent", "bitangent"}

const numAttributes = 5

// attribute is a vertex attribute array.
type attribute struct {
	size int32 // components per vertex
	data []float32
}

// attributes returns the vertex arrays of m in attributeNames order.
func attributes(m *mesh.Mesh) [numAttributes]attribute {
	return [numAttributes]attribute{
		{size: 3, data: m.Positions()},
		{size: 3, data: m.Normals()},
		{size: 2, data: m.UVs()},
		{size: 3, data: m.Tangents()},
		{size: 3, data: m.Bitangents()},
	}
}

// indexType returns the GL element type for f.
func indexType(f mesh.IndexFormat) (uint32, error) {
	switch f {
	case mesh.Index16:
		return gl.UNSIGNED_SHORT, nil
	case mesh.Index32:
		return gl.UNSIGNED_INT, nil
	}
	return 0, fmt.Errorf("no GL element type for %s", f)
}

// MeshBuffers holds the GPU resources of an uploaded mesh.
// The zero value holds no resources and draws nothing.
type MeshBuffers struct {
	vao   uint32
	vbos  [numAttributes]uint32
	ebo   uint32
	count int32
	xtype uint32
}

// Upload copies m to new GPU buffers, binding the arrays of attributes(m)
// to the shader locations locs. The previously uploaded mesh is released
// only after the new upload succeeds, so b keeps drawing the old mesh on
// error. A GL context must be current.
func (b *MeshBuffers) Upload(m *mesh.Mesh, locs [numAttributes]uint32) error {
	xtype, err := indexType(m.IndexFormat())
	if err != nil {
		return err
	}
	if m.TriangleCount() == 0 {
		return errors.New("upload of empty mesh")
	}
	next := MeshBuffers{
		count: int32(3 * m.TriangleCount()),
		xtype: xtype,
	}
	gl.GenVertexArrays(1, &next.vao)
	gl.BindVertexArray(next.vao)
	defer gl.BindVertexArray(0)
	gl.GenBuffers(int32(len(next.vbos)), &next.vbos[0])
	for i, attr := range attributes(m) {
		loc := locs[i]
		gl.BindBuffer(gl.ARRAY_BUFFER, next.vbos[i])
		gl.BufferData(gl.ARRAY_BUFFER, 4*len(attr.data), gl.Ptr(attr.data), gl.STATIC_DRAW)
		gl.EnableVertexAttribArray(loc)
		gl.VertexAttribPointer(loc, attr.size, gl.FLOAT, false, 0, gl.PtrOffset(0))
	}
	gl.GenBuffers(1, &next.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, next.ebo)
	if xtype == gl.UNSIGNED_SHORT {
		idx, err := m.Indices16()
		if err != nil {
			next.Delete()
			return err
		}
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, mesh.Index16.Size()*len(idx), gl.Ptr(idx), gl.STATIC_DRAW)
	} else {
		idx := m.Indices()
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, mesh.Index32.Size()*len(idx), gl.Ptr(idx), gl.STATIC_DRAW)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	if err := glError(); err != nil {
		next.Delete()
		return fmt.Errorf("mesh upload: %w", err)
	}
	b.Delete()
	*b = next
	return nil
}

// Draw issues one indexed triangle draw of the uploaded mesh.
func (b *MeshBuffers) Draw() {
	if b.vao == 0 {
		return
	}
	gl.BindVertexArray(b.vao)
	gl.DrawElements(gl.TRIANGLES, b.count, b.xtype, gl.PtrOffset(0))
	gl.BindVertexArray(0)
}

// Delete releases the GPU resources of b.
func (b *MeshBuffers) Delete() {
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
	}
	if b.vbos[0] != 0 {
		gl.DeleteBuffers(int32(len(b.vbos)), &b.vbos[0])
	}
	if b.ebo != 0 {
		gl.DeleteBuffers(1, &b.ebo)
	}
	*b = MeshBuffers{}
}

func glError() error {
	var errs []error
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		errs = append(errs, fmt.Errorf("GL error 0x%x", code))
		if len(errs) > 8 {
			break
		}
	}
	return errors.Join(errs...)
}
