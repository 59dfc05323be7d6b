package gles

import (
	"encoding/binary"
	"fmt"

	"github.com/spaghettifunk/anima-wear/engine/core"
	"github.com/spaghettifunk/anima-wear/engine/renderer/metadata"
	"golang.org/x/mobile/exp/f32"
	"golang.org/x/mobile/gl"
)

const maxIndex16 = 0xFFFF

// hostOrder is the concrete byte order of this machine. f32.Bytes only
// accepts binary.LittleEndian or binary.BigEndian.
var hostOrder binary.ByteOrder = binary.LittleEndian

func init() {
	if binary.NativeEndian.Uint16([]byte{0, 1}) == 1 {
		hostOrder = binary.BigEndian
	}
}

// GpuBuffer is a device copy of one geometry table: a vertex buffer and, for
// indexed tables, a 16-bit index buffer. Contents are written once.
type GpuBuffer struct {
	rc          *RenderContext
	name        string
	layout      metadata.VertexLayout
	vbo         gl.Buffer
	ibo         gl.Buffer
	vertexCount int
	indexCount  int
	destroyed   bool
}

// UploadGeometry copies table into device buffers in host byte order.
func UploadGeometry(rc *RenderContext, table *metadata.GeometryTable) (*GpuBuffer, error) {
	for _, idx := range table.Indices {
		if idx > maxIndex16 {
			return nil, fmt.Errorf("geometry %q: index %d: %w", table.Name, idx, core.ErrIndexOutOfRange)
		}
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}

	g := rc.GL()
	b := &GpuBuffer{
		rc:          rc,
		name:        table.Name,
		layout:      table.Layout,
		vertexCount: table.VertexCount(),
		indexCount:  len(table.Indices),
	}

	b.vbo = g.CreateBuffer()
	if b.vbo.Value == 0 {
		return nil, fmt.Errorf("geometry %q: vertex buffer: %w", table.Name, core.ErrBufferAllocation)
	}
	g.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	g.BufferData(gl.ARRAY_BUFFER, f32.Bytes(hostOrder, table.Vertices...), gl.STATIC_DRAW)

	if table.Indexed() {
		b.ibo = g.CreateBuffer()
		if b.ibo.Value == 0 {
			b.Destroy()
			return nil, fmt.Errorf("geometry %q: index buffer: %w", table.Name, core.ErrBufferAllocation)
		}
		g.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ibo)
		g.BufferData(gl.ELEMENT_ARRAY_BUFFER, indexBytes(table.Indices), gl.STATIC_DRAW)
	}

	if err := rc.CheckError(fmt.Sprintf("upload %s", table.Name)); err != nil {
		b.Destroy()
		return nil, err
	}
	return b, nil
}

func indexBytes(indices []uint32) []byte {
	out := make([]byte, 2*len(indices))
	for i, idx := range indices {
		binary.NativeEndian.PutUint16(out[2*i:], uint16(idx))
	}
	return out
}

func (b *GpuBuffer) VertexCount() int {
	return b.vertexCount
}

func (b *GpuBuffer) IndexCount() int {
	return b.indexCount
}

// Stride is the byte distance between two vertex records.
func (b *GpuBuffer) Stride() int {
	return b.layout.StrideBytes()
}

func (b *GpuBuffer) Layout() metadata.VertexLayout {
	return b.layout
}

// BindAttribute points handle at the vertex buffer and enables the array.
// Bindings are not retained between draws; call it every frame.
func (b *GpuBuffer) BindAttribute(handle gl.Attrib, components, stride, byteOffset int) {
	g := b.rc.GL()
	g.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	g.VertexAttribPointer(handle, components, gl.FLOAT, false, stride, byteOffset)
	g.EnableVertexAttribArray(handle)
}

// BindLayout binds every attribute of the table layout using the handles
// resolved by program.
func (b *GpuBuffer) BindLayout(program *ShaderProgram) error {
	for _, a := range b.layout.Attributes {
		handle, err := program.Attribute(a.Name)
		if err != nil {
			return err
		}
		b.BindAttribute(handle, a.Components, b.Stride(), a.Offset*metadata.BytesPerFloat)
	}
	return nil
}

func (b *GpuBuffer) DisableAttribute(handle gl.Attrib) {
	b.rc.GL().DisableVertexAttribArray(handle)
}

// Draw issues one triangle-list draw over the whole table.
func (b *GpuBuffer) Draw() {
	g := b.rc.GL()
	if b.indexCount > 0 {
		g.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ibo)
		g.DrawElements(gl.TRIANGLES, b.indexCount, gl.UNSIGNED_SHORT, 0)
		return
	}
	g.DrawArrays(gl.TRIANGLES, 0, b.vertexCount)
}

// DrawCount is the number of vertices Draw submits.
func (b *GpuBuffer) DrawCount() int {
	if b.indexCount > 0 {
		return b.indexCount
	}
	return b.vertexCount
}

func (b *GpuBuffer) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	g := b.rc.GL()
	if b.vbo.Value != 0 {
		g.DeleteBuffer(b.vbo)
	}
	if b.ibo.Value != 0 {
		g.DeleteBuffer(b.ibo)
	}
}
