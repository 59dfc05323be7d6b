package metadata

import (
	"fmt"

	"github.com/spaghettifunk/anima-wear/engine/core"
)

/** @brief Size in bytes of one vertex component. */
const BytesPerFloat = 4

/**
 * @brief One named attribute inside an interleaved vertex record.
 */
type VertexAttribute struct {
	/** @brief The shader attribute name the data feeds. */
	Name string
	/** @brief The number of float components (2, 3 or 4). */
	Components int
	/** @brief Offset from the start of the record, in floats. */
	Offset int
}

/**
 * @brief The fixed record layout of a geometry table.
 */
type VertexLayout struct {
	/** @brief Floats per vertex record. */
	Stride int
	/** @brief The attributes in record order. The first one is the position. */
	Attributes []VertexAttribute
}

// StrideBytes is the distance between two records in a device buffer.
func (l VertexLayout) StrideBytes() int {
	return l.Stride * BytesPerFloat
}

// Position returns the attribute that carries the vertex position.
func (l VertexLayout) Position() VertexAttribute {
	return l.Attributes[0]
}

// AttributeNames lists the attribute names in record order.
func (l VertexLayout) AttributeNames() []string {
	names := make([]string, len(l.Attributes))
	for i, a := range l.Attributes {
		names[i] = a.Name
	}
	return names
}

/**
 * @brief Static interleaved vertex data with an optional draw order.
 * Tables are package-level values shared by every primitive; treat them as read-only.
 */
type GeometryTable struct {
	Name     string
	Layout   VertexLayout
	Vertices []float32
	Indices  []uint32
}

func (g *GeometryTable) VertexCount() int {
	if g.Layout.Stride == 0 {
		return 0
	}
	return len(g.Vertices) / g.Layout.Stride
}

func (g *GeometryTable) Indexed() bool {
	return len(g.Indices) > 0
}

// Validate checks the table against its own layout.
func (g *GeometryTable) Validate() error {
	if g.Layout.Stride <= 0 || len(g.Layout.Attributes) == 0 {
		return fmt.Errorf("geometry %q: empty layout: %w", g.Name, core.ErrMalformedGeometry)
	}
	if len(g.Vertices)%g.Layout.Stride != 0 {
		return fmt.Errorf("geometry %q: %d floats with stride %d: %w", g.Name, len(g.Vertices), g.Layout.Stride, core.ErrMalformedGeometry)
	}
	for _, a := range g.Layout.Attributes {
		if a.Offset+a.Components > g.Layout.Stride {
			return fmt.Errorf("geometry %q: attribute %s overruns the record: %w", g.Name, a.Name, core.ErrMalformedGeometry)
		}
	}
	count := uint32(g.VertexCount())
	for _, idx := range g.Indices {
		if idx >= count {
			return fmt.Errorf("geometry %q: index %d references one of %d vertices: %w", g.Name, idx, count, core.ErrMalformedGeometry)
		}
	}
	return nil
}

var (
	// TexturedLayout is position + texture coordinates, stride 5.
	TexturedLayout = VertexLayout{
		Stride: 5,
		Attributes: []VertexAttribute{
			{Name: "vPosition", Components: 3, Offset: 0},
			{Name: "aTexCoord", Components: 2, Offset: 3},
		},
	}

	// NormalLayout is position + normal, stride 6.
	NormalLayout = VertexLayout{
		Stride: 6,
		Attributes: []VertexAttribute{
			{Name: "aPosition", Components: 3, Offset: 0},
			{Name: "aNormal", Components: 3, Offset: 3},
		},
	}

	// PositionLayout is position only, stride 3.
	PositionLayout = VertexLayout{
		Stride: 3,
		Attributes: []VertexAttribute{
			{Name: "aPos", Components: 3, Offset: 0},
		},
	}
)

// CubeTextured is a unit cube, 6 faces x 2 triangles, with texture coordinates.
var CubeTextured = GeometryTable{
	Name:   "cube_textured",
	Layout: TexturedLayout,
	Vertices: []float32{
		-0.5, -0.5, -0.5, 0.0, 1.0,
		0.5, -0.5, -0.5, 1.0, 1.0,
		0.5, 0.5, -0.5, 1.0, 0.0,
		0.5, 0.5, -0.5, 1.0, 0.0,
		-0.5, 0.5, -0.5, 0.0, 0.0,
		-0.5, -0.5, -0.5, 0.0, 1.0,

		-0.5, -0.5, 0.5, 0.0, 1.0,
		0.5, -0.5, 0.5, 1.0, 1.0,
		0.5, 0.5, 0.5, 1.0, 0.0,
		0.5, 0.5, 0.5, 1.0, 0.0,
		-0.5, 0.5, 0.5, 0.0, 0.0,
		-0.5, -0.5, 0.5, 0.0, 1.0,

		-0.5, 0.5, 0.5, 1.0, 1.0,
		-0.5, 0.5, -0.5, 1.0, 0.0,
		-0.5, -0.5, -0.5, 0.0, 0.0,
		-0.5, -0.5, -0.5, 0.0, 0.0,
		-0.5, -0.5, 0.5, 0.0, 1.0,
		-0.5, 0.5, 0.5, 1.0, 1.0,

		0.5, 0.5, 0.5, 1.0, 1.0,
		0.5, 0.5, -0.5, 1.0, 0.0,
		0.5, -0.5, -0.5, 0.0, 0.0,
		0.5, -0.5, -0.5, 0.0, 0.0,
		0.5, -0.5, 0.5, 0.0, 1.0,
		0.5, 0.5, 0.5, 1.0, 1.0,

		-0.5, -0.5, -0.5, 0.0, 0.0,
		0.5, -0.5, -0.5, 1.0, 0.0,
		0.5, -0.5, 0.5, 1.0, 1.0,
		0.5, -0.5, 0.5, 1.0, 1.0,
		-0.5, -0.5, 0.5, 0.0, 1.0,
		-0.5, -0.5, -0.5, 0.0, 0.0,

		-0.5, 0.5, -0.5, 0.0, 0.0,
		0.5, 0.5, -0.5, 1.0, 0.0,
		0.5, 0.5, 0.5, 1.0, 1.0,
		0.5, 0.5, 0.5, 1.0, 1.0,
		-0.5, 0.5, 0.5, 0.0, 1.0,
		-0.5, 0.5, -0.5, 0.0, 0.0,
	},
}

// CubeNormals is the unit cube with per-face normals, used by the mirror cube.
var CubeNormals = GeometryTable{
	Name:   "cube_normals",
	Layout: NormalLayout,
	Vertices: []float32{
		-0.5, -0.5, -0.5, 0.0, 0.0, -1.0,
		0.5, -0.5, -0.5, 0.0, 0.0, -1.0,
		0.5, 0.5, -0.5, 0.0, 0.0, -1.0,
		0.5, 0.5, -0.5, 0.0, 0.0, -1.0,
		-0.5, 0.5, -0.5, 0.0, 0.0, -1.0,
		-0.5, -0.5, -0.5, 0.0, 0.0, -1.0,

		-0.5, -0.5, 0.5, 0.0, 0.0, 1.0,
		0.5, -0.5, 0.5, 0.0, 0.0, 1.0,
		0.5, 0.5, 0.5, 0.0, 0.0, 1.0,
		0.5, 0.5, 0.5, 0.0, 0.0, 1.0,
		-0.5, 0.5, 0.5, 0.0, 0.0, 1.0,
		-0.5, -0.5, 0.5, 0.0, 0.0, 1.0,

		-0.5, 0.5, 0.5, -1.0, 0.0, 0.0,
		-0.5, 0.5, -0.5, -1.0, 0.0, 0.0,
		-0.5, -0.5, -0.5, -1.0, 0.0, 0.0,
		-0.5, -0.5, -0.5, -1.0, 0.0, 0.0,
		-0.5, -0.5, 0.5, -1.0, 0.0, 0.0,
		-0.5, 0.5, 0.5, -1.0, 0.0, 0.0,

		0.5, 0.5, 0.5, 1.0, 0.0, 0.0,
		0.5, 0.5, -0.5, 1.0, 0.0, 0.0,
		0.5, -0.5, -0.5, 1.0, 0.0, 0.0,
		0.5, -0.5, -0.5, 1.0, 0.0, 0.0,
		0.5, -0.5, 0.5, 1.0, 0.0, 0.0,
		0.5, 0.5, 0.5, 1.0, 0.0, 0.0,

		-0.5, -0.5, -0.5, 0.0, -1.0, 0.0,
		0.5, -0.5, -0.5, 0.0, -1.0, 0.0,
		0.5, -0.5, 0.5, 0.0, -1.0, 0.0,
		0.5, -0.5, 0.5, 0.0, -1.0, 0.0,
		-0.5, -0.5, 0.5, 0.0, -1.0, 0.0,
		-0.5, -0.5, -0.5, 0.0, -1.0, 0.0,

		-0.5, 0.5, -0.5, 0.0, 1.0, 0.0,
		0.5, 0.5, -0.5, 0.0, 1.0, 0.0,
		0.5, 0.5, 0.5, 0.0, 1.0, 0.0,
		0.5, 0.5, 0.5, 0.0, 1.0, 0.0,
		-0.5, 0.5, 0.5, 0.0, 1.0, 0.0,
		-0.5, 0.5, -0.5, 0.0, 1.0, 0.0,
	},
}

// SkyBoxCube is a 2x2x2 cube seen from the inside.
var SkyBoxCube = GeometryTable{
	Name:   "skybox",
	Layout: PositionLayout,
	Vertices: []float32{
		-1.0, 1.0, -1.0,
		-1.0, -1.0, -1.0,
		1.0, -1.0, -1.0,
		1.0, -1.0, -1.0,
		1.0, 1.0, -1.0,
		-1.0, 1.0, -1.0,

		-1.0, -1.0, 1.0,
		-1.0, -1.0, -1.0,
		-1.0, 1.0, -1.0,
		-1.0, 1.0, -1.0,
		-1.0, 1.0, 1.0,
		-1.0, -1.0, 1.0,

		1.0, -1.0, -1.0,
		1.0, -1.0, 1.0,
		1.0, 1.0, 1.0,
		1.0, 1.0, 1.0,
		1.0, 1.0, -1.0,
		1.0, -1.0, -1.0,

		-1.0, -1.0, 1.0,
		-1.0, 1.0, 1.0,
		1.0, 1.0, 1.0,
		1.0, 1.0, 1.0,
		1.0, -1.0, 1.0,
		-1.0, -1.0, 1.0,

		-1.0, 1.0, -1.0,
		1.0, 1.0, -1.0,
		1.0, 1.0, 1.0,
		1.0, 1.0, 1.0,
		-1.0, 1.0, 1.0,
		-1.0, 1.0, -1.0,

		-1.0, -1.0, -1.0,
		-1.0, -1.0, 1.0,
		1.0, -1.0, -1.0,
		1.0, -1.0, -1.0,
		-1.0, -1.0, 1.0,
		1.0, -1.0, 1.0,
	},
}

// SquareQuad is a textured quad drawn through a 6-entry index list.
var SquareQuad = GeometryTable{
	Name:   "square",
	Layout: TexturedLayout,
	Vertices: []float32{
		-0.5, 0.5, 0.0, 0.0, 0.0,
		-0.5, -0.5, 0.0, 0.0, 1.0,
		0.5, -0.5, 0.0, 1.0, 1.0,
		0.5, 0.5, 0.0, 1.0, 0.0,
	},
	Indices: []uint32{0, 1, 2, 0, 2, 3},
}
