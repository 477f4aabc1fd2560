package ocean

// VertexStride is the number of floats per mesh vertex: position xyz then uv.
const VertexStride = 5

// Mesh is the flat surface grid. It is generated once and never touched
// again; the vertex shader applies the displacement at draw time.
type Mesh struct {
	vertices []float32
	indices  []uint32
	size     float32
	segments int
}

// NewMesh builds a segments×segments grid of the given world size lying in
// the XZ plane with its corner at origin (x, z). UV (0,0) is at the origin and
// v grows with z.
func NewMesh(segments int, size float32, origin [2]float32) *Mesh {
	row := segments + 1
	m := &Mesh{
		vertices: make([]float32, 0, row*row*VertexStride),
		indices:  make([]uint32, 0, segments*segments*6),
		size:     size,
		segments: segments,
	}
	for j := 0; j < row; j++ {
		v := float32(j) / float32(segments)
		for i := 0; i < row; i++ {
			u := float32(i) / float32(segments)
			m.vertices = append(m.vertices, origin[0]+u*size, 0, origin[1]+v*size, u, v)
		}
	}
	for j := 0; j < segments; j++ {
		for i := 0; i < segments; i++ {
			a := uint32(j*row + i)
			b := a + 1
			c := a + uint32(row)
			d := c + 1
			m.indices = append(m.indices, a, c, b, b, c, d)
		}
	}
	return m
}

// Vertices returns the interleaved vertex data. Callers must not modify it.
func (m *Mesh) Vertices() []float32 { return m.vertices }

// Indices returns triangle indices. Callers must not modify them.
func (m *Mesh) Indices() []uint32 { return m.indices }

func (m *Mesh) VertexCount() int { return len(m.vertices) / VertexStride }
func (m *Mesh) Size() float32    { return m.size }
func (m *Mesh) Segments() int    { return m.segments }
