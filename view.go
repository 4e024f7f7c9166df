package aspen

// Byte strides of the buffers handed to a host renderer. Vertex and UV are
// tightly packed float32 structs and indices are uint32.
const (
	VertexStride = 12
	UVStride     = 8
	IndexStride  = 4
)

// Vertex is one corner of a quad in world space.
type Vertex struct {
	X, Y, Depth float32
}

// UV is a texture coordinate in atlas page pixels.
type UV struct {
	U, V float32
}

// View is a read-only window over a buffer owned by a Scene. It is valid
// until the next Scene.Update.
type View[T any] struct {
	data []T
}

// Len returns the number of elements in the view.
func (v View[T]) Len() int { return len(v.data) }

// At returns element i.
func (v View[T]) At(i int) T { return v.data[i] }

// Slice returns the underlying elements without copying. The returned slice
// MUST NOT be mutated.
func (v View[T]) Slice() []T { return v.data }

// Batch is the output of one visibility query. Quads sprites were found;
// Positions and UVs hold 4 entries per quad in TL, BL, BR, TR order, Pages
// one atlas page per quad and Indices 6 entries per quad.
type Batch struct {
	Positions View[Vertex]
	UVs       View[UV]
	Pages     View[uint16]
	Indices   View[uint32]
	Quads     int
}
