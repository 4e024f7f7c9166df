package aspen

// quadIndexTemplate covers one quad with vertices in TL, BL, BR, TR order:
// triangles TL-BL-TR and BL-BR-TR.
var quadIndexTemplate = [6]uint32{0, 1, 3, 1, 2, 3}

const defaultBatchCap = 64

// renderBatch accumulates the visible quads of one frame. The index buffer
// only depends on the quad count, so it grows monotonically and is never
// cleared.
type renderBatch struct {
	positions []Vertex
	uvs       []UV
	pages     []uint16
	indices   []uint32
}

func newRenderBatch(quads int) *renderBatch {
	if quads <= 0 {
		quads = defaultBatchCap
	}
	b := &renderBatch{
		positions: make([]Vertex, 0, 4*quads),
		uvs:       make([]UV, 0, 4*quads),
		pages:     make([]uint16, 0, quads),
		indices:   append(make([]uint32, 0, 6), quadIndexTemplate[:]...),
	}
	b.ensureIndexLen(6 * quads)
	return b
}

// clear resets the per-frame buffers. Indices are kept.
func (b *renderBatch) clear() {
	b.positions = b.positions[:0]
	b.uvs = b.uvs[:0]
	b.pages = b.pages[:0]
}

func (b *renderBatch) quads() int {
	return len(b.pages)
}

// load appends one sprite quad and its frame.
func (b *renderBatch) load(q Quad, f Frame) {
	z := float32(q.Depth)
	for _, c := range q.Corners() {
		b.positions = append(b.positions, Vertex{X: float32(c.X), Y: float32(c.Y), Depth: z})
	}
	uv := frameUVs(f)
	b.uvs = append(b.uvs, uv[:]...)
	b.pages = append(b.pages, f.Page)
}

// frameUVs returns the page-pixel UVs of f in TL, BL, BR, TR order.
func frameUVs(f Frame) [4]UV {
	x := float32(f.X)
	y := float32(f.Y)
	w := float32(f.Width)
	h := float32(f.Height)
	if f.Rotated {
		// Stored 90 degrees clockwise: the stored rect is h wide and w tall.
		// Visual TL -> (x+h, y), BL -> (x, y), BR -> (x, y+w), TR -> (x+h, y+w).
		return [4]UV{
			{x + h, y},
			{x, y},
			{x, y + w},
			{x + h, y + w},
		}
	}
	return [4]UV{
		{x, y},
		{x, y + h},
		{x + w, y + h},
		{x + w, y},
	}
}

// ensureIndexLen grows the index buffer until it holds at least n indices.
// Each pass doubles the buffer; the copied half is offset by newLen/3, which
// is 4 vertices for every quad the old half covered.
func (b *renderBatch) ensureIndexLen(n int) {
	for len(b.indices) < n {
		old := len(b.indices)
		b.indices = append(b.indices, b.indices...)
		off := uint32(len(b.indices) / 3)
		for i := old; i < len(b.indices); i++ {
			b.indices[i] += off
		}
	}
}

// view returns read-only views over the current frame. The index view is
// trimmed to the quads loaded this frame.
func (b *renderBatch) view() Batch {
	q := b.quads()
	return Batch{
		Positions: View[Vertex]{data: b.positions},
		UVs:       View[UV]{data: b.uvs},
		Pages:     View[uint16]{data: b.pages},
		Indices:   View[uint32]{data: b.indices[:6*q]},
		Quads:     q,
	}
}
