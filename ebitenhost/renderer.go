// Package ebitenhost draws aspen render batches with Ebitengine.
package ebitenhost

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/aspen"
)

// ErrUnknownPage is returned by Draw when a batch references an atlas page
// that was never registered.
var ErrUnknownPage = errors.New("ebitenhost: unregistered atlas page")

// Renderer owns the atlas page images and converts batches into
// DrawTriangles32 calls, one per run of quads sharing a page.
type Renderer struct {
	pages    []*ebiten.Image
	nextPage int

	verts []ebiten.Vertex
	op    ebiten.DrawTrianglesOptions

	// DrawCalls is the number of DrawTriangles32 calls made by the last Draw.
	DrawCalls int
}

// NewRenderer creates a renderer with no pages.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RegisterPage stores an atlas page image at the given index.
func (r *Renderer) RegisterPage(index int, img *ebiten.Image) {
	for len(r.pages) <= index {
		r.pages = append(r.pages, nil)
	}
	r.pages[index] = img
	if index >= r.nextPage {
		r.nextPage = index + 1
	}
}

// Page returns the image registered at index, or nil.
func (r *Renderer) Page(index int) *ebiten.Image {
	if index < 0 || index >= len(r.pages) {
		return nil
	}
	return r.pages[index]
}

// LoadAtlas parses TexturePacker JSON, registers the atlas pages starting at
// the next free page index and returns the atlas with its frames remapped to
// those indices.
func (r *Renderer) LoadAtlas(jsonData []byte, pages []*ebiten.Image) (*aspen.Atlas, error) {
	atlas, err := aspen.LoadAtlas(jsonData)
	if err != nil {
		return nil, err
	}
	start := r.nextPage
	for i, page := range pages {
		r.RegisterPage(start+i, page)
	}
	r.nextPage = start + len(pages)
	atlas.Offset(uint16(start))
	return atlas, nil
}

// Draw renders b into target through the camera's view matrix. A nil camera
// draws in world coordinates.
func (r *Renderer) Draw(target *ebiten.Image, b aspen.Batch, cam *aspen.Camera) error {
	r.DrawCalls = 0
	if b.Quads == 0 {
		return nil
	}
	view := [6]float64{1, 0, 0, 1, 0, 0}
	if cam != nil {
		view = cam.ViewMatrix()
	}
	indices := b.Indices.Slice()

	start := 0
	for start < b.Quads {
		page := b.Pages.At(start)
		end := start + 1
		for end < b.Quads && b.Pages.At(end) == page {
			end++
		}
		img := r.Page(int(page))
		if img == nil {
			return fmt.Errorf("%w: page %d", ErrUnknownPage, page)
		}
		r.verts = appendVertices(r.verts[:0], b, start, end, view)
		// The index template for the first n quads addresses vertices
		// 0..4n-1, so every run reuses the front of the shared buffer.
		target.DrawTriangles32(r.verts, indices[:6*(end-start)], img, &r.op)
		r.DrawCalls++
		start = end
	}
	return nil
}

// appendVertices converts quads [from, to) of b into screen-space vertices.
func appendVertices(dst []ebiten.Vertex, b aspen.Batch, from, to int, view [6]float64) []ebiten.Vertex {
	for i := 4 * from; i < 4*to; i++ {
		p := b.Positions.At(i)
		uv := b.UVs.At(i)
		x, y := float64(p.X), float64(p.Y)
		dst = append(dst, ebiten.Vertex{
			DstX:   float32(view[0]*x + view[2]*y + view[4]),
			DstY:   float32(view[1]*x + view[3]*y + view[5]),
			SrcX:   uv.U,
			SrcY:   uv.V,
			ColorR: 1,
			ColorG: 1,
			ColorB: 1,
			ColorA: 1,
		})
	}
	return dst
}
