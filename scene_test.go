package aspen

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAtlas() *Atlas {
	a := NewAtlas()
	a.Add("hero", Frame{X: 0, Y: 0, Width: 16, Height: 16})
	a.Add("enemy", Frame{X: 16, Y: 0, Width: 16, Height: 16})
	a.Add("wide", Frame{Page: 1, X: 0, Y: 32, Width: 48, Height: 8})
	return a
}

// newTestScene returns a 256x256 world with a 4x4 grid of 64-unit cells.
func newTestScene(t *testing.T) *Scene {
	t.Helper()
	s, err := NewScene(256, 2, testAtlas())
	require.NoError(t, err)
	return s
}

func mustAdd(t *testing.T, s *Scene, pos Vec2, texture string) SpriteID {
	t.Helper()
	id, err := s.AddSprite(pos, texture)
	require.NoError(t, err)
	return id
}

func mustUpdate(t *testing.T, s *Scene, cam *Camera, dt float64) Batch {
	t.Helper()
	b, err := s.Update(cam, dt)
	require.NoError(t, err)
	return b
}

type recordingStore struct {
	events []SceneEvent
}

func (r *recordingStore) EmitEvent(ev SceneEvent) { r.events = append(r.events, ev) }

func (r *recordingStore) types() []EventType {
	out := make([]EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func assertQuadNear(t *testing.T, got, want Quad) {
	t.Helper()
	for i, c := range got.Corners() {
		w := want.Corners()[i]
		assert.InDelta(t, w.X, c.X, 1e-9, "corner %d x", i)
		assert.InDelta(t, w.Y, c.Y, 1e-9, "corner %d y", i)
	}
}

// --- Construction ---

func TestNewSceneValidation(t *testing.T) {
	_, err := NewScene(256, 2, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewScene(0, 2, testAtlas())
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewScene(256, MaxDepth+1, testAtlas())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewSceneGrid(t *testing.T) {
	s := newTestScene(t)
	assert.Equal(t, 256.0, s.WorldSize())
	assert.Equal(t, 4, s.CellsPerAxis())
	assert.Zero(t, s.Len())
}

func TestNewSceneFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.World.Size = 512
	cfg.World.Depth = 3
	cfg.Render.CullPadding = 12
	cfg.Render.AutoPad = true
	cfg.Render.ExactCull = true
	s, err := NewSceneFromConfig(cfg, testAtlas())
	require.NoError(t, err)
	assert.Equal(t, 512.0, s.WorldSize())
	assert.Equal(t, 8, s.CellsPerAxis())
	assert.Equal(t, 12.0, s.cullPadding)
	assert.True(t, s.autoPad)
	assert.True(t, s.exactCull)

	cfg.World.Depth = -1
	_, err = NewSceneFromConfig(cfg, testAtlas())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// --- Add and remove ---

func TestAddSpriteRegistersBothCorners(t *testing.T) {
	s := newTestScene(t)
	id := mustAdd(t, s, Vec2{50, 50}, "hero")

	tl, br, err := s.Keys(id)
	require.NoError(t, err)
	assert.Equal(t, Region{0, 0}, tl.Region)
	assert.Equal(t, Region{1, 1}, br.Region)
	assert.Equal(t, 1, s.Occupancy(Region{0, 0}))
	assert.Equal(t, 1, s.Occupancy(Region{1, 1}))
	assert.Equal(t, 1, s.Len())

	b, err := s.Bounds(id)
	require.NoError(t, err)
	assert.Equal(t, Rect{X: 50, Y: 50, Width: 16, Height: 16}, b)
}

func TestAddSpriteErrors(t *testing.T) {
	s := newTestScene(t)

	_, err := s.AddSprite(Vec2{10, 10}, "missing")
	assert.ErrorIs(t, err, ErrUnknownTexture)

	_, err = s.AddSprite(Vec2{-1, 10}, "hero")
	assert.ErrorIs(t, err, ErrOutOfBounds)

	// Top-left inside, bottom-right past the world edge.
	_, err = s.AddSprite(Vec2{250, 10}, "hero")
	assert.ErrorIs(t, err, ErrOutOfBounds)

	assert.Zero(t, s.Len())
	assert.Zero(t, s.points.Live())
}

func TestRemoveSprite(t *testing.T) {
	s := newTestScene(t)
	id := mustAdd(t, s, Vec2{10, 10}, "hero")

	require.NoError(t, s.RemoveSprite(id))
	assert.Zero(t, s.Len())
	assert.Zero(t, s.points.Live())
	assert.False(t, s.Valid(id))

	assert.ErrorIs(t, s.RemoveSprite(id), ErrStaleSprite, "double remove")
}

func TestStaleIDAfterReuse(t *testing.T) {
	s := newTestScene(t)
	old := mustAdd(t, s, Vec2{10, 10}, "hero")
	require.NoError(t, s.RemoveSprite(old))

	fresh := mustAdd(t, s, Vec2{20, 20}, "hero")
	assert.Equal(t, old.index, fresh.index, "index is reused")
	assert.NotEqual(t, old, fresh)

	assert.ErrorIs(t, s.SetPosition(old, 30, 30), ErrStaleSprite)
	_, err := s.Position(old)
	assert.ErrorIs(t, err, ErrStaleSprite)

	pos, err := s.Position(fresh)
	require.NoError(t, err)
	assert.Equal(t, Vec2{20, 20}, pos)
}

func TestZeroAndForeignIDs(t *testing.T) {
	s := newTestScene(t)
	other := newTestScene(t)
	id := mustAdd(t, s, Vec2{10, 10}, "hero")

	assert.True(t, SpriteID{}.IsZero())
	assert.ErrorIs(t, s.SetPosition(SpriteID{}, 1, 1), ErrStaleSprite)
	assert.ErrorIs(t, other.SetPosition(id, 1, 1), ErrStaleSprite)
	assert.ErrorIs(t, other.RemoveSprite(id), ErrStaleSprite)
	assert.True(t, s.Valid(id))

	var nilScene *Scene
	assert.False(t, nilScene.Valid(id))
}

func TestDisposedScene(t *testing.T) {
	s := newTestScene(t)
	store := &recordingStore{}
	s.SetEntityStore(store)
	a := mustAdd(t, s, Vec2{10, 10}, "hero")
	mustAdd(t, s, Vec2{100, 100}, "enemy")

	s.Dispose()
	assert.True(t, s.IsDisposed())
	assert.Equal(t, []EventType{EventSpriteAdded, EventSpriteAdded, EventSpriteRemoved, EventSpriteRemoved}, store.types())
	assert.Zero(t, s.points.Live())

	assert.ErrorIs(t, s.SetPosition(a, 1, 1), ErrSceneDisposed)
	assert.ErrorIs(t, s.RemoveSprite(a), ErrSceneDisposed)
	_, err := s.AddSprite(Vec2{1, 1}, "hero")
	assert.ErrorIs(t, err, ErrSceneDisposed)
	_, err = s.Update(nil, 0)
	assert.ErrorIs(t, err, ErrSceneDisposed)

	s.Dispose() // second call is a no-op
}

func TestCreateDisposeCyclesStayBounded(t *testing.T) {
	s := newTestScene(t)
	var slots int
	for cycle := 0; cycle < 50; cycle++ {
		ids := make([]SpriteID, 0, 64)
		for i := 0; i < 64; i++ {
			pos := Vec2{float64(i%8) * 30, float64(i/8) * 30}
			ids = append(ids, mustAdd(t, s, pos, "hero"))
		}
		for _, id := range ids {
			require.NoError(t, s.RemoveSprite(id))
		}
		require.Zero(t, s.points.Live())
		require.Zero(t, s.Len())
		if cycle == 0 {
			slots = s.points.SlotCount()
		}
	}
	// Identical cycles reuse the same slots.
	assert.Equal(t, slots, s.points.SlotCount())
	assert.Len(t, s.sprites, 64)
}

// --- Handle ---

func TestSpriteHandle(t *testing.T) {
	s := newTestScene(t)
	h := s.Handle(mustAdd(t, s, Vec2{10, 10}, "hero"))

	require.True(t, h.Valid())
	require.NoError(t, h.SetPosition(40, 40))
	pos, err := h.Position()
	require.NoError(t, err)
	assert.Equal(t, Vec2{40, 40}, pos)

	require.NoError(t, h.Dispose())
	assert.False(t, h.Valid())
	assert.ErrorIs(t, h.Dispose(), ErrStaleSprite)
	assert.ErrorIs(t, h.SetScale(2, 2), ErrStaleSprite)
	_, err = h.Quad()
	assert.ErrorIs(t, err, ErrStaleSprite)

	assert.False(t, Sprite{}.Valid())
}

// --- Geometry ---

func TestSetPositionMovesKeys(t *testing.T) {
	s := newTestScene(t)
	id := mustAdd(t, s, Vec2{10, 10}, "hero")

	require.NoError(t, s.SetPosition(id, 200, 200))
	tl, br, err := s.Keys(id)
	require.NoError(t, err)
	assert.Equal(t, Region{3, 3}, tl.Region)
	assert.Equal(t, Region{3, 3}, br.Region)
	assert.Zero(t, s.Occupancy(Region{0, 0}))

	require.NoError(t, s.OffsetPosition(id, -100, 0))
	pos, _ := s.Position(id)
	assert.Equal(t, Vec2{100, 200}, pos)
}

func TestOutOfBoundsMutationLeavesState(t *testing.T) {
	s := newTestScene(t)
	id := mustAdd(t, s, Vec2{10, 10}, "hero")
	tl0, br0, _ := s.Keys(id)
	q0, _ := s.Quad(id)

	assert.ErrorIs(t, s.SetPosition(id, 250, 250), ErrOutOfBounds)
	assert.ErrorIs(t, s.SetScale(id, 20, 1), ErrOutOfBounds)
	assert.ErrorIs(t, s.SetRotation(id, math.Pi), ErrOutOfBounds)
	assert.ErrorIs(t, s.OffsetPosition(id, math.NaN(), 0), ErrOutOfBounds)

	tl, br, _ := s.Keys(id)
	q, _ := s.Quad(id)
	assert.Equal(t, tl0, tl)
	assert.Equal(t, br0, br)
	assert.Equal(t, q0, q)
	assert.Equal(t, 2, s.points.Live())
}

func TestSetScaleAboutOrigin(t *testing.T) {
	s := newTestScene(t)
	id := mustAdd(t, s, Vec2{40, 40}, "hero")

	require.NoError(t, s.SetScale(id, 2, 3))
	b, _ := s.Bounds(id)
	assert.Equal(t, Rect{X: 40, Y: 40, Width: 32, Height: 48}, b)

	require.NoError(t, s.CenterOrigin(id))
	o, _ := s.Origin(id)
	assert.InDelta(t, 16, o.X, 1e-9)
	assert.InDelta(t, 24, o.Y, 1e-9)

	// Shrinking about the centre keeps the centre fixed.
	require.NoError(t, s.SetScale(id, 1, 1))
	q, _ := s.Quad(id)
	c := q.Center()
	assert.InDelta(t, 56, c.X, 1e-9)
	assert.InDelta(t, 64, c.Y, 1e-9)
}

func TestSetSize(t *testing.T) {
	s := newTestScene(t)
	id := mustAdd(t, s, Vec2{10, 10}, "hero")

	require.NoError(t, s.SetSize(id, 32, 8))
	q, _ := s.Quad(id)
	assert.InDelta(t, 32, q.Width(), 1e-9)
	assert.InDelta(t, 8, q.Height(), 1e-9)
	sc, _ := s.Scale(id)
	assert.Equal(t, Vec2{2, 0.5}, sc)
}

func TestRotationPiMatchesNegativeScale(t *testing.T) {
	s := newTestScene(t)
	a := mustAdd(t, s, Vec2{50, 50}, "hero")
	b := mustAdd(t, s, Vec2{50, 50}, "hero")
	require.NoError(t, s.CenterOrigin(a))
	require.NoError(t, s.CenterOrigin(b))

	require.NoError(t, s.SetRotation(a, math.Pi))
	require.NoError(t, s.SetScale(b, -1, -1))

	qa, _ := s.Quad(a)
	qb, _ := s.Quad(b)
	assertQuadNear(t, qa, qb)
	assert.InDelta(t, 66, qa.TL.X, 1e-9)
	assert.InDelta(t, 66, qa.TL.Y, 1e-9)

	ba, _ := s.Bounds(a)
	assert.InDelta(t, 50, ba.X, 1e-9)
	assert.InDelta(t, 16, ba.Width, 1e-9)
}

func TestRotateAccumulates(t *testing.T) {
	s := newTestScene(t)
	id := mustAdd(t, s, Vec2{100, 100}, "hero")
	require.NoError(t, s.CenterOrigin(id))
	require.NoError(t, s.Rotate(id, math.Pi/4))
	require.NoError(t, s.Rotate(id, math.Pi/4))
	rot, _ := s.Rotation(id)
	assert.InDelta(t, math.Pi/2, rot, 1e-12)
}

func TestSetOriginKeepsQuad(t *testing.T) {
	s := newTestScene(t)
	id := mustAdd(t, s, Vec2{60, 60}, "hero")
	require.NoError(t, s.SetScale(id, 2, 1.5))
	require.NoError(t, s.SetRotation(id, 0.5))
	q0, _ := s.Quad(id)

	require.NoError(t, s.SetOrigin(id, 5, 7))
	q1, _ := s.Quad(id)
	assertQuadNear(t, q1, q0)

	o, _ := s.Origin(id)
	assert.InDelta(t, 5, o.X, 1e-9)
	assert.InDelta(t, 7, o.Y, 1e-9)
	pos, _ := s.Position(id)
	assert.InDelta(t, q1.TL.X+5, pos.X, 1e-9)
	assert.InDelta(t, q1.TL.Y+7, pos.Y, 1e-9)

	require.NoError(t, s.ResetOrigin(id))
	q2, _ := s.Quad(id)
	assertQuadNear(t, q2, q0)
	o, _ = s.Origin(id)
	assert.InDelta(t, 0, o.X, 1e-9)
	assert.InDelta(t, 0, o.Y, 1e-9)
}

func TestSetOriginSingular(t *testing.T) {
	s := newTestScene(t)
	id := mustAdd(t, s, Vec2{60, 60}, "hero")
	require.NoError(t, s.SetScale(id, 0, 1))
	assert.ErrorIs(t, s.SetOrigin(id, 1, 1), ErrDegenerate)
}

func TestSetTransform(t *testing.T) {
	s := newTestScene(t)
	id := mustAdd(t, s, Vec2{10, 10}, "hero")
	require.NoError(t, s.SetTransform(id, Vec2{100, 120}, Vec2{2, 2}, 0))
	b, _ := s.Bounds(id)
	assert.Equal(t, Rect{X: 100, Y: 120, Width: 32, Height: 32}, b)
}

func TestSetLayer(t *testing.T) {
	s := newTestScene(t)
	id := mustAdd(t, s, Vec2{10, 10}, "hero")

	q, _ := s.Quad(id)
	assert.Equal(t, float64(DefaultDepth), q.Depth)

	require.NoError(t, s.SetLayer(id, 5, true))
	q, _ = s.Quad(id)
	assert.Equal(t, 5.0, q.Depth)

	require.NoError(t, s.SetLayer(id, 3, false))
	q, _ = s.Quad(id)
	assert.Equal(t, 131.0, q.Depth)

	assert.ErrorIs(t, s.SetLayer(id, 200, true), ErrLayerRange)
	q, _ = s.Quad(id)
	assert.Equal(t, 131.0, q.Depth)
}

func TestLayerDepth(t *testing.T) {
	tests := []struct {
		layer uint8
		ui    bool
		want  float64
		err   error
	}{
		{0, true, 0, nil},
		{127, true, 127, nil},
		{128, true, 0, ErrLayerRange},
		{0, false, 128, nil},
		{255, false, 383, nil},
	}
	for _, tt := range tests {
		got, err := LayerDepth(tt.layer, tt.ui)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

// --- Visibility ---

func TestUpdateLoadsOnlyVisibleCells(t *testing.T) {
	s := newTestScene(t)
	near := mustAdd(t, s, Vec2{10, 10}, "hero")
	far := mustAdd(t, s, Vec2{200, 200}, "enemy")

	tl, _, _ := s.Keys(near)
	assert.Equal(t, Region{0, 0}, tl.Region)
	tl, _, _ = s.Keys(far)
	assert.Equal(t, Region{3, 3}, tl.Region)

	b := mustUpdate(t, s, NewCameraRect(Rect{X: 0, Y: 0, Width: 64, Height: 64}), 0)
	require.Equal(t, 1, b.Quads)
	assert.Equal(t, Vertex{X: 10, Y: 10, Depth: DefaultDepth}, b.Positions.At(0))
	assert.Equal(t, Vertex{X: 26, Y: 26, Depth: DefaultDepth}, b.Positions.At(2))
	assert.Equal(t, UV{0, 0}, b.UVs.At(0))
	assert.Equal(t, []uint32{0, 1, 3, 1, 2, 3}, b.Indices.Slice())

	b = mustUpdate(t, s, nil, 0)
	assert.Equal(t, 2, b.Quads)
	assert.Equal(t, 12, b.Indices.Len())
	assert.Equal(t, 8, b.Positions.Len())
}

func TestUpdateLoadsEachSpriteOnce(t *testing.T) {
	s := newTestScene(t)
	// Corners in cells (0,0) and (1,1).
	mustAdd(t, s, Vec2{56, 56}, "hero")

	b := mustUpdate(t, s, NewCameraRect(Rect{X: 0, Y: 0, Width: 128, Height: 128}), 0)
	assert.Equal(t, 1, b.Quads)

	// Only the bottom-right marker's cell is visible.
	b = mustUpdate(t, s, NewCameraRect(Rect{X: 70, Y: 70, Width: 40, Height: 40}), 0)
	assert.Equal(t, 1, b.Quads)

	// Neither corner's cell is visible.
	b = mustUpdate(t, s, NewCameraRect(Rect{X: 130, Y: 130, Width: 40, Height: 40}), 0)
	assert.Zero(t, b.Quads)
}

func TestUpdateMaxEdgeExclusive(t *testing.T) {
	s := newTestScene(t)
	mustAdd(t, s, Vec2{64, 10}, "hero")

	b := mustUpdate(t, s, NewCameraRect(Rect{X: 0, Y: 0, Width: 64, Height: 64}), 0)
	assert.Zero(t, b.Quads, "a view ending on a cell boundary does not include the next cell")
}

func TestUpdateCameraOutsideWorld(t *testing.T) {
	s := newTestScene(t)
	mustAdd(t, s, Vec2{10, 10}, "hero")

	_, err := s.Update(NewCameraRect(Rect{X: 300, Y: 300, Width: 50, Height: 50}), 0)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestUpdateOffWorldStillAdvancesCamera(t *testing.T) {
	s := newTestScene(t)
	s.SetAnimationTable(blinkTable(t, true))
	id := mustAdd(t, s, Vec2{10, 10}, "hero")
	require.NoError(t, s.Play(id, "blink"))

	cam := NewCameraRect(Rect{X: 300, Y: 300, Width: 50, Height: 50})
	cam.ScrollTo(1000, 1000, 1.0, nil)
	_, err := s.Update(cam, 0.5)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.InDelta(t, 662.5, cam.X, 1e-3)
	f, _ := s.Frame(id)
	assert.Equal(t, uint16(0), f.X, "animations stay put on a failed update")

	// The camera can scroll back over the world.
	cam.ScrollTo(32, 32, 1.0, nil)
	b := mustUpdate(t, s, cam, 1.0)
	assert.InDelta(t, 32, cam.X, 1e-3)
	assert.Equal(t, 1, b.Quads)
}

func TestUpdateWholeWorldAtMaxDepth(t *testing.T) {
	size := float64(int(1) << MaxDepth)
	s, err := NewScene(size, MaxDepth, testAtlas())
	require.NoError(t, err)
	mustAdd(t, s, Vec2{10, 10}, "hero")
	mustAdd(t, s, Vec2{size - 100, 5}, "enemy")

	b := mustUpdate(t, s, nil, 0)
	assert.Equal(t, 2, b.Quads)
	assert.LessOrEqual(t, cap(s.points.span), 2*len(s.points.order),
		"scratch is sized by arenas, not cells")

	allocs := testing.AllocsPerRun(5, func() {
		_, _ = s.Update(nil, 0)
	})
	assert.Less(t, allocs, 64.0)
}

func TestExactCull(t *testing.T) {
	s := newTestScene(t)
	// Corners in cell (0,0), body outside the view.
	mustAdd(t, s, Vec2{40, 40}, "hero")
	cam := NewCameraRect(Rect{X: 0, Y: 0, Width: 30, Height: 30})

	b := mustUpdate(t, s, cam, 0)
	assert.Equal(t, 1, b.Quads, "cell-coarse by default")

	s.SetExactCull(true)
	b = mustUpdate(t, s, cam, 0)
	assert.Zero(t, b.Quads)

	b = mustUpdate(t, s, NewCameraRect(Rect{X: 0, Y: 0, Width: 45, Height: 45}), 0)
	assert.Equal(t, 1, b.Quads)
}

func TestUpdateClipsPartialView(t *testing.T) {
	s := newTestScene(t)
	mustAdd(t, s, Vec2{10, 10}, "hero")

	b := mustUpdate(t, s, NewCameraRect(Rect{X: -100, Y: -100, Width: 150, Height: 150}), 0)
	assert.Equal(t, 1, b.Quads)
}

func TestCullPadding(t *testing.T) {
	s := newTestScene(t)
	mustAdd(t, s, Vec2{100, 100}, "hero")
	cam := NewCameraRect(Rect{X: 0, Y: 0, Width: 60, Height: 60})

	b := mustUpdate(t, s, cam, 0)
	assert.Zero(t, b.Quads)

	s.SetCullPadding(10)
	b = mustUpdate(t, s, cam, 0)
	assert.Equal(t, 1, b.Quads)

	s.SetCullPadding(-5)
	b = mustUpdate(t, s, cam, 0)
	assert.Zero(t, b.Quads)
}

func TestAutoPad(t *testing.T) {
	s := newTestScene(t)
	mustAdd(t, s, Vec2{100, 100}, "hero")
	cam := NewCameraRect(Rect{X: 0, Y: 0, Width: 60, Height: 60})

	s.SetAutoPad(true)
	assert.Equal(t, 16.0, s.maxExtent)
	b := mustUpdate(t, s, cam, 0)
	assert.Equal(t, 1, b.Quads)
}

func TestUpdateUsesPagesAndDepth(t *testing.T) {
	s := newTestScene(t)
	id := mustAdd(t, s, Vec2{10, 10}, "wide")
	require.NoError(t, s.SetLayer(id, 2, true))

	b := mustUpdate(t, s, nil, 0)
	require.Equal(t, 1, b.Quads)
	assert.Equal(t, uint16(1), b.Pages.At(0))
	assert.Equal(t, float32(2), b.Positions.At(0).Depth)
	assert.Equal(t, Vertex{X: 58, Y: 18, Depth: 2}, b.Positions.At(2))
}

func TestUpdateGrowsIndices(t *testing.T) {
	s := newTestScene(t)
	for i := 0; i < 3*defaultBatchCap; i++ {
		mustAdd(t, s, Vec2{float64(i % 200), float64(i % 17)}, "hero")
	}
	b := mustUpdate(t, s, nil, 0)
	require.Equal(t, 3*defaultBatchCap, b.Quads)
	idx := b.Indices.Slice()
	require.Len(t, idx, 6*b.Quads)
	last := b.Quads - 1
	assert.Equal(t, uint32(4*last+3), idx[6*last+5])
}

// --- Frames and playback ---

func TestSetFrame(t *testing.T) {
	s := newTestScene(t)
	id := mustAdd(t, s, Vec2{10, 10}, "hero")

	require.NoError(t, s.SetFrame(id, "enemy"))
	f, err := s.Frame(id)
	require.NoError(t, err)
	assert.Equal(t, uint16(16), f.X)

	assert.ErrorIs(t, s.SetFrame(id, "nope"), ErrUnknownTexture)
	f, _ = s.Frame(id)
	assert.Equal(t, uint16(16), f.X)

	// The size stays at the original texture's default.
	b, _ := s.Bounds(id)
	assert.Equal(t, 16.0, b.Width)
}

func blinkTable(t *testing.T, loop bool) *SequenceTable {
	t.Helper()
	table := NewSequenceTable()
	atlas := testAtlas()
	require.NoError(t, table.DefineFromAtlas(SequenceDef{
		Name:   "blink",
		Frames: []string{"hero", "enemy"},
		FPS:    4,
		Loop:   loop,
	}, atlas))
	return table
}

func TestPlayAdvancesFrames(t *testing.T) {
	s := newTestScene(t)
	s.SetAnimationTable(blinkTable(t, true))
	id := mustAdd(t, s, Vec2{10, 10}, "hero")
	require.NoError(t, s.Play(id, "blink"))

	f, _ := s.Frame(id)
	assert.Equal(t, uint16(0), f.X)

	b := mustUpdate(t, s, nil, 0.25)
	assert.Equal(t, UV{16, 0}, b.UVs.At(0))

	mustUpdate(t, s, nil, 0.25)
	f, _ = s.Frame(id)
	assert.Equal(t, uint16(0), f.X, "looped back to the first frame")

	require.NoError(t, s.Pause(id))
	mustUpdate(t, s, nil, 0.25)
	f, _ = s.Frame(id)
	assert.Equal(t, uint16(0), f.X, "paused")

	require.NoError(t, s.Resume(id))
	mustUpdate(t, s, nil, 0.25)
	f, _ = s.Frame(id)
	assert.Equal(t, uint16(16), f.X)

	require.NoError(t, s.Stop(id))
	f, _ = s.Frame(id)
	assert.Equal(t, uint16(0), f.X, "static frame after stop")
}

func TestPlayUnknownSequence(t *testing.T) {
	s := newTestScene(t)
	id := mustAdd(t, s, Vec2{10, 10}, "hero")
	assert.ErrorIs(t, s.Play(id, "nope"), ErrUnknownSequence)
}

func TestSetFrameStopsPlayback(t *testing.T) {
	s := newTestScene(t)
	table := blinkTable(t, true)
	s.SetAnimationTable(table)
	id := mustAdd(t, s, Vec2{10, 10}, "hero")
	require.NoError(t, s.Play(id, "blink"))
	require.Equal(t, 1, table.Playing())

	require.NoError(t, s.SetFrame(id, "hero"))
	assert.Zero(t, table.Playing())
}

func TestRemoveReleasesPlayback(t *testing.T) {
	s := newTestScene(t)
	table := blinkTable(t, true)
	s.SetAnimationTable(table)
	id := mustAdd(t, s, Vec2{10, 10}, "hero")
	require.NoError(t, s.Play(id, "blink"))
	require.NoError(t, s.Play(id, "blink"))
	assert.Equal(t, 1, table.Playing(), "replaying releases the previous playback")

	require.NoError(t, s.RemoveSprite(id))
	assert.Zero(t, table.Playing())
}

func TestSequenceFinishedEvent(t *testing.T) {
	s := newTestScene(t)
	store := &recordingStore{}
	s.SetEntityStore(store)
	s.SetAnimationTable(blinkTable(t, false))
	id := mustAdd(t, s, Vec2{10, 10}, "hero")
	require.NoError(t, s.Play(id, "blink"))

	mustUpdate(t, s, nil, 0.25)
	mustUpdate(t, s, nil, 0.25)
	mustUpdate(t, s, nil, 0.25)

	require.Equal(t, []EventType{EventSpriteAdded, EventSequenceFinished}, store.types())
	ev := store.events[1]
	assert.Equal(t, id, ev.Sprite)
	assert.Equal(t, "blink", ev.Sequence)

	f, _ := s.Frame(id)
	assert.Equal(t, uint16(16), f.X, "holds the last frame")
}

func TestEventsCarryTexture(t *testing.T) {
	s := newTestScene(t)
	store := &recordingStore{}
	s.SetEntityStore(store)
	id := mustAdd(t, s, Vec2{10, 10}, "enemy")
	require.NoError(t, s.RemoveSprite(id))

	require.Len(t, store.events, 2)
	assert.Equal(t, SceneEvent{Type: EventSpriteAdded, Sprite: id, Texture: "enemy"}, store.events[0])
	assert.Equal(t, SceneEvent{Type: EventSpriteRemoved, Sprite: id}, store.events[1])
	assert.Equal(t, "sprite_removed", EventSpriteRemoved.String())
}
