package aspen

import (
	"fmt"
)

// SpriteID is an opaque, comparable reference to a sprite owned by a Scene.
// The zero value is never valid. An id is rejected once its sprite has been
// removed, when presented to a different Scene, and after the owning Scene is
// disposed.
type SpriteID struct {
	scene uint32
	index uint32
	gen   uint32
}

// IsZero reports whether id is the zero value.
func (id SpriteID) IsZero() bool { return id == SpriteID{} }

// Pack returns the index and generation as one integer, unique among the
// ids of a single scene.
func (id SpriteID) Pack() uint64 {
	return uint64(id.index)<<32 | uint64(id.gen)
}

func (id SpriteID) String() string {
	return fmt.Sprintf("sprite(%d:%d@%d)", id.scene, id.index, id.gen)
}

// Corner tags the two points each sprite registers in the partition map.
type Corner uint8

const (
	CornerTopLeft     Corner = iota // carries the sprite; sits at the bounding box min corner
	CornerBottomRight               // marker only; sits at the bounding box max corner
)

// cornerEntry is the value stored in the scene's partition map.
type cornerEntry struct {
	sprite uint32
	corner Corner
}

const noPlayback = -1

// spriteRecord is the full state of one sprite. The quad is derived from the
// other transform fields by applyGeometry and is never edited directly.
type spriteRecord struct {
	base     Vec2 // local size from the atlas default rect
	pos      Vec2 // world position of the pivot
	pivot    Vec2 // local, unscaled pivot
	scale    Vec2
	rotation float64
	depth    float64
	quad     Quad

	texture  string
	frame    Frame
	playback int
	sequence string

	keyTL, keyBR Key
}

// transform returns the local-to-world matrix of r.
func (r *spriteRecord) transform() [6]float64 {
	return localTransform(r.pos, r.pivot, r.scale, r.rotation)
}

// applyGeometry recomputes the quad from the transform fields.
func (r *spriteRecord) applyGeometry() {
	r.quad = quadFromTransform(r.transform(), r.base.X, r.base.Y, r.depth)
}

// origin is the pivot as a world-space offset from the quad's TL corner.
func (r *spriteRecord) origin() Vec2 {
	return r.pos.Sub(r.quad.TL)
}

type spriteSlot struct {
	rec  spriteRecord
	gen  uint32
	used bool
}

// lookup resolves id to its record.
func (s *Scene) lookup(id SpriteID) (*spriteRecord, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: %v has no scene", ErrStaleSprite, id)
	}
	if s.disposed {
		return nil, ErrSceneDisposed
	}
	if id.scene != s.id || int(id.index) >= len(s.sprites) {
		return nil, fmt.Errorf("%w: %v", ErrStaleSprite, id)
	}
	slot := &s.sprites[id.index]
	if !slot.used || slot.gen != id.gen {
		return nil, fmt.Errorf("%w: %v", ErrStaleSprite, id)
	}
	return &slot.rec, nil
}

// allocSprite takes a free sprite slot, reusing freed indices first.
func (s *Scene) allocSprite(rec spriteRecord) SpriteID {
	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.sprites = append(s.sprites, spriteSlot{})
		idx = uint32(len(s.sprites) - 1)
	}
	slot := &s.sprites[idx]
	slot.gen++
	slot.used = true
	slot.rec = rec
	s.live++
	return SpriteID{scene: s.id, index: idx, gen: slot.gen}
}

func (s *Scene) freeSprite(id SpriteID) {
	slot := &s.sprites[id.index]
	slot.used = false
	slot.rec = spriteRecord{}
	s.free = append(s.free, id.index)
	s.live--
}

// mutate runs the geometry protocol for one sprite: fn edits a copy of the
// record, the quad and bounding box are recomputed, both corner regions are
// validated, and only then are both keys moved and the copy committed. A
// failure at any step leaves the sprite and the partition map untouched.
func (s *Scene) mutate(id SpriteID, fn func(r *spriteRecord) error) error {
	cur, err := s.lookup(id)
	if err != nil {
		return err
	}
	next := *cur
	if err := fn(&next); err != nil {
		return err
	}
	next.applyGeometry()

	bounds := next.quad.Bounds()
	tl, br := bounds.TopLeft(), bounds.BottomRight()
	if _, err := s.points.PointToRegion(tl); err != nil {
		return fmt.Errorf("aspen: %v top-left corner: %w", id, err)
	}
	if _, err := s.points.PointToRegion(br); err != nil {
		return fmt.Errorf("aspen: %v bottom-right corner: %w", id, err)
	}

	keyTL, err := s.points.MovePoint(next.keyTL, tl)
	if err != nil {
		return fmt.Errorf("aspen: %v: %w", id, err)
	}
	keyBR, err := s.points.MovePoint(next.keyBR, br)
	if err != nil {
		// Both keys are checked live by the scene; undo the first move.
		if back, rerr := s.points.MovePoint(keyTL, cur.quad.Bounds().TopLeft()); rerr == nil {
			cur.keyTL = back
		}
		return fmt.Errorf("aspen: %v: %w", id, err)
	}
	next.keyTL, next.keyBR = keyTL, keyBR
	*cur = next
	s.trackExtent(bounds)
	return nil
}

func (s *Scene) trackExtent(b Rect) {
	if e := max(b.Width, b.Height); e > s.maxExtent {
		s.maxExtent = e
	}
}

// --- Geometry mutations ---

// SetPosition moves the sprite so its origin lands on (x, y).
func (s *Scene) SetPosition(id SpriteID, x, y float64) error {
	return s.mutate(id, func(r *spriteRecord) error {
		r.pos = Vec2{x, y}
		return nil
	})
}

// OffsetPosition moves the sprite by (dx, dy).
func (s *Scene) OffsetPosition(id SpriteID, dx, dy float64) error {
	return s.mutate(id, func(r *spriteRecord) error {
		r.pos = r.pos.Add(Vec2{dx, dy})
		return nil
	})
}

// SetScale sets the scale relative to the atlas default size. Scaling is
// applied about the origin, which stays fixed in the world.
func (s *Scene) SetScale(id SpriteID, sx, sy float64) error {
	return s.mutate(id, func(r *spriteRecord) error {
		r.scale = Vec2{sx, sy}
		return nil
	})
}

// SetSize scales the sprite to the given width and height.
func (s *Scene) SetSize(id SpriteID, width, height float64) error {
	return s.mutate(id, func(r *spriteRecord) error {
		if r.base.X == 0 || r.base.Y == 0 {
			return fmt.Errorf("%w: %v has zero base size", ErrDegenerate, id)
		}
		r.scale = Vec2{width / r.base.X, height / r.base.Y}
		return nil
	})
}

// SetRotation sets the absolute rotation in radians about the origin.
// Positive angles turn clockwise; a rotation of pi matches a (-1, -1) scale.
func (s *Scene) SetRotation(id SpriteID, rad float64) error {
	return s.mutate(id, func(r *spriteRecord) error {
		r.rotation = rad
		return nil
	})
}

// Rotate adds rad to the current rotation.
func (s *Scene) Rotate(id SpriteID, rad float64) error {
	return s.mutate(id, func(r *spriteRecord) error {
		r.rotation += rad
		return nil
	})
}

// SetOrigin sets the transform pivot as a world-space offset from the quad's
// TL corner. The sprite does not move.
func (s *Scene) SetOrigin(id SpriteID, ox, oy float64) error {
	return s.mutate(id, func(r *spriteRecord) error {
		m := r.transform()
		if det := m[0]*m[3] - m[2]*m[1]; det > -1e-12 && det < 1e-12 {
			return fmt.Errorf("%w: %v has a singular transform", ErrDegenerate, id)
		}
		inv := invertAffine(m)
		px, py := transformVector(inv, ox, oy)
		r.pivot = Vec2{px, py}
		r.pos = r.quad.TL.Add(Vec2{ox, oy})
		return nil
	})
}

// ResetOrigin moves the pivot back to the quad's TL corner.
func (s *Scene) ResetOrigin(id SpriteID) error {
	return s.SetOrigin(id, 0, 0)
}

// CenterOrigin moves the pivot to the centre of the sprite.
func (s *Scene) CenterOrigin(id SpriteID) error {
	r, err := s.lookup(id)
	if err != nil {
		return err
	}
	ox, oy := transformVector(r.transform(), r.base.X/2, r.base.Y/2)
	return s.SetOrigin(id, ox, oy)
}

// SetTransform sets position, scale and rotation in one step.
func (s *Scene) SetTransform(id SpriteID, pos, scale Vec2, rad float64) error {
	return s.mutate(id, func(r *spriteRecord) error {
		r.pos = pos
		r.scale = scale
		r.rotation = rad
		return nil
	})
}

// SetLayer sets the sprite's depth. UI layers occupy depths 0-127 and world
// layers start at 128.
func (s *Scene) SetLayer(id SpriteID, layer uint8, isUI bool) error {
	depth, err := LayerDepth(layer, isUI)
	if err != nil {
		return fmt.Errorf("aspen: %v layer %d: %w", id, layer, err)
	}
	return s.mutate(id, func(r *spriteRecord) error {
		r.depth = depth
		return nil
	})
}

// --- Frame and playback ---

// SetFrame shows a static atlas frame. The sprite's size is unchanged and any
// bound playback is stopped.
func (s *Scene) SetFrame(id SpriteID, texture string) error {
	r, err := s.lookup(id)
	if err != nil {
		return err
	}
	f, _, err := s.atlas.Lookup(texture)
	if err != nil {
		return err
	}
	s.unbind(r)
	r.frame = f
	r.texture = texture
	return nil
}

// Play binds the named sequence to the sprite, replacing any bound playback.
func (s *Scene) Play(id SpriteID, sequence string) error {
	r, err := s.lookup(id)
	if err != nil {
		return err
	}
	pb, err := s.anims.Add(sequence)
	if err != nil {
		return err
	}
	s.unbind(r)
	r.playback = pb
	r.sequence = sequence
	s.playing.Put(pb, id)
	return nil
}

// Pause freezes the bound playback on its current frame.
func (s *Scene) Pause(id SpriteID) error {
	r, err := s.lookup(id)
	if err != nil {
		return err
	}
	if r.playback != noPlayback {
		s.anims.Pause(r.playback)
	}
	return nil
}

// Resume continues a paused playback.
func (s *Scene) Resume(id SpriteID) error {
	r, err := s.lookup(id)
	if err != nil {
		return err
	}
	if r.playback != noPlayback {
		s.anims.Resume(r.playback)
	}
	return nil
}

// Stop releases the bound playback; the sprite shows its static frame again.
func (s *Scene) Stop(id SpriteID) error {
	r, err := s.lookup(id)
	if err != nil {
		return err
	}
	s.unbind(r)
	return nil
}

func (s *Scene) unbind(r *spriteRecord) {
	if r.playback == noPlayback {
		return
	}
	s.anims.Release(r.playback)
	s.playing.Del(r.playback)
	r.playback = noPlayback
	r.sequence = ""
}

// currentFrame returns the frame the sprite renders with this frame.
func (s *Scene) currentFrame(r *spriteRecord) Frame {
	if r.playback != noPlayback {
		if f, ok := s.anims.Frame(r.playback); ok {
			return f
		}
	}
	return r.frame
}

// --- Reads ---

// Valid reports whether id refers to a live sprite of this scene.
func (s *Scene) Valid(id SpriteID) bool {
	_, err := s.lookup(id)
	return err == nil
}

// Quad returns the sprite's transformed corners.
func (s *Scene) Quad(id SpriteID) (Quad, error) {
	r, err := s.lookup(id)
	if err != nil {
		return Quad{}, err
	}
	return r.quad, nil
}

// Bounds returns the sprite's axis-aligned bounding box.
func (s *Scene) Bounds(id SpriteID) (Rect, error) {
	q, err := s.Quad(id)
	if err != nil {
		return Rect{}, err
	}
	return q.Bounds(), nil
}

// Origin returns the pivot as a world-space offset from the quad's TL corner.
func (s *Scene) Origin(id SpriteID) (Vec2, error) {
	r, err := s.lookup(id)
	if err != nil {
		return Vec2{}, err
	}
	return r.origin(), nil
}

// Position returns the world position of the sprite's origin.
func (s *Scene) Position(id SpriteID) (Vec2, error) {
	r, err := s.lookup(id)
	if err != nil {
		return Vec2{}, err
	}
	return r.pos, nil
}

// TopLeft returns the world position of the quad's TL corner.
func (s *Scene) TopLeft(id SpriteID) (Vec2, error) {
	r, err := s.lookup(id)
	if err != nil {
		return Vec2{}, err
	}
	return r.quad.TL, nil
}

// Scale returns the sprite's scale relative to its atlas default size.
func (s *Scene) Scale(id SpriteID) (Vec2, error) {
	r, err := s.lookup(id)
	if err != nil {
		return Vec2{}, err
	}
	return r.scale, nil
}

// Rotation returns the sprite's rotation in radians.
func (s *Scene) Rotation(id SpriteID) (float64, error) {
	r, err := s.lookup(id)
	if err != nil {
		return 0, err
	}
	return r.rotation, nil
}

// Frame returns the frame the sprite currently renders with.
func (s *Scene) Frame(id SpriteID) (Frame, error) {
	r, err := s.lookup(id)
	if err != nil {
		return Frame{}, err
	}
	return s.currentFrame(r), nil
}

// Keys returns the sprite's top-left and bottom-right partition keys.
func (s *Scene) Keys(id SpriteID) (tl, br Key, err error) {
	r, err := s.lookup(id)
	if err != nil {
		return Key{}, Key{}, err
	}
	return r.keyTL, r.keyBR, nil
}

// --- Handle ---

// Sprite is the client-facing handle for one sprite. Every method forwards to
// the owning Scene with the handle's id, so a handle can never reach a freed
// sprite: after Dispose (or removal through the Scene) all calls fail with
// ErrStaleSprite.
type Sprite struct {
	scene *Scene
	id    SpriteID
}

// Handle wraps id in a Sprite handle.
func (s *Scene) Handle(id SpriteID) Sprite {
	return Sprite{scene: s, id: id}
}

// ID returns the sprite id.
func (h Sprite) ID() SpriteID { return h.id }

// Valid reports whether the sprite is still live.
func (h Sprite) Valid() bool { return h.scene != nil && h.scene.Valid(h.id) }

// SetPosition moves the sprite's origin to (x, y). See Scene.SetPosition.
func (h Sprite) SetPosition(x, y float64) error { return h.scene.SetPosition(h.id, x, y) }

// OffsetPosition moves the sprite by (dx, dy).
func (h Sprite) OffsetPosition(dx, dy float64) error { return h.scene.OffsetPosition(h.id, dx, dy) }

// SetSize scales the sprite to the given width and height.
func (h Sprite) SetSize(w, hgt float64) error { return h.scene.SetSize(h.id, w, hgt) }

// SetScale sets the scale relative to the atlas default size.
func (h Sprite) SetScale(sx, sy float64) error { return h.scene.SetScale(h.id, sx, sy) }

// SetRotation sets the rotation in radians.
func (h Sprite) SetRotation(rad float64) error { return h.scene.SetRotation(h.id, rad) }

// Rotate adds rad to the current rotation.
func (h Sprite) Rotate(rad float64) error { return h.scene.Rotate(h.id, rad) }

// SetOrigin sets the pivot as an offset from the quad's TL corner.
func (h Sprite) SetOrigin(ox, oy float64) error { return h.scene.SetOrigin(h.id, ox, oy) }

// ResetOrigin moves the pivot back to the quad's TL corner.
func (h Sprite) ResetOrigin() error { return h.scene.ResetOrigin(h.id) }

// CenterOrigin moves the pivot to the centre of the sprite.
func (h Sprite) CenterOrigin() error { return h.scene.CenterOrigin(h.id) }

// SetLayer sets the sprite's depth. See LayerDepth.
func (h Sprite) SetLayer(layer uint8, isUI bool) error {
	return h.scene.SetLayer(h.id, layer, isUI)
}

// SetFrame shows a static atlas frame and stops any bound playback.
func (h Sprite) SetFrame(texture string) error { return h.scene.SetFrame(h.id, texture) }

// Play binds the named sequence, replacing any bound playback.
func (h Sprite) Play(sequence string) error { return h.scene.Play(h.id, sequence) }

// Pause freezes the bound playback on its current frame.
func (h Sprite) Pause() error { return h.scene.Pause(h.id) }

// Resume continues a paused playback.
func (h Sprite) Resume() error { return h.scene.Resume(h.id) }

// Stop releases the bound playback.
func (h Sprite) Stop() error { return h.scene.Stop(h.id) }

// Quad returns the sprite's transformed corners.
func (h Sprite) Quad() (Quad, error) { return h.scene.Quad(h.id) }

// Origin returns the sprite's origin offset.
func (h Sprite) Origin() (Vec2, error) { return h.scene.Origin(h.id) }

// Position returns the world position of the sprite's origin.
func (h Sprite) Position() (Vec2, error) { return h.scene.Position(h.id) }

// Dispose frees the sprite. A second Dispose fails with ErrStaleSprite.
func (h Sprite) Dispose() error { return h.scene.RemoveSprite(h.id) }
