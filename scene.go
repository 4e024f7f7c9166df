package aspen

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/kamstrup/intmap"
	"go.uber.org/zap"
)

// DefaultDepth is the world layer 0 depth given to new sprites.
const DefaultDepth = WorldDepthBase

var sceneSerial atomic.Uint32

// Scene owns a partition map of sprite corners, the sprite records, the
// render batch and the animation state for one world.
//
// Every sprite registers two points: its top-left entry at the bounding
// box's min corner and a bottom-right marker at the max corner. A visibility
// query scans the cells overlapping the camera and loads each sprite found
// there once.
//
// A Scene is not safe for concurrent use; all calls must come from the
// goroutine that drives Update.
type Scene struct {
	id     uint32
	points *PartitionMap[cornerEntry]

	sprites []spriteSlot
	free    []uint32
	live    int

	atlas   TextureAtlas
	anims   AnimationTable
	playing *intmap.Map[int, SpriteID]
	tweens  []*TweenGroup

	batch *renderBatch

	store EntityStore
	log   *zap.Logger
	debug bool

	cullPadding float64
	autoPad     bool
	exactCull   bool
	maxExtent   float64

	disposed bool
}

// NewScene creates an empty scene over the square world [0, worldSize) with
// 2^depth cells per axis.
func NewScene(worldSize float64, depth int, atlas TextureAtlas) (*Scene, error) {
	if atlas == nil {
		return nil, fmt.Errorf("%w: nil texture atlas", ErrInvalidConfig)
	}
	points, err := NewPartitionMap[cornerEntry](worldSize, depth)
	if err != nil {
		return nil, err
	}
	return &Scene{
		id:      sceneSerial.Add(1),
		points:  points,
		atlas:   atlas,
		anims:   NewSequenceTable(),
		playing: intmap.New[int, SpriteID](16),
		batch:   newRenderBatch(defaultBatchCap),
		log:     zap.NewNop(),
	}, nil
}

// NewSceneFromConfig creates a scene sized and tuned by cfg.
func NewSceneFromConfig(cfg Config, atlas TextureAtlas) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s, err := NewScene(cfg.World.Size, cfg.World.Depth, atlas)
	if err != nil {
		return nil, err
	}
	s.cullPadding = cfg.Render.CullPadding
	s.autoPad = cfg.Render.AutoPad
	s.exactCull = cfg.Render.ExactCull
	s.debug = cfg.Logging.Debug
	if cfg.Render.InitialQuads > 0 {
		s.batch = newRenderBatch(cfg.Render.InitialQuads)
	}
	return s, nil
}

// SetLogger replaces the scene logger. A nil logger disables logging.
func (s *Scene) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	s.log = log
}

// SetDebugMode enables or disables per-frame timing logs and occupancy
// warnings.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
}

// SetAnimationTable replaces the animation collaborator. Bound playbacks of
// the previous table are dropped; affected sprites fall back to their static
// frame.
func (s *Scene) SetAnimationTable(t AnimationTable) {
	if t == nil {
		t = NewSequenceTable()
	}
	for i := range s.sprites {
		if s.sprites[i].used {
			s.sprites[i].rec.playback = noPlayback
			s.sprites[i].rec.sequence = ""
		}
	}
	s.playing = intmap.New[int, SpriteID](16)
	s.anims = t
}

// AnimationTable returns the current animation collaborator.
func (s *Scene) AnimationTable() AnimationTable { return s.anims }

// SetCullPadding grows the visibility query by d world units on every side.
func (s *Scene) SetCullPadding(d float64) {
	s.cullPadding = max(d, 0)
}

// SetAutoPad pads the visibility query by the largest sprite bounding box
// extent registered so far, in addition to the cull padding.
func (s *Scene) SetAutoPad(enabled bool) {
	s.autoPad = enabled
}

// SetExactCull drops loaded sprites whose bounding box does not intersect
// the padded view, trading a per-sprite test for a tighter batch.
func (s *Scene) SetExactCull(enabled bool) {
	s.exactCull = enabled
}

// Len returns the number of live sprites.
func (s *Scene) Len() int { return s.live }

// WorldSize returns the world edge length.
func (s *Scene) WorldSize() float64 { return s.points.Size() }

// CellsPerAxis returns the number of grid cells per axis.
func (s *Scene) CellsPerAxis() int { return s.points.CellsPerAxis() }

// Occupancy returns the number of sprite corners registered in r.
func (s *Scene) Occupancy(r Region) int { return s.points.Occupancy(r) }

// AddSprite creates a sprite showing texture with its top-left corner at pos.
// The sprite starts at the atlas default size on world layer 0.
func (s *Scene) AddSprite(pos Vec2, texture string) (SpriteID, error) {
	if s.disposed {
		return SpriteID{}, ErrSceneDisposed
	}
	f, size, err := s.atlas.Lookup(texture)
	if err != nil {
		return SpriteID{}, err
	}
	rec := spriteRecord{
		base:     Vec2{size.Width, size.Height},
		pos:      pos,
		scale:    Vec2{1, 1},
		depth:    DefaultDepth,
		texture:  texture,
		frame:    f,
		playback: noPlayback,
	}
	rec.applyGeometry()

	bounds := rec.quad.Bounds()
	if _, err := s.points.PointToRegion(bounds.TopLeft()); err != nil {
		return SpriteID{}, fmt.Errorf("aspen: add %q top-left corner: %w", texture, err)
	}
	if _, err := s.points.PointToRegion(bounds.BottomRight()); err != nil {
		return SpriteID{}, fmt.Errorf("aspen: add %q bottom-right corner: %w", texture, err)
	}

	id := s.allocSprite(rec)
	r := &s.sprites[id.index].rec
	r.keyTL, _ = s.points.InsertPoint(bounds.TopLeft(), cornerEntry{sprite: id.index, corner: CornerTopLeft})
	r.keyBR, _ = s.points.InsertPoint(bounds.BottomRight(), cornerEntry{sprite: id.index, corner: CornerBottomRight})
	s.trackExtent(bounds)

	if s.debug {
		s.debugCheckCellOccupancy(r.keyTL.Region)
		s.debugCheckCellOccupancy(r.keyBR.Region)
	}
	s.emit(SceneEvent{Type: EventSpriteAdded, Sprite: id, Texture: texture})
	return id, nil
}

// RemoveSprite frees both of the sprite's partition slots, its playback
// binding and its record. Removing the same id twice fails with
// ErrStaleSprite.
func (s *Scene) RemoveSprite(id SpriteID) error {
	r, err := s.lookup(id)
	if err != nil {
		return err
	}
	if _, err := s.points.RemovePoint(r.keyTL); err != nil {
		return fmt.Errorf("aspen: remove %v: %w", id, err)
	}
	if _, err := s.points.RemovePoint(r.keyBR); err != nil {
		return fmt.Errorf("aspen: remove %v: %w", id, err)
	}
	s.unbind(r)
	s.freeSprite(id)
	s.emit(SceneEvent{Type: EventSpriteRemoved, Sprite: id})
	return nil
}

// Animate registers a tween group to be advanced by Update. Finished groups
// are dropped automatically.
func (s *Scene) Animate(g *TweenGroup) {
	if g != nil && !g.Done {
		s.tweens = append(s.tweens, g)
	}
}

// Update advances the camera, animations and tweens by dt seconds, then runs
// the visibility query for cam and returns the frame's render batch. A nil
// camera queries the whole world.
//
// The query is cell-coarse: every sprite with a registered corner in a cell
// overlapping the camera's visible bounds is loaded, so some loaded sprites
// may lie just outside the view. A sprite whose corners both fall outside
// the overlapped cells is not loaded even if its body crosses the view; set a
// cull padding or enable auto padding to catch those.
//
// If none of the padded visible bounds lies inside the world, Update returns
// ErrOutOfBounds without advancing animations or tweens or touching the
// batch. The camera still advances, so a scroll or follow can bring it back
// over the world on a later frame. The returned views stay valid until the
// next call.
func (s *Scene) Update(cam *Camera, dt float64) (Batch, error) {
	if s.disposed {
		return Batch{}, ErrSceneDisposed
	}
	var stats debugStats
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	view := Rect{Width: s.points.Size(), Height: s.points.Size()}
	if cam != nil {
		cam.update(s, dt)
		view = cam.VisibleBounds()
	}
	pad := s.cullPadding
	if s.autoPad {
		pad += s.maxExtent
	}
	if pad > 0 {
		view = view.Pad(pad)
	}
	lo, hi, ok := s.points.grid.clip(view)
	if !ok {
		return Batch{}, fmt.Errorf("%w: view %+v misses the world", ErrOutOfBounds, view)
	}
	loR, hiR, err := s.points.Span(lo, hi)
	if err != nil {
		return Batch{}, err
	}

	s.advance(dt)

	if s.debug {
		stats.queryTime = time.Since(t0)
		stats.regions = spanCells(loR, hiR)
		t0 = time.Now()
	}

	s.batch.clear()
	s.points.EachRegion(loR, hiR, func(r Region) {
		s.points.Each(r, func(_ Key, e *cornerEntry) bool {
			rec := &s.sprites[e.sprite].rec
			if e.corner == CornerBottomRight && rec.keyTL.Region.within(loR, hiR) {
				return true
			}
			if s.exactCull && !rec.quad.Bounds().Intersects(view) {
				return true
			}
			s.batch.load(rec.quad, s.currentFrame(rec))
			return true
		})
	})

	if s.debug {
		stats.loadTime = time.Since(t0)
		t0 = time.Now()
	}

	s.batch.ensureIndexLen(6 * s.batch.quads())

	if s.debug {
		stats.indexTime = time.Since(t0)
		stats.quads = s.batch.quads()
		s.debugLog(stats)
	}
	return s.batch.view(), nil
}

// advance steps the animation table and tweens and reports finished
// sequences.
func (s *Scene) advance(dt float64) {
	s.anims.Advance(dt)
	if fn, ok := s.anims.(FinishNotifier); ok {
		fn.DrainFinished(func(pb int) {
			id, ok := s.playing.Get(pb)
			if !ok {
				return
			}
			r, err := s.lookup(id)
			if err != nil {
				return
			}
			s.emit(SceneEvent{Type: EventSequenceFinished, Sprite: id, Sequence: r.sequence})
		})
	}

	if len(s.tweens) == 0 {
		return
	}
	kept := s.tweens[:0]
	for _, g := range s.tweens {
		g.Update(float32(dt))
		if g.Err != nil {
			s.log.Debug("tween stopped", zap.Stringer("sprite", g.target), zap.Error(g.Err))
		}
		if !g.Done {
			kept = append(kept, g)
		}
	}
	clear(s.tweens[len(kept):])
	s.tweens = kept
}

// Dispose removes every sprite and releases the scene's buffers. Any later
// call fails with ErrSceneDisposed.
func (s *Scene) Dispose() {
	if s.disposed {
		return
	}
	for i := range s.sprites {
		slot := &s.sprites[i]
		if !slot.used {
			continue
		}
		id := SpriteID{scene: s.id, index: uint32(i), gen: slot.gen}
		_ = s.RemoveSprite(id)
	}
	s.disposed = true
	s.sprites = nil
	s.free = nil
	s.tweens = nil
	s.batch = nil
	s.log.Debug("scene disposed", zap.Uint32("scene", s.id))
}

// IsDisposed reports whether Dispose has been called.
func (s *Scene) IsDisposed() bool { return s.disposed }
