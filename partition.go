package aspen

import (
	"fmt"
	"slices"

	"github.com/kamstrup/intmap"
)

// Key is a stable handle to one point stored in a PartitionMap. It stays
// valid until the referenced slot is removed; it is not reference counted.
type Key struct {
	Region Region
	Slot   int
}

func (k Key) String() string {
	return fmt.Sprintf("%v#%d", k.Region, k.Slot)
}

// PartitionMap is a fixed grid over the square world [0, size) x [0, size)
// with 2^depth cells per axis. Each cell owns a slot arena, so keys handed
// out for one point survive the removal of any other point.
//
// A PartitionMap is not safe for concurrent use.
type PartitionMap[T any] struct {
	grid   grid
	cells  *intmap.Map[uint64, *slotArena[T]]
	order  []Region // regions in arena creation order
	span   []Region // scratch for EachRegion
	live   int
	lenSum int
}

// NewPartitionMap creates an empty map over a world of the given size.
func NewPartitionMap[T any](size float64, depth int) (*PartitionMap[T], error) {
	g, err := newGrid(size, depth)
	if err != nil {
		return nil, err
	}
	return &PartitionMap[T]{
		grid:  g,
		cells: intmap.New[uint64, *slotArena[T]](64),
	}, nil
}

// Size returns the world edge length.
func (m *PartitionMap[T]) Size() float64 { return m.grid.size }

// CellsPerAxis returns 2^depth.
func (m *PartitionMap[T]) CellsPerAxis() int { return m.grid.cellsPerAxis }

// CellSize returns the world-space edge length of one region.
func (m *PartitionMap[T]) CellSize() float64 { return m.grid.divSize }

// PointToRegion maps a world position to its cell.
func (m *PartitionMap[T]) PointToRegion(p Vec2) (Region, error) {
	return m.grid.pointToRegion(p)
}

// RegionBounds returns the world-space extent of r.
func (m *PartitionMap[T]) RegionBounds(r Region) Rect {
	return m.grid.regionBounds(r)
}

func (m *PartitionMap[T]) arena(r Region) (*slotArena[T], bool) {
	return m.cells.Get(r.id())
}

func (m *PartitionMap[T]) arenaOrCreate(r Region) *slotArena[T] {
	if a, ok := m.cells.Get(r.id()); ok {
		return a
	}
	a := &slotArena[T]{}
	m.cells.Put(r.id(), a)
	m.order = append(m.order, r)
	return a
}

// InsertPoint stores v in the cell containing pos.
func (m *PartitionMap[T]) InsertPoint(pos Vec2, v T) (Key, error) {
	r, err := m.grid.pointToRegion(pos)
	if err != nil {
		return Key{}, err
	}
	return m.insertAt(r, v), nil
}

func (m *PartitionMap[T]) insertAt(r Region, v T) Key {
	a := m.arenaOrCreate(r)
	before := a.len()
	i := a.insert(v)
	m.lenSum += a.len() - before
	m.live++
	return Key{Region: r, Slot: i}
}

// RemovePoint frees the slot referenced by k and returns its value.
func (m *PartitionMap[T]) RemovePoint(k Key) (T, error) {
	a, ok := m.arena(k.Region)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %v", ErrRegionNotFound, k.Region)
	}
	v, err := a.remove(k.Slot)
	if err != nil {
		return v, fmt.Errorf("key %v: %w", k, err)
	}
	m.live--
	return v, nil
}

// MovePoint removes the value at k and reinserts it at pos, returning the new
// key. The old key is invalid afterwards even when the region is unchanged.
// On error the map is left as it was.
func (m *PartitionMap[T]) MovePoint(k Key, pos Vec2) (Key, error) {
	r, err := m.grid.pointToRegion(pos)
	if err != nil {
		return Key{}, err
	}
	if err := m.check(k); err != nil {
		return Key{}, err
	}
	v, _ := m.RemovePoint(k)
	return m.insertAt(r, v), nil
}

// check reports whether k references an occupied slot.
func (m *PartitionMap[T]) check(k Key) error {
	a, ok := m.arena(k.Region)
	if !ok {
		return fmt.Errorf("%w: %v", ErrRegionNotFound, k.Region)
	}
	if !a.occupied(k.Slot) {
		return fmt.Errorf("%w: %v", ErrInvalidKey, k)
	}
	return nil
}

// Valid reports whether k references an occupied slot.
func (m *PartitionMap[T]) Valid(k Key) bool {
	return m.check(k) == nil
}

// Get returns a copy of the value at k.
func (m *PartitionMap[T]) Get(k Key) (T, error) {
	var zero T
	if err := m.check(k); err != nil {
		return zero, err
	}
	a, _ := m.arena(k.Region)
	p, _ := a.get(k.Slot)
	return *p, nil
}

// Update calls fn with a pointer to the value at k. The pointer must not be
// retained after fn returns.
func (m *PartitionMap[T]) Update(k Key, fn func(v *T)) error {
	if err := m.check(k); err != nil {
		return err
	}
	a, _ := m.arena(k.Region)
	p, _ := a.get(k.Slot)
	fn(p)
	return nil
}

// PointsToRegions returns every region in the inclusive lattice spanned by
// the cells of a and b. See AppendRegions.
func (m *PartitionMap[T]) PointsToRegions(a, b Vec2) ([]Region, error) {
	return m.AppendRegions(nil, a, b)
}

// AppendRegions appends to dst every region in the inclusive lattice spanned
// by the cells of a and b, row by row. The corners may be given in any order:
// they are normalised to per-axis minimum and maximum before enumeration.
func (m *PartitionMap[T]) AppendRegions(dst []Region, a, b Vec2) ([]Region, error) {
	lo, hi, err := m.Span(a, b)
	if err != nil {
		return dst, err
	}
	dst = slices.Grow(dst, spanCells(lo, hi))
	for cy := lo.CY; cy <= hi.CY; cy++ {
		for cx := lo.CX; cx <= hi.CX; cx++ {
			dst = append(dst, Region{CX: cx, CY: cy})
		}
	}
	return dst, nil
}

// Span returns the minimum and maximum cells of the lattice spanned by a and
// b.
func (m *PartitionMap[T]) Span(a, b Vec2) (lo, hi Region, err error) {
	ra, err := m.grid.pointToRegion(a)
	if err != nil {
		return lo, hi, err
	}
	rb, err := m.grid.pointToRegion(b)
	if err != nil {
		return lo, hi, err
	}
	lo = Region{CX: min(ra.CX, rb.CX), CY: min(ra.CY, rb.CY)}
	hi = Region{CX: max(ra.CX, rb.CX), CY: max(ra.CY, rb.CY)}
	return lo, hi, nil
}

// EachRegion calls fn, row by row, for every region between lo and hi
// inclusive that owns an arena. Work and memory are bounded by the number of
// arenas, not by the size of the span. fn must not insert into the map.
func (m *PartitionMap[T]) EachRegion(lo, hi Region, fn func(r Region)) {
	if spanCells(lo, hi) <= len(m.order) {
		for cy := lo.CY; cy <= hi.CY; cy++ {
			for cx := lo.CX; cx <= hi.CX; cx++ {
				r := Region{CX: cx, CY: cy}
				if _, ok := m.arena(r); ok {
					fn(r)
				}
			}
		}
		return
	}
	m.span = m.span[:0]
	for _, r := range m.order {
		if r.within(lo, hi) {
			m.span = append(m.span, r)
		}
	}
	slices.SortFunc(m.span, compareRowMajor)
	for _, r := range m.span {
		fn(r)
	}
}

func spanCells(lo, hi Region) int {
	return (hi.CX - lo.CX + 1) * (hi.CY - lo.CY + 1)
}

func compareRowMajor(a, b Region) int {
	if a.CY != b.CY {
		return a.CY - b.CY
	}
	return a.CX - b.CX
}

// Each calls fn for every occupied slot of region r in slot order until fn
// returns false. The value pointer must not be retained. Structural changes
// to the map are not allowed during the scan.
func (m *PartitionMap[T]) Each(r Region, fn func(k Key, v *T) bool) {
	a, ok := m.arena(r)
	if !ok {
		return
	}
	a.each(func(i int, v *T) bool {
		return fn(Key{Region: r, Slot: i}, v)
	})
}

// Occupancy returns the number of occupied slots in r.
func (m *PartitionMap[T]) Occupancy(r Region) int {
	if a, ok := m.arena(r); ok {
		return a.live
	}
	return 0
}

// OccupiedRegions returns every region holding at least one value, row by row.
func (m *PartitionMap[T]) OccupiedRegions() []Region {
	var out []Region
	for _, r := range m.order {
		if m.Occupancy(r) > 0 {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, compareRowMajor)
	return out
}

// Live returns the number of occupied slots across all regions.
func (m *PartitionMap[T]) Live() int { return m.live }

// SlotCount returns the summed arena length across all regions, free slots
// included.
func (m *PartitionMap[T]) SlotCount() int { return m.lenSum }
