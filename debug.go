package aspen

import (
	"time"

	"go.uber.org/zap"
)

// debugStats holds per-frame timings and counts of one visibility query.
// Only populated when Scene.debug is true.
type debugStats struct {
	queryTime time.Duration
	loadTime  time.Duration
	indexTime time.Duration
	regions   int
	quads     int
}

// debugLog writes the frame stats at debug level.
func (s *Scene) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	s.log.Debug("frame",
		zap.Duration("query", stats.queryTime),
		zap.Duration("load", stats.loadTime),
		zap.Duration("index", stats.indexTime),
		zap.Duration("total", stats.queryTime+stats.loadTime+stats.indexTime),
		zap.Int("regions", stats.regions),
		zap.Int("quads", stats.quads),
		zap.Int("sprites", s.live),
	)
}

// DebugMaxCellOccupancy is the arena size past which debug mode warns that a
// cell is crowded and the grid depth is probably too low.
const DebugMaxCellOccupancy = 1000

func (s *Scene) debugCheckCellOccupancy(r Region) {
	if n := s.points.Occupancy(r); n > DebugMaxCellOccupancy {
		s.log.Warn("crowded cell",
			zap.Stringer("region", r),
			zap.Int("corners", n),
			zap.Int("threshold", DebugMaxCellOccupancy),
		)
	}
}
