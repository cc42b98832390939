package geo

import (
	"fmt"
	"sync/atomic"

	"github.com/bbernstein/parentstops/internal/models"
	"github.com/hashicorp/golang-lru/v2"
	"github.com/paulmach/orb"
)

// CachedProjector memoizes forward projections. Stop tables often repeat
// the same coordinates across platforms, so most lookups hit.
type CachedProjector struct {
	projector Projector
	lru       *lru.Cache[models.Coordinate, orb.Point]
	hits      atomic.Uint64
	misses    atomic.Uint64
}

func NewCachedProjector(projector Projector, size int) (*CachedProjector, error) {
	cache, err := lru.New[models.Coordinate, orb.Point](size)
	if err != nil {
		return nil, fmt.Errorf("creating projection cache: %w", err)
	}
	return &CachedProjector{
		projector: projector,
		lru:       cache,
	}, nil
}

func (c *CachedProjector) Forward(coord models.Coordinate) (orb.Point, error) {
	if pt, ok := c.lru.Get(coord); ok {
		c.hits.Add(1)
		return pt, nil
	}
	c.misses.Add(1)

	pt, err := c.projector.Forward(coord)
	if err != nil {
		return orb.Point{}, err
	}
	c.lru.Add(coord, pt)
	return pt, nil
}

func (c *CachedProjector) Inverse(pt orb.Point) (models.Coordinate, error) {
	return c.projector.Inverse(pt)
}

// GetCacheStats returns hit and miss counters
func (c *CachedProjector) GetCacheStats() map[string]uint64 {
	return map[string]uint64{
		"projection_hits":   c.hits.Load(),
		"projection_misses": c.misses.Load(),
	}
}

// Clear removes all cached projections
func (c *CachedProjector) Clear() {
	c.lru.Purge()
}
