package station

import (
	"fmt"

	"github.com/bbernstein/parentstops/internal/config"
	"github.com/bbernstein/parentstops/internal/geo"
	"github.com/bbernstein/parentstops/internal/grouping"
	"github.com/bbernstein/parentstops/internal/prefix"
	"github.com/rs/zerolog/log"
)

// Pipeline is an Enricher wired from configuration together with the
// projection resources it owns. Close it when done.
type Pipeline struct {
	*Enricher
	projector *geo.UTMProjector
	cache     *geo.CachedProjector
}

// NewPipeline builds the extractor, grouper and builder described by cfg.
// The projection is created once here and shared by every run.
func NewPipeline(cfg *config.Config) (*Pipeline, error) {
	extractor, err := prefix.NewExtractor(cfg.PrefixPattern)
	if err != nil {
		return nil, err
	}

	if cfg.SimilarityThreshold < 0 || cfg.SimilarityThreshold > 100 {
		return nil, fmt.Errorf("similarity threshold %d outside 0-100", cfg.SimilarityThreshold)
	}

	zone := geo.Zone{Number: cfg.Projection.UTMZone, South: cfg.Projection.South}
	projector, err := geo.NewUTMProjector(zone)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{projector: projector}
	var centroidProjector geo.Projector = projector
	if cfg.ProjectionCacheSize > 0 {
		p.cache, err = geo.NewCachedProjector(projector, cfg.ProjectionCacheSize)
		if err != nil {
			projector.Close()
			return nil, err
		}
		centroidProjector = p.cache
	}

	p.Enricher = NewEnricher(
		extractor,
		grouping.NewGrouper(grouping.NewRatioScorer(cfg.FoldDiacritics), cfg.SimilarityThreshold),
		NewBuilder(geo.NewCentroidCalculator(centroidProjector), cfg.StationIDPrefix),
	)

	log.Debug().
		Str("zone", zone.String()).
		Int("threshold", cfg.SimilarityThreshold).
		Int("cache_size", cfg.ProjectionCacheSize).
		Bool("fold_diacritics", cfg.FoldDiacritics).
		Msg("Pipeline ready")

	return p, nil
}

// CacheStats reports projection cache hits and misses; nil without a cache
func (p *Pipeline) CacheStats() map[string]uint64 {
	if p.cache == nil {
		return nil
	}
	return p.cache.GetCacheStats()
}

func (p *Pipeline) Close() {
	p.projector.Close()
}
