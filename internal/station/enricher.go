package station

import (
	"context"
	"fmt"

	"github.com/bbernstein/parentstops/internal/grouping"
	"github.com/bbernstein/parentstops/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Extractor pulls a prefix and platform code out of a stop name
type Extractor interface {
	Extract(name string) (models.ExtractedPrefix, bool)
}

// Report summarizes one enrichment run
type Report struct {
	RunID          string                         `json:"runId"`
	Stops          int                            `json:"stops"`
	Matched        int                            `json:"matched"`
	Prefixes       int                            `json:"prefixes"`
	Groups         int                            `json:"groups"`
	ParentStations []models.StopRecord            `json:"-"`
	Ambiguous      []grouping.AmbiguousMembership `json:"-"`
	Failures       []*GroupError                  `json:"-"`
}

// StationCount is the number of parent stations created
func (r *Report) StationCount() int {
	return len(r.ParentStations)
}

// Enricher runs the whole pipeline over a stop table: extract prefixes,
// cluster them, build parent stations.
type Enricher struct {
	extractor Extractor
	grouper   *grouping.Grouper
	builder   *Builder
}

func NewEnricher(extractor Extractor, grouper *grouping.Grouper, builder *Builder) *Enricher {
	return &Enricher{
		extractor: extractor,
		grouper:   grouper,
		builder:   builder,
	}
}

// Enrich mutates table in place: platform codes and parent references are
// filled in and parent station rows appended.
func (e *Enricher) Enrich(ctx context.Context, table *models.Table) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("enrichment cancelled: %w", err)
	}

	report := &Report{
		RunID: uuid.NewString(),
		Stops: len(table.Rows),
	}
	logger := log.With().Str("run_id", report.RunID).Logger()

	var (
		candidates []Candidate
		prefixes   []string
		seen       = make(map[string]struct{})
	)
	for i := range table.Rows {
		// every row is rewritten; unmatched names get a blank code
		extracted, ok := e.extractor.Extract(table.Rows[i].Name)
		table.Rows[i].PlatformCode = extracted.PlatformCode
		if !ok {
			continue
		}
		candidates = append(candidates, Candidate{Row: i, Prefix: extracted})
		if _, dup := seen[extracted.Prefix]; !dup {
			seen[extracted.Prefix] = struct{}{}
			prefixes = append(prefixes, extracted.Prefix)
		}
	}
	table.EnsureColumn(models.ColumnPlatformCode)
	report.Matched = len(candidates)
	report.Prefixes = len(prefixes)

	logger.Debug().Int("stops", report.Stops).Int("matched", report.Matched).Int("prefixes", report.Prefixes).Msg("Extracted prefixes")

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("enrichment cancelled: %w", err)
	}

	groups := e.grouper.Group(prefixes)
	report.Groups = groups.Len()

	result := e.builder.Build(groups, table, candidates)
	report.ParentStations = result.ParentStations
	report.Ambiguous = result.Ambiguous
	report.Failures = result.Failures

	logger.Info().
		Int("stops", report.Stops).
		Int("matched", report.Matched).
		Int("groups", report.Groups).
		Int("parent_stations", report.StationCount()).
		Int("ambiguous_prefixes", len(report.Ambiguous)).
		Int("failed_groups", len(report.Failures)).
		Msg("Enrichment complete")

	return report, nil
}
