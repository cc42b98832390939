package station

import (
	"sort"

	"github.com/bbernstein/parentstops/internal/geo"
	"github.com/bbernstein/parentstops/internal/grouping"
	"github.com/bbernstein/parentstops/internal/models"
	"github.com/rs/zerolog/log"
)

// Centroider computes the centre of a set of coordinates
type Centroider interface {
	Centroid(coords []models.Coordinate) (models.Coordinate, error)
}

// Candidate is a table row whose name yielded a prefix
type Candidate struct {
	Row    int
	Prefix models.ExtractedPrefix
}

// BuildResult is what one Build call produced
type BuildResult struct {
	ParentStations []models.StopRecord
	Ambiguous      []grouping.AmbiguousMembership
	Failures       []*GroupError
}

// Builder turns prefix groups into parent stations
type Builder struct {
	centroids Centroider
	idPrefix  string
}

// NewBuilder returns a builder naming stations idPrefix1, idPrefix2, ...
// Numbering restarts with every Build call.
func NewBuilder(centroids Centroider, idPrefix string) *Builder {
	if idPrefix == "" {
		idPrefix = DefaultIDPrefix
	}
	return &Builder{
		centroids: centroids,
		idPrefix:  idPrefix,
	}
}

// Build resolves each candidate to a group, creates one parent station per
// group with more than one stop, points the member rows at it and appends
// the new stations to the table. Groups are visited in ascending key order
// so identifiers are stable between runs. A group whose centroid fails is
// reported and skipped without consuming an identifier.
func (b *Builder) Build(groups *grouping.Groups, table *models.Table, candidates []Candidate) BuildResult {
	var result BuildResult
	ids := NewIDAllocator(b.idPrefix)

	rowsByKey := make(map[string][]int)
	reported := make(map[string]bool)
	for _, c := range candidates {
		key, ambiguous := groups.Resolve(c.Prefix.Prefix)
		if ambiguous != nil && !reported[c.Prefix.Prefix] {
			reported[c.Prefix.Prefix] = true
			result.Ambiguous = append(result.Ambiguous, *ambiguous)
			log.Warn().
				Str("prefix", ambiguous.Prefix).
				Strs("group_keys", ambiguous.Keys).
				Str("group_key", ambiguous.Chosen).
				Msg("Prefix belongs to several groups, using the first")
		}
		rowsByKey[key] = append(rowsByKey[key], c.Row)
	}

	keys := make([]string, 0, len(rowsByKey))
	for key := range rowsByKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		rows := rowsByKey[key]
		if len(rows) <= 1 {
			continue
		}

		parent, err := b.buildParent(key, table, rows, ids)
		if err != nil {
			groupErr := NewGroupError(key, err)
			result.Failures = append(result.Failures, groupErr)
			log.Error().Err(err).Str("group_key", key).Int("member_count", len(rows)).Msg("Skipping group")
			continue
		}

		for _, r := range rows {
			table.Rows[r].ParentStation = parent.ID
		}
		result.ParentStations = append(result.ParentStations, parent)

		log.Debug().
			Str("station_id", parent.ID).
			Str("group_key", key).
			Int("member_count", len(rows)).
			Msg("Created parent station")
	}

	table.EnsureColumn(models.ColumnParentStation)
	table.EnsureColumn(models.ColumnLocationType)
	table.Append(result.ParentStations...)

	return result
}

func (b *Builder) buildParent(key string, table *models.Table, rows []int, ids *IDAllocator) (models.StopRecord, error) {
	coords := make([]models.Coordinate, 0, len(rows))
	for _, r := range rows {
		coord, err := table.Rows[r].Coordinate()
		if err != nil {
			return models.StopRecord{}, geo.NewInvalidInputError(err.Error())
		}
		coords = append(coords, coord)
	}

	center, err := b.centroids.Centroid(coords)
	if err != nil {
		return models.StopRecord{}, err
	}

	return models.NewParentStation(ids.Next(), key, center), nil
}
