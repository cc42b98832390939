package geo

import (
	"sort"

	"github.com/bbernstein/parentstops/internal/models"
	"github.com/paulmach/orb"
)

// CentroidCalculator finds the centre of a set of coordinates on the plane
// of its projector instead of averaging degrees.
type CentroidCalculator struct {
	projector Projector
}

func NewCentroidCalculator(projector Projector) *CentroidCalculator {
	return &CentroidCalculator{projector: projector}
}

// Centroid projects every coordinate, takes the mean easting and northing and
// converts that point back to WGS84. Points far outside the projector's zone
// still work but lose metric accuracy.
func (c *CentroidCalculator) Centroid(coords []models.Coordinate) (models.Coordinate, error) {
	if len(coords) == 0 {
		return models.Coordinate{}, NewInvalidInputError("centroid of an empty coordinate set")
	}

	projected := make(orb.MultiPoint, len(coords))
	for i, coord := range coords {
		pt, err := c.projector.Forward(coord)
		if err != nil {
			return models.Coordinate{}, err
		}
		projected[i] = pt
	}

	return c.projector.Inverse(mean(projected))
}

// mean sums in sorted order so the result does not depend on input order
// down to the last bit.
func mean(points orb.MultiPoint) orb.Point {
	sorted := make(orb.MultiPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X() != sorted[j].X() {
			return sorted[i].X() < sorted[j].X()
		}
		return sorted[i].Y() < sorted[j].Y()
	})

	var sumX, sumY float64
	for _, p := range sorted {
		sumX += p.X()
		sumY += p.Y()
	}
	n := float64(len(sorted))
	return orb.Point{sumX / n, sumY / n}
}
