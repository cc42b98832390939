package geo

import (
	"errors"
	"testing"

	"github.com/bbernstein/parentstops/internal/models"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scaleProjector is a linear stand-in for a real projection
type scaleProjector struct {
	forwardCalls int
	forwardErr   error
}

func (s *scaleProjector) Forward(c models.Coordinate) (orb.Point, error) {
	s.forwardCalls++
	if s.forwardErr != nil {
		return orb.Point{}, s.forwardErr
	}
	return orb.Point{c.Longitude * 1000, c.Latitude * 2000}, nil
}

func (s *scaleProjector) Inverse(p orb.Point) (models.Coordinate, error) {
	return models.Coordinate{Latitude: p.Y() / 2000, Longitude: p.X() / 1000}, nil
}

func TestCentroidEmptyInput(t *testing.T) {
	calc := NewCentroidCalculator(&scaleProjector{})

	_, err := calc.Centroid(nil)

	require.Error(t, err)
	var invalid *InvalidInputError
	assert.True(t, errors.As(err, &invalid))
}

func TestCentroidSinglePoint(t *testing.T) {
	calc := NewCentroidCalculator(&scaleProjector{})
	point := models.Coordinate{Latitude: 53.349, Longitude: -6.26}

	got, err := calc.Centroid([]models.Coordinate{point})

	require.NoError(t, err)
	assert.InDelta(t, point.Latitude, got.Latitude, 1e-12)
	assert.InDelta(t, point.Longitude, got.Longitude, 1e-12)
}

func TestCentroidIsPlanarMean(t *testing.T) {
	calc := NewCentroidCalculator(&scaleProjector{})

	got, err := calc.Centroid([]models.Coordinate{
		{Latitude: 10, Longitude: 20},
		{Latitude: 12, Longitude: 26},
		{Latitude: 14, Longitude: 20},
	})

	require.NoError(t, err)
	assert.InDelta(t, 12.0, got.Latitude, 1e-9)
	assert.InDelta(t, 22.0, got.Longitude, 1e-9)
}

func TestCentroidIgnoresInputOrder(t *testing.T) {
	calc := NewCentroidCalculator(&scaleProjector{})
	points := []models.Coordinate{
		{Latitude: 53.349, Longitude: -6.260},
		{Latitude: 53.350, Longitude: -6.261},
		{Latitude: 53.351, Longitude: -6.259},
		{Latitude: 53.3487, Longitude: -6.2633},
	}
	reversed := make([]models.Coordinate, len(points))
	for i, p := range points {
		reversed[len(points)-1-i] = p
	}

	a, err := calc.Centroid(points)
	require.NoError(t, err)
	b, err := calc.Centroid(reversed)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestCentroidPropagatesProjectionErrors(t *testing.T) {
	projector := &scaleProjector{forwardErr: NewProjectionError("out of range", nil)}
	calc := NewCentroidCalculator(projector)

	_, err := calc.Centroid([]models.Coordinate{{Latitude: 1, Longitude: 1}})

	require.Error(t, err)
	var projErr *ProjectionError
	assert.True(t, errors.As(err, &projErr))
}

func TestCentroidDoesNotMutateInput(t *testing.T) {
	calc := NewCentroidCalculator(&scaleProjector{})
	points := []models.Coordinate{
		{Latitude: 2, Longitude: 1},
		{Latitude: 1, Longitude: 2},
	}
	before := append([]models.Coordinate(nil), points...)

	_, err := calc.Centroid(points)

	require.NoError(t, err)
	assert.Equal(t, before, points)
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "invalid input: nothing", NewInvalidInputError("nothing").Error())

	inner := errors.New("boom")
	err := NewProjectionError("projecting", inner)
	assert.Equal(t, "projection error: projecting: boom", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "projection error: bare", NewProjectionError("bare", nil).Error())
}
