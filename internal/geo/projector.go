package geo

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bbernstein/parentstops/internal/models"
	"github.com/paulmach/orb"
	"github.com/pebbe/proj/v5"
)

// Projector maps WGS84 coordinates onto a plane (easting, northing in
// metres) and back
type Projector interface {
	Forward(c models.Coordinate) (orb.Point, error)
	Inverse(p orb.Point) (models.Coordinate, error)
}

// Zone selects a UTM zone. It is fixed per deployment, not derived from data.
type Zone struct {
	Number int
	South  bool
}

// DefaultZone covers Ireland (UTM 29N)
var DefaultZone = Zone{Number: 29}

func (z Zone) Validate() error {
	if z.Number < 1 || z.Number > 60 {
		return fmt.Errorf("UTM zone must be between 1 and 60, got %d", z.Number)
	}
	return nil
}

func (z Zone) String() string {
	if z.South {
		return fmt.Sprintf("%dS", z.Number)
	}
	return fmt.Sprintf("%dN", z.Number)
}

// Definition returns the PROJ pipeline from geographic WGS84 to the zone
func (z Zone) Definition() string {
	var b strings.Builder
	b.WriteString("+proj=pipeline ")
	b.WriteString("+step +proj=longlat +ellps=WGS84 +datum=WGS84 ")
	fmt.Fprintf(&b, "+step +proj=utm +zone=%d ", z.Number)
	if z.South {
		b.WriteString("+south ")
	}
	b.WriteString("+ellps=WGS84 +datum=WGS84 +units=m +no_defs")
	return b.String()
}

// UTMProjector projects through PROJ. A PROJ context must not be used from
// several goroutines at once, so calls are serialized.
type UTMProjector struct {
	zone     Zone
	ctx      *proj.Context
	pipeline *proj.PJ
	mu       sync.Mutex
}

func NewUTMProjector(zone Zone) (*UTMProjector, error) {
	if err := zone.Validate(); err != nil {
		return nil, err
	}

	ctx := proj.NewContext()
	pipeline, err := ctx.Create(zone.Definition())
	if err != nil {
		ctx.Close()
		return nil, NewProjectionError(fmt.Sprintf("creating UTM %s pipeline", zone), err)
	}

	return &UTMProjector{
		zone:     zone,
		ctx:      ctx,
		pipeline: pipeline,
	}, nil
}

func (p *UTMProjector) Zone() Zone {
	return p.zone
}

func (p *UTMProjector) Forward(c models.Coordinate) (orb.Point, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	x, y, _, _, err := p.pipeline.Trans(proj.Fwd, proj.DegToRad(c.Longitude), proj.DegToRad(c.Latitude), 0, 0)
	if err != nil {
		return orb.Point{}, NewProjectionError(fmt.Sprintf("projecting (%f, %f)", c.Latitude, c.Longitude), err)
	}
	return orb.Point{x, y}, nil
}

func (p *UTMProjector) Inverse(pt orb.Point) (models.Coordinate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	lon, lat, _, _, err := p.pipeline.Trans(proj.Inv, pt.X(), pt.Y(), 0, 0)
	if err != nil {
		return models.Coordinate{}, NewProjectionError(fmt.Sprintf("unprojecting (%f, %f)", pt.X(), pt.Y()), err)
	}
	return models.Coordinate{
		Latitude:  proj.RadToDeg(lat),
		Longitude: proj.RadToDeg(lon),
	}, nil
}

// Close releases the PROJ objects
func (p *UTMProjector) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pipeline.Close()
	p.ctx.Close()
}
