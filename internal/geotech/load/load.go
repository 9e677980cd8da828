package load

import (
	"context"
	"fmt"
	"math"

	"github.com/x-thooh/geotech/internal/geotech/distribution"
	"github.com/x-thooh/geotech/pkg/log"
)

// Load applies a vertical stress increment to the ground.
type Load interface {
	// VerticalStress returns the stress increment in kPa at (x, y, z), per iteration.
	VerticalStress(ctx context.Context, x, y, z float64) []float64
	// VerticalStressAt is VerticalStress for iteration i alone.
	VerticalStressAt(i int, x, y, z float64) float64
	String() string
}

// PointLoad is a vertical force in kN acting at (X, Y, Elevation), spread
// through an elastic half-space after Boussinesq.
type PointLoad struct {
	Q         distribution.Distribution
	X         distribution.Distribution
	Y         distribution.Distribution
	Elevation distribution.Distribution

	lg log.Logger
}

func NewPointLoad(q, x, y, elevation distribution.Distribution, lg log.Logger) (*PointLoad, error) {
	n := len(q.Samples())
	for name, d := range map[string]distribution.Distribution{"x": x, "y": y, "elevation": elevation} {
		if d == nil || len(d.Samples()) != n {
			return nil, fmt.Errorf("%w: point load %s must be sampled over %d iterations", distribution.ErrInvalidParameter, name, n)
		}
	}
	return &PointLoad{Q: q, X: x, Y: y, Elevation: elevation, lg: lg}, nil
}

func (p *PointLoad) VerticalStress(ctx context.Context, x, y, z float64) []float64 {
	out := make([]float64, len(p.Q.Samples()))
	above := 0
	for i := range out {
		if p.Elevation.Samples()[i] <= z {
			above++
			continue
		}
		out[i] = p.VerticalStressAt(i, x, y, z)
	}
	if above > 0 {
		p.lg.Debug(ctx, "point at or above the load", "z", z, "iterations", above)
	}
	return out
}

func (p *PointLoad) VerticalStressAt(i int, x, y, z float64) float64 {
	depth := p.Elevation.Samples()[i] - z
	if depth <= 0 {
		return 0
	}
	r := math.Hypot(x-p.X.Samples()[i], y-p.Y.Samples()[i])
	return 3 * p.Q.Samples()[i] / (2 * math.Pi * depth * depth) / math.Pow(1+(r/depth)*(r/depth), 2.5)
}

func (p *PointLoad) String() string {
	return fmt.Sprintf("%s kN at (%s, %s, %s)", p.Q, p.X, p.Y, p.Elevation)
}
