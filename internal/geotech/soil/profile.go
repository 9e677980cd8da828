package soil

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"golang.org/x/exp/maps"

	"github.com/x-thooh/geotech/internal/geotech/distribution"
	"github.com/x-thooh/geotech/pkg/log"
)

var ErrInvalidProfile = errors.New("invalid soil profile")

// Layer is a soil stratum. Elevations are in m, unit weights in kN/m3,
// cohesion and preconsolidation pressure in kPa, friction angle in degrees.
type Layer struct {
	Name          string
	Top           distribution.Distribution
	Bottom        distribution.Distribution
	WetUnitWeight distribution.Distribution
	DryUnitWeight distribution.Distribution
	Cohesion      distribution.Distribution
	FrictionAngle distribution.Distribution
	Cc            distribution.Distribution
	Cr            distribution.Distribution
	E0            distribution.Distribution
	// optional; nil means normally consolidated
	Preconsolidation distribution.Distribution
}

func (l *Layer) Validate(iterations int) error {
	fields := map[string]distribution.Distribution{
		"top":             l.Top,
		"bottom":          l.Bottom,
		"wet_unit_weight": l.WetUnitWeight,
		"dry_unit_weight": l.DryUnitWeight,
		"cohesion":        l.Cohesion,
		"friction_angle":  l.FrictionAngle,
		"cc":              l.Cc,
		"cr":              l.Cr,
		"e0":              l.E0,
	}
	if l.Preconsolidation != nil {
		fields["preconsolidation"] = l.Preconsolidation
	}
	if l.Name == "" {
		return fmt.Errorf("%w: layer without a name", ErrInvalidProfile)
	}
	names := maps.Keys(fields)
	slices.Sort(names)
	for _, name := range names {
		d := fields[name]
		if d == nil {
			return fmt.Errorf("%w: layer %s: %s is required", ErrInvalidProfile, l.Name, name)
		}
		if got := len(d.Samples()); got != iterations {
			return fmt.Errorf("%w: layer %s: %s has %d samples, want %d", ErrInvalidProfile, l.Name, name, got, iterations)
		}
	}
	for i, top := range l.Top.Samples() {
		if top <= l.Bottom.Samples()[i] {
			return fmt.Errorf("%w: layer %s: top %g is not above bottom %g in iteration %d",
				ErrInvalidProfile, l.Name, top, l.Bottom.Samples()[i], i)
		}
	}
	return nil
}

func (l *Layer) String() string {
	return fmt.Sprintf("%s (%sm to %sm)", l.Name, l.Top, l.Bottom)
}

// Profile is a stack of layers over a pore pressure model, evaluated per
// iteration.
type Profile struct {
	iterations int
	layers     []*Layer
	pore       PorePressure
	lg         log.Logger
}

func NewProfile(iterations int, pore PorePressure, lg log.Logger) *Profile {
	return &Profile{iterations: iterations, pore: pore, lg: lg}
}

func (p *Profile) Iterations() int {
	return p.iterations
}

// AddLayer inserts l keeping the layers ordered top down by mean top elevation.
func (p *Profile) AddLayer(ctx context.Context, l *Layer) error {
	if err := l.Validate(p.iterations); err != nil {
		return err
	}
	for _, existing := range p.layers {
		if existing.Name == l.Name {
			return fmt.Errorf("%w: duplicate layer %s", ErrInvalidProfile, l.Name)
		}
	}
	p.layers = append(p.layers, l)
	slices.SortStableFunc(p.layers, func(a, b *Layer) int {
		ta, tb := distribution.Mean(a.Top.Samples()), distribution.Mean(b.Top.Samples())
		switch {
		case ta > tb:
			return -1
		case ta < tb:
			return 1
		}
		return 0
	})
	p.lg.Debug(ctx, "layer added", "layer", l.String(), "layers", len(p.layers))
	return nil
}

func (p *Profile) Layers() []*Layer {
	return slices.Clone(p.layers)
}

func (p *Profile) PorePressureModel() PorePressure {
	return p.pore
}

// Surface is the top of the shallowest layer, per iteration.
func (p *Profile) Surface() []float64 {
	return p.vector(func(i int) float64 {
		return p.SurfaceAt(i)
	})
}

func (p *Profile) SurfaceAt(i int) float64 {
	top := math.Inf(-1)
	for _, l := range p.layers {
		top = math.Max(top, l.Top.Samples()[i])
	}
	return top
}

// TotalStress is the vertical total stress in kPa at elevation z, per iteration.
func (p *Profile) TotalStress(z float64) []float64 {
	return p.vector(func(i int) float64 {
		return p.TotalStressAt(i, z)
	})
}

// TotalStressAt is the weight of soil above z in iteration i, dry above the
// phreatic surface and wet below, plus any water ponded over the surface.
func (p *Profile) TotalStressAt(i int, z float64) float64 {
	wt := p.phreaticAt(i)
	var sigma float64
	for _, l := range p.layers {
		top, bottom := l.Top.Samples()[i], math.Max(l.Bottom.Samples()[i], z)
		if top <= bottom {
			continue
		}
		wet, dry := l.WetUnitWeight.Samples()[i], l.DryUnitWeight.Samples()[i]
		switch {
		case wt >= top:
			sigma += wet * (top - bottom)
		case wt <= bottom:
			sigma += dry * (top - bottom)
		default:
			sigma += dry*(top-wt) + wet*(wt-bottom)
		}
	}
	if ponded := wt - math.Max(p.SurfaceAt(i), z); ponded > 0 && !math.IsInf(ponded, 1) {
		sigma += ponded * WaterUnitWeight
	}
	return sigma
}

func (p *Profile) PorePressure(z float64) []float64 {
	return p.vector(func(i int) float64 {
		return p.PorePressureAt(i, z)
	})
}

func (p *Profile) PorePressureAt(i int, z float64) float64 {
	if p.pore == nil {
		return 0
	}
	return p.pore.PressureAt(i, z)
}

// EffectiveStress is total stress less pore pressure at elevation z.
func (p *Profile) EffectiveStress(z float64) []float64 {
	return p.vector(func(i int) float64 {
		return p.EffectiveStressAt(i, z)
	})
}

func (p *Profile) EffectiveStressAt(i int, z float64) float64 {
	return p.TotalStressAt(i, z) - p.PorePressureAt(i, z)
}

func (p *Profile) phreaticAt(i int) float64 {
	if p.pore == nil {
		return math.Inf(-1)
	}
	return p.pore.PhreaticAt(i)
}

func (p *Profile) vector(fn func(i int) float64) []float64 {
	out := make([]float64, p.iterations)
	for i := range out {
		out[i] = fn(i)
	}
	return out
}

// Samples returns every layer parameter by layer name and parameter name.
func (p *Profile) Samples() map[string]map[string][]float64 {
	out := make(map[string]map[string][]float64, len(p.layers))
	for _, l := range p.layers {
		s := map[string][]float64{
			"top":             l.Top.Samples(),
			"bottom":          l.Bottom.Samples(),
			"wet_unit_weight": l.WetUnitWeight.Samples(),
			"dry_unit_weight": l.DryUnitWeight.Samples(),
			"cohesion":        l.Cohesion.Samples(),
			"friction_angle":  l.FrictionAngle.Samples(),
			"cc":              l.Cc.Samples(),
			"cr":              l.Cr.Samples(),
			"e0":              l.E0.Samples(),
		}
		if l.Preconsolidation != nil {
			s["preconsolidation"] = l.Preconsolidation.Samples()
		}
		out[l.Name] = s
	}
	return out
}
