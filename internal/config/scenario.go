package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/x-thooh/geotech/internal/geotech/distribution"
	"github.com/x-thooh/geotech/internal/geotech/load"
	"github.com/x-thooh/geotech/internal/geotech/settlement"
	"github.com/x-thooh/geotech/internal/geotech/soil"
	"github.com/x-thooh/geotech/pkg/log/xslog"
)

var ErrInvalidScenario = errors.New("invalid scenario")

// ScenarioFile is the on-disk description of a site: the soil column, its
// pore pressures and the load acting on it.
type ScenarioFile struct {
	Pore   PoreFile         `yaml:"pore"`
	Layers []LayerFile      `yaml:"layers"`
	Load   LoadFile         `yaml:"load"`
	At     settlement.Point `yaml:"at"`
}

// PoreFile holds exactly one pore pressure model.
type PoreFile struct {
	WaterTable *WaterTableFile   `yaml:"water_table,omitempty"`
	Measured   []MeasurementFile `yaml:"measured,omitempty"`
}

type WaterTableFile struct {
	Elevation distribution.Spec  `yaml:"elevation"`
	Gradient  *distribution.Spec `yaml:"gradient,omitempty"`
}

type MeasurementFile struct {
	Elevation float64           `yaml:"elevation"`
	Pressure  distribution.Spec `yaml:"pressure"`
}

type LayerFile struct {
	Name             string             `yaml:"name"`
	Top              distribution.Spec  `yaml:"top"`
	Bottom           distribution.Spec  `yaml:"bottom"`
	WetUnitWeight    distribution.Spec  `yaml:"wet_unit_weight"`
	DryUnitWeight    distribution.Spec  `yaml:"dry_unit_weight"`
	Cohesion         distribution.Spec  `yaml:"cohesion"`
	FrictionAngle    distribution.Spec  `yaml:"friction_angle"`
	Cc               distribution.Spec  `yaml:"cc"`
	Cr               distribution.Spec  `yaml:"cr"`
	E0               distribution.Spec  `yaml:"e0"`
	Preconsolidation *distribution.Spec `yaml:"preconsolidation,omitempty"`
}

type LoadFile struct {
	Point *PointLoadFile `yaml:"point"`
}

type PointLoadFile struct {
	Q         distribution.Spec `yaml:"q"`
	X         distribution.Spec `yaml:"x"`
	Y         distribution.Spec `yaml:"y"`
	Elevation distribution.Spec `yaml:"elevation"`
}

// Scenario is a sampled site ready for a settlement calculation.
type Scenario struct {
	Profile *soil.Profile
	Load    load.Load
	At      settlement.Point
}

// LoadScenario reads the scenario at path and draws every distribution in
// it from s. Loggers are taken from m.
func LoadScenario(ctx context.Context, path string, s *distribution.Sampler, m *xslog.Manager) (*Scenario, error) {
	lg := m.GetLogger("geotech.config")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var f ScenarioFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err = dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	lg.Debug(ctx, "scenario read", "path", path, "layers", len(f.Layers))

	sc, err := f.build(ctx, s, m)
	if err != nil {
		lg.Error(ctx, "scenario rejected", "path", path, "err", err)
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	lg.Info(ctx, "scenario loaded", "path", path, "pore", sc.Profile.PorePressureModel(), "load", sc.Load,
		"iterations", s.Iterations(), "seed", s.Seed())
	return sc, nil
}

func (f *ScenarioFile) build(ctx context.Context, s *distribution.Sampler, m *xslog.Manager) (*Scenario, error) {
	if len(f.Layers) == 0 {
		return nil, fmt.Errorf("%w: no layers", ErrInvalidScenario)
	}
	pore, err := f.Pore.build(s)
	if err != nil {
		return nil, err
	}
	p := soil.NewProfile(s.Iterations(), pore, m.GetLogger("geotech.soil"))
	for _, lf := range f.Layers {
		l, err := lf.build(s)
		if err != nil {
			return nil, err
		}
		if err = p.AddLayer(ctx, l); err != nil {
			return nil, err
		}
	}
	if f.Load.Point == nil {
		return nil, fmt.Errorf("%w: no load", ErrInvalidScenario)
	}
	ld, err := f.Load.Point.build(s, m)
	if err != nil {
		return nil, err
	}
	return &Scenario{Profile: p, Load: ld, At: f.At}, nil
}

func (f *PoreFile) build(s *distribution.Sampler) (soil.PorePressure, error) {
	switch {
	case f.WaterTable != nil && len(f.Measured) > 0:
		return nil, fmt.Errorf("%w: pore declares both water_table and measured", ErrInvalidScenario)
	case f.WaterTable != nil:
		elevation, err := s.Build(f.WaterTable.Elevation)
		if err != nil {
			return nil, fmt.Errorf("pore water_table elevation: %w", err)
		}
		wt := &soil.WaterTable{Elevation: elevation}
		if f.WaterTable.Gradient != nil {
			if wt.Gradient, err = s.Build(*f.WaterTable.Gradient); err != nil {
				return nil, fmt.Errorf("pore water_table gradient: %w", err)
			}
		}
		return wt, nil
	case len(f.Measured) > 0:
		points := make([]soil.Measurement, 0, len(f.Measured))
		for _, mf := range f.Measured {
			pressure, err := s.Build(mf.Pressure)
			if err != nil {
				return nil, fmt.Errorf("pore measured at %g: %w", mf.Elevation, err)
			}
			points = append(points, soil.Measurement{Elevation: mf.Elevation, Pressure: pressure})
		}
		return soil.NewMeasured(points)
	default:
		return nil, fmt.Errorf("%w: no pore pressure model", ErrInvalidScenario)
	}
}

func (f *LayerFile) build(s *distribution.Sampler) (*soil.Layer, error) {
	l := &soil.Layer{Name: f.Name}
	for _, field := range []struct {
		name string
		spec distribution.Spec
		dst  *distribution.Distribution
	}{
		{"top", f.Top, &l.Top},
		{"bottom", f.Bottom, &l.Bottom},
		{"wet_unit_weight", f.WetUnitWeight, &l.WetUnitWeight},
		{"dry_unit_weight", f.DryUnitWeight, &l.DryUnitWeight},
		{"cohesion", f.Cohesion, &l.Cohesion},
		{"friction_angle", f.FrictionAngle, &l.FrictionAngle},
		{"cc", f.Cc, &l.Cc},
		{"cr", f.Cr, &l.Cr},
		{"e0", f.E0, &l.E0},
	} {
		d, err := s.Build(field.spec)
		if err != nil {
			return nil, fmt.Errorf("layer %s %s: %w", f.Name, field.name, err)
		}
		*field.dst = d
	}
	if f.Preconsolidation != nil {
		d, err := s.Build(*f.Preconsolidation)
		if err != nil {
			return nil, fmt.Errorf("layer %s preconsolidation: %w", f.Name, err)
		}
		l.Preconsolidation = d
	}
	return l, nil
}

func (f *PointLoadFile) build(s *distribution.Sampler, m *xslog.Manager) (*load.PointLoad, error) {
	var ds [4]distribution.Distribution
	for i, spec := range []distribution.Spec{f.Q, f.X, f.Y, f.Elevation} {
		d, err := s.Build(spec)
		if err != nil {
			return nil, fmt.Errorf("point load: %w", err)
		}
		ds[i] = d
	}
	return load.NewPointLoad(ds[0], ds[1], ds[2], ds[3], m.GetLogger("geotech.loads"))
}
