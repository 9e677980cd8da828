package soil

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-thooh/geotech/internal/geotech/distribution"
	"github.com/x-thooh/geotech/pkg/log/logtest"
)

const iterations = 4

type fixture struct {
	s   *distribution.Sampler
	rec *logtest.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rec := logtest.New(t)
	s, err := distribution.NewSampler(iterations, 42, rec.GetLogger("geotech.distributions"))
	require.NoError(t, err)
	return &fixture{s: s, rec: rec}
}

func (f *fixture) layer(name string, top, bottom float64) *Layer {
	c := f.s.Constant
	return &Layer{
		Name:          name,
		Top:           c(top),
		Bottom:        c(bottom),
		WetUnitWeight: c(20),
		DryUnitWeight: c(18),
		Cohesion:      c(0),
		FrictionAngle: c(35),
		Cc:            c(0.33),
		Cr:            c(0.03),
		E0:            c(1),
	}
}

func (f *fixture) profile(t *testing.T, pore PorePressure) *Profile {
	t.Helper()
	p := NewProfile(iterations, pore, f.rec.GetLogger("geotech.soil"))
	ctx := context.Background()
	require.NoError(t, p.AddLayer(ctx, f.layer("B", 90, 80)))
	require.NoError(t, p.AddLayer(ctx, f.layer("A", 100, 90)))
	return p
}

func each(t *testing.T, want float64, got []float64) {
	t.Helper()
	require.Len(t, got, iterations)
	for _, v := range got {
		assert.InDelta(t, want, v, 1e-9)
	}
}

func pressures(pp PorePressure, z float64) []float64 {
	out := make([]float64, iterations)
	for i := range out {
		out[i] = pp.PressureAt(i, z)
	}
	return out
}

func phreatic(pp PorePressure) []float64 {
	out := make([]float64, iterations)
	for i := range out {
		out[i] = pp.PhreaticAt(i)
	}
	return out
}

func TestAddLayerOrdersTopDown(t *testing.T) {
	f := newFixture(t)
	p := f.profile(t, nil)

	layers := p.Layers()
	require.Len(t, layers, 2)
	assert.Equal(t, "A", layers[0].Name)
	assert.Equal(t, "B", layers[1].Name)
	each(t, 100, p.Surface())

	out := f.rec.Output()
	assert.Contains(t, out, "geotech.soil - DEBUG - layer added layer=A (100m to 90m) layers=2")

	b, err := os.ReadFile(filepath.Join(f.rec.Dir, "logs", "geotech.log"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "geotech.soil - DEBUG - profile:AddLayer:")
}

func TestAddLayerValidation(t *testing.T) {
	f := newFixture(t)
	p := f.profile(t, nil)
	ctx := context.Background()

	assert.ErrorIs(t, p.AddLayer(ctx, f.layer("A", 80, 70)), ErrInvalidProfile)
	assert.ErrorIs(t, p.AddLayer(ctx, f.layer("C", 70, 75)), ErrInvalidProfile)

	missing := f.layer("D", 80, 70)
	missing.Cc = nil
	assert.ErrorIs(t, p.AddLayer(ctx, missing), ErrInvalidProfile)

	other, err := distribution.NewSampler(iterations+1, 1, f.rec.GetLogger("geotech.distributions"))
	require.NoError(t, err)
	short := f.layer("E", 80, 70)
	short.E0 = other.Constant(1)
	assert.ErrorIs(t, p.AddLayer(ctx, short), ErrInvalidProfile)
}

func TestStressesDry(t *testing.T) {
	f := newFixture(t)
	p := f.profile(t, &WaterTable{Elevation: f.s.Constant(0)})

	each(t, 18*10+18*5, p.TotalStress(85))
	each(t, 0, p.PorePressure(85))
	each(t, 270, p.EffectiveStress(85))
	each(t, 0, p.TotalStress(120))
}

func TestStressesBelowWaterTable(t *testing.T) {
	f := newFixture(t)
	p := f.profile(t, &WaterTable{Elevation: f.s.Constant(95), Gradient: f.s.Constant(0)})

	each(t, 18*5+20*5+20*5, p.TotalStress(85))
	each(t, 10*WaterUnitWeight, p.PorePressure(85))
	each(t, 290-10*WaterUnitWeight, p.EffectiveStress(85))
}

func TestArtesianGradient(t *testing.T) {
	f := newFixture(t)
	wt := &WaterTable{Elevation: f.s.Constant(95), Gradient: f.s.Constant(0.2)}
	each(t, 10*WaterUnitWeight*1.2, pressures(wt, 85))
	each(t, 0, pressures(wt, 96))
	assert.Equal(t, "Water table at 95 m", wt.String())
}

func TestPondedWater(t *testing.T) {
	f := newFixture(t)
	p := f.profile(t, &WaterTable{Elevation: f.s.Constant(105)})

	each(t, 5*WaterUnitWeight, p.TotalStress(100))
	each(t, 0, p.EffectiveStress(100))
}

func TestMeasuredPorePressure(t *testing.T) {
	f := newFixture(t)
	c := f.s.Constant
	m, err := NewMeasured([]Measurement{
		{Elevation: 80, Pressure: c(196.2)},
		{Elevation: 100, Pressure: c(0)},
		{Elevation: 90, Pressure: c(98.1)},
	})
	require.NoError(t, err)

	each(t, 49.05, pressures(m, 95))
	each(t, 0, pressures(m, 110))
	each(t, 196.2, pressures(m, 70))
	each(t, 100, phreatic(m))

	suction, err := NewMeasured([]Measurement{
		{Elevation: 100, Pressure: c(-10)},
		{Elevation: 90, Pressure: c(88.1)},
	})
	require.NoError(t, err)
	each(t, 100-10.0/98.1*10, phreatic(suction))
	each(t, 0, pressures(suction, 100))

	dry, err := NewMeasured([]Measurement{{Elevation: 100, Pressure: c(0)}})
	require.NoError(t, err)
	assert.True(t, math.IsInf(dry.PhreaticAt(0), -1))

	_, err = NewMeasured(nil)
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestSamples(t *testing.T) {
	f := newFixture(t)
	p := f.profile(t, nil)
	samples := p.Samples()

	require.Contains(t, samples, "A")
	assert.Equal(t, []float64{0.33, 0.33, 0.33, 0.33}, samples["A"]["cc"])
	assert.NotContains(t, samples["A"], "preconsolidation")
}
