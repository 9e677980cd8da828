package load

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-thooh/geotech/internal/geotech/distribution"
	"github.com/x-thooh/geotech/pkg/log/logtest"
)

func TestPointLoadBoussinesq(t *testing.T) {
	rec := logtest.New(t)
	s, err := distribution.NewSampler(3, 1, rec.GetLogger("geotech.distributions"))
	require.NoError(t, err)
	c := s.Constant

	pl, err := NewPointLoad(c(100), c(0), c(0), c(100), rec.GetLogger("geotech.loads"))
	require.NoError(t, err)
	assert.Equal(t, "100 kN at (0, 0, 100)", pl.String())
	ctx := context.Background()

	// directly below: 3Q / (2 pi z^2)
	for _, v := range pl.VerticalStress(ctx, 0, 0, 95) {
		assert.InDelta(t, 3*100/(2*math.Pi*25), v, 1e-9)
	}
	// r = z halves the denominator term to 2^2.5
	for _, v := range pl.VerticalStress(ctx, 3, 4, 95) {
		assert.InDelta(t, 3*100/(2*math.Pi*25)/math.Pow(2, 2.5), v, 1e-9)
	}
	// stress decays with depth
	shallow := pl.VerticalStress(ctx, 0, 0, 99)[0]
	deep := pl.VerticalStress(ctx, 0, 0, 90)[0]
	assert.Greater(t, shallow, deep)

	assert.Equal(t, []float64{0, 0, 0}, pl.VerticalStress(ctx, 0, 0, 100))
}

func TestPointLoadLogsThroughRoot(t *testing.T) {
	rec := logtest.New(t)
	s, err := distribution.NewSampler(2, 1, rec.GetLogger("geotech.distributions"))
	require.NoError(t, err)
	lg := rec.GetLogger("geotech.loads")

	pl, err := NewPointLoad(s.Constant(10), s.Constant(0), s.Constant(0), s.Constant(0), lg)
	require.NoError(t, err)
	pl.VerticalStress(context.Background(), 0, 0, 5)

	// geotech.loads is not in the document: root is INFO, so debug is dropped
	assert.NotContains(t, rec.Output(), "point at or above the load")
	lg.Info(context.Background(), "load applied")
	assert.Contains(t, rec.Output(), "geotech.loads - INFO - load applied")
}

func TestNewPointLoadChecksIterations(t *testing.T) {
	rec := logtest.New(t)
	a, err := distribution.NewSampler(2, 1, rec.GetLogger("geotech.distributions"))
	require.NoError(t, err)
	b, err := distribution.NewSampler(3, 1, rec.GetLogger("geotech.distributions"))
	require.NoError(t, err)

	_, err = NewPointLoad(a.Constant(1), a.Constant(0), b.Constant(0), a.Constant(0), rec.GetLogger("geotech.loads"))
	assert.ErrorIs(t, err, distribution.ErrInvalidParameter)
}
