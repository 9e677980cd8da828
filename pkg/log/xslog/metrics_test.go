package xslog

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCountRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	fx := configure(t, shipped(t), WithRegisterer(reg))
	ctx := context.Background()

	soil := fx.m.GetLogger("geotech.soil")
	soil.Debug(ctx, "a")
	soil.Debug(ctx, "b")
	soil.Info(ctx, "c")
	fx.m.GetLogger("geotech.loads").Debug(ctx, "filtered before a record exists")

	assert.Equal(t, 2.0, testutil.ToFloat64(fx.m.metrics.records.WithLabelValues("geotech.soil", "DEBUG")))
	assert.Equal(t, 1.0, testutil.ToFloat64(fx.m.metrics.records.WithLabelValues("geotech.soil", "INFO")))

	// a second manager on the same registry shares the collectors
	other := configure(t, shipped(t), WithRegisterer(reg))
	other.m.GetLogger("geotech.soil").Debug(ctx, "d")
	assert.Equal(t, 3.0, testutil.ToFloat64(fx.m.metrics.records.WithLabelValues("geotech.soil", "DEBUG")))

	n, err := testutil.GatherAndCount(reg, "geotech_log_records_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
