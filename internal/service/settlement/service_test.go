package settlement

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-thooh/geotech/internal/boot/database"
	"github.com/x-thooh/geotech/internal/config"
	"github.com/x-thooh/geotech/internal/service/storage"
	"github.com/x-thooh/geotech/pkg/log/logtest"
	"github.com/x-thooh/geotech/pkg/trace"
)

type fixture struct {
	rec     *logtest.Recorder
	store   *storage.Storage
	service *Service
}

func newFixture(t *testing.T, sim *config.Simulation) *fixture {
	t.Helper()
	rec := logtest.New(t)
	db, cleanup, err := database.InitSQLX(rec.Manager, &database.Config{
		Driver:       database.DriverSQLite,
		Name:         filepath.Join(t.TempDir(), "runs.db"),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(cleanup)

	store, err := storage.New(&storage.Config{Node: 1}, rec.Manager, db)
	require.NoError(t, err)

	s, closeFn, err := New(sim, rec.Manager, store)
	require.NoError(t, err)
	t.Cleanup(closeFn)
	return &fixture{rec: rec, store: store, service: s}
}

func simulation() *config.Simulation {
	return &config.Simulation{
		Iterations: 200,
		Seed:       7,
		PoolSize:   2,
		ChunkSize:  32,
		Sublayers:  5,
		Scenario:   "../../../configs/scenario.yaml",
	}
}

func TestRun(t *testing.T) {
	fx := newFixture(t, simulation())
	ctx := trace.Set(context.Background(), "run-trace")

	runNo, err := fx.service.Run(ctx)
	require.NoError(t, err)

	run, err := fx.store.Get(ctx, runNo)
	require.NoError(t, err)
	assert.Equal(t, "scenario.yaml", run.Scenario)
	assert.Equal(t, 200, run.Iterations)
	assert.Equal(t, int64(7), run.Seed)
	assert.Equal(t, "run-trace", run.TraceId())
	assert.Greater(t, run.Mean, 0.0)
	assert.LessOrEqual(t, run.P5, run.P50)
	assert.LessOrEqual(t, run.P50, run.P95)
	require.NotNil(t, run.Result)
	assert.Len(t, run.Result.Settlement, 200)
	assert.Len(t, run.Result.Layers, 3)

	out := fx.rec.Output()
	for _, want := range []string{
		"main - INFO - run started",
		"geotech.config - INFO - scenario loaded",
		"geotech.distributions - DEBUG - distribution sampled",
		"geotech.soil - DEBUG - layer added",
		"geotech.settlement - INFO - settlement calculated",
		"geotech.store - INFO - run stored",
		"main - INFO - run finished trace_id=run-trace run_no=",
	} {
		assert.Contains(t, out, want)
	}

	// main and the geotech.* loggers also write the rotating file
	data, err := os.ReadFile(filepath.Join(fx.rec.Dir, "logs", "geotech.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "main - INFO - service:Run:")
	assert.NotContains(t, string(data), "geotech.store")
}

func TestRunIsReproducible(t *testing.T) {
	fx := newFixture(t, simulation())
	ctx := context.Background()

	first, err := fx.service.Run(ctx)
	require.NoError(t, err)
	second, err := fx.service.Run(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	a, err := fx.store.Get(ctx, first)
	require.NoError(t, err)
	b, err := fx.store.Get(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, a.Result.Settlement, b.Result.Settlement)
}

func TestRunOverridesPoint(t *testing.T) {
	sim := simulation()
	sim.X = 5
	fx := newFixture(t, sim)

	runNo, err := fx.service.Run(context.Background())
	require.NoError(t, err)
	run, err := fx.store.Get(context.Background(), runNo)
	require.NoError(t, err)
	assert.Equal(t, 5.0, run.Extra.Point.X)
}

func TestRunFailures(t *testing.T) {
	sim := simulation()
	sim.Scenario = filepath.Join(t.TempDir(), "missing.yaml")
	fx := newFixture(t, sim)

	require.Error(t, fx.service.Start(context.Background()))
	assert.Contains(t, fx.rec.Output(), "main - ERROR - run failed")

	sim = simulation()
	sim.Iterations = 0
	fx = newFixture(t, sim)
	_, err := fx.service.Run(context.Background())
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fx = newFixture(t, simulation())
	_, err = fx.service.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, fx.service.Stop(context.Background()))
}
