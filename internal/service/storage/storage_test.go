package storage

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-thooh/geotech/internal/boot/database"
	"github.com/x-thooh/geotech/internal/geotech/settlement"
	"github.com/x-thooh/geotech/pkg/log/logtest"
	"github.com/x-thooh/geotech/pkg/trace"
)

func setup(t *testing.T) (*Storage, *logtest.Recorder, *sqlx.DB) {
	t.Helper()
	rec := logtest.New(t)
	db, cleanup, err := database.InitSQLX(rec.Manager, &database.Config{
		Debug:        true,
		Driver:       database.DriverSQLite,
		Name:         filepath.Join(t.TempDir(), "runs.db"),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(cleanup)

	s, err := New(&Config{Node: 3}, rec.Manager, db)
	require.NoError(t, err)
	return s, rec, db
}

func result() *settlement.Result {
	return &settlement.Result{
		Iterations: 3,
		Settlement: []float64{0.1, 0.2, 0.3},
		Layers: []settlement.LayerResult{
			{Name: "clay", Settlement: []float64{0.1, 0.2, 0.3}, Mean: 0.2},
		},
		Mean: 0.2,
		Std:  0.1,
		P5:   0.11,
		P50:  0.2,
		P95:  0.29,
	}
}

func TestSaveAndGet(t *testing.T) {
	s, rec, _ := setup(t)
	ctx := trace.Set(context.Background(), "trace-1")

	before := time.Now().Add(-time.Second)
	runNo, err := s.Save(ctx, result(),
		WithScenario("scenario.yaml"),
		WithSeed(42),
		WithPoint(settlement.Point{X: 1, Y: 2}),
		WithLabels(map[string]string{"env": "test"}),
	)
	require.NoError(t, err)
	assert.NotZero(t, runNo)

	run, err := s.Get(ctx, runNo)
	require.NoError(t, err)
	assert.Equal(t, runNo, run.RunNo)
	assert.Equal(t, "scenario.yaml", run.Scenario)
	assert.Equal(t, int64(42), run.Seed)
	assert.Equal(t, 3, run.Iterations)
	assert.Equal(t, "trace-1", run.TraceId())
	assert.Equal(t, settlement.Point{X: 1, Y: 2}, run.Extra.Point)
	assert.Equal(t, "test", run.Extra.Labels["env"])
	assert.WithinDuration(t, before, run.CreatedAt, 5*time.Second)
	if diff := cmp.Diff(result(), (*settlement.Result)(run.Result)); diff != "" {
		t.Fatalf("stored result differs (-want +got):\n%s", diff)
	}

	// 日志：geotech.store 走 root，INFO 可见
	assert.Contains(t, rec.Output(), "geotech.store - INFO - run stored")
}

func TestSaveRejectsOversizedSeed(t *testing.T) {
	s, _, _ := setup(t)
	ctx := context.Background()

	_, err := s.Save(ctx, result(), WithSeed(math.MaxUint64))
	assert.ErrorIs(t, err, ErrInvalidSeed)

	runNo, err := s.Save(ctx, result(), WithSeed(math.MaxInt64))
	require.NoError(t, err)
	run, err := s.Get(ctx, runNo)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), run.Seed)
}

func TestGetMissing(t *testing.T) {
	s, _, _ := setup(t)
	_, err := s.Get(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestList(t *testing.T) {
	s, _, _ := setup(t)
	ctx := context.Background()

	var nos []int64
	for range 3 {
		no, err := s.Save(ctx, result())
		require.NoError(t, err)
		nos = append(nos, no)
	}

	runs, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, nos[2], runs[0].RunNo)
	assert.Equal(t, nos[1], runs[1].RunNo)
	assert.Nil(t, runs[0].Result)
	assert.Equal(t, "default", runs[0].Scenario)

	runs, err = s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestNewIsIdempotent(t *testing.T) {
	s, rec, db := setup(t)
	_, err := s.Save(context.Background(), result())
	require.NoError(t, err)

	again, err := New(&Config{Node: 4}, rec.Manager, db)
	require.NoError(t, err)
	runs, err := again.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestNewRejectsNode(t *testing.T) {
	rec := logtest.New(t)
	_, err := New(&Config{Node: 5000}, rec.Manager, nil)
	require.Error(t, err)
}

func TestScanJSON(t *testing.T) {
	var e Extra
	require.NoError(t, e.Scan([]byte(`{"trace_id":"a"}`)))
	assert.Equal(t, "a", e.TraceId)
	require.NoError(t, e.Scan(`{"trace_id":"b"}`))
	assert.Equal(t, "b", e.TraceId)
	assert.Error(t, e.Scan(42))
}
