package settlement

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/x-thooh/geotech/internal/config"
	"github.com/x-thooh/geotech/internal/geotech/distribution"
	geo "github.com/x-thooh/geotech/internal/geotech/settlement"
	"github.com/x-thooh/geotech/internal/service/storage"
	"github.com/x-thooh/geotech/pkg/log"
	"github.com/x-thooh/geotech/pkg/log/xslog"
	"github.com/x-thooh/geotech/pkg/trace"
)

// Service samples the configured scenario, computes its settlement and
// stores the run.
type Service struct {
	cfg     *config.Simulation
	m       *xslog.Manager
	lg      log.Logger
	storage *storage.Storage
	calc    *geo.Calculator
}

func New(
	cfg *config.Simulation,
	m *xslog.Manager,
	storage *storage.Storage,
) (*Service, func(), error) {
	calc, err := geo.NewCalculator(m.GetLogger("geotech.settlement"),
		geo.WithPoolSize(cfg.PoolSize),
		geo.WithChunkSize(cfg.ChunkSize),
		geo.WithSublayers(cfg.Sublayers),
	)
	if err != nil {
		return nil, nil, err
	}
	s := &Service{
		cfg:     cfg,
		m:       m,
		lg:      m.GetLogger("main"),
		storage: storage,
		calc:    calc,
	}
	return s, calc.Close, nil
}

// Run performs one settlement run and returns its run number.
func (s *Service) Run(ctx context.Context) (int64, error) {
	if trace.Get(ctx) == "" {
		ctx = trace.Set(ctx, trace.GenerateTraceID())
	}
	begin := time.Now()
	s.lg.Info(ctx, "run started", "scenario", s.cfg.Scenario, "iterations", s.cfg.Iterations, "seed", s.cfg.Seed)

	sampler, err := distribution.NewSampler(s.cfg.Iterations, s.cfg.Seed, s.m.GetLogger("geotech.distributions"))
	if err != nil {
		return 0, s.fail(ctx, fmt.Errorf("sampler: %w", err))
	}
	sc, err := config.LoadScenario(ctx, s.cfg.Scenario, sampler, s.m)
	if err != nil {
		return 0, s.fail(ctx, err)
	}
	at := sc.At
	if s.cfg.X != 0 || s.cfg.Y != 0 {
		at = geo.Point{X: s.cfg.X, Y: s.cfg.Y}
	}
	res, err := s.calc.Calculate(ctx, sc.Profile, sc.Load, at)
	if err != nil {
		return 0, s.fail(ctx, err)
	}
	runNo, err := s.storage.Save(ctx, res,
		storage.WithScenario(filepath.Base(s.cfg.Scenario)),
		storage.WithSeed(s.cfg.Seed),
		storage.WithPoint(at),
	)
	if err != nil {
		return 0, s.fail(ctx, err)
	}
	s.lg.Info(ctx, "run finished", "run_no", runNo, "mean", res.Mean, "p95", res.P95,
		"elapsed", time.Since(begin).Round(time.Millisecond))
	return runNo, nil
}

func (s *Service) fail(ctx context.Context, err error) error {
	s.lg.Error(ctx, "run failed", "err", err)
	return err
}

// Start runs the scenario once at boot.
func (s *Service) Start(ctx context.Context) error {
	_, err := s.Run(ctx)
	return err
}

func (s *Service) Stop(_ context.Context) error {
	return nil
}
