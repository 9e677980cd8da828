package distribution

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/x-thooh/geotech/pkg/log"
)

var ErrInvalidParameter = errors.New("invalid distribution parameter")

// Sampler draws the per-iteration sample vectors of every distribution in
// one simulation. All distributions of a run share its iteration count and
// random stream, so a run is reproducible from its seed.
type Sampler struct {
	iterations int
	seed       uint64
	lg         log.Logger

	// draw 持有 mu 时才访问 src 和 rng
	mu  sync.Mutex
	src rand.Source
	rng *rand.Rand
}

func NewSampler(iterations int, seed uint64, lg log.Logger) (*Sampler, error) {
	if iterations <= 0 {
		return nil, fmt.Errorf("%w: iterations must be positive, got %d", ErrInvalidParameter, iterations)
	}
	lg.Debug(context.Background(), "sampler created", "iterations", iterations, "seed", seed)
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &Sampler{
		iterations: iterations,
		seed:       seed,
		lg:         lg,
		src:        src,
		rng:        rand.New(src),
	}, nil
}

func (s *Sampler) Iterations() int {
	return s.iterations
}

func (s *Sampler) Seed() uint64 {
	return s.seed
}

func (s *Sampler) draw(next func() float64) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float64, s.iterations)
	for i := range out {
		out[i] = next()
	}
	return out
}

func (s *Sampler) logDrawn(d Distribution) {
	s.lg.Debug(context.Background(), "distribution sampled",
		"distribution", d.String(),
		"mean", Mean(d.Samples()),
	)
}
