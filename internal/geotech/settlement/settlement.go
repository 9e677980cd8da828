package settlement

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants"

	"github.com/x-thooh/geotech/internal/geotech/distribution"
	"github.com/x-thooh/geotech/internal/geotech/load"
	"github.com/x-thooh/geotech/internal/geotech/soil"
	"github.com/x-thooh/geotech/pkg/log"
)

var ErrEmptyProfile = errors.New("profile has no layers")

// Point is the plan location settlement is evaluated under.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

type LayerResult struct {
	Name       string    `json:"name"`
	Settlement []float64 `json:"settlement"`
	Mean       float64   `json:"mean"`
}

// Result holds primary consolidation settlement in m, per iteration and
// per layer, with summary statistics over the iterations.
type Result struct {
	Iterations int           `json:"iterations"`
	Settlement []float64     `json:"settlement"`
	Layers     []LayerResult `json:"layers"`
	Mean       float64       `json:"mean"`
	Std        float64       `json:"std"`
	P5         float64       `json:"p5"`
	P50        float64       `json:"p50"`
	P95        float64       `json:"p95"`
	// sublayers left out because their effective stress was not positive
	Skipped int `json:"skipped"`
}

// Calculator evaluates settlement iterations concurrently on a worker pool.
type Calculator struct {
	o    *options
	lg   log.Logger
	pool *ants.Pool
}

func NewCalculator(lg log.Logger, opts ...Option) (*Calculator, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	pool, err := ants.NewPool(o.poolSize,
		ants.WithPreAlloc(true),
		ants.WithExpiryDuration(31*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("settlement pool: %w", err)
	}
	return &Calculator{o: o, lg: lg, pool: pool}, nil
}

func (c *Calculator) Close() {
	c.pool.Release()
}

// Calculate computes the settlement under at caused by ld.
func (c *Calculator) Calculate(ctx context.Context, p *soil.Profile, ld load.Load, at Point) (*Result, error) {
	layers := p.Layers()
	if len(layers) == 0 {
		return nil, ErrEmptyProfile
	}
	n := p.Iterations()
	begin := time.Now()
	c.lg.Info(ctx, "settlement calculation started",
		"iterations", n, "layers", len(layers), "load", ld.String(), "x", at.X, "y", at.Y)

	perLayer := make([][]float64, len(layers))
	for i := range perLayer {
		perLayer[i] = make([]float64, n)
	}

	var (
		wg      sync.WaitGroup
		skipped atomic.Int64
		errOnce sync.Once
		runErr  error
	)
	for start := 0; start < n; start += c.o.chunk {
		end := min(start+c.o.chunk, n)
		wg.Add(1)
		err := c.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			for i := start; i < end; i++ {
				skipped.Add(int64(c.iteration(i, p, layers, ld, at, perLayer)))
			}
		})
		if err != nil {
			wg.Done()
			errOnce.Do(func() {
				runErr = fmt.Errorf("submit iterations %d-%d: %w", start, end, err)
			})
			break
		}
	}
	wg.Wait()
	if runErr != nil {
		return nil, runErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		Iterations: n,
		Settlement: make([]float64, n),
		Layers:     make([]LayerResult, len(layers)),
		Skipped:    int(skipped.Load()),
	}
	for li, l := range layers {
		for i, s := range perLayer[li] {
			res.Settlement[i] += s
		}
		res.Layers[li] = LayerResult{
			Name:       l.Name,
			Settlement: perLayer[li],
			Mean:       distribution.Mean(perLayer[li]),
		}
		c.lg.Debug(ctx, "layer settlement", "layer", l.Name, "mean", res.Layers[li].Mean)
	}
	res.Mean = distribution.Mean(res.Settlement)
	res.Std = distribution.Std(res.Settlement)
	res.P5 = distribution.Percentile(res.Settlement, 5)
	res.P50 = distribution.Percentile(res.Settlement, 50)
	res.P95 = distribution.Percentile(res.Settlement, 95)

	if res.Skipped > 0 {
		c.lg.Warn(ctx, "sublayers without positive effective stress were skipped", "count", res.Skipped)
	}
	c.lg.Info(ctx, "settlement calculated",
		"mean", res.Mean, "p95", res.P95, "elapsed", time.Since(begin).String())
	return res, nil
}

// iteration accumulates iteration i into perLayer and returns how many
// sublayers it skipped. Each iteration owns index i of every slice.
func (c *Calculator) iteration(i int, p *soil.Profile, layers []*soil.Layer, ld load.Load, at Point, perLayer [][]float64) int {
	skipped := 0
	for li, l := range layers {
		top, bottom := l.Top.Samples()[i], l.Bottom.Samples()[i]
		h := (top - bottom) / float64(c.o.sublayers)
		cc, cr, e0 := l.Cc.Samples()[i], l.Cr.Samples()[i], l.E0.Samples()[i]
		for k := 0; k < c.o.sublayers; k++ {
			z := top - (float64(k)+0.5)*h
			s0 := p.EffectiveStressAt(i, z)
			if s0 <= 0 {
				skipped++
				continue
			}
			sp := s0
			if l.Preconsolidation != nil {
				sp = math.Max(l.Preconsolidation.Samples()[i], s0)
			}
			ds := ld.VerticalStressAt(i, at.X, at.Y, z)
			perLayer[li][i] += Consolidation(h, e0, cc, cr, s0, sp, s0+ds)
		}
	}
	return skipped
}

// Consolidation is the primary consolidation settlement of a sublayer of
// thickness h loaded from effective stress s0 to s1, with preconsolidation
// pressure sp (sp <= s0 means normally consolidated).
func Consolidation(h, e0, cc, cr, s0, sp, s1 float64) float64 {
	if s1 <= s0 {
		return 0
	}
	k := h / (1 + e0)
	switch {
	case sp <= s0:
		return cc * k * math.Log10(s1/s0)
	case s1 <= sp:
		return cr * k * math.Log10(s1/s0)
	default:
		return cr*k*math.Log10(sp/s0) + cc*k*math.Log10(s1/sp)
	}
}
