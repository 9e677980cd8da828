package distribution

import (
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution is a parameter that varies across iterations. Samples holds
// one value per iteration and is fixed at construction, so every use of the
// parameter within an iteration sees the same value.
type Distribution interface {
	Samples() []float64
	String() string
}

type samples []float64

func (s samples) Samples() []float64 {
	return s
}

type Constant struct {
	samples
	Value float64
}

func (s *Sampler) Constant(v float64) *Constant {
	out := make([]float64, s.iterations)
	for i := range out {
		out[i] = v
	}
	return &Constant{samples: out, Value: v}
}

func (c *Constant) String() string {
	return strconv.FormatFloat(c.Value, 'g', -1, 64)
}

type Uniform struct {
	samples
	Lower, Upper float64
}

func (s *Sampler) Uniform(lower, upper float64) (*Uniform, error) {
	if lower > upper {
		return nil, fmt.Errorf("%w: uniform lower %g above upper %g", ErrInvalidParameter, lower, upper)
	}
	d := &Uniform{
		samples: s.draw(distuv.Uniform{Min: lower, Max: upper, Src: s.src}.Rand),
		Lower:   lower,
		Upper:   upper,
	}
	s.logDrawn(d)
	return d, nil
}

func (u *Uniform) String() string {
	return fmt.Sprintf("%g to %g", u.Lower, u.Upper)
}

type Normal struct {
	samples
	Mean, Std float64
}

func (s *Sampler) Normal(mean, std float64) (*Normal, error) {
	if std < 0 {
		return nil, fmt.Errorf("%w: normal std %g is negative", ErrInvalidParameter, std)
	}
	d := &Normal{
		samples: s.draw(distuv.Normal{Mu: mean, Sigma: std, Src: s.src}.Rand),
		Mean:    mean,
		Std:     std,
	}
	s.logDrawn(d)
	return d, nil
}

func (n *Normal) String() string {
	return fmt.Sprintf("%g +- %g", n.Mean, n.Std)
}

// LogNormal is parameterised by the mean and standard deviation of the
// underlying normal distribution.
type LogNormal struct {
	samples
	Mu, Sigma float64
}

func (s *Sampler) LogNormal(mu, sigma float64) (*LogNormal, error) {
	if sigma < 0 {
		return nil, fmt.Errorf("%w: lognormal sigma %g is negative", ErrInvalidParameter, sigma)
	}
	d := &LogNormal{
		samples: s.draw(distuv.LogNormal{Mu: mu, Sigma: sigma, Src: s.src}.Rand),
		Mu:      mu,
		Sigma:   sigma,
	}
	s.logDrawn(d)
	return d, nil
}

func (l *LogNormal) String() string {
	return fmt.Sprintf("lognormal(mu=%g, sigma=%g)", l.Mu, l.Sigma)
}

// Bootstrap resamples observed values with replacement.
type Bootstrap struct {
	samples
	Observed []float64
}

func (s *Sampler) Bootstrap(observed []float64) (*Bootstrap, error) {
	if len(observed) == 0 {
		return nil, fmt.Errorf("%w: bootstrap needs at least one observation", ErrInvalidParameter)
	}
	obs := append([]float64(nil), observed...)
	d := &Bootstrap{
		samples: s.draw(func() float64 {
			return obs[s.rng.IntN(len(obs))]
		}),
		Observed: obs,
	}
	s.logDrawn(d)
	return d, nil
}

func (b *Bootstrap) String() string {
	return fmt.Sprintf("bootstrap of %d observations", len(b.Observed))
}
