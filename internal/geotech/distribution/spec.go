package distribution

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	KindConstant  = "constant"
	KindUniform   = "uniform"
	KindNormal    = "normal"
	KindLogNormal = "lognormal"
	KindBootstrap = "bootstrap"
)

// Spec declares a distribution in a scenario file. A bare number is a
// constant; otherwise the mapping names the kind and its parameters.
type Spec struct {
	Kind   string    `yaml:"kind"`
	Value  float64   `yaml:"value,omitempty"`
	Lower  float64   `yaml:"lower,omitempty"`
	Upper  float64   `yaml:"upper,omitempty"`
	Mean   float64   `yaml:"mean,omitempty"`
	Std    float64   `yaml:"std,omitempty"`
	Mu     float64   `yaml:"mu,omitempty"`
	Sigma  float64   `yaml:"sigma,omitempty"`
	Values []float64 `yaml:"values,omitempty"`
}

func ConstantSpec(v float64) Spec {
	return Spec{Kind: KindConstant, Value: v}
}

func (s *Spec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		v, err := strconv.ParseFloat(value.Value, 64)
		if err != nil {
			return fmt.Errorf("line %d: %w: %q is not a number", value.Line, ErrInvalidParameter, value.Value)
		}
		*s = ConstantSpec(v)
		return nil
	}
	type plain Spec
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*s = Spec(p)
	s.Kind = strings.ToLower(s.Kind)
	return nil
}

func (s Spec) MarshalYAML() (interface{}, error) {
	if s.Kind == KindConstant {
		return s.Value, nil
	}
	type plain Spec
	return plain(s), nil
}

// Build draws the distribution s declares.
func (s *Sampler) Build(spec Spec) (Distribution, error) {
	switch spec.Kind {
	case KindConstant, "":
		return s.Constant(spec.Value), nil
	case KindUniform:
		return s.Uniform(spec.Lower, spec.Upper)
	case KindNormal:
		return s.Normal(spec.Mean, spec.Std)
	case KindLogNormal:
		return s.LogNormal(spec.Mu, spec.Sigma)
	case KindBootstrap:
		return s.Bootstrap(spec.Values)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidParameter, spec.Kind)
	}
}
