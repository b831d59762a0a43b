package workload

import (
	"fmt"
	"math"
	"math/rand"
)

// DistSpec parameterizes a duration distribution.
type DistSpec struct {
	// Type is one of "normal", "weibull", "exponential", "lognormal",
	// "uniform", "constant".
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

var validDistTypes = map[string]bool{
	"normal": true, "weibull": true, "exponential": true,
	"lognormal": true, "uniform": true, "constant": true,
}

// IsValidDistType reports whether name is a recognized distribution type.
func IsValidDistType(name string) bool {
	return validDistTypes[name]
}

// Validate checks the spec's type and that every parameter is finite.
func (d *DistSpec) Validate() error {
	if !validDistTypes[d.Type] {
		return fmt.Errorf("unknown distribution type %q; valid: normal, weibull, exponential, lognormal, uniform, constant", d.Type)
	}
	for name, val := range d.Params {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("params.%s must be a finite number, got %f", name, val)
		}
	}
	_, err := NewDurationSampler(*d)
	return err
}

// DurationSampler generates non-negative durations.
type DurationSampler interface {
	// Sample returns a duration >= 0.
	Sample(rng *rand.Rand) float64
}

// NormalSampler produces Gaussian durations clamped at zero.
type NormalSampler struct {
	mean, stdDev float64
}

func (s *NormalSampler) Sample(rng *rand.Rand) float64 {
	return math.Max(0, rng.NormFloat64()*s.stdDev+s.mean)
}

// WeibullDurationSampler produces Weibull(shape, scale) durations via the
// inverse CDF.
type WeibullDurationSampler struct {
	shape, scale float64
}

func (s *WeibullDurationSampler) Sample(rng *rand.Rand) float64 {
	u := rng.Float64()
	if u == 0 {
		u = math.SmallestNonzeroFloat64
	}
	return s.scale * math.Pow(-math.Log(u), 1.0/s.shape)
}

// ExponentialSampler produces exponentially-distributed durations.
type ExponentialSampler struct {
	mean float64
}

func (s *ExponentialSampler) Sample(rng *rand.Rand) float64 {
	return rng.ExpFloat64() * s.mean
}

// LogNormalSampler produces durations with exp(mu + sigma*Z).
type LogNormalSampler struct {
	mu, sigma float64
}

func (s *LogNormalSampler) Sample(rng *rand.Rand) float64 {
	val := math.Exp(s.mu + s.sigma*rng.NormFloat64())
	if math.IsInf(val, 0) || math.IsNaN(val) {
		return 0
	}
	return val
}

// UniformSampler produces durations uniform on [min, max).
type UniformSampler struct {
	min, max float64
}

func (s *UniformSampler) Sample(rng *rand.Rand) float64 {
	return s.min + rng.Float64()*(s.max-s.min)
}

// ConstantDurationSampler always returns the same fixed duration.
type ConstantDurationSampler struct {
	value float64
}

func (s *ConstantDurationSampler) Sample(_ *rand.Rand) float64 {
	return s.value
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

// NewDurationSampler creates a DurationSampler from a DistSpec.
func NewDurationSampler(spec DistSpec) (DurationSampler, error) {
	switch spec.Type {
	case "normal":
		if err := requireParam(spec.Params, "mean", "std_dev"); err != nil {
			return nil, err
		}
		if spec.Params["std_dev"] < 0 {
			return nil, fmt.Errorf("normal std_dev must be non-negative, got %f", spec.Params["std_dev"])
		}
		return &NormalSampler{mean: spec.Params["mean"], stdDev: spec.Params["std_dev"]}, nil

	case "weibull":
		if err := requireParam(spec.Params, "shape", "scale"); err != nil {
			return nil, err
		}
		if spec.Params["shape"] <= 0 || spec.Params["scale"] <= 0 {
			return nil, fmt.Errorf("weibull shape and scale must be positive")
		}
		return &WeibullDurationSampler{shape: spec.Params["shape"], scale: spec.Params["scale"]}, nil

	case "exponential":
		if err := requireParam(spec.Params, "mean"); err != nil {
			return nil, err
		}
		if spec.Params["mean"] <= 0 {
			return nil, fmt.Errorf("exponential mean must be positive, got %f", spec.Params["mean"])
		}
		return &ExponentialSampler{mean: spec.Params["mean"]}, nil

	case "lognormal":
		if err := requireParam(spec.Params, "mu", "sigma"); err != nil {
			return nil, err
		}
		return &LogNormalSampler{mu: spec.Params["mu"], sigma: spec.Params["sigma"]}, nil

	case "uniform":
		if err := requireParam(spec.Params, "min", "max"); err != nil {
			return nil, err
		}
		if spec.Params["min"] < 0 || spec.Params["max"] < spec.Params["min"] {
			return nil, fmt.Errorf("uniform requires 0 <= min <= max")
		}
		return &UniformSampler{min: spec.Params["min"], max: spec.Params["max"]}, nil

	case "constant":
		if err := requireParam(spec.Params, "value"); err != nil {
			return nil, err
		}
		if spec.Params["value"] < 0 {
			return nil, fmt.Errorf("constant value must be non-negative, got %f", spec.Params["value"])
		}
		return &ConstantDurationSampler{value: spec.Params["value"]}, nil

	default:
		return nil, fmt.Errorf("unknown distribution type %q", spec.Type)
	}
}
