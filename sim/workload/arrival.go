// Package workload provides the stochastic inputs of a simulation run:
// inter-arrival time processes and duration distributions. Every sampler draws
// from an explicitly passed *rand.Rand so callers control determinism.
package workload

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// ArrivalSpec configures the inter-arrival time process.
type ArrivalSpec struct {
	// Process is one of "poisson", "gamma", "weibull", "constant".
	Process string `yaml:"process"`
	// Rate is the mean number of arrivals per time unit. Must be > 0.
	Rate float64 `yaml:"rate"`
	// CV is the coefficient of variation for gamma/weibull processes.
	CV *float64 `yaml:"cv,omitempty"`
}

var validArrivalProcesses = map[string]bool{
	"poisson": true, "gamma": true, "weibull": true, "constant": true,
}

// IsValidArrivalProcess reports whether name is a recognized arrival process.
func IsValidArrivalProcess(name string) bool {
	return validArrivalProcesses[name]
}

// ArrivalSampler generates inter-arrival times.
type ArrivalSampler interface {
	// SampleIAT returns the next inter-arrival time. Always positive.
	SampleIAT(rng *rand.Rand) float64
}

// PoissonSampler generates exponentially-distributed inter-arrival times (CV=1).
type PoissonSampler struct {
	rate float64
}

func (s *PoissonSampler) SampleIAT(rng *rand.Rand) float64 {
	return rng.ExpFloat64() / s.rate
}

// ConstantSampler generates evenly spaced arrivals at the configured rate.
type ConstantSampler struct {
	rate float64
}

func (s *ConstantSampler) SampleIAT(_ *rand.Rand) float64 {
	return 1.0 / s.rate
}

// GammaSampler generates Gamma-distributed inter-arrival times. CV > 1
// produces bursty arrivals. Implemented with Marsaglia-Tsang's method for
// shape >= 1 and the Ahrens-Dieter transformation for shape < 1.
type GammaSampler struct {
	shape float64 // 1/CV² (alpha parameter)
	scale float64 // CV²/rate (beta parameter)
}

func (s *GammaSampler) SampleIAT(rng *rand.Rand) float64 {
	return gammaRand(rng, s.shape, s.scale)
}

// gammaRand samples from Gamma(shape, scale).
func gammaRand(rng *rand.Rand, shape, scale float64) float64 {
	if shape < 1.0 {
		// Ahrens-Dieter: Gamma(a) = Gamma(a+1) * U^(1/a)
		u := rng.Float64()
		return gammaRand(rng, shape+1.0, scale) * math.Pow(u, 1.0/shape)
	}

	// Marsaglia-Tsang for shape >= 1
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)

	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1.0 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()

		// Squeeze test
		if u < 1.0-0.0331*(x*x)*(x*x) {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// WeibullSampler generates Weibull-distributed inter-arrival times.
type WeibullSampler struct {
	shape float64 // Weibull k parameter
	scale float64 // Weibull λ parameter
}

func (s *WeibullSampler) SampleIAT(rng *rand.Rand) float64 {
	// Inverse CDF: scale * (-ln(U))^(1/shape)
	u := rng.Float64()
	if u == 0 {
		u = math.SmallestNonzeroFloat64 // prevent -ln(0) = +Inf
	}
	return s.scale * math.Pow(-math.Log(u), 1.0/s.shape)
}

// NewArrivalSampler creates an ArrivalSampler from a spec.
func NewArrivalSampler(spec ArrivalSpec) (ArrivalSampler, error) {
	if spec.Rate <= 0 {
		return nil, fmt.Errorf("arrival rate must be positive, got %f", spec.Rate)
	}
	cv := 1.0
	if spec.CV != nil {
		cv = *spec.CV
	}
	if cv <= 0 {
		cv = 1.0
	}

	switch spec.Process {
	case "poisson":
		return &PoissonSampler{rate: spec.Rate}, nil

	case "constant":
		return &ConstantSampler{rate: spec.Rate}, nil

	case "gamma":
		// shape = 1/CV², scale = mean * CV² = (1/rate) * CV²
		shape := 1.0 / (cv * cv)
		scale := cv * cv / spec.Rate
		if shape < 0.01 {
			logrus.Warnf("Gamma shape %.4f (CV=%.1f) is very small; falling back to Poisson", shape, cv)
			return &PoissonSampler{rate: spec.Rate}, nil
		}
		return &GammaSampler{shape: shape, scale: scale}, nil

	case "weibull":
		k := weibullShapeFromCV(cv)
		// scale = mean / Γ(1 + 1/k)
		scale := 1.0 / spec.Rate / math.Gamma(1.0+1.0/k)
		return &WeibullSampler{shape: k, scale: scale}, nil

	default:
		return nil, fmt.Errorf("unknown arrival process %q; valid: poisson, gamma, weibull, constant", spec.Process)
	}
}

// weibullShapeFromCV finds the Weibull shape k such that
// CV² = Γ(1+2/k)/Γ(1+1/k)² - 1, using bisection on k ∈ [0.1, 100].
// Max 100 iterations; logs a warning if convergence fails.
func weibullShapeFromCV(targetCV float64) float64 {
	lo, hi := 0.1, 100.0
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2.0
		cv := weibullCV(mid)
		if math.Abs(cv-targetCV) < 0.001 {
			return mid
		}
		// CV is monotonically decreasing in k
		if cv > targetCV {
			lo = mid
		} else {
			hi = mid
		}
	}
	logrus.Warnf("weibullShapeFromCV: bisection did not converge for CV=%.3f after 100 iterations; using k=%.3f", targetCV, (lo+hi)/2.0)
	return (lo + hi) / 2.0
}

// weibullCV computes the coefficient of variation for Weibull(k).
func weibullCV(k float64) float64 {
	g1 := math.Gamma(1.0 + 1.0/k)
	g2 := math.Gamma(1.0 + 2.0/k)
	return math.Sqrt(g2/(g1*g1) - 1.0)
}
