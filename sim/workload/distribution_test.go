package workload

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDurationSampler_RequiresParams(t *testing.T) {
	cases := []DistSpec{
		{Type: "normal", Params: map[string]float64{"mean": 1}},                 // missing std_dev
		{Type: "weibull", Params: map[string]float64{"shape": 1}},               // missing scale
		{Type: "weibull", Params: map[string]float64{"shape": 0, "scale": 1}},   // non-positive shape
		{Type: "exponential", Params: map[string]float64{}},                     // missing mean
		{Type: "exponential", Params: map[string]float64{"mean": -1}},           // negative mean
		{Type: "lognormal", Params: map[string]float64{"mu": 0}},                // missing sigma
		{Type: "uniform", Params: map[string]float64{"min": 5, "max": 2}},       // max < min
		{Type: "uniform", Params: map[string]float64{"min": -1, "max": 2}},      // negative min
		{Type: "constant", Params: map[string]float64{"value": -1}},             // negative value
		{Type: "triangular", Params: map[string]float64{"min": 0, "max": 1}},    // unknown type
	}
	for _, spec := range cases {
		_, err := NewDurationSampler(spec)
		assert.Error(t, err, "type=%s params=%v", spec.Type, spec.Params)
	}
}

func TestDistSpec_Validate_RejectsNonFiniteParams(t *testing.T) {
	spec := DistSpec{Type: "exponential", Params: map[string]float64{"mean": math.NaN()}}
	assert.Error(t, spec.Validate())

	spec = DistSpec{Type: "normal", Params: map[string]float64{"mean": 1, "std_dev": math.Inf(1)}}
	assert.Error(t, spec.Validate())
}

func TestNormalSampler_ClampsAtZero(t *testing.T) {
	// A heavily negative mean would produce negative durations without the
	// clamp.
	s, err := NewDurationSampler(DistSpec{Type: "normal", Params: map[string]float64{"mean": -5, "std_dev": 1}})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		assert.GreaterOrEqual(t, s.Sample(rng), 0.0)
	}
}

func TestNormalSampler_MeanConverges(t *testing.T) {
	s, err := NewDurationSampler(DistSpec{Type: "normal", Params: map[string]float64{"mean": 10, "std_dev": 2}})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	sum := 0.0
	n := 20000
	for i := 0; i < n; i++ {
		sum += s.Sample(rng)
	}
	assert.InDelta(t, 10.0, sum/float64(n), 0.1)
}

func TestConstantDurationSampler_AlwaysSameValue(t *testing.T) {
	s, err := NewDurationSampler(DistSpec{Type: "constant", Params: map[string]float64{"value": 2.5}})
	require.NoError(t, err)
	assert.Equal(t, 2.5, s.Sample(nil))
	assert.Equal(t, 2.5, s.Sample(nil))
}

func TestUniformSampler_StaysInBounds(t *testing.T) {
	s, err := NewDurationSampler(DistSpec{Type: "uniform", Params: map[string]float64{"min": 1, "max": 3}})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 1000; i++ {
		v := s.Sample(rng)
		assert.GreaterOrEqual(t, v, 1.0)
		assert.Less(t, v, 3.0)
	}
}

func TestExponentialSampler_MeanConverges(t *testing.T) {
	s, err := NewDurationSampler(DistSpec{Type: "exponential", Params: map[string]float64{"mean": 0.5}})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(3))
	sum := 0.0
	n := 20000
	for i := 0; i < n; i++ {
		sum += s.Sample(rng)
	}
	assert.InDelta(t, 0.5, sum/float64(n), 0.02)
}

func TestWeibullDurationSampler_NonNegative(t *testing.T) {
	s, err := NewDurationSampler(DistSpec{Type: "weibull", Params: map[string]float64{"shape": 1.5, "scale": 2.0}})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 1000; i++ {
		assert.GreaterOrEqual(t, s.Sample(rng), 0.0)
	}
}

func TestIsValidDistType(t *testing.T) {
	for _, name := range []string{"normal", "weibull", "exponential", "lognormal", "uniform", "constant"} {
		assert.True(t, IsValidDistType(name))
	}
	assert.False(t, IsValidDistType("pareto"))
}
