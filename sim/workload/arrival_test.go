package workload

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewArrivalSampler_RejectsBadSpecs(t *testing.T) {
	_, err := NewArrivalSampler(ArrivalSpec{Process: "poisson", Rate: 0})
	assert.Error(t, err)

	_, err = NewArrivalSampler(ArrivalSpec{Process: "poisson", Rate: -1})
	assert.Error(t, err)

	_, err = NewArrivalSampler(ArrivalSpec{Process: "bursty", Rate: 1})
	assert.Error(t, err)
}

func TestConstantSampler_SpacesArrivalsEvenly(t *testing.T) {
	s, err := NewArrivalSampler(ArrivalSpec{Process: "constant", Rate: 4.0})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 5; i++ {
		assert.Equal(t, 0.25, s.SampleIAT(rng))
	}
}

func TestPoissonSampler_MeanIATMatchesRate(t *testing.T) {
	s, err := NewArrivalSampler(ArrivalSpec{Process: "poisson", Rate: 2.0})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	sum := 0.0
	n := 20000
	for i := 0; i < n; i++ {
		iat := s.SampleIAT(rng)
		require.Greater(t, iat, 0.0)
		sum += iat
	}
	// Mean IAT should be 1/rate = 0.5.
	assert.InDelta(t, 0.5, sum/float64(n), 0.02)
}

func TestGammaSampler_HighCV_ProducesBurstyArrivals(t *testing.T) {
	cv := 3.0
	s, err := NewArrivalSampler(ArrivalSpec{Process: "gamma", Rate: 1.0, CV: &cv})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	n := 20000
	values := make([]float64, n)
	sum := 0.0
	for i := range values {
		values[i] = s.SampleIAT(rng)
		require.GreaterOrEqual(t, values[i], 0.0)
		sum += values[i]
	}
	mean := sum / float64(n)
	assert.InDelta(t, 1.0, mean, 0.1)

	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(n)
	// CV = stddev/mean should land near the configured 3.0.
	assert.InDelta(t, cv, math.Sqrt(variance)/mean, 0.3)
}

func TestWeibullSampler_MeanIATMatchesRate(t *testing.T) {
	cv := 0.5
	s, err := NewArrivalSampler(ArrivalSpec{Process: "weibull", Rate: 2.0, CV: &cv})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	sum := 0.0
	n := 20000
	for i := 0; i < n; i++ {
		sum += s.SampleIAT(rng)
	}
	assert.InDelta(t, 0.5, sum/float64(n), 0.02)
}

func TestWeibullShapeFromCV_RoundTrips(t *testing.T) {
	for _, cv := range []float64{0.3, 0.5, 1.0, 2.0} {
		k := weibullShapeFromCV(cv)
		assert.InDelta(t, cv, weibullCV(k), 0.01, "cv=%v", cv)
	}
}

func TestIsValidArrivalProcess(t *testing.T) {
	for _, name := range []string{"poisson", "gamma", "weibull", "constant"} {
		assert.True(t, IsValidArrivalProcess(name))
	}
	assert.False(t, IsValidArrivalProcess("uniform"))
	assert.False(t, IsValidArrivalProcess(""))
}
