package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInlineScenario_BuildsValidParameters(t *testing.T) {
	// Defaults as registered on the run command.
	seed, horizon, warmup = 42, 1000, 0
	maxEvents, maxArrivals = 0, 0
	arrivalProcess, rate = "poisson", 1.0
	capacity, discipline = 1, "fifo"
	serviceDist, serviceMean, serviceStdDev = "exponential", 0.8, 0.2
	renegeAfter, warmInService, warmQueued = 0, 0, 0

	p := inlineScenario()
	require.NoError(t, p.Validate())
	assert.Equal(t, "inline", p.Name)
	assert.Equal(t, []string{"server"}, p.Route)
	assert.Equal(t, 0.8, p.Resources[0].ServiceTime.Params["mean"])
	assert.Nil(t, p.WarmStart)
	assert.Empty(t, p.Classes)
}

func TestInlineScenario_NormalServiceCarriesBothParams(t *testing.T) {
	serviceDist, serviceMean, serviceStdDev = "normal", 2.0, 0.5
	defer func() { serviceDist, serviceMean, serviceStdDev = "exponential", 0.8, 0.2 }()

	p := inlineScenario()
	require.NoError(t, p.Validate())
	assert.Equal(t, 2.0, p.Resources[0].ServiceTime.Params["mean"])
	assert.Equal(t, 0.5, p.Resources[0].ServiceTime.Params["std_dev"])
}

func TestInlineScenario_RenegeAndWarmStartFlags(t *testing.T) {
	renegeAfter, warmInService, warmQueued = 5.0, 1, 2
	defer func() { renegeAfter, warmInService, warmQueued = 0, 0, 0 }()

	p := inlineScenario()
	require.NoError(t, p.Validate())
	require.Len(t, p.Classes, 1)
	assert.Equal(t, 5.0, p.Classes[0].RenegeAfter)
	require.NotNil(t, p.WarmStart)
	assert.Equal(t, 1, p.WarmStart.InService["server"])
	assert.Equal(t, 2, p.WarmStart.Queued["server"])
}
