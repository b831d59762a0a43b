package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// RunScenarios builds and runs each parameter set independently, in order.
// Scenarios share nothing: each gets its own engine, RNG, and collector, so a
// batch is reproducible scenario by scenario. An invalid scenario fails the
// batch before any run; an aborted run does not stop the ones after it.
func RunScenarios(scenarios []Parameters) ([]*RunResult, error) {
	engines := make([]*Simulator, len(scenarios))
	for i := range scenarios {
		s, err := NewSimulator(scenarios[i])
		if err != nil {
			return nil, fmt.Errorf("scenario %d (%s): %w", i, scenarios[i].Name, err)
		}
		engines[i] = s
	}

	results := make([]*RunResult, 0, len(scenarios))
	for i, s := range engines {
		logrus.Infof("Scenario %d/%d: %s", i+1, len(scenarios), scenarios[i].Name)
		results = append(results, s.Run())
	}
	return results, nil
}
