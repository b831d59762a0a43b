package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/desflow/desflow/sim"
	"github.com/desflow/desflow/sim/workload"
)

var (
	// CLI flags shared by subcommands
	logLevel string // Log verbosity level

	// CLI flags for a single inline run
	seed            int64   // Seed for all random draws
	horizon         float64 // Total simulation time
	warmup          float64 // Time excluded from summaries
	maxEvents       int64   // Cap on processed events (0 = unlimited)
	maxArrivals     int64   // Cap on generated arrivals (0 = unlimited)
	arrivalProcess  string  // Arrival process name
	rate            float64 // Arrivals per unit time
	capacity        int     // Capacity of the single inline resource
	discipline      string  // Queue discipline of the inline resource
	serviceDist     string  // Service time distribution type
	serviceMean     float64 // Mean service time (normal, exponential, constant)
	serviceStdDev   float64 // Service time standard deviation (normal)
	renegeAfter     float64 // Patience before a queued entity abandons (0 = never)
	warmInService   int     // Entities already in service at t=0
	warmQueued      int     // Entities already queued at t=0

	// CLI flag for batch runs
	scenariosPath string // YAML scenario file; overrides inline flags
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "desflow",
	Short: "Discrete-event simulator for capacity-constrained flow systems",
}

// runCmd executes one run from inline flags, or a batch from a scenario file
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one or more simulations",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		startTime := time.Now()

		var scenarios []sim.Parameters
		if scenariosPath != "" {
			scenarios, err = sim.LoadScenarios(scenariosPath)
			if err != nil {
				logrus.Fatalf("Unable to load scenarios: %v", err)
			}
		} else {
			scenarios = []sim.Parameters{inlineScenario()}
		}

		results, err := sim.RunScenarios(scenarios)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		failed := 0
		for _, r := range results {
			if len(results) > 1 {
				logrus.Infof("--- scenario %s ---", r.Scenario)
			}
			if r.Status == sim.StateAborted {
				failed++
				logrus.Errorf("Run %s aborted: %v", r.Scenario, r.Err)
			}
			r.Summarize().Print()
		}

		logrus.Infof("Done: %d scenario(s) in %s.", len(results), time.Since(startTime).Round(time.Millisecond))
		if failed > 0 {
			os.Exit(1)
		}
	},
}

// inlineScenario builds a single-resource scenario from CLI flags.
func inlineScenario() sim.Parameters {
	service := workload.DistSpec{Type: serviceDist, Params: map[string]float64{}}
	switch serviceDist {
	case "normal":
		service.Params["mean"] = serviceMean
		service.Params["std_dev"] = serviceStdDev
	case "exponential":
		service.Params["mean"] = serviceMean
	case "constant":
		service.Params["value"] = serviceMean
	}

	p := sim.Parameters{
		Name:        "inline",
		Seed:        seed,
		Horizon:     horizon,
		Warmup:      warmup,
		MaxEvents:   maxEvents,
		MaxArrivals: maxArrivals,
		Arrival:     workload.ArrivalSpec{Process: arrivalProcess, Rate: rate},
		Resources: []sim.ResourceSpec{{
			Name:        "server",
			Capacity:    capacity,
			Discipline:  discipline,
			ServiceTime: service,
		}},
		Route: []string{"server"},
	}
	if renegeAfter > 0 {
		p.Classes = []sim.ClassSpec{{Name: "default", Weight: 1.0, RenegeAfter: renegeAfter}}
	}
	if warmInService > 0 || warmQueued > 0 {
		p.WarmStart = &sim.WarmStartSpec{}
		if warmInService > 0 {
			p.WarmStart.InService = map[string]int{"server": warmInService}
		}
		if warmQueued > 0 {
			p.WarmStart.Queued = map[string]int{"server": warmQueued}
		}
	}
	return p
}

// validateCmd checks a scenario file without running it
var validateCmd = &cobra.Command{
	Use:   "validate <scenarios.yaml>",
	Short: "Validate a scenario file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		scenarios, err := sim.LoadScenarios(args[0])
		if err != nil {
			logrus.Fatalf("Invalid: %v", err)
		}
		logrus.Infof("OK: %d scenario(s).", len(scenarios))
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVar(&scenariosPath, "scenarios", "", "YAML scenario file (overrides inline flags)")

	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for all random draws")
	runCmd.Flags().Float64Var(&horizon, "horizon", 1000, "Total simulation time")
	runCmd.Flags().Float64Var(&warmup, "warmup", 0, "Time excluded from summaries")
	runCmd.Flags().Int64Var(&maxEvents, "max-events", 0, "Cap on processed events (0 = unlimited)")
	runCmd.Flags().Int64Var(&maxArrivals, "max-arrivals", 0, "Cap on generated arrivals (0 = unlimited)")

	runCmd.Flags().StringVar(&arrivalProcess, "arrival-process", "poisson", "Arrival process (poisson, gamma, weibull, constant)")
	runCmd.Flags().Float64Var(&rate, "rate", 1.0, "Arrivals per unit time")

	runCmd.Flags().IntVar(&capacity, "capacity", 1, "Capacity of the resource")
	runCmd.Flags().StringVar(&discipline, "discipline", "fifo", "Queue discipline (fifo, priority)")
	runCmd.Flags().StringVar(&serviceDist, "service-dist", "exponential", "Service time distribution (normal, exponential, constant)")
	runCmd.Flags().Float64Var(&serviceMean, "service-mean", 0.8, "Mean service time")
	runCmd.Flags().Float64Var(&serviceStdDev, "service-stddev", 0.2, "Service time standard deviation (normal only)")
	runCmd.Flags().Float64Var(&renegeAfter, "renege-after", 0, "Patience before abandoning a queue (0 = never)")

	runCmd.Flags().IntVar(&warmInService, "warm-in-service", 0, "Entities already in service at t=0")
	runCmd.Flags().IntVar(&warmQueued, "warm-queued", 0, "Entities already queued at t=0")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}
