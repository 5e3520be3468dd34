package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/sprint-sim/sprint-sim/sim"
	"github.com/sprint-sim/sprint-sim/sim/journal"
)

var (
	// CLI flags for the simulation run
	seed         int64  // Seed for all randomness in the run
	horizonDays  int    // Simulation horizon in workdays
	logLevel     string // Log verbosity level
	scenarioPath string // Optional scenario YAML; defaults to the reference team
	totalPoints  int    // Backlog size in story points (default roster runs)
	wipLimit     int    // Explicit WIP limit (0 derives 2 x developer count)
	journalLevel string // Journal verbosity: none, transitions, full
	eventsOut    string // Path for the JSONL event log ("" = skip)
	snapshotOut  string // Path for the end-of-run snapshot ("" = skip)
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "sprint-sim",
	Short: "Discrete-event simulator for review-pipeline throughput planning",
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sprint simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if !journal.IsValidLevel(journalLevel) {
			logrus.Fatalf("Invalid journal level: %s", journalLevel)
		}

		cfg, err := buildConfig()
		if err != nil {
			logrus.Fatalf("Invalid scenario: %v", err)
		}

		logrus.Infof("Starting simulation: %d members, horizon=%d days, wip=%d, seed=%d",
			len(cfg.Team), cfg.HorizonDays, cfg.EffectiveWIPLimit(), cfg.Seed)

		jr := journal.New(journal.Level(journalLevel))
		s, err := sim.NewSimulator(cfg, jr)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		s.Run()

		snap := s.Snapshot()
		s.Metrics.Print(len(s.Stories), s.Horizon)

		sprintTicks := int64(0)
		if cfg.Ceremonies.Enabled {
			sprintTicks = int64(cfg.Ceremonies.SprintDays) * int64(sim.DefaultMaxDailyHours*sim.TicksPerHour)
		}
		summary := journal.Summarize(snap, sim.TicksPerHour, sprintTicks)
		printSummary(summary)

		if eventsOut != "" {
			writeEvents(jr, eventsOut)
		}
		if snapshotOut != "" {
			writeSnapshot(snap, snapshotOut)
		}

		logrus.Info("Simulation complete.")
	},
}

// buildConfig resolves the scenario file and flag overrides into a Config.
func buildConfig() (sim.Config, error) {
	var cfg sim.Config
	if scenarioPath != "" {
		loaded, err := LoadScenario(scenarioPath)
		if err != nil {
			return sim.Config{}, err
		}
		cfg = loaded
	} else {
		cfg = sim.DefaultConfig()
		cfg.Team = DefaultRoster()
		cfg.TotalPoints = totalPoints
	}

	// Flags override scenario values when explicitly set.
	if seed != 0 {
		cfg.Seed = seed
	}
	if horizonDays != 0 {
		cfg.HorizonDays = horizonDays
	}
	if wipLimit != 0 {
		cfg.WIPLimit = wipLimit
	}
	return cfg, nil
}

func printSummary(s journal.Summary) {
	logrus.Infof("run %s: %d completed (%d pts), %d abandoned, %d incomplete, mean cycle %.1fh",
		s.RunID, s.Completed, s.CompletedPoints, s.Abandoned, s.Incomplete, s.MeanCycleHours)
	for kind, n := range s.Bottlenecks {
		logrus.Infof("contention on %s: %d denied acquisitions", kind, n)
	}
}

func writeEvents(jr *journal.Journal, path string) {
	f, err := os.Create(path)
	if err != nil {
		logrus.Fatalf("unable to create event log %s: %v", path, err)
	}
	defer f.Close()
	if err := jr.WriteJSONL(f); err != nil {
		logrus.Fatalf("unable to write event log: %v", err)
	}
	logrus.Infof("Event log written to %s", path)
}

func writeSnapshot(snap *journal.Snapshot, path string) {
	f, err := os.Create(path)
	if err != nil {
		logrus.Fatalf("unable to create snapshot %s: %v", path, err)
	}
	defer f.Close()
	if err := journal.WriteSnapshot(f, snap); err != nil {
		logrus.Fatalf("unable to write snapshot: %v", err)
	}
	logrus.Infof("Snapshot written to %s", path)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().Int64Var(&seed, "seed", 0, "Seed for the run (0 keeps the scenario's seed)")
	runCmd.Flags().IntVar(&horizonDays, "days", 0, "Simulation horizon in workdays (0 keeps the scenario's horizon)")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario YAML path (empty uses the reference team of 10)")
	runCmd.Flags().IntVar(&totalPoints, "points", 120, "Backlog size in story points when no scenario file is given")
	runCmd.Flags().IntVar(&wipLimit, "wip", 0, "WIP limit override (0 derives 2 x developer count)")

	runCmd.Flags().StringVar(&journalLevel, "journal", "transitions", "Journal level (none, transitions, full)")
	runCmd.Flags().StringVar(&eventsOut, "events-out", "", "Write the JSONL event log to this path")
	runCmd.Flags().StringVar(&snapshotOut, "snapshot-out", "", "Write the end-of-run snapshot JSON to this path")

	rootCmd.AddCommand(runCmd)
}
