package main

import (
	"encoding/json"
	"f1strategybot/pkg/render"
	"f1strategybot/pkg/simulator"
	"f1strategybot/pkg/strategy"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	simulateLaps     int
	simulatePolicy   string
	simulateStrategy string
	simulateStints   bool
	simulateJSON     bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [scenario-id...]",
	Short: "Simulate scenarios or a custom strategy",
	Long: `Simulate one or more configured scenarios, or a strategy given on the command line.

Examples:
  # All configured scenarios
  f1strategybot simulate

  # One scenario, letting the last compound run past its lifespan
  f1strategybot simulate two-stop-ssm --policy lenient

  # Custom strategy over 58 laps with the per stint breakdown
  f1strategybot simulate --laps 58 --strategy "Soft:25 Medium:33" --stints
`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&simulateLaps, "laps", 0, "Race distance in laps (defaults to F1STRAT_TOTAL_LAPS)")
	simulateCmd.Flags().StringVar(&simulatePolicy, "policy", "", "Exhaustion policy: strict or lenient (defaults to F1STRAT_POLICY)")
	simulateCmd.Flags().StringVar(&simulateStrategy, "strategy", "", `Custom strategy, e.g. "Soft:25 Medium:33"`)
	simulateCmd.Flags().BoolVar(&simulateStints, "stints", false, "Print the per stint breakdown")
	simulateCmd.Flags().BoolVar(&simulateJSON, "json", false, "Print results as JSON")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	sim, laps, err := runOptions(cmd, simulateLaps, simulatePolicy, simulateStints)
	if err != nil {
		return err
	}

	scenarios, err := selectScenarios(args, simulateStrategy)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, sc := range scenarios {
		res, err := sim.Simulate(sc.Strategy, laps)
		if err != nil {
			return errors.Wrapf(err, "scenario %s", sc.ID)
		}
		logger.Debug().Str("scenario", sc.ID).Stringer("outcome", res.Outcome).Float64("time", res.TotalTime).Msg("simulated")
		if simulateJSON {
			if err := printJSON(out, sc, res); err != nil {
				return err
			}
			continue
		}
		printResult(out, sc, res)
	}
	return nil
}

// runOptions builds a simulator from the configuration and the command
// flags that override it.
func runOptions(cmd *cobra.Command, laps int, policy string, trace bool) (*simulator.Simulator, int, error) {
	opts := []simulator.Option{simulator.WithLogger(logger), simulator.WithLapTrace(trace)}
	if cmd.Flags().Changed("policy") {
		p, err := simulator.ParsePolicy(policy)
		if err != nil {
			return nil, 0, err
		}
		opts = append(opts, simulator.WithPolicy(p))
	}
	if !cmd.Flags().Changed("laps") {
		laps = cfg.TotalLaps
	}
	return cfg.Simulator(opts...), laps, nil
}

func selectScenarios(ids []string, custom string) (strategy.Scenarios, error) {
	if custom != "" {
		strat, err := strategy.Parse(custom)
		if err != nil {
			return nil, err
		}
		return strategy.Scenarios{{ID: "custom", Name: strat.Name(), Strategy: strat}}, nil
	}
	if len(ids) == 0 {
		return cfg.Scenarios, nil
	}
	var selected strategy.Scenarios
	for _, id := range ids {
		sc, found := cfg.Scenarios.GetByID(id)
		if !found {
			return nil, errors.Errorf("unknown scenario %q", id)
		}
		selected = append(selected, sc)
	}
	return selected, nil
}

func printResult(w io.Writer, sc strategy.Scenario, res simulator.Result) {
	fmt.Fprintln(w, sc.Name)
	fmt.Fprintln(w, render.ResultTable(sc, res))
	if stints := render.StintTable(res); stints != "" {
		fmt.Fprintln(w, stints)
		fmt.Fprintln(w, render.UsageBar(res))
	}
	fmt.Fprintln(w)
}

func printJSON(w io.Writer, sc strategy.Scenario, res simulator.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Scenario strategy.Scenario `json:"scenario"`
		Result   simulator.Result  `json:"result"`
	}{sc, res})
}
