package main

import (
	"f1strategybot/pkg/render"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	compareLaps   int
	comparePolicy string
)

var compareCmd = &cobra.Command{
	Use:   "compare [scenario-id...]",
	Short: "Compare scenarios side by side",
	Long:  "Simulate the selected scenarios (all of them by default) and print one row per scenario in the configured order.",
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().IntVar(&compareLaps, "laps", 0, "Race distance in laps (defaults to F1STRAT_TOTAL_LAPS)")
	compareCmd.Flags().StringVar(&comparePolicy, "policy", "", "Exhaustion policy: strict or lenient (defaults to F1STRAT_POLICY)")
}

func runCompare(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	sim, laps, err := runOptions(cmd, compareLaps, comparePolicy, false)
	if err != nil {
		return err
	}
	scenarios, err := selectScenarios(args, "")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := sim.Compare(ctx, scenarios, laps)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), render.ComparisonTable(scenarios, results))
	return nil
}
