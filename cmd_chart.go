package main

import (
	"f1strategybot/pkg/chart"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	chartOut      string
	chartLaps     int
	chartPolicy   string
	chartStrategy string
)

var chartCmd = &cobra.Command{
	Use:   "chart [scenario-id]",
	Short: "Draw the pace chart of a scenario",
	Long: `Draw pace per lap coloured by compound with the pit stops marked.
The format follows the extension of --out (.png or .svg).

Examples:
  f1strategybot chart one-stop-sm --out one-stop.png
  f1strategybot chart --strategy "S M H" --out custom.svg
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChart,
}

func init() {
	chartCmd.Flags().StringVarP(&chartOut, "out", "o", "chart.png", "Output file (.png or .svg)")
	chartCmd.Flags().IntVar(&chartLaps, "laps", 0, "Race distance in laps (defaults to F1STRAT_TOTAL_LAPS)")
	chartCmd.Flags().StringVar(&chartPolicy, "policy", "", "Exhaustion policy: strict or lenient (defaults to F1STRAT_POLICY)")
	chartCmd.Flags().StringVar(&chartStrategy, "strategy", "", `Custom strategy, e.g. "Soft:25 Medium:33"`)
}

func runChart(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	if len(args) == 0 && chartStrategy == "" {
		return errors.New("a scenario id or --strategy is required")
	}

	sim, laps, err := runOptions(cmd, chartLaps, chartPolicy, true)
	if err != nil {
		return err
	}
	scenarios, err := selectScenarios(args, chartStrategy)
	if err != nil {
		return err
	}
	sc := scenarios[0]

	res, err := sim.Simulate(sc.Strategy, laps)
	if err != nil {
		return errors.Wrapf(err, "scenario %s", sc.ID)
	}

	f, err := os.Create(chartOut)
	if err != nil {
		return errors.Wrap(err, "creating chart file")
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(chartOut)) {
	case ".svg":
		err = chart.SVG(f, res, sim.Table())
	default:
		err = chart.PNG(f, res, sim.Table())
	}
	if err != nil {
		return err
	}

	logger.Info().Str("scenario", sc.ID).Str("file", chartOut).Msg("chart written")
	return f.Close()
}
