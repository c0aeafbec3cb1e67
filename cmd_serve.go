package main

import (
	"f1strategybot/pkg/webserver"
	"time"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Serve scenarios, results, charts and the lap by lap WebSocket feed on WEBSERVER_ADDRESS.",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	m := webserver.NewManager(cfg.Simulator(), cfg.Scenarios, cfg.TotalLaps, logger)
	if err := m.Serve(ctx, cfg.WebAddress, time.Duration(cfg.ShutdownPeriod)*time.Second); err != nil {
		return err
	}
	logger.Info().Msg("webserver stopped")
	return nil
}
