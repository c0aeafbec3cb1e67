package main

import (
	"f1strategybot/pkg/apps/mainapp"
	"f1strategybot/pkg/bot"
	"f1strategybot/pkg/webserver"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var botWithWeb bool

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	Long:  "Run the Telegram bot using TELEGRAM_TOKEN. With --web the HTTP server runs alongside it on WEBSERVER_ADDRESS.",
	RunE:  runBot,
}

func init() {
	botCmd.Flags().BoolVar(&botWithWeb, "web", false, "Also serve the HTTP API")
}

func runBot(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	api, err := bot.NewAPI(cfg.TelegramToken, cfg.TelegramDebug)
	if err != nil {
		return err
	}

	sim := cfg.Simulator()
	app := mainapp.NewMainApp(api, mainapp.Options{
		Simulator: sim,
		Scenarios: cfg.Scenarios,
		TotalLaps: cfg.TotalLaps,
		Circuit:   cfg.CircuitName,
		Logger:    logger,
	})

	ctx, cancel := signalContext()
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bot.Start(ctx, api, app, logger)
		return nil
	})
	if botWithWeb {
		g.Go(func() error {
			m := webserver.NewManager(sim, cfg.Scenarios, cfg.TotalLaps, logger)
			return m.Serve(ctx, cfg.WebAddress, time.Duration(cfg.ShutdownPeriod)*time.Second)
		})
	}

	logger.Info().Msg("Start listening for updates. Press Ctrl-C to stop it")
	err = g.Wait()
	logger.Info().Msg("bot stopped")
	return err
}
