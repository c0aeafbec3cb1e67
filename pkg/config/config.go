package config

import (
	"f1strategybot/pkg/simulator"
	"f1strategybot/pkg/strategy"
	"f1strategybot/pkg/tyres"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	DefaultTotalLaps = 58
	DefaultAddress   = ":8080"
)

// Config covers process level configuration read from environment variables
// and an optional scenarios file.
type Config struct {
	Environment    string
	TelegramToken  string
	WebAddress     string
	TotalLaps      int
	PitStopLoss    float64
	Policy         simulator.Policy
	ScenariosFile  string
	CircuitName    string
	Compounds      tyres.Table
	Scenarios      strategy.Scenarios
	TelegramDebug  bool
	ShutdownPeriod int
	MaxLaps        int
}

// Load reads environment variables, applies defaults, and merges the scenarios
// file when F1STRAT_SCENARIOS_FILE is set. Values from the environment win
// over the file.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:    getEnv("F1STRAT_ENV", "development"),
		TelegramToken:  getEnv("TELEGRAM_TOKEN", ""),
		WebAddress:     getEnv("WEBSERVER_ADDRESS", DefaultAddress),
		ScenariosFile:  getEnv("F1STRAT_SCENARIOS_FILE", ""),
		CircuitName:    getEnv("F1STRAT_CIRCUIT", "Melbourne Grand Prix Circuit"),
		TotalLaps:      DefaultTotalLaps,
		PitStopLoss:    simulator.DefaultPitStopLoss,
		Compounds:      tyres.DefaultTable(),
		Scenarios:      strategy.DefaultScenarios(),
		ShutdownPeriod: 10,
		MaxLaps:        simulator.DefaultMaxLaps,
	}

	if cfg.ScenariosFile != "" {
		f, err := strategy.LoadScenarios(cfg.ScenariosFile)
		if err != nil {
			return nil, err
		}
		if f.TotalLaps != nil {
			cfg.TotalLaps = *f.TotalLaps
		}
		if f.PitStopLoss != nil {
			cfg.PitStopLoss = *f.PitStopLoss
		}
		cfg.Compounds = f.Table(cfg.Compounds)
		if len(f.Scenarios) > 0 {
			cfg.Scenarios = f.Scenarios
		}
	}

	var err error
	if cfg.TotalLaps, err = getEnvInt("F1STRAT_TOTAL_LAPS", cfg.TotalLaps); err != nil {
		return nil, err
	}
	if cfg.PitStopLoss, err = getEnvFloat("F1STRAT_PIT_STOP_LOSS", cfg.PitStopLoss); err != nil {
		return nil, err
	}
	if cfg.Policy, err = simulator.ParsePolicy(getEnv("F1STRAT_POLICY", "strict")); err != nil {
		return nil, errors.Wrap(err, "F1STRAT_POLICY")
	}
	if cfg.TelegramDebug, err = getEnvBool("TELEGRAM_DEBUG", false); err != nil {
		return nil, err
	}
	if cfg.ShutdownPeriod, err = getEnvInt("WEBSERVER_SHUTDOWN_SECONDS", cfg.ShutdownPeriod); err != nil {
		return nil, err
	}
	if cfg.MaxLaps, err = getEnvInt("F1STRAT_MAX_LAPS", cfg.MaxLaps); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.TotalLaps <= 0 {
		return errors.Errorf("total laps must be positive, got %d", c.TotalLaps)
	}
	if c.MaxLaps <= 0 || c.TotalLaps > c.MaxLaps {
		return errors.Errorf("total laps %d over the limit of %d", c.TotalLaps, c.MaxLaps)
	}
	if c.PitStopLoss < 0 {
		return errors.Errorf("pit stop loss must not be negative, got %v", c.PitStopLoss)
	}
	if err := c.Compounds.Validate(); err != nil {
		return errors.Wrap(err, "compounds")
	}
	for _, sc := range c.Scenarios {
		for _, stint := range sc.Strategy {
			if _, ok := c.Compounds.Lookup(stint.Compound); !ok {
				return errors.Errorf("scenario %s: unknown compound %s", sc.ID, stint.Compound)
			}
		}
	}
	return nil
}

// Simulator builds a simulator from the configuration.
func (c *Config) Simulator(opts ...simulator.Option) *simulator.Simulator {
	base := []simulator.Option{
		simulator.WithPitStopLoss(c.PitStopLoss),
		simulator.WithPolicy(c.Policy),
		simulator.WithMaxLaps(c.MaxLaps),
	}
	return simulator.New(c.Compounds, append(base, opts...)...)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "%s", key)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "%s", key)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.Wrapf(err, "%s", key)
	}
	return b, nil
}
