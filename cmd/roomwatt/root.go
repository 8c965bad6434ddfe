package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jgoulah/roomwatt/internal/config"
	"github.com/jgoulah/roomwatt/internal/gviz"
	"github.com/jgoulah/roomwatt/internal/logging"
	"github.com/jgoulah/roomwatt/internal/pipeline"
	"github.com/jgoulah/roomwatt/internal/version"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "roomwatt",
	Short: "Room electricity dashboard backed by a published spreadsheet",
	Long: `RoomWatt reads a room's electricity log from a published spreadsheet and derives
the dashboard figures: budget consumed, the last ten readings, the day/night split,
the latest real reading and the current status level.`,
	Version:      version.Get(),
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env may carry LOGLEVEL, so it is read before the logger is set up
		loaded := config.LoadEnv()
		logging.Setup(logLevel)
		if loaded {
			log.Debug().Msg("Loaded .env file")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default from LOGLEVEL, then info)")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// loadConfig reads the config file, overlays the environment, fills defaults and validates
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("path", getConfigPath()).
		Int("tables", len(cfg.Dashboard.Tables)).
		Int("usage_tables", len(cfg.UsageTables())).
		Float64("budget", cfg.Dashboard.BudgetLimit).
		Msg("Loaded config")
	return cfg, nil
}

// newClient creates the sheet client for cfg
func newClient(cfg *config.Config) *gviz.Client {
	return gviz.NewClient(cfg.Dashboard.BaseURL, version.UserAgent())
}

// newLoader creates a dashboard loader for cfg
func newLoader(cfg *config.Config) *pipeline.Loader {
	return pipeline.NewLoader(newClient(cfg), cfg.Dashboard)
}

func loadError(err error) error {
	return fmt.Errorf("loading dashboard: %w", err)
}
