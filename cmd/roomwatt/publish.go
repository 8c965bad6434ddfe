package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jgoulah/roomwatt/internal/publisher"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish the dashboard to MQTT and Home Assistant",
	Long: `Loads the sheet once and publishes the resulting figures to every enabled
destination: retained MQTT topics and/or the Home Assistant HTTP API.`,
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if !cfg.MQTT.Enabled && !cfg.HomeAssistant.Enabled {
		return fmt.Errorf("neither MQTT nor Home Assistant is enabled in config")
	}

	pub, err := publisher.New(cfg.MQTT, cfg.HomeAssistant)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	snap, err := newLoader(cfg).Load(cmd.Context())
	if err != nil {
		return loadError(err)
	}

	if err := pub.Publish(cmd.Context(), snap); err != nil {
		return err
	}

	log.Info().Str("load_id", snap.LoadID).Msg("Published dashboard")
	fmt.Printf("Published %d readings (total %s, %s remaining)\n",
		len(snap.Series), baht(snap.TotalCost), baht(snap.Budget.Remaining))
	return nil
}
