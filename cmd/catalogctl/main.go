// Command catalogctl runs operator tasks against the catalog database:
// schema migration, WooCommerce imports and query translation previews.
package main

import (
	"fmt"
	"os"

	"catalogapi/internal/config"
	"catalogapi/internal/database"
	"catalogapi/internal/events"
	"catalogapi/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:           "catalogctl",
	Short:         "Manage the storefront catalog",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		log = logger.New(cfg.LogLevel)
		return nil
	},
}

func openDatabase() (*database.Database, error) {
	db, err := database.New(cfg.DatabaseURL, database.Options{LogLevel: cfg.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// publisher returns the kafka publisher, or a no-op one when events are off.
func publisher(enabled bool) events.Publisher {
	if !enabled || len(cfg.KafkaBrokers) == 0 {
		return events.Discard{}
	}
	return events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
