package main

import (
	"errors"

	"catalogapi/internal/connectors/woocommerce"
	"catalogapi/internal/repository"

	"github.com/spf13/cobra"
)

var (
	syncStoreURL string
	syncKey      string
	syncSecret   string
	syncEvents   bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull products, variations and reviews from a WooCommerce store",
	RunE: func(cmd *cobra.Command, args []string) error {
		storeURL := firstNonEmpty(syncStoreURL, cfg.WooCommerceURL)
		key := firstNonEmpty(syncKey, cfg.WooCommerceKey)
		secret := firstNonEmpty(syncSecret, cfg.WooCommerceSecret)
		if storeURL == "" || key == "" || secret == "" {
			return errors.New("store URL, consumer key and consumer secret are required")
		}

		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		pub := publisher(syncEvents)
		defer pub.Close()

		connector := woocommerce.New(repository.NewWriter(db.DB), pub, log)
		client := woocommerce.NewClient(storeURL, key, secret, log)
		stats, err := connector.SyncProducts(cmd.Context(), client)
		if stats != nil {
			printStats(cmd, stats)
		}
		return err
	},
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	syncCmd.Flags().StringVar(&syncStoreURL, "store-url", "", "WooCommerce store URL (default $WOOCOMMERCE_URL)")
	syncCmd.Flags().StringVar(&syncKey, "key", "", "REST API consumer key (default $WOOCOMMERCE_CONSUMER_KEY)")
	syncCmd.Flags().StringVar(&syncSecret, "secret", "", "REST API consumer secret (default $WOOCOMMERCE_CONSUMER_SECRET)")
	syncCmd.Flags().BoolVar(&syncEvents, "events", true, "Publish product events for the worker")
	rootCmd.AddCommand(syncCmd)
}
