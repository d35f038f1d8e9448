package main

import (
	"context"
	"fmt"
	"os"

	"catalogapi/internal/connectors/woocommerce"
	"catalogapi/internal/repository"

	"github.com/spf13/cobra"
)

var (
	importFile   string
	importEvents bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import WooCommerce product JSON from a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(importFile)
		if err != nil {
			return fmt.Errorf("failed to open import file: %w", err)
		}
		defer f.Close()

		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		pub := publisher(importEvents)
		defer pub.Close()

		connector := woocommerce.New(repository.NewWriter(db.DB), pub, log)
		stats, err := connector.ImportProducts(context.Background(), f)
		if err != nil {
			return err
		}
		printStats(cmd, stats)
		return nil
	},
}

func printStats(cmd *cobra.Command, stats *woocommerce.Stats) {
	cmd.Printf("Products:   %d\nVariations: %d\nReviews:    %d\nSkipped:    %d\n",
		stats.Products, stats.Variations, stats.Reviews, stats.Skipped)
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "WooCommerce product JSON file (required)")
	importCmd.MarkFlagRequired("file")
	importCmd.Flags().BoolVar(&importEvents, "events", true, "Publish product events for the worker")
	rootCmd.AddCommand(importCmd)
}
