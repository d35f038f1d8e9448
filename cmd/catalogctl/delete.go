package main

import (
	"fmt"
	"strconv"

	"catalogapi/internal/events"
	"catalogapi/internal/repository"

	"github.com/spf13/cobra"
)

var deleteEvents bool

var deleteCmd = &cobra.Command{
	Use:   "delete <product-id>",
	Short: "Delete a product together with its variations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil || id == 0 {
			return fmt.Errorf("invalid product id %q", args[0])
		}

		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		pub := publisher(deleteEvents)
		defer pub.Close()

		deleted, err := repository.NewWriter(db.DB).DeleteProduct(cmd.Context(), uint(id))
		if err != nil {
			return err
		}
		if err := pub.Publish(cmd.Context(), events.New(events.ProductDeleted, deleted.ID, deleted.ParentID)); err != nil {
			log.Warn("Failed to publish delete of product %d: %v", deleted.ID, err)
		}
		cmd.Printf("Deleted product %d (%s)\n", deleted.ID, deleted.Name)
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteEvents, "events", true, "Publish a product event for the worker")
	rootCmd.AddCommand(deleteCmd)
}
