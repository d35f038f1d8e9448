package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"catalogapi/internal/query"
	"catalogapi/internal/repository"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:     "query <params>",
	Short:   "Print the repository args a product collection query translates to",
	Example: "  catalogctl query 'orderby=price_asc&on_sale=true&attributes[0][attribute]=pa_color&attributes[0][slug]=red'",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := url.ParseQuery(strings.TrimPrefix(args[0], "?"))
		if err != nil {
			return fmt.Errorf("invalid query string: %w", err)
		}
		params, err := query.Decode(query.FromValues(values))
		if err != nil {
			return err
		}

		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		products := repository.NewProductRepository(db.DB, nil)
		names, err := products.AttributeTaxonomyNames(ctx)
		if err != nil {
			return err
		}

		translated, err := query.Translate(params, query.Store{
			DefaultOrderBy:           cfg.Store.DefaultOrderBy,
			DefaultOrder:             cfg.Store.DefaultOrder,
			DefaultPerPage:           cfg.Store.DefaultPerPage,
			DefaultCatalogVisibility: cfg.Store.DefaultCatalogVisibility,
			IncludeVariations:        cfg.Store.IncludeVariations,
			AttributeTaxonomies:      names,
			OnSaleIDs: func() ([]uint, error) {
				return products.OnSaleIDs(ctx)
			},
		}, query.Policies{})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(translated)
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
}
