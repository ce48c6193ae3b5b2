package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/database/seeders"
	"github.com/shashiranjanraj/storefront/pkg/app"
)

var seedWorkers int

// storefront seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the sample catalog into the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if config.DatabaseDriver() == "memory" {
			fmt.Println("DB_DRIVER=memory: data lives only for this process; use `serve --seed` instead.")
		}

		fmt.Println("Running seeders…")
		sum, err := seeders.Run(cmd.Context(), a.CategoryAdmin, a.Catalog, seedWorkers)
		if err != nil {
			return err
		}
		fmt.Printf("✅  %d categories, %d products created (%d already present)\n", sum.Categories, sum.Products, sum.Skipped)
		return nil
	},
}

// storefront db:indexes
var indexesCmd = &cobra.Command{
	Use:   "db:indexes",
	Short: "Create the catalog indexes (unique slugs and SKUs, filter indexes)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.EnsureIndexes(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("✅  Indexes ensured (driver: %s)\n", config.DatabaseDriver())
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedWorkers, "workers", 4, "number of concurrent product inserts")
}
