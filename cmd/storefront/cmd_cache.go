package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/pkg/app"
)

// storefront cache:flush
var cacheFlushCmd = &cobra.Command{
	Use:   "cache:flush",
	Short: "Drop every cached search result under CACHE_PREFIX",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Cache.Flush(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("✅  Cache flushed (driver: %s)\n", a.Cache.Driver())
		return nil
	},
}
