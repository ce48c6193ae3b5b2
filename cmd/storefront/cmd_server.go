package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/database/seeders"
	"github.com/shashiranjanraj/storefront/pkg/app"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

var (
	serveSeed bool
	servePort string
)

// storefront serve: start the HTTP server.
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != "" {
			config.Set("APP_PORT", servePort)
		}

		a, err := app.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.EnsureIndexes(cmd.Context()); err != nil {
			logger.Warn("index setup failed", "error", err)
		}
		if serveSeed {
			if _, err := seeders.Run(cmd.Context(), a.CategoryAdmin, a.Catalog, seedWorkers); err != nil {
				return err
			}
		}
		return a.Serve(cmd.Context())
	},
}

// storefront route:list: print all registered routes.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.New(repositories.NewMemoryProducts(), repositories.NewMemoryCategories(), cache.NewMemory())
		infos := a.Router(cmd.Context()).Routes()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "load the sample catalog before serving (useful with DB_DRIVER=memory)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "override APP_PORT")
	serveCmd.Flags().IntVar(&seedWorkers, "workers", 4, "seeder concurrency")
}
