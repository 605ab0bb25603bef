// Command ordermesh provisions and operates the ordering service: a
// connectivity check, a one-shot catalog loader and a serve mode exposing
// Prometheus metrics while a chat transport binding feeds updates into the
// library façade.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configFile string

func main() {
	// Local development keeps credentials in .env; absence is fine.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "ordermesh",
		Short:         "Chat-based ordering service over a commerce backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to config file (default ordermesh.yaml)")

	root.AddCommand(newCheckCmd(), newLoadCatalogCmd(), newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
