package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ordermesh/ordermesh/config"
)

// newCheckCmd verifies connectivity to every external dependency.
func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify Redis, backend credentials and catalog access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			store := buildSessionStore(cfg)
			defer store.Close()
			if err := store.Ping(ctx); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			fmt.Println("redis: ok")

			client := buildCommerce(cfg, buildLogger(cfg))
			products, err := client.ListProducts(ctx)
			if err != nil {
				return fmt.Errorf("catalog: %w", err)
			}
			fmt.Printf("catalog: ok (%d products)\n", len(products))

			locations, err := client.ListFulfillmentLocations(ctx)
			if err != nil {
				return fmt.Errorf("locations: %w", err)
			}
			fmt.Printf("locations: ok (%d entries)\n", len(locations))
			return nil
		},
	}
}
