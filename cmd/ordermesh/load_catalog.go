package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ordermesh/ordermesh/config"
	"github.com/ordermesh/ordermesh/loader"
)

// newLoadCatalogCmd bulk-imports the menu and fulfillment addresses.
func newLoadCatalogCmd() *cobra.Command {
	var menuPath, addressesPath string

	cmd := &cobra.Command{
		Use:   "load-catalog",
		Short: "Bulk-import menu products and fulfillment addresses",
		RunE: func(cmd *cobra.Command, args []string) error {
			if menuPath == "" && addressesPath == "" {
				return fmt.Errorf("nothing to load: pass --menu and/or --addresses")
			}
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			logger := buildLogger(cfg)
			ld := loader.New(buildCommerce(cfg, logger), logger)
			ctx := cmd.Context()

			if menuPath != "" {
				f, err := os.Open(menuPath)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := ld.LoadMenu(ctx, f); err != nil {
					return err
				}
			}
			if addressesPath != "" {
				f, err := os.Open(addressesPath)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := ld.LoadAddresses(ctx, f); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&menuPath, "menu", "", "path to menu JSON")
	cmd.Flags().StringVar(&addressesPath, "addresses", "", "path to addresses JSON")
	return cmd
}
