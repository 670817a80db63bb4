package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nikolayk812/storefront/internal/catalog"
	"github.com/spf13/cobra"
)

func productsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "Validate the product catalog and print it as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := setup(*configPath)
			if err != nil {
				return err
			}

			c, err := catalog.Load(cfg.CatalogPath)
			if err != nil {
				return fmt.Errorf("catalog.Load: %w", err)
			}

			products, err := c.ListProducts(cmd.Context())
			if err != nil {
				return fmt.Errorf("c.ListProducts: %w", err)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(products)
		},
	}
}
