package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/clients/catalog"
)

func newProductsCmd(opts *options) *cobra.Command {
	products := &cobra.Command{
		Use:   "products",
		Short: "Inspect the catalog",
	}
	products.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every product in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := catalog.New(opts.catalogURL, opts.catalogTimeout).List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tVENDOR\tCATEGORY\tPRICE\tSCORE")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%d\n", e.Name, e.Vendor, e.Category, e.Price, e.AIEvaluation.Score)
			}
			return tw.Flush()
		},
	})
	return products
}
