package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/ribbon-tracker/internal/ribbon"
	"github.com/joseph-ayodele/ribbon-tracker/internal/stock"
)

func (c *cli) stockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Inspect and seed ribbon stock",
	}
	cmd.AddCommand(c.stockListCmd(), c.stockSetCmd(), c.stockExportCmd())
	return cmd
}

func (c *cli) stockListCmd() *cobra.Command {
	var sortBy string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stock per colour",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			order, err := stock.ParseOrder(sortBy)
			if err != nil {
				return err
			}
			a, err := c.open(cmd.Context(), false, false)
			if err != nil {
				return err
			}
			defer a.Close()
			entries, err := a.Stores.Ribbons.List(cmd.Context())
			if err != nil {
				return err
			}
			stock.Sort(entries, order)
			return printStock(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", string(stock.OrderQuantity), "order by colour or quantity (lowest first)")
	return cmd
}

func (c *cli) stockSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <colour> <quantity>",
		Short: "Create or replace the stock of one colour",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			colour := ribbon.NormalizeColour(args[0])
			if colour == "" {
				return fmt.Errorf("colour %q is empty", args[0])
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity %q: %w", args[1], err)
			}
			a, err := c.open(cmd.Context(), false, false)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.Stores.Ribbons.Upsert(cmd.Context(), colour, qty); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s = %d\n", colour, qty)
			return err
		},
	}
}

func (c *cli) stockExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write current stock to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context(), false, false)
			if err != nil {
				return err
			}
			defer a.Close()
			b, err := a.Exporter.StockXLSX(cmd.Context())
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, b, 0o644); err != nil {
				return err
			}
			cmd.Printf("wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "stock.xlsx", "output file")
	return cmd
}
