package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *cli) documentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "Inspect the ledger of reconciled documents",
	}
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List reconciled documents, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			a, err := c.open(cmd.Context(), false, false)
			if err != nil {
				return err
			}
			defer a.Close()
			docs, err := a.Stores.Ledger.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RECONCILED\tNAME\tKIND\tITEMS\tUNITS\tBATCH")
			for _, d := range docs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
					d.ReconciledAt.Format("2006-01-02 15:04:05"), d.Name, d.Kind, d.Items, d.Units, d.BatchID)
			}
			return tw.Flush()
		},
	}
	list.Flags().IntVar(&limit, "limit", 50, "maximum number of documents (0 for all)")
	cmd.AddCommand(list)
	return cmd
}
