package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) applyCmd() *cobra.Command {
	var (
		out   string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "apply <paths...>",
		Short: "Summarize documents and subtract the totals from stock",
		Long: "Summarize documents and subtract the totals from stock. Documents already\n" +
			"reconciled in an earlier run are skipped unless --force is given.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			paths, err := c.expand(args)
			if err != nil {
				return err
			}
			a, err := c.open(ctx, false, false)
			if err != nil {
				return err
			}
			defer a.Close()

			br, err := a.Processor.ProcessBatch(ctx, paths)
			if err != nil {
				return err
			}
			ar, applyErr := a.Processor.Apply(ctx, br, force)
			if applyErr != nil && len(ar.Applied) == 0 {
				return applyErr
			}
			if err := printApply(cmd.OutOrStdout(), ar); err != nil {
				return err
			}
			if out != "" {
				path := c.outputPath(out, br)
				if err := a.Exporter.WriteFile(ctx, path, br, &ar); err != nil {
					return err
				}
				cmd.Printf("wrote %s\n", path)
			}
			if applyErr != nil {
				// Stock already changed; rerunning would decrement twice.
				return fmt.Errorf("stock updated but ledger not recorded, do not rerun without checking: %w", applyErr)
			}
			if len(ar.Reconciliation.Failed()) > 0 {
				return errStockFailed
			}
			if len(ar.Failed) > 0 {
				return errDocumentsFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", `write the report to this .xlsx or .csv file ("auto" for EXPORT_DIR)`)
	cmd.Flags().BoolVar(&force, "force", false, "reapply documents already recorded in the ledger")
	return cmd
}
