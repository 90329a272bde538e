package main

import (
	"github.com/spf13/cobra"
)

func (c *cli) summarizeCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "summarize <paths...>",
		Short: "Extract and total ribbon quantities per colour without touching stock",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			paths, err := c.expand(args)
			if err != nil {
				return err
			}
			// Summaries never write; without DB_URL there is nothing to read either.
			a, err := c.open(ctx, c.cfg.Database.DSN == "", false)
			if err != nil {
				return err
			}
			defer a.Close()

			br, err := a.Processor.ProcessBatch(ctx, paths)
			if err != nil {
				return err
			}
			if err := printBatch(cmd.OutOrStdout(), br); err != nil {
				return err
			}
			if out != "" {
				path := c.outputPath(out, br)
				if err := a.Exporter.WriteFile(ctx, path, br, nil); err != nil {
					return err
				}
				cmd.Printf("wrote %s\n", path)
			}
			if len(br.Failed()) > 0 {
				return errDocumentsFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", `write the report to this .xlsx or .csv file ("auto" for EXPORT_DIR)`)
	return cmd
}
