package main

import (
	"github.com/spf13/cobra"
)

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context(), false, true)
			if err != nil {
				return err
			}
			defer a.Close()
			cmd.Printf("migrations applied (%s)\n", a.Stores.Driver)
			return nil
		},
	}
}
