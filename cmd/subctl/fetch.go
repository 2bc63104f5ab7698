package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <category>",
		Short: "Aggregate a category and print the decoded configs without counting usage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.stores.NewService(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			out, err := svc.Preview(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if out != "" {
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}
}
