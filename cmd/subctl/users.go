package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func (c *cli) usersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "Print the users document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), c.stores.Ledger.Snapshot())
		},
	}
}

func (c *cli) addUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-user <username>",
		Short: "Create an unlimited user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.stores.Ledger.Create(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %q added\n", args[0])
			return nil
		},
	}
}

func (c *cli) setLimitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-limit <username> <limit>",
		Short: "Set the per-category limit of a user (-1 for unlimited)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("limit must be an integer: %w", err)
			}
			if err := c.stores.Ledger.SetLimit(cmd.Context(), args[0], limit); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "limit of %q set to %d\n", args[0], limit)
			return nil
		},
	}
}
