package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unknownmsv/O1Sub/internal/domain"
)

func (c *cli) linksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "links [category]",
		Short: "Print the remote links, optionally of one category",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return printJSON(cmd.OutOrStdout(), c.stores.Links.Snapshot())
			}
			urls, ok := c.stores.Links.URLs(args[0])
			if !ok {
				return fmt.Errorf("category %q: %w", args[0], domain.ErrNotFound)
			}
			if len(urls) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(urls, "\n"))
			}
			return nil
		},
	}
}

func (c *cli) addLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-link <category> <url>",
		Short: "Append a remote link to a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.stores.Links.Add(cmd.Context(), args[0], args[1])
		},
	}
}

func (c *cli) removeLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-link <category> <url>",
		Short: "Remove a remote link from a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.stores.Links.Remove(cmd.Context(), args[0], args[1])
		},
	}
}
