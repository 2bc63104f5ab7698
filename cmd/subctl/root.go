package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/unknownmsv/O1Sub/internal/bootstrap"
	"github.com/unknownmsv/O1Sub/internal/infra"
	"github.com/unknownmsv/O1Sub/internal/storage"
)

// cli carries the state shared by every subcommand for one invocation.
type cli struct {
	cfg     *infra.Config
	stores  *bootstrap.Stores
	verbose bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:          "subctl",
		Short:        "Manage subscription users and public links",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.stores != nil {
				c.stores.Close()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log storage activity to stderr")

	root.AddCommand(
		c.usersCmd(),
		c.addUserCmd(),
		c.setLimitCmd(),
		c.linksCmd(),
		c.addLinkCmd(),
		c.removeLinkCmd(),
		c.fetchCmd(),
		c.backupCmd(),
	)
	return root
}

func (c *cli) open(cmd *cobra.Command) error {
	cfg, err := infra.LoadToolConfig()
	if err != nil {
		return err
	}
	logger := zerolog.Nop()
	if c.verbose {
		logger = infra.NewLogger("development", "")
	}
	stores, err := bootstrap.Open(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.stores = stores
	return nil
}

func printJSON(w io.Writer, v any) error {
	raw, err := storage.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}
