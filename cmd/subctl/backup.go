package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/unknownmsv/O1Sub/internal/bootstrap"
	"github.com/unknownmsv/O1Sub/pkg/zip"
)

func (c *cli) backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup [file.zip]",
		Short: "Write every document into a zip archive",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			out := "o1sub-backup-" + now.Format("20060102-150405") + ".zip"
			if len(args) == 1 {
				out = args[0]
			}
			var files []zip.File
			for _, name := range bootstrap.DocumentNames() {
				raw, err := c.stores.Raw(cmd.Context(), name)
				if err != nil {
					return fmt.Errorf("read %s: %w", name, err)
				}
				files = append(files, zip.File{Name: name, Data: raw, Modified: now})
			}
			archive, err := zip.Archive(files)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, archive, 0o600); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
}
