package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/curator/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "curator %s (commit %s, built %s)\n",
				version.Version, version.Commit, version.Date)
			return err //nolint:wrapcheck // stdout write
		},
	}
}
