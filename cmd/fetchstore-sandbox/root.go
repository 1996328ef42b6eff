package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fetchstore-sandbox",
		Short:         "In-memory envelope server for fetchstore development",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newCheckSeedCmd())
	root.AddCommand(newProbeCmd())
	return root
}
