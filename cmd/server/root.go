package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	serve := newServeCmd()
	root := &cobra.Command{
		Use:           "nomadsquare",
		Short:         "NomadSquare HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          serve.RunE,
	}
	// The root command serves by default, so it accepts the same flags.
	root.Flags().AddFlagSet(serve.Flags())
	root.AddCommand(serve, newVersionCmd())
	return root
}
