package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"xnav/internal/version"
)

func newVersionCmd(a *app) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				fmt.Fprintln(a.stdout, version.Full())
				return nil
			}
			fmt.Fprintf(a.stdout, "xnav version %s\n", version.Info())
			return nil
		},
	}
	cmd.Flags().BoolVar(&verbose, "long", false, "Include commit, build date and Go version")
	return cmd
}
