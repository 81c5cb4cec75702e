package main

import (
	"github.com/spf13/cobra"

	"xnav/internal/history"
)

func newAddCmd(a *app) *cobra.Command {
	return withHistory(&cobra.Command{
		Use:   "add [path]",
		Short: "Record a visit to a directory",
		Long: `Record a visit to path (default: the current directory).

The shell hook installed by "xnav init" calls this on every directory change.
Paths matching an ignored pattern are accepted and silently dropped.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cwd
			if len(args) == 1 {
				path = args[0]
			}
			outcome, err := a.store.RecordVisit(cmd.Context(), path)
			if err != nil {
				return err
			}
			if outcome == history.Ignored {
				a.logger.Debug("Visit ignored", "path", path)
			}
			return nil
		},
	})
}
