package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"xnav/internal/version"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "xnav",
		Short: "xnav - frecency directory navigation",
		Long: `xnav remembers the directories you visit and jumps back to them by a
short query, ranked by how often and how recently you went there.

Set it up with:
  eval "$(xnav init bash)"     # or zsh, fish

Then:
  x proj          # jump to the best match for "proj"
  x ..            # literal paths still work
  xb work         # jump to the bookmark "work"`,
		Version:       version.Info(),
		Args:          usageArgs(cobra.NoArgs),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			a.close()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := homeDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, home)
			return nil
		},
	}
	root.SetVersionTemplate("xnav version {{.Version}}\n")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})
	root.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Suppress log output")

	root.AddCommand(
		newAddCmd(a),
		newQueryCmd(a),
		newBookmarkCmd(a),
		newStatsCmd(a),
		newCleanCmd(a),
		newConfigCmd(a),
		newInitCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newVersionCmd(a),
	)
	return root
}

// withHistory marks cmd as needing the history database.
func withHistory(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[needsHistory] = "true"
	return cmd
}

func trimLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
