package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"xnav/internal/maintenance"
)

func newCleanCmd(a *app) *cobra.Command {
	var (
		yes    bool
		dryRun bool
	)
	cmd := withHistory(&cobra.Command{
		Use:   "clean",
		Short: "Remove entries for missing or ignored directories",
		Long: `Remove history entries whose directory no longer exists or that match an
ignored pattern. The candidates are listed and confirmed before anything is
deleted unless --yes is given.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.store.Maintenance()
			plan, err := m.PlanClean(cmd.Context())
			if err != nil {
				return err
			}
			if plan.Len() == 0 {
				fmt.Fprintln(a.stdout, "Nothing to clean")
				return nil
			}
			printCleanPlan(a, plan)
			if dryRun {
				return nil
			}
			if !yes && !a.confirm(fmt.Sprintf("Remove %d entries?", plan.Len())) {
				fmt.Fprintln(a.stdout, "Aborted")
				return nil
			}
			n, err := m.Apply(cmd.Context(), plan)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Removed %d entries\n", n)
			return nil
		},
	})
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only list what would be removed")
	return cmd
}

func printCleanPlan(a *app, plan *maintenance.CleanPlan) {
	for _, c := range plan.Candidates {
		if c.Reason == maintenance.ReasonIgnored {
			fmt.Fprintf(a.stdout, "  %s  (ignored by %s)\n", c.Path, c.Pattern)
			continue
		}
		fmt.Fprintf(a.stdout, "  %s  (%s)\n", c.Path, c.Reason)
	}
}
