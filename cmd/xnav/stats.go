package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"xnav/internal/maintenance"
	"xnav/internal/output"
)

func newStatsCmd(a *app) *cobra.Command {
	var (
		limit  int
		format string
	)
	cmd := withHistory(&cobra.Command{
		Use:   "stats",
		Short: "Show history totals and the best ranked directories",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.ParseFormat(format)
			if err != nil {
				return err
			}
			snap, err := a.store.Maintenance().Stats(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if f == output.FormatJSON {
				return output.WriteJSON(a.stdout, snap)
			}
			return printStats(a, snap)
		},
	})
	cmd.Flags().IntVarP(&limit, "limit", "n", maintenance.DefaultStatsLimit, "Entries per list")
	cmd.Flags().StringVar(&format, "format", "human", "Output format (human, json)")
	return cmd
}

func printStats(a *app, snap *maintenance.Snapshot) error {
	fmt.Fprintf(a.stdout, "Directories: %d\n", snap.TotalEntries)
	fmt.Fprintf(a.stdout, "Visits:      %d\n", snap.TotalVisits)
	fmt.Fprintf(a.stdout, "Bookmarks:   %d\n", snap.Bookmarks)
	if snap.TotalEntries == 0 {
		return nil
	}

	fmt.Fprintln(a.stdout, "\nTop directories:")
	tbl := output.NewTable(a.stdout)
	for i, s := range snap.Top {
		tbl.Row(fmt.Sprintf("%2d.", i+1), output.FormatFloat(s.Score, 2), s.Visits, s.Path)
	}
	if err := tbl.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, "\nRecently visited:")
	tbl = output.NewTable(a.stdout)
	for _, e := range snap.Recent {
		tbl.Row(output.RelativeTime(e.LastAccessed, snap.GeneratedAt), e.Path)
	}
	return tbl.Flush()
}
