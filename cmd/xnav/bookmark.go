package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"xnav/internal/errors"
	"xnav/internal/output"
	"xnav/internal/paths"
	"xnav/internal/transfer"
)

func newBookmarkCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bookmark",
		Aliases: []string{"bm"},
		Short:   "Manage named directories",
		Long: `Bookmarks are names for directories. A query equal to a bookmark name
resolves to its path before any history lookup.`,
		Args: usageArgs(cobra.NoArgs),
	}
	cmd.AddCommand(
		newBookmarkAddCmd(a),
		newBookmarkRemoveCmd(a),
		newBookmarkListCmd(a),
		newBookmarkGetCmd(a),
		newBookmarkExportCmd(a),
		newBookmarkImportCmd(a),
	)
	return cmd
}

func newBookmarkAddCmd(a *app) *cobra.Command {
	return withHistory(&cobra.Command{
		Use:   "add <name> [path]",
		Short: "Bookmark a directory (default: the current one)",
		Args:  usageArgs(cobra.RangeArgs(1, 2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 2 {
				path = args[1]
			}
			b, err := a.store.AddBookmark(cmd.Context(), args[0], path)
			if err != nil {
				return err
			}
			if !paths.IsDir(b.Path) {
				a.logger.Warn("Bookmark target does not exist", "name", b.Name, "path", b.Path)
			}
			fmt.Fprintf(a.stdout, "%s -> %s\n", b.Name, b.Path)
			return nil
		},
	})
}

func newBookmarkRemoveCmd(a *app) *cobra.Command {
	return withHistory(&cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a bookmark",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.store.RemoveBookmark(cmd.Context(), args[0])
		},
	})
}

func newBookmarkListCmd(a *app) *cobra.Command {
	var format string
	cmd := withHistory(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List bookmarks by name",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.ParseFormat(format)
			if err != nil {
				return err
			}
			bookmarks, err := a.store.ListBookmarks(cmd.Context())
			if err != nil {
				return err
			}
			if f == output.FormatJSON {
				return output.WriteJSON(a.stdout, bookmarks)
			}
			if len(bookmarks) == 0 {
				fmt.Fprintln(a.stderr, "No bookmarks")
				return nil
			}
			now := a.now()
			tbl := output.NewTable(a.stdout)
			for _, b := range bookmarks {
				state := ""
				if !paths.IsDir(b.Path) {
					state = "(missing)"
				}
				tbl.Row(b.Name, b.Path, output.RelativeTime(b.CreatedAt, now), state)
			}
			return tbl.Flush()
		},
	})
	cmd.Flags().StringVar(&format, "format", "human", "Output format (human, json)")
	return cmd
}

func newBookmarkGetCmd(a *app) *cobra.Command {
	return withHistory(&cobra.Command{
		Use:   "get <name>",
		Short: "Print a bookmark's path",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.store.FindBookmark(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if b == nil {
				return errors.Newf(errors.PathNotFound, "no bookmark named %q", args[0])
			}
			fmt.Fprintln(a.stdout, b.Path)
			return nil
		},
	})
}

func newBookmarkExportCmd(a *app) *cobra.Command {
	return withHistory(&cobra.Command{
		Use:   "export <file.toml>",
		Short: "Write all bookmarks to a TOML file",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookmarks, err := a.store.ListBookmarks(cmd.Context())
			if err != nil {
				return err
			}
			if err := transfer.WriteBookmarksFile(args[0], bookmarks); err != nil {
				return err
			}
			a.logger.Info("Exported bookmarks", "file", args[0], "count", len(bookmarks))
			return nil
		},
	})
}

func newBookmarkImportCmd(a *app) *cobra.Command {
	return withHistory(&cobra.Command{
		Use:   "import <file.toml>",
		Short: "Add bookmarks from a TOML file, overwriting by name",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := transfer.ReadBookmarksFile(args[0])
			if err != nil {
				return err
			}
			im := transfer.NewImporter(a.db, a.load.Policy, a.store.Maintenance(), a.logger)
			n, err := im.ImportBookmarks(cmd.Context(), records)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Imported %d bookmarks\n", n)
			return nil
		},
	})
}
