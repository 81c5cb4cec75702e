package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"xnav/internal/errors"
	"xnav/internal/transfer"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		format   string
		compress bool
		outPath  string
	)
	cmd := withHistory(&cobra.Command{
		Use:   "export",
		Short: "Write the history and bookmarks to a snapshot",
		Long: `Write every entry and bookmark to a snapshot file (or stdout).

Examples:
  xnav export > history.json
  xnav export --format yaml -o history.yaml
  xnav export --gzip -o history.json.gz`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := transfer.FormatJSON
			if format != "" {
				parsed, err := transfer.ParseFormat(format)
				if err != nil {
					return err
				}
				f = parsed
			} else if outPath != "" {
				f = transfer.FormatFromPath(outPath)
			}
			if strings.HasSuffix(outPath, ".gz") {
				compress = true
			}

			snap, err := transfer.Build(cmd.Context(), a.db, a.now())
			if err != nil {
				return err
			}

			w := a.stdout
			if outPath != "" {
				if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
					return fmt.Errorf("failed to create directory: %w", err)
				}
				file, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("failed to create snapshot file: %w", err)
				}
				defer file.Close()
				w = file
			}
			if err := transfer.Encode(w, snap, f, compress); err != nil {
				return err
			}
			a.logger.Info("Exported snapshot",
				"id", snap.ID,
				"entries", len(snap.Entries),
				"bookmarks", len(snap.Bookmarks),
				"format", string(f),
			)
			return nil
		},
	})
	cmd.Flags().StringVar(&format, "format", "", "Snapshot format (json, yaml, toml); default from -o extension, else json")
	cmd.Flags().BoolVar(&compress, "gzip", false, "Compress the snapshot")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var (
		format string
		merge  bool
	)
	cmd := withHistory(&cobra.Command{
		Use:   "import <file|->",
		Short: "Load a snapshot written by export",
		Long: `Load a snapshot written by "xnav export". Without --merge the current
history and bookmarks are replaced. With --merge visit counts are added and
bookmarks overwrite by name. Compressed snapshots are detected automatically.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := args[0]
			f := transfer.FormatFromPath(src)
			if format != "" {
				parsed, err := transfer.ParseFormat(format)
				if err != nil {
					return err
				}
				f = parsed
			}

			var r io.Reader = a.stdin
			if src != "-" {
				file, err := os.Open(src)
				if err != nil {
					return errors.New(errors.InvalidArgument, "cannot open snapshot", err)
				}
				defer file.Close()
				r = file
			}

			snap, err := transfer.Decode(r, f)
			if err != nil {
				return err
			}
			im := transfer.NewImporter(a.db, a.load.Policy, a.store.Maintenance(), a.logger)
			res, err := im.Import(cmd.Context(), snap, merge)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Imported %d entries and %d bookmarks", res.Entries, res.Bookmarks)
			if res.Ignored > 0 {
				fmt.Fprintf(a.stdout, ", skipped %d ignored", res.Ignored)
			}
			if res.Evicted > 0 {
				fmt.Fprintf(a.stdout, ", evicted %d over capacity", res.Evicted)
			}
			fmt.Fprintln(a.stdout)
			return nil
		},
	})
	cmd.Flags().StringVar(&format, "format", "", "Snapshot format (json, yaml, toml); default from extension")
	cmd.Flags().BoolVar(&merge, "merge", false, "Merge into the current history instead of replacing it")
	return cmd
}
