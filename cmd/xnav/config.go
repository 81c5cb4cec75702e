package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"xnav/internal/config"
	"xnav/internal/errors"
	"xnav/internal/output"
)

// configShowResponse is the response format for config show
type configShowResponse struct {
	ConfigPath   string         `json:"config_path"`
	UsedDefaults bool           `json:"used_defaults"`
	Warnings     []string       `json:"warnings,omitempty"`
	Config       *config.Config `json:"config"`
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or reset the configuration",
		Long: `View and manage the xnav configuration stored in config.json.

Every key can be overridden with an XNAV_ environment variable, for example
XNAV_MAX_ENTRIES=500 or XNAV_LOGGING_LEVEL=debug.`,
		Args: usageArgs(cobra.NoArgs),
	}
	cmd.AddCommand(
		newConfigShowCmd(a),
		newConfigGetCmd(a),
		newConfigResetCmd(a),
		newConfigPathCmd(a),
	)
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := output.ParseFormat(format)
			if err != nil {
				return err
			}
			resp := configShowResponse{
				ConfigPath:   a.load.ConfigPath,
				UsedDefaults: a.load.UsedDefaults,
				Config:       a.load.Config,
			}
			for _, w := range a.load.Warnings {
				resp.Warnings = append(resp.Warnings, w.Error())
			}
			if f == output.FormatJSON {
				return output.WriteJSON(a.stdout, resp)
			}
			return printConfig(a, resp)
		},
	}
	cmd.Flags().StringVar(&format, "format", "human", "Output format (human, json)")
	return cmd
}

func printConfig(a *app, resp configShowResponse) error {
	source := resp.ConfigPath
	if resp.UsedDefaults {
		source += " (not found, using defaults)"
	}
	fmt.Fprintf(a.stdout, "Config: %s\n", source)
	for _, w := range resp.Warnings {
		fmt.Fprintf(a.stdout, "Warning: %s\n", w)
	}
	fmt.Fprintln(a.stdout)

	c := resp.Config
	tbl := output.NewTable(a.stdout)
	tbl.Row("max_entries", c.MaxEntries)
	tbl.Row("max_results", c.MaxResults)
	tbl.Row("update_threshold_hours", output.FormatFloat(c.UpdateThresholdHours, 2))
	tbl.Row("enable_fuzzy_matching", c.EnableFuzzyMatching)
	tbl.Row("show_stats_on_query", c.ShowStatsOnQuery)
	tbl.Row("auto_clean_on_startup", c.AutoCleanOnStartup)
	tbl.Row("fzf_options", c.FzfOptions)
	tbl.Row("logging.level", c.Logging.Level)
	if c.Logging.File != "" {
		tbl.Row("logging.file", c.Logging.File)
	}
	for i, p := range c.IgnoredPatterns {
		key := ""
		if i == 0 {
			key = "ignored_patterns"
		}
		tbl.Row(key, p)
	}
	return tbl.Flush()
}

func newConfigGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one configuration value",
		Long: `Print one top-level configuration value. Shell hooks use this to read
fzf_options. List values print one item per line.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, ok := a.load.Config.Get(args[0])
			if !ok {
				return errors.Newf(errors.InvalidArgument, "unknown config key %q", args[0])
			}
			fmt.Fprintln(a.stdout, v)
			return nil
		},
	}
}

func newConfigResetCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Overwrite config.json with the defaults",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.load.ConfigPath
			if _, err := os.Stat(path); err == nil && !yes {
				if !a.confirm(fmt.Sprintf("Overwrite %s with defaults?", path)) {
					fmt.Fprintln(a.stdout, "Aborted")
					return nil
				}
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return errors.New(errors.InternalError, "failed to write config", err)
			}
			fmt.Fprintf(a.stdout, "Wrote defaults to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newConfigPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(a.stdout, a.load.ConfigPath)
			return nil
		},
	}
}
