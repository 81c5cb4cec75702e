package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"xnav/internal/shell"
)

func newInitCmd(a *app) *cobra.Command {
	opts := shell.DefaultOptions()
	cmd := &cobra.Command{
		Use:   "init <shell>",
		Short: "Print the shell integration script",
		Long: fmt.Sprintf(`Print the script that records directory changes and defines the jump
function. Supported shells: %s.

  bash:  eval "$(xnav init bash)"     in ~/.bashrc
  zsh:   eval "$(xnav init zsh)"      in ~/.zshrc
  fish:  xnav init fish | source      in ~/.config/fish/config.fish`, strings.Join(shell.Supported(), ", ")),
		Args:      usageArgs(cobra.ExactArgs(1)),
		ValidArgs: shell.Supported(),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := shell.Render(args[0], opts)
			if err != nil {
				return err
			}
			fmt.Fprint(a.stdout, script)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Command, "cmd", opts.Command, "Name of the jump function")
	cmd.Flags().BoolVar(&opts.NoHook, "no-hook", false, "Do not record directory changes")
	return cmd
}
