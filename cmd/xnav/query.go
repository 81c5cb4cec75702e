package main

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"xnav/internal/errors"
	"xnav/internal/output"
	"xnav/internal/ranking"
	"xnav/internal/resolve"
)

type queryOptions struct {
	ancestor bool
	suggest  bool
	format   string
}

// queryResponse is the --format json shape of a resolution.
type queryResponse struct {
	Query      string              `json:"query"`
	Kind       string              `json:"kind"`
	Stage      resolve.Stage       `json:"stage,omitempty"`
	Path       string              `json:"path"`
	Candidates []resolve.Candidate `json:"candidates,omitempty"`
}

func newQueryCmd(a *app) *cobra.Command {
	var opts queryOptions
	cmd := withHistory(&cobra.Command{
		Use:   "query [words...]",
		Short: "Resolve a query to a directory",
		Long: `Resolve a query to a directory and print it.

The query is tried, in order, as a literal path, a bookmark name, the name of
a directory above the current one, and finally against the visit history.
A single match prints one path. Several history matches print one path per
line, best first. No words prints the home directory.

Examples:
  xnav query proj               # best match for "proj"
  xnav query my project         # words are joined with a space
  xnav query --ancestor src     # only look above the current directory
  xnav query --suggest pro      # completion candidates
  xnav query --format json api  # ranked candidates with scores`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, a, opts, args)
		},
	})
	cmd.Flags().BoolVar(&opts.ancestor, "ancestor", false, "Only match directories above the current one")
	cmd.Flags().BoolVar(&opts.suggest, "suggest", false, "Print ranked history matches for completion")
	cmd.Flags().StringVar(&opts.format, "format", "human", "Output format (human, json)")
	return cmd
}

func runQuery(cmd *cobra.Command, a *app, opts queryOptions, args []string) error {
	format, err := output.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	query := strings.TrimSpace(strings.Join(args, " "))
	r := a.resolver()

	switch {
	case opts.suggest:
		if query == "" {
			return nil
		}
		candidates, err := r.Suggest(cmd.Context(), query, a.load.Config.MaxResults)
		if err != nil {
			return err
		}
		if format == output.FormatJSON {
			return output.WriteJSON(a.stdout, candidates)
		}
		for _, c := range candidates {
			fmt.Fprintln(a.stdout, c.Path)
		}
		return nil

	case opts.ancestor:
		path, ok := r.ResolveAncestor(query, a.cwd)
		if !ok {
			return errors.Newf(errors.PathNotFound, "no directory named %q above %s", query, a.cwd)
		}
		return a.printResult(format, query, resolve.Result{Kind: resolve.Hit, Stage: resolve.StageAncestor, Path: path})
	}

	res, err := r.ResolveWords(cmd.Context(), args, a.cwd)
	if stderrors.Is(err, resolve.ErrEmptyQuery) {
		home, herr := homeDir()
		if herr != nil {
			return herr
		}
		res, err = resolve.Result{Kind: resolve.Hit, Stage: resolve.StageLiteral, Path: home}, nil
	}
	if err != nil {
		return err
	}
	if err := a.printResult(format, query, res); err != nil {
		return err
	}
	if a.load.Config.ShowStatsOnQuery && format == output.FormatHuman {
		a.printQueryStats(cmd, res)
	}
	return nil
}

func (a *app) printResult(format output.Format, query string, res resolve.Result) error {
	if format == output.FormatJSON {
		return output.WriteJSON(a.stdout, queryResponse{
			Query:      query,
			Kind:       res.Kind.String(),
			Stage:      res.Stage,
			Path:       res.Path,
			Candidates: res.Candidates,
		})
	}
	if res.Kind == resolve.Ambiguous {
		for _, c := range res.Candidates {
			fmt.Fprintln(a.stdout, c.Path)
		}
		return nil
	}
	fmt.Fprintln(a.stdout, res.Path)
	return nil
}

// printQueryStats writes the score of the resolved path to stderr so the
// shell still reads a bare path from stdout.
func (a *app) printQueryStats(cmd *cobra.Command, res resolve.Result) {
	if res.Kind == resolve.Ambiguous {
		fmt.Fprintf(a.stderr, "%d matches\n", len(res.Candidates))
		return
	}
	entry, err := a.store.FindEntry(cmd.Context(), res.Path)
	if err != nil || entry == nil {
		return
	}
	now := a.now()
	score := ranking.Score(entry.Visits, entry.LastAccessed, now, a.load.Config.UpdateThresholdHours)
	fmt.Fprintf(a.stderr, "score %s, %d visits, last %s\n",
		output.FormatFloat(score, 2), entry.Visits, output.RelativeTime(entry.LastAccessed, now))
}
