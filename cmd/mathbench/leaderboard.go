package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stellarlinkco/mathbench/internal/leaderboard"
)

type leaderboardOptions struct {
	dataset string
	top     int
	format  string
	output  string
}

func newLeaderboardCmd(st *cliState) *cobra.Command {
	var opts leaderboardOptions

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the leaderboard for a dataset",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfigInto(st)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLeaderboard(cmd, st, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.dataset, "dataset", "", "dataset name")
	cmd.Flags().IntVar(&opts.top, "top", 20, "top N entries")
	cmd.Flags().StringVar(&opts.format, "format", "table", "output format: table|json|markdown")
	cmd.Flags().StringVar(&opts.output, "output", "", "write markdown to this file instead of stdout")

	return cmd
}

func runLeaderboard(cmd *cobra.Command, st *cliState, opts *leaderboardOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("leaderboard: missing config (internal error)")
	}
	if opts == nil {
		return fmt.Errorf("leaderboard: nil options")
	}

	ds := strings.TrimSpace(opts.dataset)
	if ds == "" {
		return fmt.Errorf("leaderboard: missing --dataset")
	}

	lb, err := leaderboard.NewStore(st.cfg.Storage.LeaderboardPath)
	if err != nil {
		return err
	}
	defer lb.Close()

	entries, err := lb.GetLeaderboard(cmd.Context(), ds, opts.top)
	if err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(opts.format)) {
	case "", "table":
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "RANK\tMODEL\tSCORE\tMATH\tPHYSICS\tTOKENS\tTIME\tDATE")
		for i, e := range entries {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
				i+1,
				e.ModelID,
				formatRatio(e.Score),
				formatRatio(e.MathScore),
				formatRatio(e.PhysicsScore),
				e.TotalTokens,
				formatElapsed(e.EvalTime),
				e.EvalDate.UTC().Format("2006-01-02 15:04:05Z"),
			)
		}
		return tw.Flush()
	case "json":
		views := make([]scoreView, 0, len(entries))
		for _, e := range entries {
			views = append(views, scoreView{
				ModelID:        e.ModelID,
				Dataset:        e.Dataset,
				Score:          e.Score,
				MathScore:      optionalFloat(e.MathScore),
				PhysicsScore:   optionalFloat(e.PhysicsScore),
				TotalQuestions: e.TotalQuestions,
				CorrectCount:   e.CorrectCount,
				FailedCount:    e.FailedCount,
				CachedCount:    e.CachedCount,
				TotalTokens:    e.TotalTokens,
				EvaluationTime: e.EvalTime.Seconds(),
			})
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	case "markdown", "md":
		failures, err := lb.GetFailures(cmd.Context(), ds)
		if err != nil {
			return err
		}
		md := leaderboard.RenderMarkdown("Math Evaluation Leaderboard", entries, failures)
		if out := strings.TrimSpace(opts.output); out != "" {
			if err := os.WriteFile(out, []byte(md), 0o644); err != nil {
				return fmt.Errorf("leaderboard: write %q: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	default:
		return fmt.Errorf("leaderboard: invalid --format %q (expected table|json|markdown)", opts.format)
	}
}
