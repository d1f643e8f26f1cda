package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stellarlinkco/mathbench/internal/cache"
	"github.com/stellarlinkco/mathbench/internal/client"
	"github.com/stellarlinkco/mathbench/internal/config"
	"github.com/stellarlinkco/mathbench/internal/dataset"
	"github.com/stellarlinkco/mathbench/internal/eval"
	"github.com/stellarlinkco/mathbench/internal/leaderboard"
	"github.com/stellarlinkco/mathbench/internal/llm"
	"github.com/stellarlinkco/mathbench/internal/score"
)

type runOptions struct {
	models     []string
	datasets   []string
	maxWorkers int
	noCache    bool
	limit      int
	output     string
	format     string
}

func newRunCmd(st *cliState) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate models against datasets",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfigInto(st)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluations(cmd, st, &opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.models, "models", nil, "model ids to evaluate (default: all configured)")
	cmd.Flags().StringSliceVar(&opts.datasets, "datasets", nil, "dataset names (default: all available)")
	cmd.Flags().IntVar(&opts.maxWorkers, "max-workers", 0, "in-flight model call ceiling (overrides config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the completion cache")
	cmd.Flags().IntVar(&opts.limit, "num-examples", 0, "evaluate only the first N questions (overrides config)")
	cmd.Flags().StringVar(&opts.output, "output", "", "write a markdown leaderboard to this file")
	cmd.Flags().StringVar(&opts.format, "format", "table", "output format: table|json")

	return cmd
}

func runEvaluations(cmd *cobra.Command, st *cliState, opts *runOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("run: missing config (internal error)")
	}
	if opts == nil {
		return fmt.Errorf("run: nil options")
	}
	cfg := st.cfg

	modelIDs, err := resolveModelIDs(cfg, opts.models)
	if err != nil {
		return err
	}
	datasets, err := resolveDatasets(cfg, opts.datasets)
	if err != nil {
		return err
	}

	workers := cfg.Evaluation.MaxWorkers
	if opts.maxWorkers > 0 {
		workers = opts.maxWorkers
	}
	if workers <= 0 {
		workers = 1
	}

	limit := cfg.Datasets.NumExamples
	if opts.limit > 0 {
		limit = opts.limit
	}

	registry, err := llm.NewRegistryFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	var cacheStore cache.Store
	if opts.noCache || cfg.Evaluation.NoCache {
		cacheStore = cache.BypassStore{}
	} else {
		s, err := cache.NewSQLiteStore(cfg.Storage.CachePath)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		cacheStore = s
	}
	defer cacheStore.Close()

	lb, err := leaderboard.NewStore(cfg.Storage.LeaderboardPath)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	defer lb.Close()

	// One ceiling shared by every (model, dataset) pair.
	global := make(chan struct{}, workers)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var (
		scores   []score.ModelScore
		failures []leaderboard.FailedRun
	)

	for _, dsName := range datasets {
		ds, err := dataset.Load(ctx, cfg.Datasets.Dir, dsName, cfg.Datasets.Version, limit)
		if err != nil {
			return err
		}

		for _, id := range modelIDs {
			provider, ok := registry.Get(id)
			if !ok {
				return fmt.Errorf("run: unknown model %q", id)
			}
			mc := cfg.Models[id]

			cl := client.New(provider,
				client.WithRetry(cfg.Evaluation.Retries),
				client.WithTimeout(cfg.Evaluation.Timeout.Std()),
			)
			orch := eval.New(cl, cacheStore, workers, global)

			fmt.Fprintf(cmd.OutOrStdout(), "evaluating %s on %s (%d questions)\n", id, dsName, len(ds.Questions))

			res, err := orch.Evaluate(ctx, eval.ModelSpec{
				ID:           id,
				Name:         mc.Model,
				SystemPrompt: mc.SystemPrompt,
				Temperature:  mc.Temperature,
				MaxTokens:    mc.MaxTokens,
				Parallelism:  mc.Parallelism,
			}, ds)
			if err != nil {
				if ctx.Err() != nil {
					return err
				}
				// A fatal pair failure stays on the board; other pairs
				// keep running.
				run := leaderboard.FailedRun{ModelID: id, Dataset: dsName, Reason: err.Error()}
				if saveErr := lb.SaveFailure(ctx, &run); saveErr != nil {
					fmt.Fprintln(stderrWriter, saveErr)
				}
				failures = append(failures, run)
				continue
			}

			sc := score.Aggregate(id, dsName, res.Records, res.Elapsed)
			entry := leaderboard.NewEntry(sc)
			if err := lb.Save(ctx, &entry); err != nil {
				return err
			}
			scores = append(scores, sc)
		}
	}

	if err := writeScores(cmd.OutOrStdout(), scores, failures, opts.format); err != nil {
		return err
	}

	if out := strings.TrimSpace(opts.output); out != "" {
		md := renderRunMarkdown(scores, failures)
		if err := os.WriteFile(out, []byte(md), 0o644); err != nil {
			return fmt.Errorf("run: write %q: %w", out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
	}
	return nil
}

func resolveModelIDs(cfg *config.Config, requested []string) ([]string, error) {
	if len(requested) > 0 {
		out := make([]string, 0, len(requested))
		for _, id := range requested {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if _, ok := cfg.Models[id]; !ok {
				return nil, fmt.Errorf("run: unknown model %q", id)
			}
			out = append(out, id)
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("run: no models selected")
		}
		return out, nil
	}

	if len(cfg.Models) == 0 {
		return nil, fmt.Errorf("run: no models configured")
	}
	out := make([]string, 0, len(cfg.Models))
	for id := range cfg.Models {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func resolveDatasets(cfg *config.Config, requested []string) ([]string, error) {
	if len(requested) > 0 {
		out := make([]string, 0, len(requested))
		for _, name := range requested {
			name = strings.TrimSpace(name)
			if name != "" {
				out = append(out, name)
			}
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("run: no datasets selected")
		}
		return out, nil
	}

	names, err := dataset.List(cfg.Datasets.Dir)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("run: no datasets found")
	}
	return names, nil
}

func renderRunMarkdown(scores []score.ModelScore, failures []leaderboard.FailedRun) string {
	entries := make([]leaderboard.Entry, 0, len(scores))
	for _, sc := range scores {
		entries = append(entries, leaderboard.NewEntry(sc))
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	return leaderboard.RenderMarkdown("Math Evaluation Leaderboard", entries, failures)
}
