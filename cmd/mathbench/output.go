package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/stellarlinkco/mathbench/internal/leaderboard"
	"github.com/stellarlinkco/mathbench/internal/score"
)

// scoreView mirrors score.ModelScore with nullable subject scores so the
// NaN sentinel encodes as null.
type scoreView struct {
	ModelID        string   `json:"model_id"`
	Dataset        string   `json:"dataset"`
	Score          float64  `json:"score"`
	MathScore      *float64 `json:"math_score"`
	PhysicsScore   *float64 `json:"physics_score"`
	TotalQuestions int      `json:"total_questions"`
	CorrectCount   int      `json:"correct_count"`
	FailedCount    int      `json:"failed_count"`
	CachedCount    int      `json:"cached_count"`
	TotalTokens    int      `json:"total_tokens"`
	MeanTokens     *float64 `json:"mean_tokens"`
	EvaluationTime float64  `json:"evaluation_time"` // seconds
}

type runOutput struct {
	Scores   []scoreView  `json:"scores"`
	Failures []failedView `json:"failures,omitempty"`
}

type failedView struct {
	ModelID string `json:"model_id"`
	Dataset string `json:"dataset"`
	Reason  string `json:"reason"`
}

func writeScores(w io.Writer, scores []score.ModelScore, failures []leaderboard.FailedRun, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "table":
		return writeScoresTable(w, scores, failures)
	case "json":
		return writeScoresJSON(w, scores, failures)
	default:
		return fmt.Errorf("invalid --format %q (expected table|json)", format)
	}
}

func writeScoresTable(w io.Writer, scores []score.ModelScore, failures []leaderboard.FailedRun) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tDATASET\tSCORE\tMATH\tPHYSICS\tCORRECT\tFAILED\tCACHED\tTOKENS\tTIME")
	for _, sc := range scores {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d/%d\t%d\t%d\t%d\t%s\n",
			sc.ModelID,
			sc.Dataset,
			formatRatio(sc.Score),
			formatRatio(sc.MathScore),
			formatRatio(sc.PhysicsScore),
			sc.CorrectCount,
			sc.TotalQuestions,
			sc.FailedCount,
			sc.CachedCount,
			sc.TotalTokens,
			formatElapsed(sc.EvaluationTime),
		)
	}
	for _, f := range failures {
		fmt.Fprintf(tw, "%s\t%s\tFAILED\t\t\t\t\t\t\t%s\n", f.ModelID, f.Dataset, f.Reason)
	}
	return tw.Flush()
}

func writeScoresJSON(w io.Writer, scores []score.ModelScore, failures []leaderboard.FailedRun) error {
	out := runOutput{Scores: make([]scoreView, 0, len(scores))}
	for _, sc := range scores {
		out.Scores = append(out.Scores, toScoreView(sc))
	}
	for _, f := range failures {
		out.Failures = append(out.Failures, failedView{ModelID: f.ModelID, Dataset: f.Dataset, Reason: f.Reason})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func toScoreView(sc score.ModelScore) scoreView {
	return scoreView{
		ModelID:        sc.ModelID,
		Dataset:        sc.Dataset,
		Score:          sc.Score,
		MathScore:      optionalFloat(sc.MathScore),
		PhysicsScore:   optionalFloat(sc.PhysicsScore),
		TotalQuestions: sc.TotalQuestions,
		CorrectCount:   sc.CorrectCount,
		FailedCount:    sc.FailedCount,
		CachedCount:    sc.CachedCount,
		TotalTokens:    sc.TotalTokens,
		MeanTokens:     optionalFloat(sc.MeanTokens),
		EvaluationTime: sc.EvaluationTime.Seconds(),
	}
}

func optionalFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func formatRatio(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return fmt.Sprintf("%.3f", v)
}

func formatElapsed(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Second).String()
}
