package leaderboard

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// RenderMarkdown formats ranked entries as a markdown leaderboard table,
// with failed runs listed underneath so broken pairs stay visible.
func RenderMarkdown(title string, entries []Entry, failures []FailedRun) string {
	if strings.TrimSpace(title) == "" {
		title = "Leaderboard"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Last updated: %s\n\n", time.Now().UTC().Format("2006-01-02 15:04:05"))

	b.WriteString("| # | Model | Score | Math | Physics | Tokens | Eval Time |\n")
	b.WriteString("|---|-------|-------|------|---------|--------|-----------|\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %d | %s |\n",
			i+1,
			e.ModelID,
			formatScore(e.Score),
			formatScore(e.MathScore),
			formatScore(e.PhysicsScore),
			e.TotalTokens,
			formatEvalTime(e.EvalTime),
		)
	}

	if len(failures) > 0 {
		b.WriteString("\n## Failed runs\n\n")
		b.WriteString("| Model | Reason |\n")
		b.WriteString("|-------|--------|\n")
		for _, f := range failures {
			fmt.Fprintf(&b, "| %s | %s |\n", f.ModelID, sanitizeCell(f.Reason))
		}
	}

	return b.String()
}

func formatScore(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return fmt.Sprintf("%.3f", v)
}

func formatEvalTime(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Second).String()
}

// sanitizeCell keeps multi-line error text from breaking the table.
func sanitizeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.TrimSpace(s)
	if len(s) > 120 {
		s = s[:117] + "..."
	}
	return s
}
