package leaderboard

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestRenderMarkdown(t *testing.T) {
	entries := []Entry{
		{
			ModelID:      "m2",
			Dataset:      "ru-math",
			Score:        0.9,
			MathScore:    0.9,
			PhysicsScore: math.NaN(),
			TotalTokens:  900,
			EvalTime:     90 * time.Second,
		},
		{
			ModelID:      "m1",
			Dataset:      "ru-math",
			Score:        0.805,
			MathScore:    0.81,
			PhysicsScore: 0.8,
			TotalTokens:  1200,
			EvalTime:     42 * time.Second,
		},
	}
	failures := []FailedRun{
		{ModelID: "m3", Dataset: "ru-math", Reason: "rate limit | exhausted\nafter retries"},
	}

	md := RenderMarkdown("Math Evaluation Leaderboard", entries, failures)

	for _, want := range []string{
		"# Math Evaluation Leaderboard",
		"| # | Model | Score | Math | Physics | Tokens | Eval Time |",
		"| 1 | m2 | 0.900 | 0.900 | - | 900 | 1m30s |",
		"| 2 | m1 | 0.805 | 0.810 | 0.800 | 1200 | 42s |",
		"## Failed runs",
		"| m3 | rate limit \\| exhausted after retries |",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestRenderMarkdown_Empty(t *testing.T) {
	md := RenderMarkdown("", nil, nil)
	if !strings.HasPrefix(md, "# Leaderboard") {
		t.Fatalf("default title: got %q", md)
	}
	if strings.Contains(md, "Failed runs") {
		t.Fatalf("empty failures must omit section:\n%s", md)
	}
}
