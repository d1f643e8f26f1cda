package main

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stellarlinkco/mathbench/internal/leaderboard"
	"github.com/stellarlinkco/mathbench/internal/score"
)

func sampleScores() []score.ModelScore {
	return []score.ModelScore{
		{
			ModelID:        "gpt-test",
			Dataset:        "ru-math",
			Score:          0.75,
			MathScore:      0.75,
			PhysicsScore:   math.NaN(),
			TotalQuestions: 4,
			CorrectCount:   3,
			FailedCount:    1,
			CachedCount:    2,
			TotalTokens:    120,
			MeanTokens:     30,
			EvaluationTime: 12 * time.Second,
		},
	}
}

func TestWriteScores_Table(t *testing.T) {
	var buf bytes.Buffer
	failures := []leaderboard.FailedRun{{ModelID: "m2", Dataset: "ru-math", Reason: "rate limit exhausted"}}
	if err := writeScores(&buf, sampleScores(), failures, "table"); err != nil {
		t.Fatalf("writeScores: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"MODEL", "gpt-test", "0.750", "3/4", "12s", "m2", "FAILED", "rate limit exhausted"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
}

func TestWriteScores_JSON_NaNEncodesAsNull(t *testing.T) {
	var buf bytes.Buffer
	if err := writeScores(&buf, sampleScores(), nil, "json"); err != nil {
		t.Fatalf("writeScores: %v", err)
	}

	var got runOutput
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.Scores) != 1 {
		t.Fatalf("len(scores): got %d want %d", len(got.Scores), 1)
	}
	if got.Scores[0].PhysicsScore != nil {
		t.Fatalf("physics score: got %v want null", *got.Scores[0].PhysicsScore)
	}
	if got.Scores[0].MathScore == nil || *got.Scores[0].MathScore != 0.75 {
		t.Fatalf("math score: got %v want 0.75", got.Scores[0].MathScore)
	}
}

func TestWriteScores_JSON_BoundaryFieldNames(t *testing.T) {
	var buf bytes.Buffer
	if err := writeScores(&buf, sampleScores(), nil, "json"); err != nil {
		t.Fatalf("writeScores: %v", err)
	}

	var raw struct {
		Scores []map[string]any `json:"scores"`
	}
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(raw.Scores) != 1 {
		t.Fatalf("len(scores): got %d want %d", len(raw.Scores), 1)
	}

	rec := raw.Scores[0]
	for _, key := range []string{"score", "math_score", "physics_score", "total_tokens", "evaluation_time"} {
		if _, ok := rec[key]; !ok {
			t.Fatalf("record missing field %q: %v", key, rec)
		}
	}
	if got, want := rec["evaluation_time"], 12.0; got != want {
		t.Fatalf("evaluation_time: got %v want %v", got, want)
	}
}

func TestWriteScores_InvalidFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := writeScores(&buf, sampleScores(), nil, "yaml"); err == nil {
		t.Fatalf("writeScores: expected error for invalid format")
	}
}

func TestRenderRunMarkdown_RanksByScore(t *testing.T) {
	scores := []score.ModelScore{
		{ModelID: "low", Dataset: "ru-math", Score: 0.2, MathScore: 0.2, PhysicsScore: math.NaN()},
		{ModelID: "high", Dataset: "ru-math", Score: 0.9, MathScore: 0.9, PhysicsScore: math.NaN()},
	}
	md := renderRunMarkdown(scores, nil)

	highIdx := strings.Index(md, "| 1 | high |")
	lowIdx := strings.Index(md, "| 2 | low |")
	if highIdx < 0 || lowIdx < 0 || highIdx > lowIdx {
		t.Fatalf("ranking wrong:\n%s", md)
	}
}
