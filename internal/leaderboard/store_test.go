package leaderboard

import (
	"context"
	"math"
	"testing"
	"time"
)

func TestStore_SaveAndGetLeaderboard(t *testing.T) {
	st, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	e1 := &Entry{
		ModelID:        "m1",
		Dataset:        "ru-math",
		Score:          0.80,
		MathScore:      0.80,
		PhysicsScore:   math.NaN(),
		TotalQuestions: 10,
		CorrectCount:   8,
		TotalTokens:    1200,
		EvalTime:       42 * time.Second,
		EvalDate:       time.UnixMilli(1000).UTC(),
	}
	e2 := &Entry{
		ModelID:        "m2",
		Dataset:        "ru-math",
		Score:          0.90,
		MathScore:      0.90,
		PhysicsScore:   math.NaN(),
		TotalQuestions: 10,
		CorrectCount:   9,
		TotalTokens:    900,
		EvalTime:       30 * time.Second,
		EvalDate:       time.UnixMilli(2000).UTC(),
	}

	if err := st.Save(ctx, e1); err != nil {
		t.Fatalf("Save e1: %v", err)
	}
	if err := st.Save(ctx, e2); err != nil {
		t.Fatalf("Save e2: %v", err)
	}
	if e1.ID == 0 || e2.ID == 0 {
		t.Fatalf("expected IDs to be set (got e1=%d e2=%d)", e1.ID, e2.ID)
	}

	got, err := st.GetLeaderboard(ctx, "ru-math", 10)
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(entries): got %d want %d", len(got), 2)
	}
	if got[0].ModelID != "m2" {
		t.Fatalf("rank1 model: got %q want %q", got[0].ModelID, "m2")
	}
	if got[1].ModelID != "m1" {
		t.Fatalf("rank2 model: got %q want %q", got[1].ModelID, "m1")
	}
	if !math.IsNaN(got[0].PhysicsScore) {
		t.Fatalf("physics score: got %v want NaN", got[0].PhysicsScore)
	}
	if got[0].EvalTime != 30*time.Second {
		t.Fatalf("eval time: got %v want %v", got[0].EvalTime, 30*time.Second)
	}
}

func TestStore_GetLeaderboard_BestPerModel(t *testing.T) {
	st, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	scores := []float64{0.20, 0.90, 0.50}
	for i, sc := range scores {
		if err := st.Save(ctx, &Entry{
			ModelID:  "m1",
			Dataset:  "ru-math",
			Score:    sc,
			EvalDate: time.UnixMilli(int64(1000 * (i + 1))).UTC(),
		}); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	got, err := st.GetLeaderboard(ctx, "ru-math", 10)
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(entries): got %d want %d", len(got), 1)
	}
	if got[0].Score != 0.90 {
		t.Fatalf("best score: got %.2f want %.2f", got[0].Score, 0.90)
	}
}

func TestStore_GetModelHistory_Order(t *testing.T) {
	st, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Save(ctx, &Entry{
		ModelID:  "m1",
		Dataset:  "ru-math",
		Score:    0.20,
		EvalDate: time.UnixMilli(1000).UTC(),
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := st.Save(ctx, &Entry{
		ModelID:  "m1",
		Dataset:  "ru-math",
		Score:    0.90,
		EvalDate: time.UnixMilli(2000).UTC(),
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := st.GetModelHistory(ctx, "m1", "ru-math")
	if err != nil {
		t.Fatalf("GetModelHistory: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(history): got %d want %d", len(got), 2)
	}
	if got[0].Score != 0.90 {
		t.Fatalf("history[0].Score: got %.2f want %.2f", got[0].Score, 0.90)
	}
	if got[1].Score != 0.20 {
		t.Fatalf("history[1].Score: got %.2f want %.2f", got[1].Score, 0.20)
	}
}

func TestStore_FailedRuns(t *testing.T) {
	st, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	run := &FailedRun{
		ModelID: "m1",
		Dataset: "ru-math",
		Reason:  "rate limit exhausted",
	}
	if err := st.SaveFailure(ctx, run); err != nil {
		t.Fatalf("SaveFailure: %v", err)
	}
	if run.ID == 0 {
		t.Fatalf("expected ID to be set")
	}

	got, err := st.GetFailures(ctx, "ru-math")
	if err != nil {
		t.Fatalf("GetFailures: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(failures): got %d want %d", len(got), 1)
	}
	if got[0].Reason != "rate limit exhausted" {
		t.Fatalf("reason: got %q", got[0].Reason)
	}
}

func TestStore_Validation(t *testing.T) {
	if _, err := NewStore(""); err == nil {
		t.Fatalf("NewStore(\"\"): expected error")
	}

	st, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Save(ctx, nil); err == nil {
		t.Fatalf("Save(nil): expected error")
	}
	if err := st.Save(ctx, &Entry{Dataset: "ru-math"}); err == nil {
		t.Fatalf("Save without model: expected error")
	}
	if _, err := st.GetLeaderboard(ctx, "", 10); err == nil {
		t.Fatalf("GetLeaderboard(\"\"): expected error")
	}
}
