package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stellarlinkco/mathbench/internal/leaderboard"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := `models:
  gpt-test:
    provider: openai
    model: gpt-4o-mini
    api_key: test-key
storage:
  cache_path: ` + filepath.Join(dir, "cache.db") + `
  leaderboard_path: ` + filepath.Join(dir, "leaderboard.db") + `
`
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	root := newRootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestListCmd(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := execute(t, "list", "--config", cfgPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"gpt-test (openai)", "math", "physics"} {
		if !strings.Contains(out, want) {
			t.Fatalf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestLeaderboardCmd(t *testing.T) {
	cfgPath := writeTestConfig(t)

	// Seed the store the command will open.
	lbPath := filepath.Join(filepath.Dir(cfgPath), "leaderboard.db")
	lb, err := leaderboard.NewStore(lbPath)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := lb.Save(context.Background(), &leaderboard.Entry{
		ModelID: "gpt-test",
		Dataset: "ru-math",
		Score:   0.5,
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	_ = lb.Close()

	out, err := execute(t, "leaderboard", "--config", cfgPath, "--dataset", "ru-math")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if !strings.Contains(out, "gpt-test") || !strings.Contains(out, "0.500") {
		t.Fatalf("leaderboard output:\n%s", out)
	}
}

func TestLeaderboardCmd_MissingDataset(t *testing.T) {
	cfgPath := writeTestConfig(t)

	if _, err := execute(t, "leaderboard", "--config", cfgPath); err == nil {
		t.Fatalf("leaderboard: expected error without --dataset")
	}
}

func TestRunCmd_UnknownModel(t *testing.T) {
	cfgPath := writeTestConfig(t)

	_, err := execute(t, "run", "--config", cfgPath, "--models", "nope")
	if err == nil || !strings.Contains(err.Error(), "unknown model") {
		t.Fatalf("run: got %v want unknown model error", err)
	}
}

func TestRunCmd_MissingConfig(t *testing.T) {
	if _, err := execute(t, "run", "--config", filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("run: expected error for missing config")
	}
}
