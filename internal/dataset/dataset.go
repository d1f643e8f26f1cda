package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Subject selects the grading strategy for a question.
type Subject string

const (
	SubjectMath    Subject = "math"
	SubjectPhysics Subject = "physics"
)

// Question is one row of an evaluation dataset. Questions are immutable
// once loaded and shared by reference between the orchestrator and grader.
type Question struct {
	ID         string  `json:"id"`
	Dataset    string  `json:"dataset"`
	Subject    Subject `json:"subject"`
	Prompt     string  `json:"prompt"`
	Expected   string  `json:"expected"`
	Difficulty string  `json:"difficulty,omitempty"`
}

// Dataset is an ordered collection of questions sharing a tag and version.
type Dataset struct {
	Name      string
	Version   string
	Questions []Question
}

// Load reads a dataset from a JSONL file or a directory of JSONL files.
// An empty dir falls back to the built-in sample sets.
func Load(ctx context.Context, dir, name, version string, limit int) (*Dataset, error) {
	if ctx == nil {
		return nil, errors.New("dataset: nil context")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("dataset: empty name")
	}

	dir = strings.TrimSpace(dir)
	if dir == "" {
		return sampleDataset(name, version, limit)
	}

	path := filepath.Join(dir, name+".jsonl")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return sampleDataset(name, version, limit)
		}
		return nil, fmt.Errorf("dataset: stat %q: %w", path, err)
	}

	rows, err := readJSONL[Question](ctx, path)
	if err != nil {
		return nil, fmt.Errorf("dataset: load %q: %w", path, err)
	}

	out := &Dataset{Name: name, Version: strings.TrimSpace(version)}
	for i, q := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.TrimSpace(q.Prompt) == "" {
			continue
		}
		if strings.TrimSpace(q.ID) == "" {
			q.ID = fmt.Sprintf("%s-%d", name, i+1)
		}
		if q.Subject == "" {
			q.Subject = SubjectMath
		}
		q.Dataset = name
		out.Questions = append(out.Questions, q)
	}

	out.Questions = takeFirstN(out.Questions, limit)
	if len(out.Questions) == 0 {
		return nil, fmt.Errorf("dataset: %q has no usable questions", path)
	}
	return out, nil
}

// List returns dataset names available under dir, plus the built-in sample
// sets when dir is empty or missing.
func List(dir string) ([]string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return sampleNames(), nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return sampleNames(), nil
		}
		return nil, fmt.Errorf("dataset: read dir %q: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".jsonl") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, filepath.Ext(name)))
	}
	sort.Strings(names)
	if len(names) == 0 {
		return sampleNames(), nil
	}
	return names, nil
}

func takeFirstN[T any](in []T, n int) []T {
	if n <= 0 || n >= len(in) {
		return in
	}
	out := make([]T, 0, n)
	return append(out, in[:n]...)
}
