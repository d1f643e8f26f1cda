package eval

import (
	"time"

	"github.com/stellarlinkco/mathbench/internal/grader"
)

// ModelSpec is the slice of the model registry the orchestrator needs.
type ModelSpec struct {
	ID           string
	Name         string // provider-side model name
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
	Parallelism  int // optional per-model cap below the pool size
}

// RunResult is the outcome of one (model, dataset) evaluation. Records are
// sorted by question ID so reporting is stable regardless of completion
// order.
type RunResult struct {
	ModelID   string
	Dataset   string
	Records   []grader.GradedRecord
	CacheHits int
	Elapsed   time.Duration
}
