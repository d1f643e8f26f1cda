package eval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stellarlinkco/mathbench/internal/cache"
	"github.com/stellarlinkco/mathbench/internal/client"
	"github.com/stellarlinkco/mathbench/internal/dataset"
	"github.com/stellarlinkco/mathbench/internal/grader"
	"github.com/stellarlinkco/mathbench/internal/llm"
)

// ErrRateLimitExhausted is the fatal run error: every dispatched question
// burned its retry budget on rate limits, so the pair cannot make progress.
var ErrRateLimitExhausted = errors.New("eval: rate limit exhausted for every dispatched question")

// Orchestrator turns a (model, dataset) pair into a scored record set. One
// orchestrator serves one model; the cache store and global semaphore may
// be shared across many.
type Orchestrator struct {
	client *client.Client
	store  cache.Store

	workers int

	// global bounds total in-flight model calls across every orchestrator
	// sharing it, so parallel pairs respect one provider-wide ceiling.
	global chan struct{}
}

func New(c *client.Client, store cache.Store, workers int, global chan struct{}) *Orchestrator {
	if workers <= 0 {
		workers = 1
	}
	return &Orchestrator{
		client:  c,
		store:   store,
		workers: workers,
		global:  global,
	}
}

// Evaluate runs every question in the dataset through the cache, model and
// grader, and drains all dispatched work before returning. Each question
// lands in exactly one terminal record; per-question failures are captured
// in the record, never raised past this boundary.
func (o *Orchestrator) Evaluate(ctx context.Context, model ModelSpec, ds *dataset.Dataset) (*RunResult, error) {
	if o == nil {
		return nil, errors.New("eval: nil orchestrator")
	}
	if ctx == nil {
		return nil, errors.New("eval: nil context")
	}
	if o.client == nil {
		return nil, errors.New("eval: nil model client")
	}
	if o.store == nil {
		return nil, errors.New("eval: nil cache store")
	}
	if strings.TrimSpace(model.ID) == "" {
		return nil, errors.New("eval: empty model id")
	}
	if ds == nil || len(ds.Questions) == 0 {
		return nil, errors.New("eval: empty dataset")
	}

	start := time.Now()

	workers := o.workers
	if model.Parallelism > 0 && model.Parallelism < workers {
		workers = model.Parallelism
	}
	sem := make(chan struct{}, workers)

	out := &RunResult{
		ModelID: model.ID,
		Dataset: ds.Name,
		Records: make([]grader.GradedRecord, len(ds.Questions)),
	}

	var (
		wg         sync.WaitGroup
		cacheHits  atomic.Int64
		dispatched atomic.Int64
		rateLimits atomic.Int64
	)

questionLoop:
	for i := range ds.Questions {
		q := &ds.Questions[i]

		// A cancelled run stops issuing new dispatches; the questions
		// never dispatched still get terminal records so none stays
		// pending in the output.
		select {
		case <-ctx.Done():
			for j := i; j < len(ds.Questions); j++ {
				out.Records[j] = grader.FailureRecord(&ds.Questions[j], "evaluation cancelled")
			}
			break questionLoop
		case sem <- struct{}{}:
		}

		idx := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			out.Records[idx] = o.evaluateQuestion(ctx, model, ds.Version, q, &cacheHits, &dispatched, &rateLimits)
		}()
	}
	wg.Wait()

	sort.Slice(out.Records, func(a, b int) bool {
		return out.Records[a].QuestionID < out.Records[b].QuestionID
	})
	out.CacheHits = int(cacheHits.Load())
	out.Elapsed = time.Since(start)

	if err := ctx.Err(); err != nil {
		return out, err
	}
	if d := dispatched.Load(); d > 0 && rateLimits.Load() == d {
		return out, fmt.Errorf("eval: model %q on %q: %w", model.ID, ds.Name, ErrRateLimitExhausted)
	}
	return out, nil
}

func (o *Orchestrator) evaluateQuestion(
	ctx context.Context,
	model ModelSpec,
	version string,
	q *dataset.Question,
	cacheHits, dispatched, rateLimits *atomic.Int64,
) grader.GradedRecord {
	fp := cache.NewFingerprint(model.ID, model.Name, model.SystemPrompt, model.Temperature, model.MaxTokens, q.ID, version)

	// Grading always re-runs on a hit: grading logic evolves independently
	// of cached completions.
	if cached, hit, err := o.store.Lookup(ctx, fp); err == nil && hit {
		cacheHits.Add(1)
		rec := grader.Grade(q, cached.Text)
		rec.FromCache = true
		rec.Completion = cached
		return rec
	}

	dispatched.Add(1)

	if o.global != nil {
		select {
		case <-ctx.Done():
			return grader.FailureRecord(q, "evaluation cancelled")
		case o.global <- struct{}{}:
		}
		defer func() { <-o.global }()
	}

	res, err := o.client.Complete(ctx, &llm.Request{
		Prompt:      q.Prompt,
		System:      model.SystemPrompt,
		MaxTokens:   model.MaxTokens,
		Temperature: model.Temperature,
	})
	if err != nil {
		var f *client.Failure
		if errors.As(err, &f) {
			if f.Kind == client.FailureRateLimited {
				rateLimits.Add(1)
			}
			return grader.FailureRecord(q, f.Error())
		}
		// Run-level cancellation, not a question-level failure.
		return grader.FailureRecord(q, "evaluation cancelled")
	}

	rec := grader.Grade(q, res.Text)
	rec.Completion = res

	if putErr := o.store.Put(ctx, fp, res); putErr != nil {
		// Persistence failure is non-fatal; the record stays usable and a
		// later run recomputes this entry.
		rec.Uncached = true
	}
	return rec
}
