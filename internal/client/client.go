package client

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/stellarlinkco/mathbench/internal/llm"
)

const (
	defaultRetryMax       = 3
	maxRetryMax           = 5
	defaultBackoffBase    = time.Second
	invalidResponseBudget = 2 // one retry for malformed completions
)

// CompletionResult is what one question's model call yields: the raw text
// plus metadata. Latency covers every attempt, not just the last one.
type CompletionResult struct {
	Text         string `json:"text"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	LatencyMs    int64  `json:"latency_ms"`
	Truncated    bool   `json:"truncated"`
	Attempts     int    `json:"attempts"`
}

// Client wraps a provider with timeout and bounded retry. Retry is an
// explicit attempt loop so exhaustion surfaces as a *Failure, never as
// control flow hidden in the transport.
type Client struct {
	provider    llm.Provider
	retryMax    int
	backoffBase time.Duration
	timeout     time.Duration
}

type Option func(*Client)

// WithRetry bounds attempts for transient failures.
func WithRetry(maxAttempts int) Option {
	return func(c *Client) {
		if c == nil {
			return
		}
		c.retryMax = clampRetryMax(maxAttempts)
	}
}

// WithBackoff sets the base delay for exponential backoff.
func WithBackoff(base time.Duration) Option {
	return func(c *Client) {
		if c == nil || base <= 0 {
			return
		}
		c.backoffBase = base
	}
}

// WithTimeout bounds each individual attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if c == nil || d <= 0 {
			return
		}
		c.timeout = d
	}
}

func New(provider llm.Provider, opts ...Option) *Client {
	c := &Client{
		provider:    provider,
		retryMax:    defaultRetryMax,
		backoffBase: defaultBackoffBase,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Complete calls the provider, retrying transient failures with exponential
// backoff. A run-level cancellation is returned as the context error so the
// caller can tell it apart from a per-question failure.
func (c *Client) Complete(ctx context.Context, req *llm.Request) (*CompletionResult, error) {
	if c == nil || c.provider == nil {
		return nil, errors.New("client: nil provider")
	}
	if ctx == nil {
		return nil, errors.New("client: nil context")
	}
	if req == nil {
		return nil, errors.New("client: nil request")
	}

	var (
		totalLatency int64
		attempts     int
		lastKind     FailureKind
		lastErr      error
		invalidSeen  int
	)

	for {
		if err := ctx.Err(); err != nil {
			if attempts == 0 {
				return nil, err
			}
			return nil, &Failure{Kind: lastKind, Attempts: attempts, LatencyMs: totalLatency, Err: err}
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if c.timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, c.timeout)
		}

		start := time.Now()
		resp, err := c.provider.Complete(attemptCtx, req)
		latency := time.Since(start).Milliseconds()
		if cancel != nil {
			cancel()
		}

		attempts++
		totalLatency += latency

		if err == nil && (resp == nil || strings.TrimSpace(resp.Text) == "") {
			err = errEmptyCompletion
		}
		if err == nil {
			return &CompletionResult{
				Text:         resp.Text,
				InputTokens:  resp.Usage.InputTokens,
				OutputTokens: resp.Usage.OutputTokens,
				LatencyMs:    totalLatency,
				Truncated:    resp.Truncated,
				Attempts:     attempts,
			}, nil
		}

		// The run itself was cancelled; don't convert that into a
		// question-level failure on the first attempt.
		if ctx.Err() != nil && !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ctx.Err()
		}

		lastKind = classify(err)
		lastErr = err

		if !retryable(lastKind, attempts, c.retryMax, &invalidSeen) {
			return nil, &Failure{Kind: lastKind, Attempts: attempts, LatencyMs: totalLatency, Err: lastErr}
		}

		if err := sleepWithContext(ctx, backoff(c.backoffBase, attempts-1)); err != nil {
			return nil, &Failure{Kind: lastKind, Attempts: attempts, LatencyMs: totalLatency, Err: lastErr}
		}
	}
}

func retryable(kind FailureKind, attempts, retryMax int, invalidSeen *int) bool {
	if kind.Transient() {
		return attempts < retryMax
	}
	*invalidSeen++
	return *invalidSeen < invalidResponseBudget
}

func clampRetryMax(maxAttempts int) int {
	if maxAttempts <= 0 {
		return 1
	}
	if maxAttempts > maxRetryMax {
		return maxRetryMax
	}
	return maxAttempts
}

func backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 || attempt < 0 {
		return 0
	}
	return base * time.Duration(1<<attempt)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
