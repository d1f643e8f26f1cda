package client

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"
)

// FailureKind classifies a failed model call.
type FailureKind string

const (
	FailureTimeout         FailureKind = "timeout"
	FailureRateLimited     FailureKind = "rate_limited"
	FailureTransport       FailureKind = "transport_error"
	FailureInvalidResponse FailureKind = "invalid_response"
)

// Transient reports whether the kind is worth retrying with backoff.
// InvalidResponse gets a single retry and is otherwise permanent.
func (k FailureKind) Transient() bool {
	switch k {
	case FailureTimeout, FailureRateLimited, FailureTransport:
		return true
	default:
		return false
	}
}

// Failure is the terminal error of a completion call after the retry
// budget is spent. Attempt counts and latency stay observable so the
// grader can preserve them in the record.
type Failure struct {
	Kind      FailureKind
	Attempts  int
	LatencyMs int64
	Err       error
}

func (f *Failure) Error() string {
	if f == nil {
		return "client: failure <nil>"
	}
	if f.Err == nil {
		return fmt.Sprintf("client: %s after %d attempts", f.Kind, f.Attempts)
	}
	return fmt.Sprintf("client: %s after %d attempts: %v", f.Kind, f.Attempts, f.Err)
}

func (f *Failure) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.Err
}

var errEmptyCompletion = errors.New("client: empty completion")

// classify maps a provider error onto the failure taxonomy.
func classify(err error) FailureKind {
	if err == nil {
		return FailureInvalidResponse
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	if errors.Is(err, errEmptyCompletion) {
		return FailureInvalidResponse
	}

	var oaiErr *openai.APIError
	if errors.As(err, &oaiErr) {
		return classifyStatus(oaiErr.HTTPStatusCode)
	}

	var sdkErr *anthropic.Error
	if errors.As(err, &sdkErr) {
		return classifyStatus(sdkErr.StatusCode)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}

	return FailureTransport
}

func classifyStatus(status int) FailureKind {
	switch {
	case status == 429:
		return FailureRateLimited
	case status == 408:
		return FailureTimeout
	case status >= 500 && status <= 599:
		return FailureTransport
	default:
		// Remaining 4xx responses are not transport problems; treat the
		// payload as unusable.
		return FailureInvalidResponse
	}
}
