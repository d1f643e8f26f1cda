package llm

import "context"

// Provider abstracts one remote inference endpoint. Adapters translate the
// provider wire format; retry and failure classification live above this
// interface in internal/client.
type Provider interface {
	Name() string
	Model() string
	Complete(ctx context.Context, req *Request) (*Response, error)
}

type Request struct {
	Prompt      string
	System      string
	MaxTokens   int
	Temperature float64
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type Response struct {
	Text       string
	Usage      Usage
	StopReason string
	Truncated  bool
}
