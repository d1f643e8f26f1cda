package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIProvider_Complete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.Error(w, "path", http.StatusNotFound)
			return
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "json", http.StatusBadRequest)
			return
		}
		msgs, _ := req["messages"].([]any)
		if len(msgs) != 2 {
			http.Error(w, "messages", http.StatusBadRequest)
			return
		}
		m0, _ := msgs[0].(map[string]any)
		if m0["role"] != "system" || m0["content"] != "Answer with a number." {
			http.Error(w, "system", http.StatusBadRequest)
			return
		}
		m1, _ := msgs[1].(map[string]any)
		if m1["role"] != "user" || m1["content"] != "What is 2+2?" {
			http.Error(w, "user", http.StatusBadRequest)
			return
		}

		w.Header().Set("content-type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4o",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": "The answer is 4."},
			}},
			"usage": map[string]any{"prompt_tokens": 11, "completion_tokens": 6, "total_tokens": 17},
		})
	}))
	t.Cleanup(srv.Close)

	p := NewOpenAIProvider("k", srv.URL, "gpt-4o")
	resp, err := p.Complete(context.Background(), &Request{
		Prompt:    "What is 2+2?",
		System:    "Answer with a number.",
		MaxTokens: 64,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != "The answer is 4." {
		t.Fatalf("text: got %q", resp.Text)
	}
	if resp.Usage.InputTokens != 11 || resp.Usage.OutputTokens != 6 {
		t.Fatalf("usage: got %+v", resp.Usage)
	}
	if resp.Truncated {
		t.Fatalf("truncated: got true")
	}
}

func TestOpenAIProvider_Truncated(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-2",
			"object": "chat.completion",
			"model":  "gpt-4o",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "length",
				"message":       map[string]any{"role": "assistant", "content": "partial"},
			}},
			"usage": map[string]any{"prompt_tokens": 5, "completion_tokens": 64, "total_tokens": 69},
		})
	}))
	t.Cleanup(srv.Close)

	p := NewOpenAIProvider("k", srv.URL, "")
	resp, err := p.Complete(context.Background(), &Request{Prompt: "q"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !resp.Truncated {
		t.Fatalf("truncated: got false")
	}
}

func TestOpenAIProvider_NilArgs(t *testing.T) {
	t.Parallel()

	p := NewOpenAIProvider("k", "", "")
	if _, err := p.Complete(context.Background(), nil); err == nil {
		t.Fatalf("Complete: expected error for nil request")
	}
}
