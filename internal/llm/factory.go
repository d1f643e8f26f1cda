package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stellarlinkco/mathbench/internal/config"
)

func NewRegistryFromConfig(cfg *config.Config) (*Registry, error) {
	if cfg == nil {
		return nil, errors.New("llm: nil config")
	}

	r := NewRegistry()
	for id, mc := range cfg.Models {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		p, err := newProvider(id, mc)
		if err != nil {
			return nil, err
		}
		r.Register(id, p)
	}
	return r, nil
}

func newProvider(id string, mc config.ModelConfig) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(mc.Provider)) {
	case "openai", "":
		return NewOpenAIProvider(mc.APIKey, mc.BaseURL, mc.Model), nil
	case "claude", "anthropic":
		return NewClaudeProvider(mc.APIKey, mc.BaseURL, mc.Model), nil
	default:
		return nil, fmt.Errorf("llm: model %q: unknown provider %q", id, mc.Provider)
	}
}
