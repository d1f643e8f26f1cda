package llm

import "strings"

// Registry maps model identifiers from the config registry to providers.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

func (r *Registry) Register(id string, p Provider) {
	if r == nil || p == nil {
		return
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	if r.providers == nil {
		r.providers = make(map[string]Provider)
	}
	r.providers[id] = p
}

func (r *Registry) Get(id string) (Provider, bool) {
	if r == nil || r.providers == nil {
		return nil, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false
	}
	p, ok := r.providers[id]
	return p, ok
}

func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.providers))
	for id := range r.providers {
		out = append(out, id)
	}
	return out
}
