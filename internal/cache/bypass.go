package cache

import (
	"context"

	"github.com/stellarlinkco/mathbench/internal/client"
)

// BypassStore is the no-cache mode: every lookup misses and every put is a
// no-op, forcing fresh evaluation without touching persisted entries.
type BypassStore struct{}

func (BypassStore) Lookup(ctx context.Context, fp Fingerprint) (*client.CompletionResult, bool, error) {
	return nil, false, nil
}

func (BypassStore) Put(ctx context.Context, fp Fingerprint, result *client.CompletionResult) error {
	return nil
}

func (BypassStore) Close() error { return nil }
