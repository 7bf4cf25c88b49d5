// Package engine moves and removes large keys in bounded batches so that no
// single store command is O(n) on a huge value.
//
// Reads are lazy chunk sequences (Iterator), writes append one chunk at a time,
// and deletes repeatedly remove small batches until the key is gone.
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/SiriusScan/redis-tools/internal/store"
)

// Engine runs copy, lazy delete and size report operations against stores.
type Engine struct {
	logger *zap.Logger
	opts   Options
}

// New creates an Engine. Zero fields of opts take their defaults.
func New(logger *zap.Logger, opts Options) *Engine {
	return &Engine{
		logger: logger,
		opts:   opts.withDefaults(),
	}
}

// Resolve returns the kind of key; store.KindAbsent is a valid result.
func (e *Engine) Resolve(ctx context.Context, st store.Store, key string) (store.Kind, error) {
	kind, err := st.Type(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to resolve type of %q: %w", key, err)
	}
	return kind, nil
}

// Length returns the element count of key for kind (bytes for strings).
func (e *Engine) Length(ctx context.Context, st store.Store, key string, kind store.Kind) (int64, error) {
	ops, err := opsFor(key, kind)
	if err != nil {
		return 0, err
	}
	return ops.length(ctx, st, key)
}

// Read returns a fresh chunk sequence over key.
func (e *Engine) Read(st store.Store, key string, kind store.Kind) (*Iterator, error) {
	ops, err := opsFor(key, kind)
	if err != nil {
		return nil, err
	}
	return &Iterator{
		st:      st,
		key:     key,
		ops:     ops,
		opts:    &e.opts,
		bounded: usesCursor(kind),
	}, nil
}

// Write appends chunk to key. An empty chunk is a no-op.
func (e *Engine) Write(ctx context.Context, st store.Store, key string, kind store.Kind, chunk Chunk) error {
	ops, err := opsFor(key, kind)
	if err != nil {
		return err
	}
	if chunk.Len() == 0 {
		return nil
	}
	return ops.write(ctx, st, key, chunk)
}

// beforeBatch enforces the iteration bound and the pacing of lazy delete batches.
func (e *Engine) beforeBatch(ctx context.Context, i int) error {
	if e.opts.MaxIterations > 0 && i >= e.opts.MaxIterations {
		return fmt.Errorf("%w: %d delete batches", ErrScanLimit, i)
	}
	return e.pace(ctx)
}

// pace waits for the limiter, if any, before a lazy delete batch.
func (e *Engine) pace(ctx context.Context) error {
	if e.opts.Limiter != nil {
		return e.opts.Limiter.Wait(ctx)
	}
	return nil
}
