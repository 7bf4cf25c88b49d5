package engine

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/SiriusScan/redis-tools/internal/store"
)

// Delete lazily removes each key in bounded batches and returns the number of
// keys processed, absent keys included. On error it returns the keys finished
// before the failure; the failing key is left partially deleted and running
// Delete again continues from where it stopped.
func (e *Engine) Delete(ctx context.Context, st store.Store, keys ...string) (int, error) {
	for i, key := range keys {
		if err := e.deleteKey(ctx, st, key); err != nil {
			return i, err
		}
	}
	return len(keys), nil
}

func (e *Engine) deleteKey(ctx context.Context, st store.Store, key string) error {
	kind, err := e.Resolve(ctx, st, key)
	if err != nil {
		return err
	}
	if kind == store.KindAbsent {
		e.logger.Info("Key not exists", zap.String("key", key))
		e.opts.Recorder.KeyProcessed(OpDelete, kind)
		return nil
	}

	ops, err := opsFor(key, kind)
	if err != nil {
		return err
	}
	removed, err := ops.lazyDelete(ctx, e, st, key)
	e.opts.Recorder.Elements(OpDelete, kind, removed)
	if err != nil {
		return fmt.Errorf("lazy delete of %q stopped after %d elements: %w", key, removed, err)
	}
	e.opts.Recorder.KeyProcessed(OpDelete, kind)

	e.logger.Info("Lazy delete completed",
		zap.String("key", key),
		zap.String("kind", string(kind)),
		zap.Int64("removed", removed),
		zap.String("removed_human", humanize.Comma(removed)))
	return nil
}
