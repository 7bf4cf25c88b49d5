package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/SiriusScan/redis-tools/internal/store"
)

// DefaultStatsThreshold is the element count a key must exceed to be reported.
const DefaultStatsThreshold = 2000

// KeyStat is one entry of the size report.
type KeyStat struct {
	Key   string
	Kind  store.Kind
	Count int64
}

// Stats lists every key of st holding more than threshold elements, sorted by
// ascending count. Keys of unsupported kinds are skipped with a warning.
func (e *Engine) Stats(ctx context.Context, st store.Store, threshold int64) ([]KeyStat, error) {
	keys, err := st.Keys(ctx, "*")
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	var stats []KeyStat
	for _, key := range keys {
		kind, err := e.Resolve(ctx, st, key)
		if err != nil {
			return nil, err
		}
		count, err := e.Length(ctx, st, key, kind)
		var unsupported *UnsupportedKindError
		if errors.As(err, &unsupported) {
			e.logger.Warn("Skipping key of unsupported kind", zap.String("key", key), zap.String("kind", string(kind)))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get length of %q: %w", key, err)
		}
		e.opts.Recorder.KeyProcessed(OpStats, kind)
		if count <= threshold {
			continue
		}
		stats = append(stats, KeyStat{Key: key, Kind: kind, Count: count})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count < stats[j].Count
		}
		return stats[i].Key < stats[j].Key
	})
	return stats, nil
}
