package engine

import (
	"context"
	"errors"

	"github.com/SiriusScan/redis-tools/internal/store"
)

// kindOps is the capability set every supported kind provides.
type kindOps interface {
	length(ctx context.Context, st store.Store, key string) (int64, error)
	// fetch reads the chunk at pos and advances it. ok is false when there is
	// nothing left to yield.
	fetch(ctx context.Context, st store.Store, key string, pos *position, o *Options) (chunk Chunk, ok bool, err error)
	write(ctx context.Context, st store.Store, key string, chunk Chunk) error
	// lazyDelete empties key in bounded batches and returns the elements removed.
	lazyDelete(ctx context.Context, e *Engine, st store.Store, key string) (int64, error)
}

var kinds = map[store.Kind]kindOps{
	store.KindString:    stringOps{},
	store.KindList:      listOps{},
	store.KindHash:      hashOps{},
	store.KindSet:       setOps{},
	store.KindSortedSet: sortedSetOps{},
	store.KindAbsent:    absentOps{},
}

// usesCursor reports whether reads of kind follow a server scan cursor.
func usesCursor(kind store.Kind) bool {
	return kind == store.KindHash || kind == store.KindSet || kind == store.KindSortedSet
}

func opsFor(key string, kind store.Kind) (kindOps, error) {
	ops, ok := kinds[kind]
	if !ok {
		return nil, &UnsupportedKindError{Key: key, Kind: kind}
	}
	return ops, nil
}

type stringOps struct{}

func (stringOps) length(ctx context.Context, st store.Store, key string) (int64, error) {
	return st.StrLen(ctx, key)
}

func (stringOps) fetch(ctx context.Context, st store.Store, key string, pos *position, o *Options) (Chunk, bool, error) {
	pos.done = true
	value, err := st.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return Chunk{}, false, nil
	}
	if err != nil {
		return Chunk{}, false, err
	}
	// An empty value has nothing to copy.
	if value == "" {
		return Chunk{}, false, nil
	}
	return Chunk{Kind: store.KindString, Values: []string{value}}, true, nil
}

func (stringOps) write(ctx context.Context, st store.Store, key string, chunk Chunk) error {
	return st.Set(ctx, key, chunk.Values[len(chunk.Values)-1])
}

func (stringOps) lazyDelete(ctx context.Context, e *Engine, st store.Store, key string) (int64, error) {
	n, err := st.Del(ctx, key)
	if err != nil {
		return 0, err
	}
	e.opts.Recorder.RoundTrip(OpDelete, store.KindString)
	return n, nil
}

type listOps struct{}

func (listOps) length(ctx context.Context, st store.Store, key string) (int64, error) {
	return st.LLen(ctx, key)
}

// fetch reads index ranges up to the length observed on the first call;
// elements appended after that are not read.
func (listOps) fetch(ctx context.Context, st store.Store, key string, pos *position, o *Options) (Chunk, bool, error) {
	if !pos.started {
		total, err := st.LLen(ctx, key)
		if err != nil {
			return Chunk{}, false, err
		}
		pos.total = total
		pos.started = true
	}
	if pos.offset >= pos.total {
		pos.done = true
		return Chunk{}, false, nil
	}

	stop := min(pos.offset+o.ListReadWidth, pos.total) - 1
	values, err := st.LRange(ctx, key, pos.offset, stop)
	if err != nil {
		return Chunk{}, false, err
	}
	pos.offset = stop + 1
	pos.done = pos.offset >= pos.total
	return Chunk{Kind: store.KindList, Values: values}, true, nil
}

func (listOps) write(ctx context.Context, st store.Store, key string, chunk Chunk) error {
	_, err := st.RPush(ctx, key, chunk.Values...)
	return err
}

func (listOps) lazyDelete(ctx context.Context, e *Engine, st store.Store, key string) (int64, error) {
	remaining, err := st.LLen(ctx, key)
	if err != nil {
		return 0, err
	}

	// Bounded by the length re-read after every batch, so only paced.
	var removed int64
	for remaining > 0 {
		if err := e.pace(ctx); err != nil {
			return removed, err
		}
		if err := st.RPopBatch(ctx, key, e.opts.ListPopBatch); err != nil {
			return removed, err
		}
		e.opts.Recorder.RoundTrip(OpDelete, store.KindList)

		left, err := st.LLen(ctx, key)
		if err != nil {
			return removed, err
		}
		removed += remaining - left
		remaining = left
	}
	return removed, nil
}

type hashOps struct{}

func (hashOps) length(ctx context.Context, st store.Store, key string) (int64, error) {
	return st.HLen(ctx, key)
}

func (hashOps) fetch(ctx context.Context, st store.Store, key string, pos *position, o *Options) (Chunk, bool, error) {
	fields, next, err := st.HScan(ctx, key, pos.scan, o.HashScanCount)
	if err != nil {
		return Chunk{}, false, err
	}
	pos.scan = next
	pos.done = next == 0
	return Chunk{Kind: store.KindHash, Fields: fields, Cursor: next}, true, nil
}

func (hashOps) write(ctx context.Context, st store.Store, key string, chunk Chunk) error {
	return st.HSet(ctx, key, chunk.Fields)
}

func (hashOps) lazyDelete(ctx context.Context, e *Engine, st store.Store, key string) (int64, error) {
	var (
		cursor  uint64
		removed int64
	)
	for i := 0; ; i++ {
		if err := e.beforeBatch(ctx, i); err != nil {
			return removed, err
		}
		fields, next, err := st.HScan(ctx, key, cursor, e.opts.HashDeleteCount)
		if err != nil {
			return removed, err
		}
		if len(fields) > 0 {
			names := make([]string, len(fields))
			for j, f := range fields {
				names[j] = f.Field
			}
			n, err := st.HDel(ctx, key, names...)
			if err != nil {
				return removed, err
			}
			removed += n
		}
		e.opts.Recorder.RoundTrip(OpDelete, store.KindHash)

		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}

type setOps struct{}

func (setOps) length(ctx context.Context, st store.Store, key string) (int64, error) {
	return st.SCard(ctx, key)
}

func (setOps) fetch(ctx context.Context, st store.Store, key string, pos *position, o *Options) (Chunk, bool, error) {
	members, next, err := st.SScan(ctx, key, pos.scan, o.SetScanCount)
	if err != nil {
		return Chunk{}, false, err
	}
	pos.scan = next
	pos.done = next == 0
	return Chunk{Kind: store.KindSet, Values: members, Cursor: next}, true, nil
}

func (setOps) write(ctx context.Context, st store.Store, key string, chunk Chunk) error {
	_, err := st.SAdd(ctx, key, chunk.Values...)
	return err
}

func (setOps) lazyDelete(ctx context.Context, e *Engine, st store.Store, key string) (int64, error) {
	var (
		cursor  uint64
		removed int64
	)
	for i := 0; ; i++ {
		if err := e.beforeBatch(ctx, i); err != nil {
			return removed, err
		}
		members, next, err := st.SScan(ctx, key, cursor, e.opts.SetDeleteCount)
		if err != nil {
			return removed, err
		}
		if len(members) > 0 {
			n, err := st.SRem(ctx, key, members...)
			if err != nil {
				return removed, err
			}
			removed += n
		}
		e.opts.Recorder.RoundTrip(OpDelete, store.KindSet)

		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}

type sortedSetOps struct{}

func (sortedSetOps) length(ctx context.Context, st store.Store, key string) (int64, error) {
	return st.ZCard(ctx, key)
}

func (sortedSetOps) fetch(ctx context.Context, st store.Store, key string, pos *position, o *Options) (Chunk, bool, error) {
	members, next, err := st.ZScan(ctx, key, pos.scan, o.ZSetScanCount)
	if err != nil {
		return Chunk{}, false, err
	}
	pos.scan = next
	pos.done = next == 0
	return Chunk{Kind: store.KindSortedSet, Members: members, Cursor: next}, true, nil
}

func (sortedSetOps) write(ctx context.Context, st store.Store, key string, chunk Chunk) error {
	return st.ZAdd(ctx, key, chunk.Members)
}

// lazyDelete removes the lowest ranked run until a call removes nothing.
func (sortedSetOps) lazyDelete(ctx context.Context, e *Engine, st store.Store, key string) (int64, error) {
	var removed int64
	for i := 0; ; i++ {
		if err := e.beforeBatch(ctx, i); err != nil {
			return removed, err
		}
		n, err := st.ZRemRangeByRank(ctx, key, 0, e.opts.ZSetRemoveRun-1)
		if err != nil {
			return removed, err
		}
		e.opts.Recorder.RoundTrip(OpDelete, store.KindSortedSet)
		if n == 0 {
			return removed, nil
		}
		removed += n
	}
}

type absentOps struct{}

func (absentOps) length(context.Context, store.Store, string) (int64, error) {
	return 0, nil
}

func (absentOps) fetch(_ context.Context, _ store.Store, _ string, pos *position, _ *Options) (Chunk, bool, error) {
	pos.done = true
	return Chunk{}, false, nil
}

func (absentOps) write(context.Context, store.Store, string, Chunk) error {
	return nil
}

func (absentOps) lazyDelete(context.Context, *Engine, store.Store, string) (int64, error) {
	return 0, nil
}
