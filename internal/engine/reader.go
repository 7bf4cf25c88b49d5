package engine

import (
	"context"
	"fmt"

	"github.com/SiriusScan/redis-tools/internal/store"
)

// Iterator walks the chunks of one key. It is single-pass: every Read starts a
// fresh sequence from the beginning of the key.
//
//	it, err := eng.Read(st, key, kind)
//	for it.Next(ctx) {
//		use(it.Chunk())
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator struct {
	st    store.Store
	key   string
	ops   kindOps
	opts  *Options
	pos   position
	chunk Chunk
	err   error
	n     int
	// bounded applies Options.MaxIterations; set for cursor scans only.
	bounded bool
}

// Next fetches the next chunk with one store round trip. It returns false when
// the sequence is exhausted or an error occurred.
func (it *Iterator) Next(ctx context.Context) bool {
	if it.err != nil || it.pos.done {
		return false
	}
	if it.bounded && it.opts.MaxIterations > 0 && it.n >= it.opts.MaxIterations {
		it.err = fmt.Errorf("%w: key %q after %d chunks", ErrScanLimit, it.key, it.n)
		return false
	}

	chunk, ok, err := it.ops.fetch(ctx, it.st, it.key, &it.pos, it.opts)
	if err != nil {
		it.err = err
		return false
	}
	if !ok {
		return false
	}
	it.chunk = chunk
	it.n++
	return true
}

// Chunk returns the chunk fetched by the last successful Next.
func (it *Iterator) Chunk() Chunk {
	return it.chunk
}

// Err returns the error that stopped the iteration, if any.
func (it *Iterator) Err() error {
	return it.err
}
