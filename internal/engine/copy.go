package engine

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/SiriusScan/redis-tools/internal/store"
)

// CopySuffix is appended to the source key when no destination key is given.
const CopySuffix = "_copy"

// CopyKey replicates srcKey from src into dstKey on dst chunk by chunk.
// A nil dst copies within src; an empty dstKey becomes srcKey+CopySuffix.
//
// The source is neither locked nor deleted. Copying a list onto an existing
// list appends to it; hashes and sets converge to the same content.
func (e *Engine) CopyKey(ctx context.Context, src store.Store, srcKey string, dst store.Store, dstKey string) error {
	if srcKey == "" {
		return fmt.Errorf("%w: copy source", ErrKeyRequired)
	}
	if dst == nil {
		dst = src
	}
	if dstKey == "" {
		dstKey = srcKey + CopySuffix
	}

	kind, err := e.Resolve(ctx, src, srcKey)
	if err != nil {
		return err
	}
	it, err := e.Read(src, srcKey, kind)
	if err != nil {
		return err
	}

	var copied int64
	for it.Next(ctx) {
		chunk := it.Chunk()
		if err := e.Write(ctx, dst, dstKey, kind, chunk); err != nil {
			return fmt.Errorf("failed to write chunk to %q: %w", dstKey, err)
		}
		copied += int64(chunk.Len())
		e.opts.Recorder.RoundTrip(OpCopy, kind)
	}
	if err := it.Err(); err != nil {
		return fmt.Errorf("failed to read %q: %w", srcKey, err)
	}
	e.opts.Recorder.Elements(OpCopy, kind, copied)
	e.opts.Recorder.KeyProcessed(OpCopy, kind)

	length, err := e.Length(ctx, dst, dstKey, kind)
	if err != nil {
		e.logger.Warn("Copy completed but destination length is unavailable",
			zap.String("source_key", srcKey),
			zap.String("dest_key", dstKey),
			zap.Error(err))
		return nil
	}
	e.logger.Info("Copy completed",
		zap.String("source_key", srcKey),
		zap.String("dest_key", dstKey),
		zap.String("kind", string(kind)),
		zap.Int64("copied", copied),
		zap.Int64("dest_len", length),
		zap.String("dest_len_human", humanize.Comma(length)))
	return nil
}

// CopyKeys copies every key of src matching pattern into dst under the same
// name and returns the number of keys copied. The key listing is a single call.
func (e *Engine) CopyKeys(ctx context.Context, src store.Store, pattern string, dst store.Store) (int, error) {
	if pattern == "" {
		return 0, fmt.Errorf("%w: copy_keys pattern is empty", ErrArgument)
	}
	if dst == nil {
		dst = src
	}

	keys, err := src.Keys(ctx, pattern)
	if err != nil {
		return 0, fmt.Errorf("failed to list keys for %q: %w", pattern, err)
	}
	e.logger.Debug("Keys matched for copy", zap.String("pattern", pattern), zap.Int("count", len(keys)))

	for i, key := range keys {
		if err := e.CopyKey(ctx, src, key, dst, key); err != nil {
			return i, err
		}
	}
	return len(keys), nil
}
