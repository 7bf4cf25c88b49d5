package store

import (
	"context"
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotFound = errors.New("key not found")
)

// Kind is the container type tag reported by the store for a key.
type Kind string

const (
	KindString    Kind = "string"
	KindList      Kind = "list"
	KindHash      Kind = "hash"
	KindSet       Kind = "set"
	KindSortedSet Kind = "zset"
	// KindAbsent is reported for keys that do not exist.
	KindAbsent Kind = "none"
)

// FieldValue is one hash field and its value.
type FieldValue struct {
	Field string
	Value string
}

// ScoredMember is one sorted set member and its score.
type ScoredMember struct {
	Member string
	Score  float64
}

// Store defines the capability set the maintenance engine needs from a
// key-value store. A Store is not safe for concurrent use by several
// top-level operations.
type Store interface {
	// Type returns the kind of key, KindAbsent if it does not exist.
	Type(ctx context.Context, key string) (Kind, error)
	// Exists reports whether key exists.
	Exists(ctx context.Context, key string) (bool, error)
	// Keys lists every key matching a glob pattern in one call.
	Keys(ctx context.Context, pattern string) ([]string, error)
	// Del removes keys and returns how many existed.
	Del(ctx context.Context, keys ...string) (int64, error)

	StrLen(ctx context.Context, key string) (int64, error)
	// Get returns ErrNotFound when the key holds no value.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error

	LLen(ctx context.Context, key string) (int64, error)
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	RPush(ctx context.Context, key string, values ...string) (int64, error)
	// RPopBatch issues n RPOP commands back to back in a single round trip.
	RPopBatch(ctx context.Context, key string, n int) error

	HLen(ctx context.Context, key string) (int64, error)
	HScan(ctx context.Context, key string, cursor uint64, count int64) ([]FieldValue, uint64, error)
	HSet(ctx context.Context, key string, fields []FieldValue) error
	HDel(ctx context.Context, key string, fields ...string) (int64, error)

	SCard(ctx context.Context, key string) (int64, error)
	SScan(ctx context.Context, key string, cursor uint64, count int64) ([]string, uint64, error)
	SAdd(ctx context.Context, key string, members ...string) (int64, error)
	SRem(ctx context.Context, key string, members ...string) (int64, error)

	ZCard(ctx context.Context, key string) (int64, error)
	ZScan(ctx context.Context, key string, cursor uint64, count int64) ([]ScoredMember, uint64, error)
	ZAdd(ctx context.Context, key string, members []ScoredMember) error
	ZRemRangeByRank(ctx context.Context, key string, start, stop int64) (int64, error)

	Ping(ctx context.Context) error
	// Close closes the store connection
	Close() error
}

// ConnectionError reports that the store could not be reached or the
// connection broke while running Op.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("store connection error during %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// CommandError is an error reply returned by the store for Op.
type CommandError struct {
	Op  string
	Err error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("store rejected %s: %v", e.Op, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }
