// Package storetest provides an in-memory store.Store for tests.
//
// Scan cursors behave like the real store's: they stay valid while members are
// removed, so a full scan returns every member that was present throughout it.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"sync"

	"github.com/SiriusScan/redis-tools/internal/store"
)

var errWrongType = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")

type slot struct {
	name  string
	value string
	score float64
	live  bool
}

// members keeps insertion order for cursor stability; removed slots stay as tombstones.
type members struct {
	slots []*slot
	index map[string]*slot
}

func newMembers() *members {
	return &members{index: make(map[string]*slot)}
}

func (m *members) put(name string) (*slot, bool) {
	if s, ok := m.index[name]; ok {
		return s, false
	}
	s := &slot{name: name, live: true}
	m.slots = append(m.slots, s)
	m.index[name] = s
	return s, true
}

func (m *members) remove(name string) bool {
	s, ok := m.index[name]
	if !ok {
		return false
	}
	s.live = false
	delete(m.index, name)
	return true
}

func (m *members) len() int { return len(m.index) }

func (m *members) scan(cursor uint64, count int64) ([]*slot, uint64) {
	if count <= 0 {
		count = 10
	}
	var out []*slot
	i := cursor
	for i < uint64(len(m.slots)) && int64(len(out)) < count {
		if s := m.slots[i]; s.live {
			out = append(out, s)
		}
		i++
	}
	if i >= uint64(len(m.slots)) {
		return out, 0
	}
	return out, i
}

func (m *members) ranked() []*slot {
	out := make([]*slot, 0, len(m.index))
	for _, s := range m.index {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score < out[j].score
		}
		return out[i].name < out[j].name
	})
	return out
}

type entry struct {
	kind store.Kind
	str  string
	list []string
	set  *members
}

// Memory is an in-memory store.Store. The zero value is not usable; call NewMemory.
type Memory struct {
	mu      sync.Mutex
	data    map[string]*entry
	calls   map[string]int
	failOn  map[string]error
	closed  bool
	rawKind map[string]store.Kind
}

var _ store.Store = (*Memory)(nil)

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{
		data:    make(map[string]*entry),
		calls:   make(map[string]int),
		failOn:  make(map[string]error),
		rawKind: make(map[string]store.Kind),
	}
}

// Calls returns how many times op (e.g. "HSCAN", "RPOP_BATCH") was issued.
func (m *Memory) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// FailOn makes every later call of op return err.
func (m *Memory) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn[op] = err
}

// SetRawKind makes TYPE report kind for key regardless of its content.
func (m *Memory) SetRawKind(key string, kind store.Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rawKind[key] = kind
}

// Closed reports whether Close was called.
func (m *Memory) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *Memory) begin(op string) error {
	m.mu.Lock()
	m.calls[op]++
	if err := m.failOn[op]; err != nil {
		m.mu.Unlock()
		return err
	}
	return nil
}

// lookup returns the entry for key if it holds kind, nil if the key is absent.
func (m *Memory) lookup(op, key string, kind store.Kind) (*entry, error) {
	e, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	if e.kind != kind {
		return nil, &store.CommandError{Op: op, Err: errWrongType}
	}
	return e, nil
}

func (m *Memory) create(op, key string, kind store.Kind) (*entry, error) {
	e, err := m.lookup(op, key, kind)
	if err != nil || e != nil {
		return e, err
	}
	e = &entry{kind: kind}
	if kind == store.KindHash || kind == store.KindSet || kind == store.KindSortedSet {
		e.set = newMembers()
	}
	m.data[key] = e
	return e, nil
}

func (m *Memory) dropIfEmpty(key string, e *entry) {
	switch {
	case e.set != nil && e.set.len() == 0:
		delete(m.data, key)
	case e.kind == store.KindList && len(e.list) == 0:
		delete(m.data, key)
	}
}

func (m *Memory) Type(ctx context.Context, key string) (store.Kind, error) {
	if err := m.begin("TYPE"); err != nil {
		return "", err
	}
	defer m.mu.Unlock()
	if kind, ok := m.rawKind[key]; ok {
		return kind, nil
	}
	if e, ok := m.data[key]; ok {
		return e.kind, nil
	}
	return store.KindAbsent, nil
}

func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	if err := m.begin("EXISTS"); err != nil {
		return false, err
	}
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *Memory) Keys(ctx context.Context, pattern string) ([]string, error) {
	if err := m.begin("KEYS"); err != nil {
		return nil, err
	}
	defer m.mu.Unlock()
	var keys []string
	for key := range m.data {
		if ok, _ := path.Match(pattern, key); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) Del(ctx context.Context, keys ...string) (int64, error) {
	if err := m.begin("DEL"); err != nil {
		return 0, err
	}
	defer m.mu.Unlock()
	var n int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			n++
		}
	}
	return n, nil
}

func (m *Memory) StrLen(ctx context.Context, key string) (int64, error) {
	if err := m.begin("STRLEN"); err != nil {
		return 0, err
	}
	defer m.mu.Unlock()
	e, err := m.lookup("STRLEN", key, store.KindString)
	if err != nil || e == nil {
		return 0, err
	}
	return int64(len(e.str)), nil
}

func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	if err := m.begin("GET"); err != nil {
		return "", err
	}
	defer m.mu.Unlock()
	e, err := m.lookup("GET", key, store.KindString)
	if err != nil {
		return "", err
	}
	if e == nil {
		return "", store.ErrNotFound
	}
	return e.str, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := m.begin("SET"); err != nil {
		return err
	}
	defer m.mu.Unlock()
	m.data[key] = &entry{kind: store.KindString, str: value}
	return nil
}

func (m *Memory) LLen(ctx context.Context, key string) (int64, error) {
	if err := m.begin("LLEN"); err != nil {
		return 0, err
	}
	defer m.mu.Unlock()
	e, err := m.lookup("LLEN", key, store.KindList)
	if err != nil || e == nil {
		return 0, err
	}
	return int64(len(e.list)), nil
}

func (m *Memory) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	if err := m.begin("LRANGE"); err != nil {
		return nil, err
	}
	defer m.mu.Unlock()
	e, err := m.lookup("LRANGE", key, store.KindList)
	if err != nil || e == nil {
		return nil, err
	}
	lo, hi, ok := clampRange(start, stop, int64(len(e.list)))
	if !ok {
		return nil, nil
	}
	out := make([]string, hi-lo+1)
	copy(out, e.list[lo:hi+1])
	return out, nil
}

func (m *Memory) RPush(ctx context.Context, key string, values ...string) (int64, error) {
	if err := m.begin("RPUSH"); err != nil {
		return 0, err
	}
	defer m.mu.Unlock()
	e, err := m.create("RPUSH", key, store.KindList)
	if err != nil {
		return 0, err
	}
	e.list = append(e.list, values...)
	return int64(len(e.list)), nil
}

func (m *Memory) RPopBatch(ctx context.Context, key string, n int) error {
	if err := m.begin("RPOP_BATCH"); err != nil {
		return err
	}
	defer m.mu.Unlock()
	e, err := m.lookup("RPOP", key, store.KindList)
	if err != nil || e == nil {
		return err
	}
	if n > len(e.list) {
		n = len(e.list)
	}
	e.list = e.list[:len(e.list)-n]
	m.dropIfEmpty(key, e)
	return nil
}

func (m *Memory) HLen(ctx context.Context, key string) (int64, error) {
	return m.card("HLEN", key, store.KindHash)
}

func (m *Memory) HScan(ctx context.Context, key string, cursor uint64, count int64) ([]store.FieldValue, uint64, error) {
	slots, next, err := m.scan("HSCAN", key, store.KindHash, cursor, count)
	if err != nil {
		return nil, 0, err
	}
	fields := make([]store.FieldValue, 0, len(slots))
	for _, s := range slots {
		fields = append(fields, store.FieldValue{Field: s.name, Value: s.value})
	}
	return fields, next, nil
}

func (m *Memory) HSet(ctx context.Context, key string, fields []store.FieldValue) error {
	if err := m.begin("HSET"); err != nil {
		return err
	}
	defer m.mu.Unlock()
	e, err := m.create("HSET", key, store.KindHash)
	if err != nil {
		return err
	}
	for _, f := range fields {
		s, _ := e.set.put(f.Field)
		s.value = f.Value
	}
	m.dropIfEmpty(key, e)
	return nil
}

func (m *Memory) HDel(ctx context.Context, key string, fields ...string) (int64, error) {
	return m.remove("HDEL", key, store.KindHash, fields)
}

func (m *Memory) SCard(ctx context.Context, key string) (int64, error) {
	return m.card("SCARD", key, store.KindSet)
}

func (m *Memory) SScan(ctx context.Context, key string, cursor uint64, count int64) ([]string, uint64, error) {
	slots, next, err := m.scan("SSCAN", key, store.KindSet, cursor, count)
	if err != nil {
		return nil, 0, err
	}
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.name)
	}
	return out, next, nil
}

func (m *Memory) SAdd(ctx context.Context, key string, values ...string) (int64, error) {
	if err := m.begin("SADD"); err != nil {
		return 0, err
	}
	defer m.mu.Unlock()
	e, err := m.create("SADD", key, store.KindSet)
	if err != nil {
		return 0, err
	}
	var added int64
	for _, v := range values {
		if _, isNew := e.set.put(v); isNew {
			added++
		}
	}
	m.dropIfEmpty(key, e)
	return added, nil
}

func (m *Memory) SRem(ctx context.Context, key string, values ...string) (int64, error) {
	return m.remove("SREM", key, store.KindSet, values)
}

func (m *Memory) ZCard(ctx context.Context, key string) (int64, error) {
	return m.card("ZCARD", key, store.KindSortedSet)
}

func (m *Memory) ZScan(ctx context.Context, key string, cursor uint64, count int64) ([]store.ScoredMember, uint64, error) {
	slots, next, err := m.scan("ZSCAN", key, store.KindSortedSet, cursor, count)
	if err != nil {
		return nil, 0, err
	}
	out := make([]store.ScoredMember, 0, len(slots))
	for _, s := range slots {
		out = append(out, store.ScoredMember{Member: s.name, Score: s.score})
	}
	return out, next, nil
}

func (m *Memory) ZAdd(ctx context.Context, key string, values []store.ScoredMember) error {
	if err := m.begin("ZADD"); err != nil {
		return err
	}
	defer m.mu.Unlock()
	e, err := m.create("ZADD", key, store.KindSortedSet)
	if err != nil {
		return err
	}
	for _, v := range values {
		s, _ := e.set.put(v.Member)
		s.score = v.Score
	}
	m.dropIfEmpty(key, e)
	return nil
}

func (m *Memory) ZRemRangeByRank(ctx context.Context, key string, start, stop int64) (int64, error) {
	if err := m.begin("ZREMRANGEBYRANK"); err != nil {
		return 0, err
	}
	defer m.mu.Unlock()
	e, err := m.lookup("ZREMRANGEBYRANK", key, store.KindSortedSet)
	if err != nil || e == nil {
		return 0, err
	}
	ranked := e.set.ranked()
	lo, hi, ok := clampRange(start, stop, int64(len(ranked)))
	if !ok {
		return 0, nil
	}
	for _, s := range ranked[lo : hi+1] {
		e.set.remove(s.name)
	}
	m.dropIfEmpty(key, e)
	return hi - lo + 1, nil
}

func (m *Memory) Ping(ctx context.Context) error {
	if err := m.begin("PING"); err != nil {
		return err
	}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *Memory) card(op, key string, kind store.Kind) (int64, error) {
	if err := m.begin(op); err != nil {
		return 0, err
	}
	defer m.mu.Unlock()
	e, err := m.lookup(op, key, kind)
	if err != nil || e == nil {
		return 0, err
	}
	return int64(e.set.len()), nil
}

func (m *Memory) scan(op, key string, kind store.Kind, cursor uint64, count int64) ([]*slot, uint64, error) {
	if err := m.begin(op); err != nil {
		return nil, 0, err
	}
	defer m.mu.Unlock()
	e, err := m.lookup(op, key, kind)
	if err != nil || e == nil {
		return nil, 0, err
	}
	slots, next := e.set.scan(cursor, count)
	return slots, next, nil
}

func (m *Memory) remove(op, key string, kind store.Kind, names []string) (int64, error) {
	if err := m.begin(op); err != nil {
		return 0, err
	}
	defer m.mu.Unlock()
	if len(names) == 0 {
		return 0, &store.CommandError{Op: op, Err: fmt.Errorf("wrong number of arguments for '%s' command", op)}
	}
	e, err := m.lookup(op, key, kind)
	if err != nil || e == nil {
		return 0, err
	}
	var n int64
	for _, name := range names {
		if e.set.remove(name) {
			n++
		}
	}
	m.dropIfEmpty(key, e)
	return n, nil
}

// clampRange applies the store's inclusive, negative-aware index rules.
func clampRange(start, stop, length int64) (int64, int64, bool) {
	if start < 0 {
		start += length
	}
	if stop < 0 {
		stop += length
	}
	if start < 0 {
		start = 0
	}
	if stop >= length {
		stop = length - 1
	}
	if start > stop || start >= length {
		return 0, 0, false
	}
	return start, stop, true
}
