package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/SiriusScan/redis-tools/internal/store"
	"github.com/SiriusScan/redis-tools/internal/store/storetest"
)

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	return New(zaptest.NewLogger(t), opts)
}

func fillList(t *testing.T, st store.Store, key string, n int) []string {
	t.Helper()
	values := make([]string, n)
	for i := range values {
		values[i] = fmt.Sprintf("item-%d", i)
	}
	_, err := st.RPush(context.Background(), key, values...)
	require.NoError(t, err)
	return values
}

func fillHash(t *testing.T, st store.Store, key string, n int) map[string]string {
	t.Helper()
	want := make(map[string]string, n)
	fields := make([]store.FieldValue, n)
	for i := range fields {
		fields[i] = store.FieldValue{Field: fmt.Sprintf("field-%d", i), Value: fmt.Sprintf("value-%d", i)}
		want[fields[i].Field] = fields[i].Value
	}
	require.NoError(t, st.HSet(context.Background(), key, fields))
	return want
}

func fillSet(t *testing.T, st store.Store, key string, n int) []string {
	t.Helper()
	members := make([]string, n)
	for i := range members {
		members[i] = fmt.Sprintf("member-%d", i)
	}
	_, err := st.SAdd(context.Background(), key, members...)
	require.NoError(t, err)
	return members
}

func fillSortedSet(t *testing.T, st store.Store, key string, n int) map[string]float64 {
	t.Helper()
	want := make(map[string]float64, n)
	members := make([]store.ScoredMember, n)
	for i := range members {
		members[i] = store.ScoredMember{Member: fmt.Sprintf("member-%d", i), Score: float64(i) / 7}
		want[members[i].Member] = members[i].Score
	}
	require.NoError(t, st.ZAdd(context.Background(), key, members))
	return want
}

// readAll drains a chunk sequence, failing the test after limit chunks.
func readAll(t *testing.T, e *Engine, st store.Store, key string, kind store.Kind, limit int) []Chunk {
	t.Helper()
	it, err := e.Read(st, key, kind)
	require.NoError(t, err)

	var chunks []Chunk
	for it.Next(context.Background()) {
		chunks = append(chunks, it.Chunk())
		require.LessOrEqual(t, len(chunks), limit, "chunk sequence did not terminate")
	}
	require.NoError(t, it.Err())
	return chunks
}

func hashContent(t *testing.T, st store.Store, key string) map[string]string {
	t.Helper()
	got := map[string]string{}
	var cursor uint64
	for i := 0; i < 10000; i++ {
		fields, next, err := st.HScan(context.Background(), key, cursor, 1000)
		require.NoError(t, err)
		for _, f := range fields {
			got[f.Field] = f.Value
		}
		if cursor = next; cursor == 0 {
			break
		}
	}
	return got
}

func sortedSetContent(t *testing.T, st store.Store, key string) map[string]float64 {
	t.Helper()
	got := map[string]float64{}
	var cursor uint64
	for i := 0; i < 10000; i++ {
		members, next, err := st.ZScan(context.Background(), key, cursor, 1000)
		require.NoError(t, err)
		for _, m := range members {
			got[m.Member] = m.Score
		}
		if cursor = next; cursor == 0 {
			break
		}
	}
	return got
}

// countingRecorder is a Recorder that keeps totals in memory.
type countingRecorder struct {
	roundTrips map[string]int
	elements   map[string]int64
	keys       map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		roundTrips: map[string]int{},
		elements:   map[string]int64{},
		keys:       map[string]int{},
	}
}

func (r *countingRecorder) RoundTrip(op string, kind store.Kind) {
	r.roundTrips[op+"/"+string(kind)]++
}

func (r *countingRecorder) Elements(op string, kind store.Kind, n int64) {
	r.elements[op+"/"+string(kind)] += n
}

func (r *countingRecorder) KeyProcessed(op string, kind store.Kind) {
	r.keys[op+"/"+string(kind)]++
}

// endlessHashStore answers every HSCAN with a non-zero cursor.
type endlessHashStore struct {
	*storetest.Memory
}

func (endlessHashStore) HScan(ctx context.Context, key string, cursor uint64, count int64) ([]store.FieldValue, uint64, error) {
	return []store.FieldValue{{Field: "f", Value: "v"}}, cursor + 1, nil
}
