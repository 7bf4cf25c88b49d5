package engine

import "github.com/SiriusScan/redis-tools/internal/store"

// Chunk is one bounded batch of values read in a single round trip. Only the
// slice matching Kind is populated.
type Chunk struct {
	Kind store.Kind
	// Values holds list elements, set members, or the whole string value.
	Values  []string
	Fields  []store.FieldValue
	Members []store.ScoredMember
	// Cursor is the scan cursor returned with this chunk; 0 on the last one.
	Cursor uint64
}

// Len returns the number of elements in the chunk.
func (c Chunk) Len() int {
	return len(c.Values) + len(c.Fields) + len(c.Members)
}

// position tracks where a chunk sequence resumes.
type position struct {
	offset  int64
	total   int64
	scan    uint64
	started bool
	done    bool
}
