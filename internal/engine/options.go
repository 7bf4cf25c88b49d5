package engine

import (
	"golang.org/x/time/rate"

	"github.com/SiriusScan/redis-tools/internal/store"
)

// Batch sizes used when Options leaves a field at zero.
const (
	DefaultListReadWidth   = 1000
	DefaultHashScanCount   = 1000
	DefaultSetScanCount    = 100
	DefaultZSetScanCount   = 100
	DefaultListPopBatch    = 1000
	DefaultHashDeleteCount = 1000
	DefaultSetDeleteCount  = 1000
	DefaultZSetRemoveRun   = 10000
	DefaultMaxIterations   = 1000000
)

// Operation names passed to a Recorder.
const (
	OpCopy   = "copy"
	OpDelete = "delete"
	OpStats  = "stats"
)

// Recorder receives progress of engine operations. internal/metrics provides
// the Prometheus implementation.
type Recorder interface {
	// RoundTrip counts one chunk read/write or one delete batch.
	RoundTrip(op string, kind store.Kind)
	// Elements counts elements moved or removed.
	Elements(op string, kind store.Kind, n int64)
	// KeyProcessed counts one key finished by op.
	KeyProcessed(op string, kind store.Kind)
}

type nopRecorder struct{}

func (nopRecorder) RoundTrip(string, store.Kind) {}
func (nopRecorder) Elements(string, store.Kind, int64) {}
func (nopRecorder) KeyProcessed(string, store.Kind) {}

// Options tunes chunk sizes and pacing. Zero values take the defaults above.
type Options struct {
	ListReadWidth int64
	HashScanCount int64
	SetScanCount  int64
	ZSetScanCount int64

	ListPopBatch    int
	HashDeleteCount int64
	SetDeleteCount  int64
	ZSetRemoveRun   int64

	// MaxIterations bounds the round trips of one chunk sequence or lazy delete.
	// Negative disables the bound.
	MaxIterations int

	// Limiter, if set, is waited on before every lazy delete batch.
	Limiter *rate.Limiter

	Recorder Recorder
}

func (o Options) withDefaults() Options {
	if o.ListReadWidth <= 0 {
		o.ListReadWidth = DefaultListReadWidth
	}
	if o.HashScanCount <= 0 {
		o.HashScanCount = DefaultHashScanCount
	}
	if o.SetScanCount <= 0 {
		o.SetScanCount = DefaultSetScanCount
	}
	if o.ZSetScanCount <= 0 {
		o.ZSetScanCount = DefaultZSetScanCount
	}
	if o.ListPopBatch <= 0 {
		o.ListPopBatch = DefaultListPopBatch
	}
	if o.HashDeleteCount <= 0 {
		o.HashDeleteCount = DefaultHashDeleteCount
	}
	if o.SetDeleteCount <= 0 {
		o.SetDeleteCount = DefaultSetDeleteCount
	}
	if o.ZSetRemoveRun <= 0 {
		o.ZSetRemoveRun = DefaultZSetRemoveRun
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
	return o
}
