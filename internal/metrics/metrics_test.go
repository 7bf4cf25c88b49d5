package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SiriusScan/redis-tools/internal/store"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector()

	c.RoundTrip("delete", store.KindList)
	c.RoundTrip("delete", store.KindList)
	c.Elements("delete", store.KindList, 1500)
	c.KeyProcessed("delete", store.KindList)
	c.KeyProcessed("copy", store.KindHash)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.roundTrips.WithLabelValues("delete", "list")))
	assert.Equal(t, 1500.0, testutil.ToFloat64(c.elements.WithLabelValues("delete", "list")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.keys.WithLabelValues("copy", "hash")))
}

func TestCollector_ObserveOperation(t *testing.T) {
	c := NewCollector()

	c.ObserveOperation("copy", 10*time.Millisecond, nil)
	c.ObserveOperation("copy", 20*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.errorCounter.WithLabelValues("copy")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.opDuration))
}

func TestCollector_Push(t *testing.T) {
	var body string
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewCollector()
	c.KeyProcessed("delete", store.KindSet)

	require.NoError(t, c.Push(context.Background(), srv.URL, "redis_tools"))
	assert.True(t, strings.HasSuffix(path, "/metrics/job/redis_tools"), path)
	assert.NotEmpty(t, body)
}
