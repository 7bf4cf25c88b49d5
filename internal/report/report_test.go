package report

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_Lifecycle(t *testing.T) {
	r := New("run-1", "delete", []string{"a", "b"})
	assert.Equal(t, StatusPending, r.Status)

	r.SetRunning()
	assert.Equal(t, StatusRunning, r.Status)
	assert.Nil(t, r.EndTime)

	r.SetCompleted(2)
	assert.Equal(t, StatusCompleted, r.Status)
	assert.Equal(t, 2, r.KeysProcessed)
	require.NotNil(t, r.EndTime)
	assert.GreaterOrEqual(t, r.Duration().Nanoseconds(), int64(0))
}

func TestReport_Failed(t *testing.T) {
	r := New("run-2", "copy", nil)
	r.SetRunning()
	r.SetFailed(0, errors.New("connection refused"))

	assert.Equal(t, StatusFailed, r.Status)
	assert.Equal(t, 1, r.ExitCode)
	assert.Equal(t, "connection refused", r.Error)
	assert.Len(t, r.Fields(), 5)
}

func TestReport_WriteFile(t *testing.T) {
	r := New("run-3", "statis_keys", nil)
	r.SetCompleted(7)

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, r.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "run-3", got.RunID)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, 7, got.KeysProcessed)
}
