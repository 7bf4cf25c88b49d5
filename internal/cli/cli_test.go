package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORE_URI", "")
	t.Setenv("STORE_DRIVER", "valkey")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("DELETE_RATE", "0")
	t.Setenv("STATIS_THRESHOLD", "2000")
	t.Setenv("METRICS_PUSHGATEWAY", "")
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	code := NewCLI(stdout, stderr).Run(append([]string{"redis-tools"}, args...))
	return code, stdout.String(), stderr.String()
}

func TestRun_Usage(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{name: "no operation", args: nil, wantCode: 0},
		{name: "help", args: []string{"-h"}, wantCode: 0},
		{name: "unknown flag", args: []string{"--bogus"}, wantCode: 1, wantErr: "failed to parse flags"},
		{name: "two modes", args: []string{"--copy", "--delete", "a"}, wantCode: 1, wantErr: "only one of"},
		{name: "mode after value", args: []string{"--copy", "a", "--delete", "b"}, wantCode: 1, wantErr: "only one of"},
		{name: "values without mode", args: []string{"a"}, wantCode: 1, wantErr: "unexpected values"},
		{name: "too many copy values", args: []string{"--uri", "redis://10.0.0.1:6379/0", "--copy", "a", "b", "c"}, wantCode: 1, wantErr: "at most 2 values"},
		{name: "malformed uri", args: []string{"--uri", "redis://localhost/0", "--delete", "a"}, wantCode: 1, wantErr: "invalid default address"},
		{name: "mode without values", args: []string{"--delete"}, wantCode: 0},
		{name: "uri after values", args: []string{"--delete", "k1", "--uri", "redis://10.0.0.2:6379/0"}, wantCode: 1, wantErr: "-uri must be given before"},
		{name: "report after mode", args: []string{"--statis_keys", "-report=out.json"}, wantCode: 1, wantErr: "-report must be given before"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := run(t, tt.args...)
			assert.Equal(t, tt.wantCode, code)
			if tt.wantErr != "" {
				assert.Contains(t, stderr, tt.wantErr)
			}
		})
	}
}

func TestRun_HelpListsOperations(t *testing.T) {
	setupEnv(t)

	code, _, stderr := run(t, "-h")
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "Operations: copy, copy_keys, delete, statis_keys")
}

func TestRun_LateURIDoesNotFallBackToDefault(t *testing.T) {
	setupEnv(t)
	def := miniredis.RunT(t)
	named := miniredis.RunT(t)
	t.Setenv("STORE_URI", "redis://"+def.Addr()+"/0")
	require.NoError(t, def.Set("k1", "v"))
	require.NoError(t, named.Set("k1", "v"))

	code, _, stderr := run(t, "--delete", "k1", "--uri", "redis://"+named.Addr()+"/0")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "-uri must be given before the operation flag")
	assert.True(t, def.Exists("k1"))
	assert.True(t, named.Exists("k1"))
}

func TestRun_DeleteWithoutDefaultAddress(t *testing.T) {
	setupEnv(t)

	code, _, stderr := run(t, "--delete", "k")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "delete failed")
}

func TestRun_CopyAndDelete(t *testing.T) {
	setupEnv(t)
	mr := miniredis.RunT(t)
	uri := "redis://" + mr.Addr() + "/0"

	mr.HSet("profile", "name", "ada", "lang", "go")
	mr.Lpush("queue", "b")
	mr.Lpush("queue", "a")

	code, _, stderr := run(t, "--uri", uri, "--copy", "profile")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "ada", mr.HGet("profile_copy", "name"))
	assert.Equal(t, "go", mr.HGet("profile_copy", "lang"))

	code, _, stderr = run(t, "--uri", uri, "--copy", "queue", uri+"/moved")
	require.Equal(t, 0, code, stderr)
	moved, err := mr.List("moved")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, moved)

	code, _, stderr = run(t, "--uri", uri, "--delete", "profile", "queue", "missing")
	require.Equal(t, 0, code, stderr)
	assert.False(t, mr.Exists("profile"))
	assert.False(t, mr.Exists("queue"))
	assert.True(t, mr.Exists("profile_copy"))
}

func TestRun_StatisKeys(t *testing.T) {
	setupEnv(t)
	t.Setenv("STATIS_THRESHOLD", "2")
	mr := miniredis.RunT(t)
	t.Setenv("STORE_URI", "redis://"+mr.Addr()+"/0")

	mr.SAdd("big", "a", "b", "c", "d")
	mr.SAdd("medium", "a", "b", "c")
	mr.SAdd("small", "a")

	code, stdout, stderr := run(t, "--statis_keys")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "medium 3\nbig 4\n", stdout)
}

func TestRun_WritesReport(t *testing.T) {
	setupEnv(t)
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("greeting", "hello"))

	path := filepath.Join(t.TempDir(), "report.json")
	code, _, stderr := run(t, "--uri", "redis://"+mr.Addr()+"/0", "--report", path, "--copy", "greeting", "salutation")
	require.Equal(t, 0, code, stderr)

	got, err := mr.Get("salutation")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rep map[string]any
	require.NoError(t, json.Unmarshal(data, &rep))
	assert.Equal(t, "copy", rep["operation"])
	assert.Equal(t, "completed", rep["status"])
	assert.EqualValues(t, 1, rep["keys_processed"])
	assert.NotEmpty(t, rep["run_id"])
}
