package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SiriusScan/redis-tools/internal/store"
)

var knownVars = []string{
	"LOG_LEVEL", "LOG_FORMAT",
	"STORE_URI", "STORE_DRIVER", "STORE_USERNAME", "STORE_PASSWORD", "STORE_CONN_TIMEOUT", "STORE_OP_TIMEOUT",
	"DELETE_RATE", "SCAN_MAX_ITERATIONS", "STATIS_THRESHOLD",
	"METRICS_PUSHGATEWAY", "METRICS_JOB",
}

// clearEnv unsets every variable Load reads and restores them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range knownVars {
		key := key
		if value, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, value) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name       string
		envVars    map[string]string
		wantLevel  string
		wantFormat string
		wantDriver string
		wantErr    bool
	}{
		{
			name:       "default values",
			envVars:    map[string]string{},
			wantLevel:  "info",
			wantFormat: "text",
			wantDriver: store.DriverValkey,
		},
		{
			name: "custom values",
			envVars: map[string]string{
				"LOG_LEVEL":    "debug",
				"LOG_FORMAT":   "json",
				"STORE_DRIVER": "goredis",
			},
			wantLevel:  "debug",
			wantFormat: "json",
			wantDriver: store.DriverGoRedis,
		},
		{
			name:    "invalid log level",
			envVars: map[string]string{"LOG_LEVEL": "invalid"},
			wantErr: true,
		},
		{
			name:    "invalid log format",
			envVars: map[string]string{"LOG_FORMAT": "xml"},
			wantErr: true,
		},
		{
			name:    "invalid driver",
			envVars: map[string]string{"STORE_DRIVER": "memcache"},
			wantErr: true,
		},
		{
			name:    "negative delete rate",
			envVars: map[string]string{"DELETE_RATE": "-1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			got, err := Load("")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, got.Log.Level)
			assert.Equal(t, tt.wantFormat, got.Log.Format)
			assert.Equal(t, tt.wantDriver, got.Store.Driver)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.Store.URI)
	assert.Equal(t, 5, cfg.Store.ConnectionTimeout)
	assert.Equal(t, 3, cfg.Store.OperationTimeout)
	assert.Zero(t, cfg.Engine.DeleteRate)
	assert.Equal(t, 1000000, cfg.Engine.MaxScanIterations)
	assert.Equal(t, int64(2000), cfg.Engine.StatisThreshold)
	assert.Equal(t, "redis_tools", cfg.Metrics.Job)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	content := "STORE_URI=redis://10.0.0.5:6379/2\nDELETE_RATE=12.5\nSTATIS_THRESHOLD=10\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "redis://10.0.0.5:6379/2", cfg.Store.URI)
	assert.Equal(t, 12.5, cfg.Engine.DeleteRate)
	assert.Equal(t, int64(10), cfg.Engine.StatisThreshold)
}

func TestLoad_MissingEnvFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "error loading env file")
}
