package statis

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/SiriusScan/redis-tools/internal/commands"
	"github.com/SiriusScan/redis-tools/internal/config"
	"github.com/SiriusScan/redis-tools/internal/endpoint"
	"github.com/SiriusScan/redis-tools/internal/engine"
	"github.com/SiriusScan/redis-tools/internal/store"
	"github.com/SiriusScan/redis-tools/internal/store/storetest"
)

func TestStatisCommand(t *testing.T) {
	ctx := context.Background()
	mem := storetest.NewMemory()
	for key, n := range map[string]int{"a": 5, "b": 30, "c": 12} {
		values := make([]string, n)
		for i := range values {
			values[i] = fmt.Sprint(i)
		}
		_, err := mem.SAdd(ctx, key, values...)
		require.NoError(t, err)
	}

	logger := zaptest.NewLogger(t)
	cfg := &config.Config{
		Store:  &store.Config{URI: "redis://10.0.0.1:6379/0"},
		Engine: config.EngineConfig{StatisThreshold: 10},
	}
	provider := store.NewProvider(*cfg.Store, logger)
	provider.SetDialer(func(context.Context, store.Config, endpoint.Endpoint) (store.Store, error) {
		return mem, nil
	})
	out := &bytes.Buffer{}
	env := commands.Env{
		Logger: logger,
		Config: cfg,
		Engine: engine.New(logger, engine.Options{}),
		Stores: provider,
		Stdout: out,
	}

	n, err := (&StatisCommand{}).Execute(ctx, env, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "c 12\nb 30\n", out.String())

	_, err = (&StatisCommand{}).Execute(ctx, env, []string{"extra"})
	assert.ErrorIs(t, err, engine.ErrArgument)
}
