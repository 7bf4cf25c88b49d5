package commands

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/SiriusScan/redis-tools/internal/config"
	"github.com/SiriusScan/redis-tools/internal/endpoint"
	"github.com/SiriusScan/redis-tools/internal/engine"
	"github.com/SiriusScan/redis-tools/internal/store"
)

// Env provides the dependencies of one run to commands, in place of any
// process-wide default connection.
type Env struct {
	Logger *zap.Logger
	Config *config.Config
	Engine *engine.Engine
	// Stores opens connections lazily and keeps one per address for the run.
	Stores *store.Provider
	// Stdout receives report output; logs go to the logger.
	Stdout io.Writer
}

// Command defines the interface for all CLI operations.
type Command interface {
	// Execute runs the operation on the positional values given after its flag
	// and returns the number of keys it processed.
	Execute(ctx context.Context, env Env, args []string) (keys int, err error)
}

// ResolveTarget turns a positional value into a store and key name. A full
// redis:// address opens that endpoint and uses the key it carries; anything
// else is a key name on the default connection.
func ResolveTarget(ctx context.Context, env Env, value string) (store.Store, string, error) {
	if endpoint.IsAddress(value) {
		ep, err := endpoint.Parse(value)
		if err != nil {
			return nil, "", err
		}
		st, err := env.Stores.Open(ctx, ep)
		if err != nil {
			return nil, "", err
		}
		return st, ep.Key, nil
	}

	st, _, err := env.Stores.Default(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("key %q needs a default connection: %w", value, err)
	}
	return st, value, nil
}

// CheckArity fails with engine.ErrArgument when more than max values are given.
func CheckArity(name string, args []string, max int) error {
	if len(args) > max {
		return fmt.Errorf("%w: --%s takes at most %d values, got %d", engine.ErrArgument, name, max, len(args))
	}
	return nil
}
