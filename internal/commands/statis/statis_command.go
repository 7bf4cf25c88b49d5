package statis

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/SiriusScan/redis-tools/internal/commands"
)

// StatisCommand implements --statis_keys.
type StatisCommand struct{}

// Ensures StatisCommand implements the Command interface at compile time.
var _ commands.Command = (*StatisCommand)(nil)

func init() {
	commands.Register("statis_keys", &StatisCommand{})
}

// Execute prints "key count" for every key of the default connection holding
// more elements than the configured threshold, smallest first.
func (c *StatisCommand) Execute(ctx context.Context, env commands.Env, args []string) (int, error) {
	if err := commands.CheckArity("statis_keys", args, 0); err != nil {
		return 0, err
	}
	st, ep, err := env.Stores.Default(ctx)
	if err != nil {
		return 0, err
	}

	threshold := env.Config.Engine.StatisThreshold
	stats, err := env.Engine.Stats(ctx, st, threshold)
	if err != nil {
		return 0, err
	}
	for _, s := range stats {
		fmt.Fprintf(env.Stdout, "%s %d\n", s.Key, s.Count)
	}

	env.Logger.Debug("Key statistics collected",
		zap.String("addr", ep.Addr()),
		zap.Int("db", ep.DB),
		zap.Int64("threshold", threshold),
		zap.Int("reported", len(stats)))
	return len(stats), nil
}
