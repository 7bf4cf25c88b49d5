package lazydelete

import (
	"context"

	"github.com/SiriusScan/redis-tools/internal/commands"
)

// DeleteCommand implements --delete key1 key2 ...
type DeleteCommand struct{}

// Ensures DeleteCommand implements the Command interface at compile time.
var _ commands.Command = (*DeleteCommand)(nil)

func init() {
	commands.Register("delete", &DeleteCommand{})
}

// Execute lazily deletes every listed key on the default connection.
func (c *DeleteCommand) Execute(ctx context.Context, env commands.Env, args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	st, _, err := env.Stores.Default(ctx)
	if err != nil {
		return 0, err
	}
	return env.Engine.Delete(ctx, st, args...)
}
