package copykeys

import (
	"context"
	"fmt"

	"github.com/SiriusScan/redis-tools/internal/commands"
	"github.com/SiriusScan/redis-tools/internal/endpoint"
	"github.com/SiriusScan/redis-tools/internal/engine"
	"github.com/SiriusScan/redis-tools/internal/store"
)

// CopyCommand implements --copy [src] [dst].
type CopyCommand struct{}

// CopyKeysCommand implements --copy_keys [pattern] [dst].
type CopyKeysCommand struct{}

// Ensures both commands implement the Command interface at compile time.
var (
	_ commands.Command = (*CopyCommand)(nil)
	_ commands.Command = (*CopyKeysCommand)(nil)
)

func init() {
	commands.Register("copy", &CopyCommand{})
	commands.Register("copy_keys", &CopyKeysCommand{})
}

// Execute copies one key. src and dst are key names on the default connection
// or full addresses carrying the key. Without dst the copy lands next to the
// source under the "_copy" suffix.
func (c *CopyCommand) Execute(ctx context.Context, env commands.Env, args []string) (int, error) {
	if err := commands.CheckArity("copy", args, 2); err != nil {
		return 0, err
	}
	if len(args) == 0 {
		return 0, nil
	}

	src, srcKey, err := commands.ResolveTarget(ctx, env, args[0])
	if err != nil {
		return 0, err
	}

	var (
		dst    store.Store
		dstKey string
	)
	if len(args) == 2 {
		dst, dstKey, err = commands.ResolveTarget(ctx, env, args[1])
		if err != nil {
			return 0, err
		}
	}

	if err := env.Engine.CopyKey(ctx, src, srcKey, dst, dstKey); err != nil {
		return 0, err
	}
	return 1, nil
}

// Execute copies every key matching the pattern under the same name. The
// destination, when given, must be an address; without it keys are copied
// onto themselves on the source connection.
func (c *CopyKeysCommand) Execute(ctx context.Context, env commands.Env, args []string) (int, error) {
	if err := commands.CheckArity("copy_keys", args, 2); err != nil {
		return 0, err
	}
	if len(args) == 0 {
		return 0, nil
	}

	src, pattern, err := commands.ResolveTarget(ctx, env, args[0])
	if err != nil {
		return 0, err
	}

	var dst store.Store
	if len(args) == 2 {
		if !endpoint.IsAddress(args[1]) {
			return 0, fmt.Errorf("%w: copy_keys destination must be an address, got %q", engine.ErrArgument, args[1])
		}
		if dst, _, err = commands.ResolveTarget(ctx, env, args[1]); err != nil {
			return 0, err
		}
	}

	return env.Engine.CopyKeys(ctx, src, pattern, dst)
}
