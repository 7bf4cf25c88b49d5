package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]Command)
	registryMu sync.RWMutex
)

// ErrUnknownCommand is returned when Dispatch cannot find a command by name.
var ErrUnknownCommand = errors.New("unknown command")

// Register adds a command to the registry under its flag name.
// It panics if the name is empty or already registered.
func Register(name string, cmd Command) {
	if name == "" {
		panic("commands: Register called with empty name")
	}
	if cmd == nil {
		panic("commands: Register command cannot be nil")
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("commands: Register called twice for name %q", name))
	}
	registry[name] = cmd
}

// Get retrieves a command by its name.
func Get(name string) (Command, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	cmd, found := registry[name]
	return cmd, found
}

// Names returns the registered command names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the command registered under name with args.
func Dispatch(ctx context.Context, env Env, name string, args []string) (int, error) {
	cmd, found := Get(name)
	if !found {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return cmd.Execute(ctx, env, args)
}
